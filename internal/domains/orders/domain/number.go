package domain

import nanoid "github.com/jaevor/go-nanoid"

const (
	// NumberAlphabet avoids characters that read alike (0/O, 1/I).
	NumberAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	NumberLength   = 8
	// MaxNumberAttempts bounds the retries after an order number collision.
	MaxNumberAttempts = 5
)

// NumberGenerator yields human-facing order codes.
type NumberGenerator func() string

// NewNumberGenerator returns a random 8-character uppercase code generator.
func NewNumberGenerator() (NumberGenerator, error) {
	gen, err := nanoid.CustomASCII(NumberAlphabet, NumberLength)
	if err != nil {
		return nil, err
	}
	return NumberGenerator(gen), nil
}
