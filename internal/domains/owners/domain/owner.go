package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// Language enumerates the supported interface locales.
type Language string

const (
	LanguageRussian   Language = "ru"
	LanguageEnglish   Language = "en"
	LanguageUkrainian Language = "uk"

	DefaultLanguage = LanguageRussian
)

var (
	ErrInvalidChatID    = errors.New("chat id must be greater than zero")
	ErrInvalidEmail     = errors.New("email address is invalid")
	ErrEmptyStoreName   = errors.New("store name is required")
	ErrStoreNameTooLong = errors.New("store name must be at most 255 characters")
	ErrInvalidLanguage  = errors.New("language is not supported")
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Owner is the store operator account. It owns categories, products and orders.
type Owner struct {
	ID        int64
	ChatID    int64
	Email     string
	StoreName string
	Language  Language
	Active    bool
	CreatedAt time.Time
}

// NewOwner validates and builds an active owner.
func NewOwner(chatID int64, email, storeName string, language Language) (*Owner, error) {
	if chatID <= 0 {
		return nil, ErrInvalidChatID
	}
	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	owner := &Owner{ChatID: chatID, Email: email, Active: true}
	if err := owner.Rename(storeName); err != nil {
		return nil, err
	}
	if language == "" {
		language = DefaultLanguage
	}
	if err := owner.SetLanguage(language); err != nil {
		return nil, err
	}
	return owner, nil
}

// NormalizeEmail trims, lowercases and validates an email address.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(email) {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// Rename changes the display store name.
func (o *Owner) Rename(storeName string) error {
	storeName = strings.TrimSpace(storeName)
	if storeName == "" {
		return ErrEmptyStoreName
	}
	if len([]rune(storeName)) > 255 {
		return ErrStoreNameTooLong
	}
	o.StoreName = storeName
	return nil
}

// SetLanguage switches the preferred locale.
func (o *Owner) SetLanguage(language Language) error {
	if !language.Valid() {
		return ErrInvalidLanguage
	}
	o.Language = language
	return nil
}

// Valid reports whether the language belongs to the supported set.
func (l Language) Valid() bool {
	switch l {
	case LanguageRussian, LanguageEnglish, LanguageUkrainian:
		return true
	default:
		return false
	}
}
