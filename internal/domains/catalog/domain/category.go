package domain

import (
	"strings"
	"time"
)

// Category groups products of one owner.
type Category struct {
	ID          int64
	OwnerID     int64
	Name        string
	Description string
	CreatedAt   time.Time
}

// NewCategory validates and builds a category.
func NewCategory(ownerID int64, name, description string) (*Category, error) {
	if ownerID <= 0 {
		return nil, ErrInvalidOwner
	}
	c := &Category{OwnerID: ownerID, Description: strings.TrimSpace(description)}
	if err := c.Rename(name); err != nil {
		return nil, err
	}
	return c, nil
}

// Rename replaces the category name.
func (c *Category) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyCategoryName
	}
	if len([]rune(name)) > 255 {
		return ErrNameTooLong
	}
	c.Name = name
	return nil
}
