package book

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MinFieldLength is the shortest accepted cover name, author name or genre.
const MinFieldLength = 3

// ValidationError describes a rejected catalog field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Normalize trims surrounding whitespace from every field.
func (f Fields) Normalize() Fields {
	return Fields{
		CoverName:  strings.TrimSpace(f.CoverName),
		AuthorName: strings.TrimSpace(f.AuthorName),
		Genre:      strings.TrimSpace(f.Genre),
	}
}

// Validate checks every field is present and long enough.
func (f Fields) Validate() error {
	if err := validateField("coverName", f.CoverName); err != nil {
		return err
	}
	if err := validateField("authorName", f.AuthorName); err != nil {
		return err
	}
	return validateField("genre", f.Genre)
}

// Normalize trims every supplied field.
func (p Patch) Normalize() Patch {
	return Patch{
		CoverName:  trimmed(p.CoverName),
		AuthorName: trimmed(p.AuthorName),
		Genre:      trimmed(p.Genre),
	}
}

// Validate checks only the fields the patch supplies.
func (p Patch) Validate() error {
	if p.CoverName != nil {
		if err := validateField("coverName", *p.CoverName); err != nil {
			return err
		}
	}
	if p.AuthorName != nil {
		if err := validateField("authorName", *p.AuthorName); err != nil {
			return err
		}
	}
	if p.Genre != nil {
		return validateField("genre", *p.Genre)
	}
	return nil
}

func validateField(name, value string) error {
	if value == "" {
		return &ValidationError{Field: name, Message: name + " is required"}
	}
	if utf8.RuneCountInString(value) < MinFieldLength {
		return &ValidationError{
			Field:   name,
			Message: fmt.Sprintf("%s must be at least %d characters", name, MinFieldLength),
		}
	}
	return nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
