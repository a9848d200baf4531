// Package validation holds the field-level rules applied to task, project and
// user mutations. Every function is pure: it returns the normalized value or
// an error wrapping ErrInvalidArgument.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	MaxTitleLength    = 255
	MaxCategoryLength = 32
)

// ErrInvalidArgument is returned when a field fails a validation rule.
var ErrInvalidArgument = errors.New("invalid argument")

var validate = validator.New()

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// Title rejects blank titles and titles longer than MaxTitleLength runes.
// The length limit applies to the raw input; the trimmed value is returned.
func Title(title string) (string, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return "", invalid("task title cannot be empty")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return "", invalid("task title cannot exceed %d characters", MaxTitleLength)
	}
	return trimmed, nil
}

// DueDate rejects dates before the calendar day of now. A nil date is valid.
// The returned date is normalized to midnight UTC.
func DueDate(due *time.Time, now time.Time) (*time.Time, error) {
	if due == nil {
		return nil, nil
	}
	day := DateOf(*due)
	if day.Before(DateOf(now)) {
		return nil, invalid("due date cannot be in the past")
	}
	return &day, nil
}

// Position rejects negative values; nil normalizes to 0.
func Position(position *int) (int, error) {
	if position == nil {
		return 0, nil
	}
	if *position < 0 {
		return 0, invalid("position cannot be negative")
	}
	return *position, nil
}

// Category trims the value and enforces MaxCategoryLength.
func Category(category string) (string, error) {
	trimmed := strings.TrimSpace(category)
	if utf8.RuneCountInString(trimmed) > MaxCategoryLength {
		return "", invalid("category cannot exceed %d characters", MaxCategoryLength)
	}
	return trimmed, nil
}

// Required trims value and fails when nothing is left.
func Required(field, value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", invalid("%s cannot be empty", field)
	}
	return trimmed, nil
}

// Email checks the address format.
func Email(email string) (string, error) {
	trimmed, err := Required("email", email)
	if err != nil {
		return "", err
	}
	if err := validate.Var(trimmed, "email"); err != nil {
		return "", invalid("email %q is not a valid address", trimmed)
	}
	return trimmed, nil
}

// DateOf returns the calendar day of t (in t's location) as midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
