package service

import (
	"errors"
	"fmt"

	"smart-task-manager/internal/repository"
	"smart-task-manager/internal/validation"
)

var (
	// ErrInvalidArgument marks input that fails a validation rule.
	ErrInvalidArgument = validation.ErrInvalidArgument

	ErrNotFound        = errors.New("not found")
	ErrTaskNotFound    = fmt.Errorf("task %w", ErrNotFound)
	ErrProjectNotFound = fmt.Errorf("project %w", ErrNotFound)
	ErrUserNotFound    = fmt.Errorf("user %w", ErrNotFound)

	// ErrConflict covers uniqueness violations and rejected status transitions.
	ErrConflict = errors.New("conflict")

	// ErrUnauthorized is returned for bad credentials or inactive accounts.
	ErrUnauthorized = errors.New("invalid credentials")

	// ErrUnexpected wraps persistence failures that have no better category.
	ErrUnexpected = errors.New("unexpected error")
)

// notFound turns repository.ErrNotFound into the given sentinel and wraps
// everything else as unexpected.
func notFound(err error, sentinel error, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s", sentinel, id)
	}
	return unexpected(err)
}

func unexpected(err error) error {
	if err == nil {
		return nil
	}
	// Already classified errors pass through unchanged.
	for _, known := range []error{ErrInvalidArgument, ErrNotFound, ErrConflict, ErrUnauthorized, ErrUnexpected} {
		if errors.Is(err, known) {
			return err
		}
	}
	if errors.Is(err, repository.ErrDuplicate) {
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return fmt.Errorf("%w: %v", ErrUnexpected, err)
}
