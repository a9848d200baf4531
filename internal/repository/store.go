// Package repository is the gorm-backed persistence layer for tasks,
// projects and users.
package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a lookup by key matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write violates a unique index.
	ErrDuplicate = errors.New("duplicate record")
)

// Store bundles the repositories that share one gorm handle. Inside
// Transaction the callback receives a Store bound to the transaction and must
// use it exclusively.
type Store struct {
	db       *gorm.DB
	Tasks    *TaskRepository
	Projects *ProjectRepository
	Users    *UserRepository
}

// New wraps db.
func New(db *gorm.DB) *Store {
	return &Store{
		db:       db,
		Tasks:    &TaskRepository{db: db},
		Projects: &ProjectRepository{db: db},
		Users:    &UserRepository{db: db},
	}
}

// DB returns the underlying handle.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction runs fn in a database transaction. Any error returned by fn
// rolls the transaction back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey),
		strings.Contains(err.Error(), "UNIQUE constraint failed"):
		return errors.Join(ErrDuplicate, err)
	default:
		return err
	}
}
