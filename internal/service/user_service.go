package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"smart-task-manager/internal/auth"
	"smart-task-manager/internal/models"
	"smart-task-manager/internal/repository"
	"smart-task-manager/internal/validation"
)

// UserInput is used for both registration and full updates. On update an
// empty Password keeps the current one.
type UserInput struct {
	Username string
	Email    string
	FullName string
	Password string
}

type UserService struct {
	store *repository.Store
	log   zerolog.Logger
}

func NewUserService(store *repository.Store, log zerolog.Logger) *UserService {
	return &UserService{store: store, log: log}
}

func (in UserInput) normalize(requirePassword bool) (UserInput, error) {
	var err error
	if in.Username, err = validation.Required("username", in.Username); err != nil {
		return in, err
	}
	if in.Email, err = validation.Email(in.Email); err != nil {
		return in, err
	}
	if in.FullName, err = validation.Required("full name", in.FullName); err != nil {
		return in, err
	}
	if requirePassword {
		if _, err = validation.Required("password", in.Password); err != nil {
			return in, err
		}
	}
	return in, nil
}

// Create registers an active user. Username and email must be unused, by
// active and deactivated users alike.
func (s *UserService) Create(ctx context.Context, in UserInput) (*models.User, error) {
	in, err := in.normalize(true)
	if err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, unexpected(err)
	}

	user := &models.User{
		ID:       uuid.NewString(),
		Username: in.Username,
		Email:    in.Email,
		FullName: in.FullName,
		Password: hash,
		Active:   true,
	}
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := s.checkUnique(ctx, tx, in.Username, in.Email); err != nil {
			return err
		}
		return tx.Users.Create(ctx, user)
	})
	if err != nil {
		return nil, unexpected(err)
	}
	s.log.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("user created")
	return user, nil
}

func (s *UserService) checkUnique(ctx context.Context, tx *repository.Store, username, email string) error {
	if username != "" {
		taken, err := tx.Users.ExistsByUsername(ctx, username)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("%w: username %q already exists", ErrConflict, username)
		}
	}
	if email != "" {
		taken, err := tx.Users.ExistsByEmail(ctx, email)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("%w: email %q already exists", ErrConflict, email)
		}
	}
	return nil
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.store.Users.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound, id)
	}
	return user, nil
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.store.Users.FindByUsername(ctx, username)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound, username)
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.store.Users.List(ctx)
	if err != nil {
		return nil, unexpected(err)
	}
	return users, nil
}

// Update replaces the profile of username. Uniqueness is checked only for
// the fields that change.
func (s *UserService) Update(ctx context.Context, username string, in UserInput) (*models.User, error) {
	in, err := in.normalize(false)
	if err != nil {
		return nil, err
	}
	var hash string
	if in.Password != "" {
		if hash, err = auth.HashPassword(in.Password); err != nil {
			return nil, unexpected(err)
		}
	}

	var updated *models.User
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		user, err := tx.Users.FindByUsername(ctx, username)
		if err != nil {
			return notFound(err, ErrUserNotFound, username)
		}
		newUsername, newEmail := "", ""
		if in.Username != user.Username {
			newUsername = in.Username
		}
		if in.Email != user.Email {
			newEmail = in.Email
		}
		if err := s.checkUnique(ctx, tx, newUsername, newEmail); err != nil {
			return err
		}
		user.Username = in.Username
		user.Email = in.Email
		user.FullName = in.FullName
		if hash != "" {
			user.Password = hash
		}
		updated = user
		return tx.Users.Save(ctx, user)
	})
	if err != nil {
		return nil, unexpected(err)
	}
	return updated, nil
}

// Delete deactivates the user. The row stays so task and project references
// remain valid.
func (s *UserService) Delete(ctx context.Context, username string) error {
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		user, err := tx.Users.FindByUsername(ctx, username)
		if err != nil {
			return notFound(err, ErrUserNotFound, username)
		}
		user.Active = false
		return tx.Users.Save(ctx, user)
	})
	if err != nil {
		return unexpected(err)
	}
	s.log.Info().Str("username", username).Msg("user deactivated")
	return nil
}

// Authenticate checks credentials. Unknown users, wrong passwords and
// deactivated accounts all yield ErrUnauthorized.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.store.Users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, unexpected(err)
	}
	if !user.Active || !auth.CheckPassword(user.Password, password) {
		return nil, ErrUnauthorized
	}
	return user, nil
}
