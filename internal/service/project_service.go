package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"smart-task-manager/internal/models"
	"smart-task-manager/internal/repository"
	"smart-task-manager/internal/validation"
)

// CreateProjectInput names the owner by username. An empty OwnerUsername
// makes the caller the owner.
type CreateProjectInput struct {
	Name          string
	OwnerUsername string
}

type ProjectService struct {
	store *repository.Store
	log   zerolog.Logger
}

func NewProjectService(store *repository.Store, log zerolog.Logger) *ProjectService {
	return &ProjectService{store: store, log: log}
}

func (s *ProjectService) Create(ctx context.Context, in CreateProjectInput) (*models.Project, error) {
	name, err := validation.Required("project name", in.Name)
	if err != nil {
		return nil, err
	}

	var project *models.Project
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		owner, err := s.resolveOwner(ctx, tx, in.OwnerUsername)
		if err != nil {
			return err
		}
		project = &models.Project{ID: uuid.NewString(), Name: name, OwnerID: owner.ID}
		return tx.Projects.Create(ctx, project)
	})
	if err != nil {
		return nil, unexpected(err)
	}
	s.log.Info().Str("project_id", project.ID).Str("owner_id", project.OwnerID).Msg("project created")
	return project, nil
}

func (s *ProjectService) resolveOwner(ctx context.Context, tx *repository.Store, username string) (*models.User, error) {
	if username != "" {
		owner, err := tx.Users.FindByUsername(ctx, username)
		if err != nil {
			return nil, notFound(err, ErrUserNotFound, username)
		}
		return owner, nil
	}
	actor := ActorFrom(ctx)
	if actor == "" {
		return nil, fmt.Errorf("%w: project owner is required", ErrInvalidArgument)
	}
	owner, err := tx.Users.FindByID(ctx, actor)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound, actor)
	}
	return owner, nil
}

func (s *ProjectService) Get(ctx context.Context, id string) (*models.Project, error) {
	project, err := s.store.Projects.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrProjectNotFound, id)
	}
	return project, nil
}

// List returns every project, or those owned by ownerID when it is set.
func (s *ProjectService) List(ctx context.Context, ownerID string) ([]models.Project, error) {
	projects, err := s.store.Projects.List(ctx, ownerID)
	if err != nil {
		return nil, unexpected(err)
	}
	return projects, nil
}

// Members returns the owner and the assignees of the project's tasks.
func (s *ProjectService) Members(ctx context.Context, projectID string) ([]models.User, error) {
	if _, err := s.Get(ctx, projectID); err != nil {
		return nil, err
	}
	users, err := s.store.Projects.Members(ctx, projectID)
	if err != nil {
		return nil, unexpected(err)
	}
	return users, nil
}
