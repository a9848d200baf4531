package repository

import (
	"context"

	"gorm.io/gorm"

	"smart-task-manager/internal/models"
)

type ProjectRepository struct {
	db *gorm.DB
}

func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&project).Error; err != nil {
		return nil, translate(err)
	}
	return &project, nil
}

// List returns all projects, or only those of ownerID when it is non-empty.
func (r *ProjectRepository) List(ctx context.Context, ownerID string) ([]models.Project, error) {
	query := r.db.WithContext(ctx).Order("created_at asc")
	if ownerID != "" {
		query = query.Where("owner_id = ?", ownerID)
	}
	projects := []models.Project{}
	if err := query.Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *ProjectRepository) Create(ctx context.Context, project *models.Project) error {
	return translate(r.db.WithContext(ctx).Create(project).Error)
}

// Members returns the owner of the project and every user assigned to one of
// its tasks, ordered by username.
func (r *ProjectRepository) Members(ctx context.Context, projectID string) ([]models.User, error) {
	assignees := r.db.Model(&models.Task{}).
		Select("assignee_id").
		Where("project_id = ? AND assignee_id IS NOT NULL", projectID)
	owner := r.db.Model(&models.Project{}).
		Select("owner_id").
		Where("id = ?", projectID)

	users := []models.User{}
	err := r.db.WithContext(ctx).
		Where("id IN (?) OR id IN (?)", assignees, owner).
		Order("username asc").
		Find(&users).Error
	return users, err
}
