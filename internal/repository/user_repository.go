package repository

import (
	"context"

	"gorm.io/gorm"

	"smart-task-manager/internal/models"
)

type UserRepository struct {
	db *gorm.DB
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.findBy(ctx, "id = ?", id)
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findBy(ctx, "username = ?", username)
}

func (r *UserRepository) findBy(ctx context.Context, cond string, arg any) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where(cond, arg).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// ExistsByUsername reports whether any user, active or not, holds username.
func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "username = ?", username)
}

// ExistsByEmail reports whether any user, active or not, holds email.
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email = ?", email)
}

func (r *UserRepository) exists(ctx context.Context, cond string, arg any) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where(cond, arg).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	if err := r.db.WithContext(ctx).Order("username asc").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

func (r *UserRepository) Save(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Save(user).Error)
}
