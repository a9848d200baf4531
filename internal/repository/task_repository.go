package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"smart-task-manager/internal/models"
)

// TaskFilter narrows List. Zero-valued fields do not filter.
type TaskFilter struct {
	ProjectID  string
	AssigneeID string
	Status     models.TaskStatus
	Title      string // case-insensitive substring

	Limit       int // 0 means no limit
	Offset      int
	OldestFirst bool
}

type TaskRepository struct {
	db *gorm.DB
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error; err != nil {
		return nil, translate(err)
	}
	return &task, nil
}

// List returns the page selected by f together with the total number of
// matching rows.
func (r *TaskRepository) List(ctx context.Context, f TaskFilter) ([]models.Task, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Task{})
	if f.ProjectID != "" {
		query = query.Where("project_id = ?", f.ProjectID)
	}
	if f.AssigneeID != "" {
		query = query.Where("assignee_id = ?", f.AssigneeID)
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if title := strings.TrimSpace(f.Title); title != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(title)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "position asc, created_at desc"
	if f.OldestFirst {
		order = "position asc, created_at asc"
	}
	page := query.Session(&gorm.Session{}).Order(order).Offset(f.Offset)
	if f.Limit > 0 {
		page = page.Limit(f.Limit)
	}

	tasks := []models.Task{}
	if err := page.Find(&tasks).Error; err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

// Overdue returns tasks due strictly before day that are neither done nor
// cancelled.
func (r *TaskRepository) Overdue(ctx context.Context, day time.Time) ([]models.Task, error) {
	tasks := []models.Task{}
	err := r.db.WithContext(ctx).
		Where("due_date IS NOT NULL AND due_date < ?", day).
		Where("status NOT IN ?", []string{string(models.StatusDone), string(models.StatusCancelled)}).
		Order("due_date asc").
		Find(&tasks).Error
	return tasks, err
}

// CountByStatus counts the tasks assigned to assigneeID, grouped by status.
func (r *TaskRepository) CountByStatus(ctx context.Context, assigneeID string) (map[models.TaskStatus]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&models.Task{}).
		Select("status, COUNT(*) as count").
		Where("assignee_id = ?", assigneeID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[models.TaskStatus]int64, len(models.AllStatuses))
	for _, s := range models.AllStatuses {
		counts[s] = 0
	}
	for _, rw := range rows {
		counts[models.TaskStatus(rw.Status)] = rw.Count
	}
	return counts, nil
}

func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	return translate(r.db.WithContext(ctx).Create(task).Error)
}

// Save writes every column of task except CreatedAt.
func (r *TaskRepository) Save(ctx context.Context, task *models.Task) error {
	return translate(r.db.WithContext(ctx).Save(task).Error)
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Task{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
