// Package service implements task lifecycle, project and user operations on
// top of the repository layer. Every mutation runs in one transaction.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"smart-task-manager/internal/classifier"
	"smart-task-manager/internal/models"
	"smart-task-manager/internal/realtime"
	"smart-task-manager/internal/repository"
	"smart-task-manager/internal/validation"
)

// Classifier suggests AI annotations for a task. Implementations never fail;
// an empty result means nothing was suggested.
type Classifier interface {
	Classify(ctx context.Context, title, description string) classifier.Result
}

// CreateTaskInput carries a new task. Zero values mean "not provided".
type CreateTaskInput struct {
	ProjectID   string
	Title       string
	Description string
	Status      models.TaskStatus
	Priority    models.TaskPriority
	Category    string
	DueDate     *time.Time
	Position    *int
	AssigneeID  *string
}

// UpdateTaskInput changes only the non-nil fields.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *models.TaskStatus
	Priority    *models.TaskPriority
	Category    *string
	DueDate     *time.Time
	Position    *int
}

// TaskQuery filters task listings.
type TaskQuery = repository.TaskFilter

// TaskStats counts the tasks assigned to one user.
type TaskStats struct {
	ByStatus map[models.TaskStatus]int64
	Total    int64
}

type TaskService struct {
	store      *repository.Store
	classifier Classifier
	events     realtime.Publisher
	policy     TransitionPolicy
	now        func() time.Time
	async      bool
	log        zerolog.Logger

	pending sync.WaitGroup
}

// TaskOption customizes a TaskService.
type TaskOption func(*TaskService)

func WithClock(now func() time.Time) TaskOption {
	return func(s *TaskService) { s.now = now }
}

func WithEvents(p realtime.Publisher) TaskOption {
	return func(s *TaskService) { s.events = p }
}

func WithTransitionPolicy(p TransitionPolicy) TaskOption {
	return func(s *TaskService) { s.policy = p }
}

// WithAsyncClassification makes Create persist the task first and apply the
// classification as a follow-up update.
func WithAsyncClassification(async bool) TaskOption {
	return func(s *TaskService) { s.async = async }
}

func WithTaskLogger(l zerolog.Logger) TaskOption {
	return func(s *TaskService) { s.log = l }
}

func NewTaskService(store *repository.Store, c Classifier, opts ...TaskOption) *TaskService {
	s := &TaskService{
		store:      store,
		classifier: c,
		events:     realtime.Discard,
		now:        time.Now,
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates and stores a new task. The project and assignee are
// resolved before the classifier is asked, so a bad reference never costs a
// generation call.
func (s *TaskService) Create(ctx context.Context, in CreateTaskInput) (*models.Task, error) {
	if strings.TrimSpace(in.ProjectID) == "" {
		return nil, fmt.Errorf("%w: project id is required", ErrInvalidArgument)
	}
	project, err := s.store.Projects.FindByID(ctx, in.ProjectID)
	if err != nil {
		return nil, notFound(err, ErrProjectNotFound, in.ProjectID)
	}

	now := s.now()
	task, err := s.newTask(in, now)
	if err != nil {
		return nil, err
	}
	task.ProjectID = project.ID
	if in.AssigneeID != nil {
		if _, err := s.store.Users.FindByID(ctx, *in.AssigneeID); err != nil {
			return nil, notFound(err, ErrUserNotFound, *in.AssigneeID)
		}
		task.AssigneeID = in.AssigneeID
	}
	if actor := ActorFrom(ctx); actor != "" {
		task.CreatedByID = &actor
	}

	if !s.async {
		s.classifier.Classify(ctx, task.Title, task.Description).ApplyTo(task, now)
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		// The references may have gone away while the classifier ran.
		if _, err := tx.Projects.FindByID(ctx, task.ProjectID); err != nil {
			return notFound(err, ErrProjectNotFound, task.ProjectID)
		}
		if task.AssigneeID != nil {
			if _, err := tx.Users.FindByID(ctx, *task.AssigneeID); err != nil {
				return notFound(err, ErrUserNotFound, *task.AssigneeID)
			}
		}
		return tx.Tasks.Create(ctx, task)
	})
	if err != nil {
		return nil, unexpected(err)
	}

	s.log.Info().
		Str("task_id", task.ID).
		Str("project_id", task.ProjectID).
		Str("ai_priority", string(task.AIPriority)).
		Msg("task created")
	s.publish(ctx, realtime.TaskCreated, task, project.OwnerID)

	if s.async {
		s.classifyLater(ctx, *task, project.OwnerID)
	}
	return task, nil
}

func (s *TaskService) newTask(in CreateTaskInput, now time.Time) (*models.Task, error) {
	title, err := validation.Title(in.Title)
	if err != nil {
		return nil, err
	}
	due, err := validation.DueDate(in.DueDate, now)
	if err != nil {
		return nil, err
	}
	position, err := validation.Position(in.Position)
	if err != nil {
		return nil, err
	}
	category, err := validation.Category(in.Category)
	if err != nil {
		return nil, err
	}
	if in.Priority != "" && !in.Priority.Valid() {
		return nil, fmt.Errorf("%w: unknown priority %q", ErrInvalidArgument, in.Priority)
	}

	task := &models.Task{
		ID:          uuid.NewString(),
		Title:       title,
		Description: in.Description,
		Priority:    in.Priority,
		Category:    category,
		DueDate:     due,
		Position:    position,
	}
	status := in.Status
	if status == "" {
		status = models.StatusTodo
	}
	if err := s.applyStatus(task, status, now); err != nil {
		return nil, err
	}
	return task, nil
}

// classifyLater runs the classifier outside the request and stores the
// result on the task if it still exists.
func (s *TaskService) classifyLater(ctx context.Context, task models.Task, ownerID string) {
	ctx = context.WithoutCancel(ctx)
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		result := s.classifier.Classify(ctx, task.Title, task.Description)
		if result.IsEmpty() {
			return
		}
		var stored *models.Task
		err := s.store.Transaction(ctx, func(tx *repository.Store) error {
			current, err := tx.Tasks.FindByID(ctx, task.ID)
			if err != nil {
				return err
			}
			result.ApplyTo(current, s.now())
			stored = current
			return tx.Tasks.Save(ctx, current)
		})
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				s.log.Error().Err(err).Str("task_id", task.ID).Msg("store classification")
			}
			return
		}
		s.publish(ctx, realtime.TaskClassified, stored, ownerID)
	}()
}

// Wait blocks until background classifications finish or ctx is done.
func (s *TaskService) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Get returns one task.
func (s *TaskService) Get(ctx context.Context, id string) (*models.Task, error) {
	task, err := s.store.Tasks.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrTaskNotFound, id)
	}
	return task, nil
}

// List returns the tasks matching q and the total before paging.
func (s *TaskService) List(ctx context.Context, q TaskQuery) ([]models.Task, int64, error) {
	if q.Status != "" && !q.Status.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown status %q", ErrInvalidArgument, q.Status)
	}
	tasks, total, err := s.store.Tasks.List(ctx, q)
	if err != nil {
		return nil, 0, unexpected(err)
	}
	return tasks, total, nil
}

func (s *TaskService) ListByProject(ctx context.Context, projectID string) ([]models.Task, error) {
	tasks, _, err := s.List(ctx, TaskQuery{ProjectID: projectID})
	return tasks, err
}

func (s *TaskService) ListByAssignee(ctx context.Context, userID string) ([]models.Task, error) {
	tasks, _, err := s.List(ctx, TaskQuery{AssigneeID: userID})
	return tasks, err
}

func (s *TaskService) ListByStatus(ctx context.Context, status models.TaskStatus) ([]models.Task, error) {
	tasks, _, err := s.List(ctx, TaskQuery{Status: status})
	return tasks, err
}

// Overdue returns open tasks whose due date is before today.
func (s *TaskService) Overdue(ctx context.Context) ([]models.Task, error) {
	tasks, err := s.store.Tasks.Overdue(ctx, validation.DateOf(s.now()))
	if err != nil {
		return nil, unexpected(err)
	}
	return tasks, nil
}

// NotifyOverdue publishes task_overdue for every overdue task to its assignee
// and project owner, and returns how many tasks were reported.
func (s *TaskService) NotifyOverdue(ctx context.Context) (int, error) {
	tasks, err := s.Overdue(ctx)
	if err != nil {
		return 0, err
	}
	owners := make(map[string]string)
	for i := range tasks {
		task := &tasks[i]
		ownerID, ok := owners[task.ProjectID]
		if !ok {
			ownerID = s.projectOwner(ctx, s.store, task.ProjectID)
			owners[task.ProjectID] = ownerID
		}
		s.publish(ctx, realtime.TaskOverdue, task, ownerID)
	}
	return len(tasks), nil
}

// Stats counts the tasks assigned to userID per status.
func (s *TaskService) Stats(ctx context.Context, userID string) (TaskStats, error) {
	counts, err := s.store.Tasks.CountByStatus(ctx, userID)
	if err != nil {
		return TaskStats{}, unexpected(err)
	}
	stats := TaskStats{ByStatus: counts}
	for _, n := range counts {
		stats.Total += n
	}
	return stats, nil
}

// Update applies the non-nil fields of in. Each changed field is validated
// again; a status change follows the same rules as UpdateStatus.
func (s *TaskService) Update(ctx context.Context, id string, in UpdateTaskInput) (*models.Task, error) {
	return s.mutate(ctx, id, realtime.TaskUpdated, func(_ *repository.Store, task *models.Task, now time.Time) error {
		if in.Title != nil {
			title, err := validation.Title(*in.Title)
			if err != nil {
				return err
			}
			task.Title = title
		}
		if in.Description != nil {
			task.Description = *in.Description
		}
		if in.DueDate != nil {
			due, err := validation.DueDate(in.DueDate, now)
			if err != nil {
				return err
			}
			task.DueDate = due
		}
		if in.Position != nil {
			position, err := validation.Position(in.Position)
			if err != nil {
				return err
			}
			task.Position = position
		}
		if in.Category != nil {
			category, err := validation.Category(*in.Category)
			if err != nil {
				return err
			}
			task.Category = category
		}
		if in.Priority != nil {
			if !in.Priority.Valid() {
				return fmt.Errorf("%w: unknown priority %q", ErrInvalidArgument, *in.Priority)
			}
			task.Priority = *in.Priority
		}
		if in.Status != nil {
			return s.applyStatus(task, *in.Status, now)
		}
		return nil
	})
}

// UpdateStatus moves the task to status. Entering Done stamps CompletedAt;
// leaving Done keeps the previous stamp.
func (s *TaskService) UpdateStatus(ctx context.Context, id string, status models.TaskStatus) (*models.Task, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidArgument, status)
	}
	return s.mutate(ctx, id, realtime.TaskStatusChanged, func(_ *repository.Store, task *models.Task, now time.Time) error {
		return s.applyStatus(task, status, now)
	})
}

// Assign sets the assignee, or clears it when userID is nil.
func (s *TaskService) Assign(ctx context.Context, id string, userID *string) (*models.Task, error) {
	return s.mutate(ctx, id, realtime.TaskAssigned, func(tx *repository.Store, task *models.Task, _ time.Time) error {
		if userID == nil {
			task.AssigneeID = nil
			return nil
		}
		user, err := tx.Users.FindByID(ctx, *userID)
		if err != nil {
			return notFound(err, ErrUserNotFound, *userID)
		}
		task.AssigneeID = &user.ID
		return nil
	})
}

// UpdatePriority sets the user-chosen priority. AI suggestions are untouched.
func (s *TaskService) UpdatePriority(ctx context.Context, id string, priority models.TaskPriority) (*models.Task, error) {
	if !priority.Valid() {
		return nil, fmt.Errorf("%w: unknown priority %q", ErrInvalidArgument, priority)
	}
	return s.mutate(ctx, id, realtime.TaskPriorityChanged, func(_ *repository.Store, task *models.Task, _ time.Time) error {
		task.Priority = priority
		return nil
	})
}

// Delete removes the task permanently.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	var (
		deleted *models.Task
		ownerID string
	)
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		task, err := tx.Tasks.FindByID(ctx, id)
		if err != nil {
			return notFound(err, ErrTaskNotFound, id)
		}
		ownerID = s.projectOwner(ctx, tx, task.ProjectID)
		deleted = task
		return tx.Tasks.Delete(ctx, id)
	})
	if err != nil {
		return unexpected(err)
	}
	s.log.Info().Str("task_id", id).Msg("task deleted")
	s.publish(ctx, realtime.TaskDeleted, deleted, ownerID)
	return nil
}

// mutate loads the task, lets change modify it and saves it, all in one
// transaction. Nothing is written when change fails.
func (s *TaskService) mutate(ctx context.Context, id string, evt realtime.EventType, change func(tx *repository.Store, task *models.Task, now time.Time) error) (*models.Task, error) {
	var (
		updated *models.Task
		ownerID string
	)
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		task, err := tx.Tasks.FindByID(ctx, id)
		if err != nil {
			return notFound(err, ErrTaskNotFound, id)
		}
		if err := change(tx, task, s.now()); err != nil {
			return err
		}
		if err := tx.Tasks.Save(ctx, task); err != nil {
			return err
		}
		ownerID = s.projectOwner(ctx, tx, task.ProjectID)
		updated = task
		return nil
	})
	if err != nil {
		return nil, unexpected(err)
	}
	s.log.Debug().Str("task_id", id).Str("event", string(evt)).Msg("task changed")
	s.publish(ctx, evt, updated, ownerID)
	return updated, nil
}

func (s *TaskService) applyStatus(task *models.Task, to models.TaskStatus, now time.Time) error {
	if !to.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidArgument, to)
	}
	if s.policy != nil && task.Status != "" {
		if err := s.policy(task.Status, to); err != nil {
			return err
		}
	}
	task.Status = to
	if to == models.StatusDone {
		completed := now
		task.CompletedAt = &completed
	}
	return nil
}

func (s *TaskService) projectOwner(ctx context.Context, tx *repository.Store, projectID string) string {
	project, err := tx.Projects.FindByID(ctx, projectID)
	if err != nil {
		return ""
	}
	return project.OwnerID
}

func (s *TaskService) publish(ctx context.Context, typ realtime.EventType, task *models.Task, ownerID string) {
	actor := ActorFrom(ctx)
	recipients := []string{actor, ownerID}
	if task.AssigneeID != nil {
		recipients = append(recipients, *task.AssigneeID)
	}
	s.events.Publish(realtime.Event{
		Type:      typ,
		TaskID:    task.ID,
		ProjectID: task.ProjectID,
		UserID:    actor,
		Version:   1,
	}, recipients...)
}
