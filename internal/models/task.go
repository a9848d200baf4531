package models

import (
	"fmt"
	"strings"
	"time"
)

// TaskStatus represents the status of a task
type TaskStatus string

const (
	StatusTodo       TaskStatus = "TODO"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusDone       TaskStatus = "DONE"
	StatusBlocked    TaskStatus = "BLOCKED"
	StatusCancelled  TaskStatus = "CANCELLED"
)

// AllStatuses lists every status in display order.
var AllStatuses = []TaskStatus{StatusTodo, StatusInProgress, StatusDone, StatusBlocked, StatusCancelled}

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ParseStatus accepts the canonical names plus the kebab/camel spellings used
// by clients ("in-progress", "inProgress").
func ParseStatus(raw string) (TaskStatus, error) {
	key := strings.ToUpper(strings.TrimSpace(raw))
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)
	if key == "INPROGRESS" {
		key = string(StatusInProgress)
	}
	s := TaskStatus(key)
	if !s.Valid() {
		return "", fmt.Errorf("unknown status %q", raw)
	}
	return s, nil
}

// TaskPriority represents the priority of a task. The zero value means unset.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "LOW"
	PriorityMedium TaskPriority = "MEDIUM"
	PriorityHigh   TaskPriority = "HIGH"
	PriorityUrgent TaskPriority = "URGENT"
)

// AllPriorities lists every priority from least to most severe.
var AllPriorities = []TaskPriority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// Valid reports whether p is one of the known priorities.
func (p TaskPriority) Valid() bool {
	for _, known := range AllPriorities {
		if p == known {
			return true
		}
	}
	return false
}

// ParsePriority is case-insensitive.
func ParsePriority(raw string) (TaskPriority, error) {
	p := TaskPriority(strings.ToUpper(strings.TrimSpace(raw)))
	if !p.Valid() {
		return "", fmt.Errorf("unknown priority %q", raw)
	}
	return p, nil
}

// Task represents a task in the system
type Task struct {
	ID          string       `json:"id" gorm:"primaryKey"`
	ProjectID   string       `json:"projectId" gorm:"column:project_id;not null;index"`
	Title       string       `json:"title" gorm:"size:255;not null"`
	Description string       `json:"description" gorm:"type:text"`
	Status      TaskStatus   `json:"status" gorm:"size:32;not null;index"`
	Position    int          `json:"position" gorm:"not null"`
	AssigneeID  *string      `json:"assigneeId" gorm:"column:assignee_id;index"`
	CreatedByID *string      `json:"createdById" gorm:"column:created_by"`
	DueDate     *time.Time   `json:"dueDate" gorm:"column:due_date"`
	Priority    TaskPriority `json:"priority" gorm:"size:16"`
	Category    string       `json:"category" gorm:"size:32"`

	// Machine-set classification annotations; never taken from user input.
	AIPriority         TaskPriority `json:"aiPriority" gorm:"column:ai_priority;size:16"`
	AICategory         string       `json:"aiCategory" gorm:"column:ai_category;size:32"`
	AISuggestedDueDays *int         `json:"aiSuggestedDueDays" gorm:"column:ai_suggested_due_days"`
	AISuggestedDueDate *time.Time   `json:"aiSuggestedDueDate" gorm:"column:ai_suggested_due_date"`
	AISummary          string       `json:"aiSummary" gorm:"column:ai_summary;type:text"`

	CreatedAt   time.Time  `json:"createdAt" gorm:"<-:create;not null"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	CompletedAt *time.Time `json:"completedAt" gorm:"column:completed_at"`
}

// TableName specifies the table name for Task Model
func (Task) TableName() string {
	return "tasks"
}
