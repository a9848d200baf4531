package classifier

import (
	"time"

	"smart-task-manager/internal/models"
)

// Result is the advisory classification of a task. The zero value means
// "nothing suggested" and is what callers receive whenever classification
// is disabled or fails.
type Result struct {
	Priority      models.TaskPriority `json:"priority,omitempty"`
	Category      string              `json:"category,omitempty"`
	EstimatedDays *int                `json:"estimatedDays,omitempty"`
	Summary       string              `json:"summary,omitempty"`
}

// IsEmpty reports whether no field was suggested.
func (r Result) IsEmpty() bool {
	return r.Priority == "" && r.Category == "" && r.EstimatedDays == nil && r.Summary == ""
}

// ApplyTo copies the suggestion into the task's AI fields. The suggested due
// date is counted from the calendar day of now.
func (r Result) ApplyTo(task *models.Task, now time.Time) {
	task.AIPriority = r.Priority
	task.AICategory = r.Category
	task.AISummary = r.Summary
	task.AISuggestedDueDays = nil
	task.AISuggestedDueDate = nil
	if r.EstimatedDays != nil {
		days := *r.EstimatedDays
		y, m, d := now.Date()
		due := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, days)
		task.AISuggestedDueDays = &days
		task.AISuggestedDueDate = &due
	}
}
