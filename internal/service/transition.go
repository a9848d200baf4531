package service

import (
	"fmt"

	"smart-task-manager/internal/models"
)

// TransitionPolicy is consulted before a task's status changes. A nil policy
// allows every transition.
type TransitionPolicy func(from, to models.TaskStatus) error

// TransitionTable builds a policy that allows only the listed moves. Setting
// a task to the status it already has is always allowed.
func TransitionTable(allowed map[models.TaskStatus][]models.TaskStatus) TransitionPolicy {
	return func(from, to models.TaskStatus) error {
		if from == to {
			return nil
		}
		for _, next := range allowed[from] {
			if next == to {
				return nil
			}
		}
		return fmt.Errorf("%w: task cannot move from %s to %s", ErrConflict, from, to)
	}
}
