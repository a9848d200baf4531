package scheduler

import (
	"context"

	"github.com/rs/zerolog"

	"smart-task-manager/internal/cache"
)

// OverdueNotifier reports overdue tasks; see service.TaskService.NotifyOverdue.
type OverdueNotifier interface {
	NotifyOverdue(ctx context.Context) (int, error)
}

// OverdueSweep publishes task_overdue events for open tasks past their due date.
func OverdueSweep(tasks OverdueNotifier, log zerolog.Logger) Job {
	return func(ctx context.Context) error {
		n, err := tasks.NotifyOverdue(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			log.Info().Int("tasks", n).Msg("overdue tasks notified")
		}
		return nil
	}
}

// CachePurge drops expired entries from caches that do not expire them on
// their own. Other caches make it a no-op.
func CachePurge(c cache.Cache, log zerolog.Logger) Job {
	return func(context.Context) error {
		p, ok := c.(cache.Purger)
		if !ok {
			return nil
		}
		if n := p.PurgeExpired(); n > 0 {
			log.Debug().Int("entries", n).Msg("expired cache entries purged")
		}
		return nil
	}
}
