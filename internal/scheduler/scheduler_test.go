package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"smart-task-manager/internal/cache"
)

type fakeNotifier struct {
	n     int
	err   error
	calls atomic.Int32
}

func (f *fakeNotifier) NotifyOverdue(context.Context) (int, error) {
	f.calls.Add(1)
	return f.n, f.err
}

func TestScheduleCron_RejectsBadSpec(t *testing.T) {
	s := New(zerolog.Nop(), 0)
	err := s.ScheduleCron("broken", "every now and then", func(context.Context) error { return nil })
	require.Error(t, err)
	require.Contains(t, err.Error(), "broken")
	require.Zero(t, s.Len())

	require.NoError(t, s.ScheduleCron("hourly", "@hourly", func(context.Context) error { return nil }))
	require.NoError(t, s.ScheduleCron("often", "@every 10m", func(context.Context) error { return nil }))
	require.Equal(t, 2, s.Len())
}

func TestScheduler_RunsAndStops(t *testing.T) {
	s := New(zerolog.Nop(), time.Second)
	var runs atomic.Int32
	require.NoError(t, s.ScheduleCron("tick", "@every 1s", func(context.Context) error {
		runs.Add(1)
		return nil
	}))
	s.Start()

	require.Eventually(t, func() bool { return runs.Load() > 0 }, 3*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
}

func TestStop_CancelsRunningJobs(t *testing.T) {
	s := New(zerolog.Nop(), 0)
	started := make(chan struct{})
	require.NoError(t, s.ScheduleCron("slow", "@every 1s", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}))
	s.Start()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
}

func TestRunNow_AppliesTimeout(t *testing.T) {
	s := New(zerolog.Nop(), 20*time.Millisecond)
	var sawDeadline bool
	s.RunNow("deadline", func(ctx context.Context) error {
		_, sawDeadline = ctx.Deadline()
		return errors.New("logged, not returned")
	})
	require.True(t, sawDeadline)
}

func TestOverdueSweep(t *testing.T) {
	n := &fakeNotifier{n: 3}
	require.NoError(t, OverdueSweep(n, zerolog.Nop())(context.Background()))
	require.EqualValues(t, 1, n.calls.Load())

	failing := &fakeNotifier{err: errors.New("db gone")}
	require.EqualError(t, OverdueSweep(failing, zerolog.Nop())(context.Background()), "db gone")
}

type plainCache struct{ cache.Cache }

func TestCachePurge(t *testing.T) {
	m := cache.NewMemory()
	ctx := context.Background()
	require.NoError(t, m.Set(ctx, "gone", []byte("x"), time.Nanosecond))
	require.NoError(t, m.Set(ctx, "kept", []byte("y"), time.Hour))
	time.Sleep(5 * time.Millisecond)

	require.NoError(t, CachePurge(m, zerolog.Nop())(ctx))
	require.Equal(t, 1, m.Len())
	require.Zero(t, m.PurgeExpired())

	// Caches without PurgeExpired are left alone.
	require.NoError(t, CachePurge(plainCache{m}, zerolog.Nop())(ctx))
}
