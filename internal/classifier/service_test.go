package classifier

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"smart-task-manager/internal/cache"
	"smart-task-manager/internal/models"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) Complete(ctx context.Context, title, description string) (string, error) {
	args := m.Called(ctx, title, description)
	return args.String(0), args.Error(1)
}

func enabledSettings() Settings {
	s := DefaultSettings()
	s.Timeout = time.Second
	return s
}

func TestService_DisabledNeverCallsClient(t *testing.T) {
	client := &mockClient{}
	s := enabledSettings()
	s.Enabled = false

	svc := NewService(context.Background(), s, WithClient(client))
	r := svc.Classify(context.Background(), "Fix login", "")

	assert.True(t, r.IsEmpty())
	assert.False(t, svc.Enabled())
	client.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Success(t *testing.T) {
	client := &mockClient{}
	client.On("Complete", mock.Anything, "Fix login", "desc").
		Return(`Here you go: {"priority":"HIGH","category":"BUG","estimatedDays":2,"summary":"Fix bug"}`, nil).
		Once()

	svc := NewService(context.Background(), enabledSettings(), WithClient(client))
	r := svc.Classify(context.Background(), "Fix login", "desc")

	require.Equal(t, models.PriorityHigh, r.Priority)
	require.Equal(t, "BUG", r.Category)
	require.Equal(t, 2, *r.EstimatedDays)
	require.Equal(t, "Fix bug", r.Summary)
	client.AssertExpectations(t)
}

func TestService_FailuresYieldEmptyResult(t *testing.T) {
	cases := []struct {
		name string
		out  string
		err  error
	}{
		{"backend error", "", errors.New("connection refused")},
		{"unavailable", "", ErrUnavailable},
		{"malformed output", "I think this is important", nil},
		{"wrong types", `{"estimatedDays":"soon"}`, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := &mockClient{}
			client.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return(tc.out, tc.err)

			svc := NewService(context.Background(), enabledSettings(), WithClient(client))
			r := svc.Classify(context.Background(), "t", "d")
			assert.True(t, r.IsEmpty())
			client.AssertNumberOfCalls(t, "Complete", 1)
		})
	}
}

func TestService_BackendBuildFailureIsUnavailable(t *testing.T) {
	s := enabledSettings()
	s.Provider = "carrier-pigeon"

	svc := NewService(context.Background(), s)
	assert.True(t, svc.Classify(context.Background(), "t", "").IsEmpty())
}

func TestService_CacheAvoidsSecondCall(t *testing.T) {
	client := &mockClient{}
	client.On("Complete", mock.Anything, "Fix login", "").
		Return(`{"priority":"LOW","summary":"cached"}`, nil).
		Once()

	svc := NewService(context.Background(), enabledSettings(),
		WithClient(client), WithCache(cache.NewMemory()))

	first := svc.Classify(context.Background(), "Fix login", "")
	second := svc.Classify(context.Background(), "Fix login", "")

	assert.Equal(t, first, second)
	assert.Equal(t, "cached", second.Summary)
	client.AssertNumberOfCalls(t, "Complete", 1)
}

func TestService_EmptyResultsAreNotCached(t *testing.T) {
	client := &mockClient{}
	client.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return(`{}`, nil)

	svc := NewService(context.Background(), enabledSettings(),
		WithClient(client), WithCache(cache.NewMemory()))

	svc.Classify(context.Background(), "t", "")
	svc.Classify(context.Background(), "t", "")
	client.AssertNumberOfCalls(t, "Complete", 2)
}

func TestService_ConcurrencyLimit(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 2)
	client := &mockClient{}
	client.On("Complete", mock.Anything, mock.Anything, "").
		Run(func(mock.Arguments) {
			started <- struct{}{}
			<-release
		}).
		Return(`{"priority":"LOW"}`, nil)

	s := enabledSettings()
	s.MaxConcurrent = 1
	s.Timeout = 50 * time.Millisecond
	svc := NewService(context.Background(), s, WithClient(client))

	var wg sync.WaitGroup
	wg.Add(1)
	var first Result
	go func() {
		defer wg.Done()
		first = svc.Classify(context.Background(), "slow", "")
	}()
	<-started

	// The only slot is taken, so the second call gives up after the timeout.
	second := svc.Classify(context.Background(), "also slow", "")
	assert.True(t, second.IsEmpty())

	close(release)
	wg.Wait()
	assert.Equal(t, models.PriorityLow, first.Priority)
	client.AssertNumberOfCalls(t, "Complete", 1)
}

func TestService_SharesIdenticalCalls(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 2)
	client := &mockClient{}
	client.On("Complete", mock.Anything, "same", "").
		Run(func(mock.Arguments) {
			started <- struct{}{}
			<-release
		}).
		Return(`{"category":"docs"}`, nil)

	svc := NewService(context.Background(), enabledSettings(), WithClient(client), WithCache(cache.NewMemory()))

	var wg sync.WaitGroup
	results := make([]Result, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0] = svc.Classify(context.Background(), "same", "")
	}()
	<-started
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[1] = svc.Classify(context.Background(), "same", "")
	}()
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	// Whether the second call joined the first or hit the cache, the backend
	// is asked once.
	assert.Equal(t, "docs", results[0].Category)
	assert.Equal(t, "docs", results[1].Category)
	client.AssertNumberOfCalls(t, "Complete", 1)
}

func TestService_Reconfigure(t *testing.T) {
	client := &mockClient{}
	client.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return(`{"priority":"URGENT"}`, nil)

	off := enabledSettings()
	off.Enabled = false
	svc := NewService(context.Background(), off, WithClient(client))
	assert.True(t, svc.Classify(context.Background(), "t", "").IsEmpty())

	on := enabledSettings()
	on.Model = "other"
	svc.Reconfigure(context.Background(), on)
	assert.True(t, svc.Enabled())
	assert.Equal(t, "other", svc.Settings().Model)
	assert.Equal(t, models.PriorityUrgent, svc.Classify(context.Background(), "t", "").Priority)
}

func TestService_BalancedExtractor(t *testing.T) {
	client := &mockClient{}
	client.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Return(`{"priority":"HIGH"} {"other":true}`, nil)

	svc := NewService(context.Background(), enabledSettings(),
		WithClient(client), WithExtractor(Balanced{}))
	assert.Equal(t, models.PriorityHigh, svc.Classify(context.Background(), "t", "").Priority)
}

func TestResult_ApplyTo(t *testing.T) {
	days := 3
	r := Result{Priority: models.PriorityMedium, Category: "DOCS", EstimatedDays: &days, Summary: "s"}
	now := time.Date(2026, 3, 10, 17, 45, 0, 0, time.UTC)

	var task models.Task
	r.ApplyTo(&task, now)

	assert.Equal(t, models.PriorityMedium, task.AIPriority)
	assert.Equal(t, "DOCS", task.AICategory)
	assert.Equal(t, "s", task.AISummary)
	require.NotNil(t, task.AISuggestedDueDate)
	assert.Equal(t, time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC), *task.AISuggestedDueDate)

	Result{}.ApplyTo(&task, now)
	assert.Nil(t, task.AISuggestedDueDays)
	assert.Nil(t, task.AISuggestedDueDate)
	assert.Empty(t, task.AIPriority)
}
