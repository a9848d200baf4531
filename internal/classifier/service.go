// Package classifier suggests priority, category, effort and a summary for new
// tasks by asking a text-generation model. Service is the only entry point
// the rest of the application uses; it never returns an error.
package classifier

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"smart-task-manager/internal/cache"
)

// Service makes classification best-effort: disabled configuration, backend
// failures and unparsable output all yield an empty Result.
type Service struct {
	log       zerolog.Logger
	cache     cache.Cache
	extractor Extractor
	newClient func(context.Context, Settings) (Client, error)

	mu    sync.Mutex // serializes Reconfigure
	state atomic.Pointer[state]

	// Identical texts classified at the same time share one backend call.
	inflight singleflight.Group
}

type state struct {
	settings Settings
	client   Client
	sem      *semaphore.Weighted
}

// Option customizes a Service.
type Option func(*Service)

// WithClient uses c regardless of the configured provider.
func WithClient(c Client) Option {
	return func(s *Service) {
		s.newClient = func(context.Context, Settings) (Client, error) { return c, nil }
	}
}

// WithExtractor replaces the default FirstLastBrace extractor.
func WithExtractor(e Extractor) Option {
	return func(s *Service) { s.extractor = e }
}

// WithCache stores successful results for Settings.CacheTTL.
func WithCache(c cache.Cache) Option {
	return func(s *Service) { s.cache = c }
}

// WithLogger sets the logger used for absorbed failures.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// NewService builds the orchestrator. A backend that cannot be constructed
// is logged and treated as unavailable.
func NewService(ctx context.Context, settings Settings, opts ...Option) *Service {
	s := &Service{
		log:       zerolog.Nop(),
		extractor: FirstLastBrace{},
		newClient: NewClient,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Reconfigure(ctx, settings)
	return s
}

// Reconfigure swaps in new settings. Calls already in flight finish with the
// settings they started with.
func (s *Service) Reconfigure(ctx context.Context, settings Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := &state{settings: settings}
	if settings.MaxConcurrent > 0 {
		next.sem = semaphore.NewWeighted(int64(settings.MaxConcurrent))
	}
	if settings.Enabled {
		client, err := s.newClient(ctx, settings)
		if err != nil {
			s.log.Error().Err(err).Str("provider", settings.Provider).Msg("classification backend unavailable")
		}
		next.client = client
	}
	s.state.Store(next)

	s.log.Info().
		Bool("enabled", settings.Enabled).
		Str("provider", settings.Provider).
		Str("model", settings.Model).
		Dur("timeout", settings.Timeout).
		Msg("classification configured")
}

// Settings returns the active settings.
func (s *Service) Settings() Settings {
	return s.state.Load().settings
}

// Enabled reports whether classification is switched on.
func (s *Service) Enabled() bool {
	return s.state.Load().settings.Enabled
}

// Classify returns the suggestion for a task, or an empty Result when
// classification is disabled or anything goes wrong.
func (s *Service) Classify(ctx context.Context, title, description string) Result {
	st := s.state.Load()
	if !st.settings.Enabled {
		return Result{}
	}
	result, err := s.classify(ctx, st, title, description)
	if err != nil {
		s.log.Warn().Err(err).Str("title", title).Msg("classification skipped")
		return Result{}
	}
	return result
}

func (s *Service) classify(ctx context.Context, st *state, title, description string) (Result, error) {
	if st.client == nil {
		return Result{}, fmt.Errorf("%w: no backend configured", ErrUnavailable)
	}

	key := cacheKey(st.settings, title, description)
	if cached, ok := s.cached(ctx, key); ok {
		return cached, nil
	}

	v, err, _ := s.inflight.Do(key, func() (any, error) {
		return s.generate(ctx, st, key, title, description)
	})
	if err != nil {
		return Result{}, err
	}
	return v.(Result), nil
}

func (s *Service) generate(ctx context.Context, st *state, key, title, description string) (Result, error) {
	if st.sem != nil {
		acquireCtx, cancel := context.WithTimeout(ctx, st.settings.timeout())
		err := st.sem.Acquire(acquireCtx, 1)
		cancel()
		if err != nil {
			return Result{}, fmt.Errorf("%w: too many classifications in flight: %v", ErrUnavailable, err)
		}
		defer st.sem.Release(1)
	}

	raw, err := st.client.Complete(ctx, title, description)
	if err != nil {
		return Result{}, err
	}
	result, err := s.extractor.Extract(raw)
	if err != nil {
		return Result{}, err
	}

	s.store(ctx, key, result, st.settings)
	return result, nil
}

func (s *Service) cached(ctx context.Context, key string) (Result, bool) {
	if s.cache == nil {
		return Result{}, false
	}
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.Debug().Err(err).Msg("classification cache read failed")
		return Result{}, false
	}
	if !ok {
		return Result{}, false
	}
	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return Result{}, false
	}
	return r, true
}

func (s *Service) store(ctx context.Context, key string, r Result, settings Settings) {
	if s.cache == nil || r.IsEmpty() {
		return
	}
	data, err := json.Marshal(r)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, settings.CacheTTL); err != nil {
		s.log.Debug().Err(err).Msg("classification cache write failed")
	}
}

func cacheKey(settings Settings, title, description string) string {
	h := sha256.New()
	for _, part := range []string{settings.Provider, settings.Model, title, description} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return "classify:" + hex.EncodeToString(h.Sum(nil))
}
