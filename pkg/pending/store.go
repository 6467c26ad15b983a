package pending

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"

	"github.com/orienthq/orient/internal/expiry"
	"github.com/orienthq/orient/internal/metrics"
)

const (
	// DefaultTTL is how long a proposal stays confirmable.
	DefaultTTL = 5 * time.Minute

	// DefaultSweepInterval paces the background expiry sweep. The
	// sweep is a liveness optimization; Get and List enforce expiry
	// lazily regardless.
	DefaultSweepInterval = 60 * time.Second

	idSuffixLength = 12
)

// Store holds proposed actions and the executor registry.
type Store struct {
	actions       *expiry.Map[string, Action]
	ttl           time.Duration
	sweepInterval time.Duration
	logger        zerolog.Logger
	metrics       *metrics.Metrics
	now           func() time.Time

	executorsMu sync.RWMutex
	executors   map[ActionType]Executor

	stopOnce sync.Once
	stopCh   chan struct{}
	sweepWG  sync.WaitGroup
}

// Config holds pending store configuration.
type Config struct {
	// TTL overrides the 5 minute default proposal lifetime.
	TTL time.Duration

	// SweepInterval overrides the 60s background sweep cadence.
	// Negative disables the sweep entirely.
	SweepInterval time.Duration

	Logger  zerolog.Logger
	Metrics *metrics.Metrics
}

// NewStore creates a pending-action store. Call Start to run the
// background sweep and Stop on shutdown.
func NewStore(cfg Config) *Store {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.SweepInterval == 0 {
		cfg.SweepInterval = DefaultSweepInterval
	}

	return &Store{
		actions:       expiry.NewMap[string, Action](),
		ttl:           cfg.TTL,
		sweepInterval: cfg.SweepInterval,
		logger:        cfg.Logger.With().Str("component", "pending").Logger(),
		metrics:       cfg.Metrics,
		now:           time.Now,
		executors:     make(map[ActionType]Executor),
		stopCh:        make(chan struct{}),
	}
}

// RegisterExecutor binds an executor to an action type. The last
// registration wins.
func (s *Store) RegisterExecutor(actionType ActionType, executor Executor) {
	s.executorsMu.Lock()
	defer s.executorsMu.Unlock()

	s.executors[actionType] = executor
}

func (s *Store) executor(actionType ActionType) (Executor, bool) {
	s.executorsMu.RLock()
	defer s.executorsMu.RUnlock()

	executor, ok := s.executors[actionType]
	return executor, ok
}

// newID builds a collision-resistant action id: a base36 millisecond
// timestamp plus a random nanoid suffix. Good enough for a low-volume
// human-confirmation workflow; not a security boundary.
func (s *Store) newID() (string, error) {
	suffix, err := gonanoid.New(idSuffixLength)
	if err != nil {
		return "", fmt.Errorf("generate action id: %w", err)
	}
	return strconv.FormatInt(s.now().UnixMilli(), 36) + "-" + suffix, nil
}

// Propose records a new pending action and returns the receipt the
// human confirmation flow presents.
func (s *Store) Propose(actionType ActionType, operation Operation, target string, changes map[string]interface{}, opts ProposeOptions) (Receipt, error) {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = s.ttl
	}

	summary := opts.Summary
	if summary == "" {
		summary = defaultSummary(actionType, operation, target)
	}

	now := s.now()
	action := Action{
		Type:           actionType,
		Operation:      operation,
		Target:         target,
		TargetDisplay:  opts.TargetDisplay,
		Changes:        changes,
		PreviousValues: opts.PreviousValues,
		Summary:        summary,
		CreatedAt:      now,
		ExpiresAt:      now.Add(ttl),
	}

	// Retry on the (vanishingly unlikely) id collision.
	for attempt := 0; attempt < 3; attempt++ {
		id, err := s.newID()
		if err != nil {
			return Receipt{}, err
		}
		action.ID = id
		if s.actions.Add(id, action, ttl) {
			s.metrics.RecordActionProposed(string(actionType))
			s.metrics.SetActionsLive(s.actions.Len())
			s.logger.Info().
				Str("actionId", id).
				Str("type", string(actionType)).
				Str("operation", string(operation)).
				Str("target", target).
				Time("expiresAt", action.ExpiresAt).
				Msg("Pending action proposed")

			return Receipt{
				ID:           id,
				Summary:      summary,
				ExpiresAt:    action.ExpiresAt,
				Instructions: instructions(action.ExpiresAt, now),
			}, nil
		}
	}
	return Receipt{}, fmt.Errorf("could not allocate a unique action id")
}

// Get returns a pending action if it is still live. Expired actions
// read as if they were never created.
func (s *Store) Get(id string) (Action, bool) {
	return s.actions.Get(id)
}

// List sweeps expired actions and returns the live ones ordered by
// creation time, then id.
func (s *Store) List() []Action {
	actions := s.actions.Values()
	sort.Slice(actions, func(i, j int) bool {
		if !actions[i].CreatedAt.Equal(actions[j].CreatedAt) {
			return actions[i].CreatedAt.Before(actions[j].CreatedAt)
		}
		return actions[i].ID < actions[j].ID
	})
	s.metrics.SetActionsLive(len(actions))
	return actions
}

// Confirm executes a pending action exactly once. The action is
// removed from the store atomically with the lookup, before the
// executor runs, so a concurrent second confirm observes
// ErrNotFoundOrExpired and a failed execution is never retried
// silently.
func (s *Store) Confirm(ctx context.Context, id string) (Result, error) {
	// Peek first so a missing action is reported ahead of a missing
	// executor, without consuming the proposal on a wiring defect.
	action, ok := s.actions.Get(id)
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrNotFoundOrExpired, id)
	}

	executor, ok := s.executor(action.Type)
	if !ok {
		s.logger.Error().
			Str("actionId", id).
			Str("type", string(action.Type)).
			Msg("No executor registered; startup wiring is broken")
		return Result{}, fmt.Errorf("%w: %s", ErrNoExecutor, action.Type)
	}

	// The atomic claim: whichever caller pops the action executes it.
	action, ok = s.actions.Pop(id)
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrNotFoundOrExpired, id)
	}
	s.metrics.SetActionsLive(s.actions.Len())

	result := executor(ctx, action)
	status := "success"
	if !result.Success {
		status = "failure"
	}
	s.metrics.RecordActionConfirmed(string(action.Type), status)
	s.logger.Info().
		Str("actionId", id).
		Str("type", string(action.Type)).
		Bool("success", result.Success).
		Str("message", result.Message).
		Msg("Pending action confirmed")

	return result, nil
}

// Cancel removes a pending action without executing it.
func (s *Store) Cancel(id string) error {
	action, ok := s.actions.Pop(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFoundOrExpired, id)
	}
	s.metrics.RecordActionCancelled(string(action.Type))
	s.metrics.SetActionsLive(s.actions.Len())

	s.logger.Info().
		Str("actionId", id).
		Str("type", string(action.Type)).
		Msg("Pending action cancelled")
	return nil
}

// Start launches the background sweep that keeps memory from growing
// with abandoned proposals.
func (s *Store) Start() {
	if s.sweepInterval <= 0 {
		return
	}

	s.sweepWG.Add(1)
	go func() {
		defer s.sweepWG.Done()

		ticker := time.NewTicker(s.sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stopCh:
				return
			case <-ticker.C:
				if removed := s.actions.Sweep(); removed > 0 {
					s.metrics.RecordActionsExpired(removed)
					s.metrics.SetActionsLive(s.actions.Len())
					s.logger.Debug().Int("removed", removed).Msg("Swept expired pending actions")
				}
			}
		}
	}()
}

// Stop terminates the background sweep.
func (s *Store) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
	s.sweepWG.Wait()
}
