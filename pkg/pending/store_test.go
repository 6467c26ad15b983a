package pending

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(cfg Config) *Store {
	cfg.Logger = zerolog.Nop()
	if cfg.SweepInterval == 0 {
		cfg.SweepInterval = -1 // no background sweep in tests unless asked
	}
	return NewStore(cfg)
}

func countingExecutor(counter *int, mu *sync.Mutex, result Result) Executor {
	return func(ctx context.Context, action Action) Result {
		mu.Lock()
		*counter++
		mu.Unlock()
		return result
	}
}

func TestStore_ProposeAndGet(t *testing.T) {
	store := newTestStore(Config{})

	receipt, err := store.Propose(ActionSecret, OperationCreate, "OPENAI_API_KEY",
		map[string]interface{}{"value": "sk-new"}, ProposeOptions{TargetDisplay: "OpenAI API key"})
	require.NoError(t, err)
	assert.NotEmpty(t, receipt.ID)
	assert.NotEmpty(t, receipt.Instructions)
	assert.Equal(t, `create secret "OPENAI_API_KEY"`, receipt.Summary)
	assert.WithinDuration(t, time.Now().Add(DefaultTTL), receipt.ExpiresAt, time.Second)

	action, ok := store.Get(receipt.ID)
	require.True(t, ok)
	assert.Equal(t, ActionSecret, action.Type)
	assert.Equal(t, OperationCreate, action.Operation)
	assert.Equal(t, "OPENAI_API_KEY", action.Target)
	assert.Equal(t, "OpenAI API key", action.TargetDisplay)
}

func TestStore_CustomSummaryAndTTL(t *testing.T) {
	store := newTestStore(Config{})

	receipt, err := store.Propose(ActionPrompt, OperationUpdate, "assistant", nil, ProposeOptions{
		Summary: "Rewrite the assistant persona",
		TTL:     time.Hour,
	})
	require.NoError(t, err)
	assert.Equal(t, "Rewrite the assistant persona", receipt.Summary)
	assert.WithinDuration(t, time.Now().Add(time.Hour), receipt.ExpiresAt, time.Second)
}

func TestStore_ConfirmExecutesAndRemoves(t *testing.T) {
	store := newTestStore(Config{})

	var mu sync.Mutex
	executions := 0
	store.RegisterExecutor(ActionSecret, countingExecutor(&executions, &mu, Result{
		Success: true,
		Message: "secret stored",
	}))

	receipt, err := store.Propose(ActionSecret, OperationCreate, "KEY", nil, ProposeOptions{})
	require.NoError(t, err)

	result, err := store.Confirm(context.Background(), receipt.ID)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "secret stored", result.Message)
	assert.Equal(t, 1, executions)

	// The action is gone; a second confirm reports not found.
	_, err = store.Confirm(context.Background(), receipt.ID)
	assert.ErrorIs(t, err, ErrNotFoundOrExpired)
	assert.Equal(t, 1, executions)
}

func TestStore_ConfirmExactlyOnce(t *testing.T) {
	store := newTestStore(Config{})

	var mu sync.Mutex
	executions := 0
	store.RegisterExecutor(ActionPermission, countingExecutor(&executions, &mu, Result{Success: true}))

	receipt, err := store.Propose(ActionPermission, OperationUpdate, "chat1", nil, ProposeOptions{})
	require.NoError(t, err)

	var wg sync.WaitGroup
	notFound := 0
	var nfMu sync.Mutex
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Confirm(context.Background(), receipt.ID); errors.Is(err, ErrNotFoundOrExpired) {
				nfMu.Lock()
				notFound++
				nfMu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, executions)
	assert.Equal(t, 15, notFound)
	assert.Empty(t, store.List())
}

func TestStore_ConfirmExecutorFailureStillConsumes(t *testing.T) {
	store := newTestStore(Config{})
	store.RegisterExecutor(ActionAgent, func(ctx context.Context, action Action) Result {
		return Result{Success: false, Message: "agent store unavailable"}
	})

	receipt, err := store.Propose(ActionAgent, OperationCreate, "researcher", nil, ProposeOptions{})
	require.NoError(t, err)

	result, err := store.Confirm(context.Background(), receipt.ID)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "agent store unavailable", result.Message)

	// A failed execution is reported, not silently retried.
	_, err = store.Confirm(context.Background(), receipt.ID)
	assert.ErrorIs(t, err, ErrNotFoundOrExpired)
}

func TestStore_ConfirmWithoutExecutor(t *testing.T) {
	store := newTestStore(Config{})

	receipt, err := store.Propose(ActionSchedule, OperationCreate, "daily-digest", nil, ProposeOptions{})
	require.NoError(t, err)

	_, err = store.Confirm(context.Background(), receipt.ID)
	assert.ErrorIs(t, err, ErrNoExecutor)

	// The wiring defect did not consume the proposal.
	_, ok := store.Get(receipt.ID)
	assert.True(t, ok)
}

func TestStore_RegisterExecutorLastWins(t *testing.T) {
	store := newTestStore(Config{})

	store.RegisterExecutor(ActionPrompt, func(ctx context.Context, action Action) Result {
		return Result{Success: false, Message: "old"}
	})
	store.RegisterExecutor(ActionPrompt, func(ctx context.Context, action Action) Result {
		return Result{Success: true, Message: "new"}
	})

	receipt, err := store.Propose(ActionPrompt, OperationUpdate, "assistant", nil, ProposeOptions{})
	require.NoError(t, err)

	result, err := store.Confirm(context.Background(), receipt.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", result.Message)
}

func TestStore_CancelNeverExecutes(t *testing.T) {
	store := newTestStore(Config{})

	var mu sync.Mutex
	executions := 0
	store.RegisterExecutor(ActionSecret, countingExecutor(&executions, &mu, Result{Success: true}))

	receipt, err := store.Propose(ActionSecret, OperationDelete, "KEY", nil, ProposeOptions{})
	require.NoError(t, err)

	require.NoError(t, store.Cancel(receipt.ID))
	assert.Equal(t, 0, executions)
	assert.Empty(t, store.List())

	// Cancel of an already-gone action fails safely.
	assert.ErrorIs(t, store.Cancel(receipt.ID), ErrNotFoundOrExpired)
}

func TestStore_Expiry(t *testing.T) {
	store := newTestStore(Config{TTL: 50 * time.Millisecond})
	store.RegisterExecutor(ActionSecret, func(ctx context.Context, action Action) Result {
		return Result{Success: true}
	})

	receipt, err := store.Propose(ActionSecret, OperationCreate, "KEY", nil, ProposeOptions{})
	require.NoError(t, err)

	// Live before the deadline.
	_, ok := store.Get(receipt.ID)
	assert.True(t, ok)

	time.Sleep(80 * time.Millisecond)

	// Past the deadline the action reads as never created.
	_, ok = store.Get(receipt.ID)
	assert.False(t, ok)
	_, err = store.Confirm(context.Background(), receipt.ID)
	assert.ErrorIs(t, err, ErrNotFoundOrExpired)
}

func TestStore_ListSweepsExpired(t *testing.T) {
	store := newTestStore(Config{})

	_, err := store.Propose(ActionPrompt, OperationUpdate, "a", nil, ProposeOptions{TTL: 20 * time.Millisecond})
	require.NoError(t, err)
	keep, err := store.Propose(ActionPrompt, OperationUpdate, "b", nil, ProposeOptions{TTL: time.Hour})
	require.NoError(t, err)

	time.Sleep(40 * time.Millisecond)

	actions := store.List()
	require.Len(t, actions, 1)
	assert.Equal(t, keep.ID, actions[0].ID)
}

func TestStore_ListOrdering(t *testing.T) {
	store := newTestStore(Config{})

	var ids []string
	for i := 0; i < 5; i++ {
		receipt, err := store.Propose(ActionAgent, OperationCreate, "agent", nil, ProposeOptions{})
		require.NoError(t, err)
		ids = append(ids, receipt.ID)
		time.Sleep(2 * time.Millisecond)
	}

	actions := store.List()
	require.Len(t, actions, 5)
	for i, action := range actions {
		assert.Equal(t, ids[i], action.ID)
	}
}

func TestStore_BackgroundSweep(t *testing.T) {
	store := newTestStore(Config{TTL: 10 * time.Millisecond, SweepInterval: 20 * time.Millisecond})
	store.Start()
	defer store.Stop()

	_, err := store.Propose(ActionSecret, OperationCreate, "KEY", nil, ProposeOptions{})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return store.actions.Len() == 0
	}, time.Second, 10*time.Millisecond)
}

func TestStore_IDFormat(t *testing.T) {
	store := newTestStore(Config{})

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		receipt, err := store.Propose(ActionPrompt, OperationUpdate, "p", nil, ProposeOptions{})
		require.NoError(t, err)
		assert.False(t, seen[receipt.ID], "duplicate id %s", receipt.ID)
		seen[receipt.ID] = true
		assert.Regexp(t, `^[0-9a-z]+-.{12}$`, receipt.ID)
	}
}
