package scheduler

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopFactory(id string) func() {
	return func() {}
}

func TestScheduler_Apply(t *testing.T) {
	s := New(noopFactory, zerolog.Nop())

	require.NoError(t, s.Apply("daily", "0 8 * * *"))
	assert.Equal(t, 1, s.Len())

	// Re-applying replaces instead of duplicating.
	require.NoError(t, s.Apply("daily", "0 9 * * *"))
	assert.Equal(t, 1, s.Len())
}

func TestScheduler_ApplyInvalidSpec(t *testing.T) {
	s := New(noopFactory, zerolog.Nop())

	err := s.Apply("bad", "not a cron")
	assert.Error(t, err)
	assert.Equal(t, 0, s.Len())
}

func TestScheduler_ApplyNilJob(t *testing.T) {
	s := New(func(id string) func() { return nil }, zerolog.Nop())

	err := s.Apply("orphan", "@daily")
	assert.Error(t, err)
}

func TestScheduler_Remove(t *testing.T) {
	s := New(noopFactory, zerolog.Nop())

	require.NoError(t, s.Apply("daily", "@daily"))
	s.Remove("daily")
	assert.Equal(t, 0, s.Len())

	// Unknown ids are a no-op.
	s.Remove("never-existed")
}
