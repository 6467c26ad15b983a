package expiry

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap_SetGet(t *testing.T) {
	m := NewMap[string, int]()

	m.Set("a", 1, time.Minute)

	got, ok := m.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, got)

	_, ok = m.Get("missing")
	assert.False(t, ok)
}

func TestMap_ExpiredEntryIsAbsent(t *testing.T) {
	m := NewMap[string, int]()
	current := time.Now()
	m.now = func() time.Time { return current }

	m.Set("a", 1, 5*time.Minute)

	// Just before the deadline the entry is still live.
	current = current.Add(5*time.Minute - time.Second)
	_, ok := m.Get("a")
	assert.True(t, ok)

	// Past the deadline it reads as absent and is evicted.
	current = current.Add(2 * time.Second)
	_, ok = m.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, m.Len())
}

func TestMap_Add(t *testing.T) {
	m := NewMap[string, int]()
	current := time.Now()
	m.now = func() time.Time { return current }

	assert.True(t, m.Add("a", 1, time.Minute))
	assert.False(t, m.Add("a", 2, time.Minute))

	got, ok := m.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, got)

	// An expired entry does not block Add.
	current = current.Add(2 * time.Minute)
	assert.True(t, m.Add("a", 3, time.Minute))
}

func TestMap_PopExactlyOnce(t *testing.T) {
	m := NewMap[string, int]()
	m.Set("a", 1, time.Minute)

	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := m.Pop("a"); ok {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, 0, m.Len())
}

func TestMap_PopExpired(t *testing.T) {
	m := NewMap[string, int]()
	current := time.Now()
	m.now = func() time.Time { return current }

	m.Set("a", 1, time.Minute)
	current = current.Add(2 * time.Minute)

	_, ok := m.Pop("a")
	assert.False(t, ok)
	assert.Equal(t, 0, m.Len())
}

func TestMap_SweepAndValues(t *testing.T) {
	m := NewMap[string, int]()
	current := time.Now()
	m.now = func() time.Time { return current }

	m.Set("live", 1, time.Hour)
	m.Set("dead", 2, time.Minute)
	current = current.Add(2 * time.Minute)

	values := m.Values()
	require.Len(t, values, 1)
	assert.Equal(t, 1, values[0])

	m.Set("dead2", 3, time.Millisecond)
	current = current.Add(time.Second)
	assert.Equal(t, 1, m.Sweep())
	assert.Equal(t, 1, m.Len())
}

func TestMap_DeleteAndClear(t *testing.T) {
	m := NewMap[string, int]()
	m.Set("a", 1, time.Minute)
	m.Set("b", 2, time.Minute)

	m.Delete("a")
	_, ok := m.Get("a")
	assert.False(t, ok)

	m.Clear()
	assert.Equal(t, 0, m.Len())
}
