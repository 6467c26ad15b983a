package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidCategory(t *testing.T) {
	tests := []struct {
		name     string
		category string
		want     bool
	}{
		{"valid messaging", "messaging", true},
		{"valid memory", "memory", true},
		{"valid scheduling", "scheduling", true},
		{"valid system", "system", true},
		{"valid config", "config", true},
		{"valid media", "media", true},
		{"case insensitive", "MESSAGING", true},
		{"trims whitespace", " system ", true},
		{"invalid category", "browser", false},
		{"empty category", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidCategory(tt.category))
		})
	}
}

func TestRegistry_Register(t *testing.T) {
	t.Run("register and get", func(t *testing.T) {
		registry := NewRegistry()

		err := registry.Register(Descriptor{
			Name:        "orient_send_message",
			Description: "Send a message",
			Category:    CategoryMessaging,
		}, nil)
		require.NoError(t, err)

		desc, ok := registry.Get("orient_send_message")
		require.True(t, ok)
		assert.Equal(t, CategoryMessaging, desc.Category)
	})

	t.Run("empty name fails", func(t *testing.T) {
		registry := NewRegistry()

		err := registry.Register(Descriptor{Description: "no name"}, nil)
		assert.Error(t, err)
	})

	t.Run("invalid category fails", func(t *testing.T) {
		registry := NewRegistry()

		err := registry.Register(Descriptor{Name: "t", Category: "browser"}, nil)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid category")
	})

	t.Run("empty category defaults to system", func(t *testing.T) {
		registry := NewRegistry()

		require.NoError(t, registry.Register(Descriptor{Name: "t"}, nil))

		desc, ok := registry.Get("t")
		require.True(t, ok)
		assert.Equal(t, CategorySystem, desc.Category)
	})

	t.Run("re-registration last write wins", func(t *testing.T) {
		registry := NewRegistry()

		require.NoError(t, registry.Register(Descriptor{Name: "t", Description: "v1", Category: CategorySystem}, nil))
		require.NoError(t, registry.Register(Descriptor{Name: "t", Description: "v2", Category: CategoryConfig}, nil))

		desc, ok := registry.Get("t")
		require.True(t, ok)
		assert.Equal(t, "v2", desc.Description)

		assert.Empty(t, registry.ByCategory(CategorySystem))
		require.Len(t, registry.ByCategory(CategoryConfig), 1)
		assert.Equal(t, 1, registry.Stats().Total)
	})

	t.Run("metadata-only registration has no handler", func(t *testing.T) {
		registry := NewRegistry()

		require.NoError(t, registry.Register(Descriptor{Name: "doc_tool", Category: CategorySystem}, nil))

		_, ok := registry.GetHandler("doc_tool")
		assert.False(t, ok)
	})
}

func TestRegistry_GetHandler(t *testing.T) {
	registry := NewRegistry()

	called := false
	handler := func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
		called = true
		return nil, nil
	}
	require.NoError(t, registry.Register(Descriptor{Name: "t", Category: CategorySystem}, handler))

	got, ok := registry.GetHandler("t")
	require.True(t, ok)
	_, err := got(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, called)
}

func TestRegistry_ByCategoryInsertionOrder(t *testing.T) {
	registry := NewRegistry()

	names := []string{"c_tool", "a_tool", "b_tool"}
	for _, name := range names {
		require.NoError(t, registry.Register(Descriptor{Name: name, Category: CategoryMemory}, nil))
	}

	descs := registry.ByCategory(CategoryMemory)
	require.Len(t, descs, 3)
	for i, desc := range descs {
		assert.Equal(t, names[i], desc.Name)
	}

	// Unknown category yields empty, not an error.
	assert.Empty(t, registry.ByCategory(Category("browser")))
}

func TestRegistry_Stats(t *testing.T) {
	registry := NewRegistry()

	require.NoError(t, registry.Register(Descriptor{Name: "a", Category: CategoryMessaging}, nil))
	require.NoError(t, registry.Register(Descriptor{Name: "b", Category: CategoryMessaging}, nil))
	require.NoError(t, registry.Register(Descriptor{Name: "c", Category: CategorySystem}, nil))

	stats := registry.Stats()
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.PerCategory[CategoryMessaging])
	assert.Equal(t, 1, stats.PerCategory[CategorySystem])
}

func TestRegistry_ValidateInput(t *testing.T) {
	registry := NewRegistry()

	schema := json.RawMessage(`{
		"type": "object",
		"required": ["chat_id"],
		"properties": {"chat_id": {"type": "string"}}
	}`)
	require.NoError(t, registry.Register(Descriptor{
		Name:        "orient_send_message",
		Category:    CategoryMessaging,
		InputSchema: schema,
	}, nil))

	t.Run("valid payload", func(t *testing.T) {
		err := registry.ValidateInput("orient_send_message", map[string]interface{}{"chat_id": "12345"})
		assert.NoError(t, err)
	})

	t.Run("missing required field", func(t *testing.T) {
		err := registry.ValidateInput("orient_send_message", map[string]interface{}{})
		assert.Error(t, err)
	})

	t.Run("tool without schema accepts anything", func(t *testing.T) {
		require.NoError(t, registry.Register(Descriptor{Name: "free", Category: CategorySystem}, nil))
		assert.NoError(t, registry.ValidateInput("free", map[string]interface{}{"anything": true}))
	})

	t.Run("malformed schema rejected at registration", func(t *testing.T) {
		err := registry.Register(Descriptor{
			Name:        "bad",
			Category:    CategorySystem,
			InputSchema: json.RawMessage(`{"type": ["broken"`),
		}, nil)
		assert.Error(t, err)
	})
}

func TestBuiltins(t *testing.T) {
	registry := NewRegistry()
	for _, desc := range Builtins() {
		require.NoError(t, registry.Register(desc, nil))
	}

	stats := registry.Stats()
	assert.Equal(t, len(Builtins()), stats.Total)

	// Every builtin sits in a valid category.
	for _, desc := range Builtins() {
		assert.True(t, IsValidCategory(string(desc.Category)), desc.Name)
	}
}
