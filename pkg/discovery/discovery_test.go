package discovery

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orienthq/orient/pkg/tools"
)

func newTestRegistry(t *testing.T, descs ...tools.Descriptor) *tools.Registry {
	t.Helper()
	registry := tools.NewRegistry()
	for _, desc := range descs {
		require.NoError(t, registry.Register(desc, nil))
	}
	return registry
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"lowercases and splits", "Send Slack Message", []string{"send", "slack", "message"}},
		{"splits on punctuation", "slack, image!", []string{"slack", "image"}},
		{"drops single-char tokens", "a slack b image", []string{"slack", "image"}},
		{"empty input", "", nil},
		{"underscores split", "orient_slack_send", []string{"orient", "slack", "send"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tokenize(tt.input)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_Search(t *testing.T) {
	slackImage := tools.Descriptor{
		Name:        "orient_slack_send_image",
		Description: "Upload and send an image to a Slack channel",
		Category:    tools.CategoryMessaging,
		Keywords:    []string{"slack", "image"},
		UseCases:    []string{"send an image to slack"},
	}
	healthCheck := tools.Descriptor{
		Name:        "system_health_check",
		Description: "Report process uptime",
		Category:    tools.CategorySystem,
	}

	t.Run("only matching tools returned", func(t *testing.T) {
		svc := NewService(newTestRegistry(t, slackImage, healthCheck))

		resp := svc.Search("slack image", 10)
		require.Len(t, resp.Results, 1)
		assert.Equal(t, "orient_slack_send_image", resp.Results[0].Tool.Name)
		assert.Equal(t, 1, resp.Total)
		assert.Positive(t, resp.Results[0].Score)
	})

	t.Run("score composition", func(t *testing.T) {
		svc := NewService(newTestRegistry(t, slackImage))

		resp := svc.Search("slack image", 10)
		require.Len(t, resp.Results, 1)

		// name token 50 + keywords 2x30 + use case round(40*2/5)=16
		// + description 2x15 + category keyword 10
		assert.Equal(t, 166, resp.Results[0].Score)
		assert.Contains(t, resp.Results[0].MatchedOn, "name_token")
		assert.Contains(t, resp.Results[0].MatchedOn, "keyword")
		assert.Contains(t, resp.Results[0].MatchedOn, "use_case")
		assert.Contains(t, resp.Results[0].MatchedOn, "description")
		assert.Contains(t, resp.Results[0].MatchedOn, "category")
	})

	t.Run("whole-query name match scores highest", func(t *testing.T) {
		svc := NewService(newTestRegistry(t, slackImage, healthCheck))

		resp := svc.Search("system_health_check", 10)
		require.NotEmpty(t, resp.Results)
		assert.Equal(t, "system_health_check", resp.Results[0].Tool.Name)
		assert.GreaterOrEqual(t, resp.Results[0].Score, 100)
		assert.Contains(t, resp.Results[0].MatchedOn, "name")
	})

	t.Run("deterministic ordering with name tiebreak", func(t *testing.T) {
		// Identical metadata, only the names differ: scores tie and
		// ordering must fall back to ascending name.
		a := tools.Descriptor{Name: "b_echo", Description: "echo text", Category: tools.CategorySystem}
		b := tools.Descriptor{Name: "a_echo", Description: "echo text", Category: tools.CategorySystem}
		svc := NewService(newTestRegistry(t, a, b))

		for i := 0; i < 10; i++ {
			resp := svc.Search("echo", 10)
			require.Len(t, resp.Results, 2)
			assert.Equal(t, "a_echo", resp.Results[0].Tool.Name)
			assert.Equal(t, "b_echo", resp.Results[1].Tool.Name)
		}
	})

	t.Run("adding a matching keyword never decreases score", func(t *testing.T) {
		base := tools.Descriptor{
			Name:        "notify_tool",
			Description: "send notifications",
			Category:    tools.CategorySystem,
			Keywords:    []string{"notify"},
		}
		boosted := base
		boosted.Keywords = append([]string{"alert"}, base.Keywords...)

		baseScore, _ := scoreTool(base, "alert notify")
		boostedScore, _ := scoreTool(boosted, "alert notify")
		assert.GreaterOrEqual(t, boostedScore, baseScore)
	})

	t.Run("limit with total count", func(t *testing.T) {
		var descs []tools.Descriptor
		for i := 0; i < 15; i++ {
			descs = append(descs, tools.Descriptor{
				Name:        fmt.Sprintf("echo_tool_%02d", i),
				Description: "echo text back",
				Category:    tools.CategorySystem,
			})
		}
		svc := NewService(newTestRegistry(t, descs...))

		resp := svc.Search("echo", 5)
		assert.Len(t, resp.Results, 5)
		assert.Equal(t, 15, resp.Total)

		// Zero limit falls back to the default.
		resp = svc.Search("echo", 0)
		assert.Len(t, resp.Results, DefaultLimit)
	})

	t.Run("empty query matches nothing", func(t *testing.T) {
		svc := NewService(newTestRegistry(t, slackImage))

		resp := svc.Search("   ", 10)
		assert.Empty(t, resp.Results)
		assert.Equal(t, 0, resp.Total)
	})
}

func TestService_Browse(t *testing.T) {
	slackImage := tools.Descriptor{
		Name:     "orient_slack_send_image",
		Category: tools.CategoryMessaging,
	}
	svc := NewService(newTestRegistry(t, slackImage))

	t.Run("valid category", func(t *testing.T) {
		descs, err := svc.Browse("messaging")
		require.NoError(t, err)
		require.Len(t, descs, 1)
		assert.Equal(t, "orient_slack_send_image", descs[0].Name)
	})

	t.Run("empty but valid category is not an error", func(t *testing.T) {
		descs, err := svc.Browse("media")
		require.NoError(t, err)
		assert.Empty(t, descs)
	})

	t.Run("unknown category fails with valid list", func(t *testing.T) {
		_, err := svc.Browse("browser")
		require.ErrorIs(t, err, ErrInvalidCategory)
		assert.Contains(t, err.Error(), "messaging")
	})
}

func TestService_ListCategories(t *testing.T) {
	registry := newTestRegistry(t,
		tools.Descriptor{Name: "a", Category: tools.CategoryMessaging},
		tools.Descriptor{Name: "b", Category: tools.CategoryMessaging},
		tools.Descriptor{Name: "c", Category: tools.CategorySystem},
	)
	svc := NewService(registry)

	infos := svc.ListCategories()
	require.Len(t, infos, len(tools.AllCategories()))

	// Tool counts always equal the live category listings.
	for _, info := range infos {
		assert.Equal(t, len(registry.ByCategory(info.Name)), info.ToolCount, info.Name)
		assert.NotEmpty(t, info.Description)
	}
}
