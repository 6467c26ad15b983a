package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogService(t *testing.T) {
	svc, err := catalogService()
	require.NoError(t, err)

	infos := svc.ListCategories()
	require.NotEmpty(t, infos)

	total := 0
	for _, info := range infos {
		total += info.ToolCount
	}
	assert.Greater(t, total, 0, "builtin catalog must not be empty")

	resp := svc.Search("send a message on slack", 0)
	assert.NotEmpty(t, resp.Results)
}
