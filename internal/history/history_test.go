package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opentunnel/opentunnel/internal/model"
)

func TestTouchAndLastUsed(t *testing.T) {
	t.Setenv("OPENTUNNEL_CONFIG_DIR", t.TempDir())

	require.NoError(t, Touch("8c1f7a2e"))
	got, err := LastUsed()
	require.NoError(t, err)
	assert.Positive(t, got["8c1f7a2e"])
}

func TestSortTunnelsRecent(t *testing.T) {
	tunnels := []model.Tunnel{
		{ID: "t-db", Name: "db"},
		{ID: "t-api", Name: "api"},
		{ID: "t-cache", Name: "cache"},
	}
	now := time.Now().Unix()
	sorted := SortTunnelsRecent(tunnels, map[string]int64{
		"t-api": now,
		"t-db":  now - 60,
	})
	require.Len(t, sorted, 3)
	assert.Equal(t, "api", sorted[0].Name)
	assert.Equal(t, "db", sorted[1].Name)
	assert.Equal(t, "cache", sorted[2].Name, "untouched tunnels sort last by name")

	assert.Equal(t, "t-db", tunnels[0].ID, "input order must not change")
}

func TestLastUsedCorruptFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("OPENTUNNEL_CONFIG_DIR", dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "history.json"), []byte("{not json"), 0o600))

	got, err := LastUsed()
	require.NoError(t, err, "a corrupt history file is treated as empty")
	assert.Empty(t, got)

	require.NoError(t, Touch("a"))
	got, err = LastUsed()
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
