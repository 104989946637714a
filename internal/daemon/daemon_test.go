package daemon

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBinary drops an executable cloudflared stub into a temp dir and
// points PATH at it.
func fakeBinary(t *testing.T, script string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stub not runnable on windows")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, Binary)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
	t.Setenv("PATH", dir)
}

func TestEnsureInstalled(t *testing.T) {
	fakeBinary(t, "exit 0")
	assert.NoError(t, EnsureInstalled())
}

func TestEnsureInstalledMissing(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	err := EnsureInstalled()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotInstalled))
}

func TestVersion(t *testing.T) {
	fakeBinary(t, `echo "cloudflared version 2024.8.2 (built 2024-08-15)"`)
	v, err := New().Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cloudflared version 2024.8.2 (built 2024-08-15)", v)
}

func TestVersionMissingBinary(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	_, err := New().Version(context.Background())
	assert.Error(t, err)
}
