package github

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubGH puts a fake gh script first (and alone) on PATH.
func stubGH(t *testing.T, script string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("test uses a shell script gh stub")
	}
	tmp := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmp, "gh"), []byte("#!/bin/sh\n"+script+"\n"), 0o755))
	t.Setenv("PATH", tmp)
}

func TestResolveAuthToken(t *testing.T) {
	t.Run("explicit token wins", func(t *testing.T) {
		t.Setenv("GITHUB_TOKEN", "env-token")
		t.Setenv("PATH", t.TempDir())

		tok, src, err := ResolveAuthToken(context.Background(), " explicit ")
		require.NoError(t, err)
		assert.Equal(t, "explicit", tok)
		assert.Equal(t, AuthTokenSourceExplicit, src)
	})

	t.Run("env token used", func(t *testing.T) {
		t.Setenv("GITHUB_TOKEN", "env-token")
		t.Setenv("PATH", t.TempDir())

		tok, src, err := ResolveAuthToken(context.Background(), "")
		require.NoError(t, err)
		assert.Equal(t, "env-token", tok)
		assert.Equal(t, AuthTokenSourceEnv, src)
	})

	t.Run("gh token used when env empty", func(t *testing.T) {
		t.Setenv("GITHUB_TOKEN", "")
		stubGH(t, "echo gh-token")

		tok, src, err := ResolveAuthToken(context.Background(), "")
		require.NoError(t, err)
		assert.Equal(t, "gh-token", tok)
		assert.Equal(t, AuthTokenSourceGitHubCL, src)
	})

	t.Run("gh failure means no token", func(t *testing.T) {
		t.Setenv("GITHUB_TOKEN", "")
		stubGH(t, "echo 'not logged in' >&2; exit 1")

		tok, src, err := ResolveAuthToken(context.Background(), "")
		require.NoError(t, err)
		assert.Empty(t, tok)
		assert.Equal(t, AuthTokenSourceNone, src)
	})

	t.Run("empty when neither env nor gh", func(t *testing.T) {
		t.Setenv("GITHUB_TOKEN", "")
		t.Setenv("PATH", t.TempDir())

		tok, src, err := ResolveAuthToken(context.Background(), "")
		require.NoError(t, err)
		assert.Empty(t, tok)
		assert.Equal(t, AuthTokenSourceNone, src)
	})

	t.Run("gh invalid token output returns error", func(t *testing.T) {
		t.Setenv("GITHUB_TOKEN", "")
		stubGH(t, `printf 'line1\nline2\n'`)

		_, _, err := ResolveAuthToken(context.Background(), "")
		assert.Error(t, err)
	})

	t.Run("context canceled propagates error when using gh", func(t *testing.T) {
		t.Setenv("GITHUB_TOKEN", "")
		stubGH(t, "echo gh-token")

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, _, err := ResolveAuthToken(ctx, "")
		assert.ErrorIs(t, err, context.Canceled)
	})
}
