package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomDeployKey(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		key, err := randomDeployKey()
		require.NoError(t, err)
		assert.Len(t, key, deployKeyLen)
		for _, r := range key {
			assert.True(t, strings.ContainsRune(deployKeyAlphabet, r), "unexpected rune %q", r)
		}
		seen[key] = true
	}
	// 50 次生成全部相同的概率可以忽略
	assert.Greater(t, len(seen), 1)
}

func TestCopyDir(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "deploy")

	require.NoError(t, os.MkdirAll(filepath.Join(src, "assets"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "index.html"), []byte("<html></html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "assets", "app.js"), []byte("alert(1);"), 0o644))

	require.NoError(t, copyDir(src, dst))

	b, err := os.ReadFile(filepath.Join(dst, "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", string(b))

	b, err = os.ReadFile(filepath.Join(dst, "assets", "app.js"))
	require.NoError(t, err)
	assert.Equal(t, "alert(1);", string(b))
}

func TestCopyDir_OverwritesExisting(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(src, "index.html"), []byte("new"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dst, "index.html"), []byte("old"), 0o644))

	require.NoError(t, copyDir(src, dst))

	b, err := os.ReadFile(filepath.Join(dst, "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "new", string(b))
}
