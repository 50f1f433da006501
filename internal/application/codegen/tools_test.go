package codegen

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileToolset_ResolveRejectsEscapes(t *testing.T) {
	toolset := NewFileToolset(t.TempDir())

	for _, path := range []string{
		"",
		"   ",
		"/etc/passwd",
		"..",
		"../outside.txt",
		"src/../../outside.txt",
	} {
		_, err := toolset.resolve(path)
		assert.Error(t, err, "path %q should be rejected", path)
	}
}

func TestFileToolset_ResolveAcceptsInside(t *testing.T) {
	base := t.TempDir()
	toolset := NewFileToolset(base)

	resolved, err := toolset.resolve("src/App.vue")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "src", "App.vue"), resolved)

	// 内部回退再前进仍然落在目录内
	resolved, err = toolset.resolve("src/../index.html")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "index.html"), resolved)
}

func TestFileToolset_WriteReadModifyDelete(t *testing.T) {
	base := t.TempDir()
	toolset := NewFileToolset(base)
	ctx := context.Background()

	_, err := toolset.writeFile(ctx, &writeFileParams{Path: "src/main.js", Content: "const a = 1;"})
	require.NoError(t, err)

	content, err := toolset.readFile(ctx, &readFileParams{Path: "src/main.js"})
	require.NoError(t, err)
	assert.Equal(t, "const a = 1;", content)

	_, err = toolset.modifyFile(ctx, &modifyFileParams{
		Path:       "src/main.js",
		OldContent: "const a = 1;",
		NewContent: "const a = 2;",
	})
	require.NoError(t, err)

	content, err = toolset.readFile(ctx, &readFileParams{Path: "src/main.js"})
	require.NoError(t, err)
	assert.Equal(t, "const a = 2;", content)

	_, err = toolset.deleteFile(ctx, &deleteFileParams{Path: "src/main.js"})
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(base, "src", "main.js"))
	assert.True(t, os.IsNotExist(err))
}

func TestFileToolset_ModifyRequiresOldContent(t *testing.T) {
	toolset := NewFileToolset(t.TempDir())
	ctx := context.Background()

	_, err := toolset.writeFile(ctx, &writeFileParams{Path: "a.txt", Content: "hello"})
	require.NoError(t, err)

	_, err = toolset.modifyFile(ctx, &modifyFileParams{
		Path:       "a.txt",
		OldContent: "missing",
		NewContent: "x",
	})
	assert.Error(t, err)
}

func TestFileToolset_ReadDirSkipsNodeModulesAndDotDirs(t *testing.T) {
	base := t.TempDir()
	toolset := NewFileToolset(base)
	ctx := context.Background()

	for _, p := range []string{
		"index.html",
		"src/App.vue",
		"node_modules/pkg/index.js",
		".git/config",
	} {
		_, err := toolset.writeFile(ctx, &writeFileParams{Path: p, Content: "x"})
		require.NoError(t, err)
	}

	listing, err := toolset.readDir(ctx, &readDirParams{})
	require.NoError(t, err)
	assert.Equal(t, "index.html\nsrc/App.vue", listing)
}

func TestFileToolset_ReadDirEmpty(t *testing.T) {
	toolset := NewFileToolset(t.TempDir())

	listing, err := toolset.readDir(context.Background(), &readDirParams{})
	require.NoError(t, err)
	assert.Equal(t, "目录为空", listing)
}

func TestFileToolset_ToolsExposeAllOperations(t *testing.T) {
	toolset := NewFileToolset(t.TempDir())

	tools, err := toolset.Tools()
	require.NoError(t, err)
	require.Len(t, tools, 5)

	names := make(map[string]bool, len(tools))
	for _, entry := range tools {
		info, err := entry.Info(context.Background())
		require.NoError(t, err)
		names[info.Name] = true
	}
	for _, want := range []string{ToolWriteFile, ToolReadFile, ToolReadDir, ToolModifyFile, ToolDeleteFile} {
		assert.True(t, names[want], want)
	}
}
