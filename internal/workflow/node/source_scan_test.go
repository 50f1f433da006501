package node

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"z-appgen-ai-api/internal/domain/entity"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestShouldSkipDir(t *testing.T) {
	assert.True(t, ShouldSkipDir("node_modules"))
	assert.True(t, ShouldSkipDir("dist"))
	assert.True(t, ShouldSkipDir(".git"))
	assert.True(t, ShouldSkipDir(".cache"))
	assert.False(t, ShouldSkipDir("src"))
}

func TestIsSourceFile(t *testing.T) {
	assert.True(t, IsSourceFile("index.html"))
	assert.True(t, IsSourceFile("App.VUE"))
	assert.True(t, IsSourceFile("main.ts"))
	assert.False(t, IsSourceFile(".env.js"))
	assert.False(t, IsSourceFile("logo.png"))
	assert.False(t, IsSourceFile("README.md"))
}

func TestCollectSourceText(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"index.html":                "<html></html>",
		"src/App.vue":               "<template></template>",
		"logo.png":                  "binary",
		"node_modules/pkg/index.js": "ignored",
	})

	text, err := CollectSourceText(root, 0, 0)
	require.NoError(t, err)

	assert.Contains(t, text, "=== index.html ===")
	assert.Contains(t, text, "<html></html>")
	assert.Contains(t, text, "=== src/App.vue ===")
	assert.NotContains(t, text, "ignored")
	assert.NotContains(t, text, "logo.png")
}

func TestCollectSourceText_SkipsOversizedFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"small.js": "ok",
		"big.js":   "0123456789",
	})

	text, err := CollectSourceText(root, 5, 0)
	require.NoError(t, err)
	assert.Contains(t, text, "small.js")
	assert.NotContains(t, text, "big.js")
}

func TestBuildImagesBlock(t *testing.T) {
	assert.Empty(t, BuildImagesBlock(nil))

	// 没有可用 URL 时整段为空
	assert.Empty(t, BuildImagesBlock([]entity.ImageResource{
		{Category: entity.ImageCategoryContent, Description: "x"},
	}))

	block := BuildImagesBlock([]entity.ImageResource{
		{Category: entity.ImageCategoryContent, Description: "首页横幅", URL: "https://img.example/banner.jpg"},
		{Category: entity.ImageCategoryLogo, URL: "https://img.example/logo.png"},
	})
	assert.Contains(t, block, "[content] 首页横幅: https://img.example/banner.jpg")
	assert.Contains(t, block, "[logo] logo: https://img.example/logo.png")
}

func TestIsResponseFormatUnsupportedError(t *testing.T) {
	assert.False(t, IsResponseFormatUnsupportedError(nil))
	assert.True(t, IsResponseFormatUnsupportedError(errString("response_format is not supported")))
	assert.True(t, IsResponseFormatUnsupportedError(errString("Invalid parameter: json_schema")))
	assert.False(t, IsResponseFormatUnsupportedError(errString("rate limit exceeded")))
}

type errString string

func (e errString) Error() string { return string(e) }
