package codegen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"z-appgen-ai-api/internal/domain/entity"
)

func TestSaver_SaveHTML(t *testing.T) {
	root := t.TempDir()
	saver := NewSaver(root)
	app := entity.NewApp("app-1", "user-1", "一个落地页", entity.CodeGenTypeHTML)

	dir, err := saver.Save(app, &ParsedCode{
		GenType: entity.CodeGenTypeHTML,
		HTML:    "<html><body>hi</body></html>",
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "html_app-1"), dir)

	b, err := os.ReadFile(filepath.Join(dir, "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "<html><body>hi</body></html>", string(b))
}

func TestSaver_SaveMultiFile(t *testing.T) {
	root := t.TempDir()
	saver := NewSaver(root)
	app := entity.NewApp("app-2", "user-1", "多文件页面", entity.CodeGenTypeMultiFile)

	dir, err := saver.Save(app, &ParsedCode{
		GenType: entity.CodeGenTypeMultiFile,
		HTML:    "<div>app</div>",
		CSS:     "body{}",
		JS:      "alert(1);",
	})
	require.NoError(t, err)

	for name, want := range map[string]string{
		"index.html": "<div>app</div>",
		"style.css":  "body{}",
		"script.js":  "alert(1);",
	} {
		b, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Equal(t, want, string(b), name)
	}
}

func TestSaver_SaveRejectsEmptyHTML(t *testing.T) {
	root := t.TempDir()
	saver := NewSaver(root)
	app := entity.NewApp("app-3", "user-1", "空页面", entity.CodeGenTypeHTML)

	_, err := saver.Save(app, &ParsedCode{GenType: entity.CodeGenTypeHTML})
	require.Error(t, err)

	// 校验失败不应产生任何写入
	_, statErr := os.Stat(filepath.Join(root, app.GenDirName()))
	assert.True(t, os.IsNotExist(statErr))
}

func TestSaver_SaveRejectsVueProject(t *testing.T) {
	saver := NewSaver(t.TempDir())
	app := entity.NewApp("app-4", "user-1", "工程项目", entity.CodeGenTypeVueProject)

	_, err := saver.Save(app, &ParsedCode{GenType: entity.CodeGenTypeVueProject, HTML: "x"})
	assert.Error(t, err)
}

func TestSaver_EnsureProjectDir(t *testing.T) {
	root := t.TempDir()
	saver := NewSaver(root)
	app := entity.NewApp("app-5", "user-1", "工程项目", entity.CodeGenTypeVueProject)

	dir, err := saver.EnsureProjectDir(app)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "vue_project_app-5"), dir)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
