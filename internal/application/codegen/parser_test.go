package codegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"z-appgen-ai-api/internal/domain/entity"
)

func TestParseGeneratedCode_HTML(t *testing.T) {
	text := "这是生成说明。\n```html\n<!DOCTYPE html>\n<html><body>hi</body></html>\n```\n以上就是页面。"

	code, err := ParseGeneratedCode(entity.CodeGenTypeHTML, text)
	require.NoError(t, err)
	assert.Equal(t, entity.CodeGenTypeHTML, code.GenType)
	assert.Equal(t, "<!DOCTYPE html>\n<html><body>hi</body></html>", code.HTML)
	assert.Empty(t, code.CSS)
	assert.Empty(t, code.JS)
}

func TestParseGeneratedCode_HTMLFallbackWholeText(t *testing.T) {
	text := "  <html><body>没有围栏</body></html>  "

	code, err := ParseGeneratedCode(entity.CodeGenTypeHTML, text)
	require.NoError(t, err)
	assert.Equal(t, "<html><body>没有围栏</body></html>", code.HTML)
}

func TestParseGeneratedCode_HTMLCaseInsensitiveFence(t *testing.T) {
	text := "```HTML\n<p>upper fence</p>\n```"

	code, err := ParseGeneratedCode(entity.CodeGenTypeHTML, text)
	require.NoError(t, err)
	assert.Equal(t, "<p>upper fence</p>", code.HTML)
}

func TestParseGeneratedCode_MultiFile(t *testing.T) {
	text := "```html\n<div>app</div>\n```\n```css\nbody { margin: 0; }\n```\n```js\nconsole.log('ok');\n```"

	code, err := ParseGeneratedCode(entity.CodeGenTypeMultiFile, text)
	require.NoError(t, err)
	assert.Equal(t, "<div>app</div>", code.HTML)
	assert.Equal(t, "body { margin: 0; }", code.CSS)
	assert.Equal(t, "console.log('ok');", code.JS)
}

func TestParseGeneratedCode_MultiFileJavascriptFence(t *testing.T) {
	text := "```html\n<div>app</div>\n```\n```javascript\nalert(1);\n```"

	code, err := ParseGeneratedCode(entity.CodeGenTypeMultiFile, text)
	require.NoError(t, err)
	assert.Equal(t, "alert(1);", code.JS)
}

func TestParseGeneratedCode_MultiFileMissingBlocksLeftEmpty(t *testing.T) {
	text := "```html\n<div>only html</div>\n```"

	code, err := ParseGeneratedCode(entity.CodeGenTypeMultiFile, text)
	require.NoError(t, err)
	assert.Equal(t, "<div>only html</div>", code.HTML)
	assert.Empty(t, code.CSS)
	assert.Empty(t, code.JS)
}

func TestParseGeneratedCode_MultiFileNoFallback(t *testing.T) {
	// multi_file 没有围栏时不回退整段文本，落盘校验会兜底拒绝
	code, err := ParseGeneratedCode(entity.CodeGenTypeMultiFile, "plain text without fences")
	require.NoError(t, err)
	assert.Empty(t, code.HTML)
}

func TestParseGeneratedCode_VueProjectUnsupported(t *testing.T) {
	_, err := ParseGeneratedCode(entity.CodeGenTypeVueProject, "anything")
	assert.Error(t, err)
}
