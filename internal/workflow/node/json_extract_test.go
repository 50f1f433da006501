package node

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "bare object",
			input: `{"a":1}`,
			want:  `{"a":1}`,
		},
		{
			name:  "object wrapped in prose",
			input: "好的，结果如下：\n{\"code_gen_type\":\"html\"}\n以上。",
			want:  `{"code_gen_type":"html"}`,
		},
		{
			name:  "object in markdown fence",
			input: "```json\n{\"a\":1}\n```",
			want:  `{"a":1}`,
		},
		{
			name:  "array wrapped in prose",
			input: "结果：[1,2,3]。",
			want:  `[1,2,3]`,
		},
		{
			name:  "object before array",
			input: `{"items":[1,2]} trailing`,
			want:  `{"items":[1,2]}`,
		},
		{
			name:  "empty input",
			input: "   ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSONObject(tt.input))
		})
	}
}

func TestExtractJSONObject_ResultIsDecodable(t *testing.T) {
	raw := ExtractJSONObject("说明文字 {\"diagrams\":[{\"mermaid\":\"graph TD\"}]} 结尾")

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	assert.Contains(t, out, "diagrams")
}

func TestTruncateByRunes(t *testing.T) {
	assert.Equal(t, "", TruncateByRunes("abc", 0))
	assert.Equal(t, "abc", TruncateByRunes("abc", 10))
	assert.Equal(t, "ab", TruncateByRunes("abc", 2))
	// 多字节字符按 rune 截断，不产生半个字符
	assert.Equal(t, "你好", TruncateByRunes("你好世界", 2))
}
