package prompt

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_SystemPromptsEmbedded(t *testing.T) {
	r := NewRegistry()

	for _, id := range []PromptID{
		PromptCodegenHTMLV1,
		PromptCodegenMultiFileV1,
		PromptCodegenVueProjectV1,
		PromptRouteV1,
		PromptQualityCheckV1,
		PromptImagePlanV1,
	} {
		s, err := r.System(id)
		require.NoError(t, err, string(id))
		assert.NotEmpty(t, s, string(id))
	}
}

func TestRegistry_SystemUnknownID(t *testing.T) {
	r := NewRegistry()
	_, err := r.System(PromptID("nonexistent_v1"))
	assert.Error(t, err)
}

func TestRegistry_ChatTemplateFormats(t *testing.T) {
	r := NewRegistry()

	tpl, err := r.ChatTemplate(PromptRouteV1)
	require.NoError(t, err)

	msgs, err := tpl.Format(context.Background(), map[string]any{"prompt": "做一个番茄钟"})
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, schema.System, msgs[0].Role)
	assert.Equal(t, schema.User, msgs[1].Role)
	assert.Contains(t, msgs[1].Content, "做一个番茄钟")
}

func TestRegistry_ChatTemplateCached(t *testing.T) {
	r := NewRegistry()

	first, err := r.ChatTemplate(PromptImagePlanV1)
	require.NoError(t, err)
	second, err := r.ChatTemplate(PromptImagePlanV1)
	require.NoError(t, err)
	assert.Same(t, first, second)
}
