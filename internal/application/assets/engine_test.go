package assets

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"z-appgen-ai-api/internal/config"
	"z-appgen-ai-api/internal/domain/entity"
	workflowprompt "z-appgen-ai-api/internal/workflow/prompt"
)

// fakePlanModel 规划调用返回固定文本或错误
type fakePlanModel struct {
	content string
	err     error
}

func (m *fakePlanModel) Generate(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	if m.err != nil {
		return nil, m.err
	}
	return schema.AssistantMessage(m.content, nil), nil
}

func (m *fakePlanModel) Stream(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(context.Background(), nil)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

type fakePlanFactory struct {
	chatModel model.BaseChatModel
	err       error
}

func (f *fakePlanFactory) Get(_ context.Context, _ string) (model.BaseChatModel, error) {
	return f.chatModel, f.err
}
func (f *fakePlanFactory) Default(ctx context.Context) (model.BaseChatModel, error) {
	return f.Get(ctx, "")
}
func (f *fakePlanFactory) Routing(ctx context.Context) (model.BaseChatModel, error) {
	return f.Get(ctx, "")
}
func (f *fakePlanFactory) ToolCall(ctx context.Context) (model.BaseChatModel, error) {
	return f.Get(ctx, "")
}

// fakeSearcher 指定查询词失败，其余返回单张图片
type fakeSearcher struct {
	failQuery string
}

func (s *fakeSearcher) SearchPhotos(_ context.Context, query string) ([]entity.ImageResource, error) {
	return s.search(query, entity.ImageCategoryContent)
}

func (s *fakeSearcher) SearchIllustrations(_ context.Context, query string) ([]entity.ImageResource, error) {
	return s.search(query, entity.ImageCategoryIllustration)
}

func (s *fakeSearcher) search(query string, category entity.ImageCategory) ([]entity.ImageResource, error) {
	if query == s.failQuery {
		return nil, errors.New("search backend unavailable")
	}
	return []entity.ImageResource{{
		Category:    category,
		Description: query,
		URL:         fmt.Sprintf("https://img.example.com/%s/%s", category, query),
	}}, nil
}

type fakeDiagramRenderer struct {
	err error
}

func (r *fakeDiagramRenderer) Render(_ context.Context, _, description string) (*entity.ImageResource, error) {
	if r.err != nil {
		return nil, r.err
	}
	return &entity.ImageResource{
		Category:    entity.ImageCategoryDiagram,
		Description: description,
		URL:         "https://diagram.example.com/rendered.svg",
	}, nil
}

type fakeLogoGenerator struct {
	err error
}

func (g *fakeLogoGenerator) GenerateLogo(_ context.Context, description string) (*entity.ImageResource, error) {
	if g.err != nil {
		return nil, g.err
	}
	return &entity.ImageResource{
		Category:    entity.ImageCategoryLogo,
		Description: description,
		URL:         "https://logo.example.com/logo.png",
	}, nil
}

func newTestEngine(factory *fakePlanFactory) *Engine {
	return NewEngine(factory, workflowprompt.NewRegistry(), &fakeSearcher{}, &fakeDiagramRenderer{}, &fakeLogoGenerator{}, &config.Config{
		Assets: config.AssetsConfig{Concurrency: 4},
	})
}

func TestEngine_CollectImagesPlanFailureReturnsEmpty(t *testing.T) {
	engine := newTestEngine(&fakePlanFactory{chatModel: &fakePlanModel{err: errors.New("provider down")}})

	images := engine.CollectImages(context.Background(), "做一个博客")
	assert.NotNil(t, images)
	assert.Empty(t, images)
}

func TestEngine_CollectImagesEmptyPlan(t *testing.T) {
	engine := newTestEngine(&fakePlanFactory{chatModel: &fakePlanModel{
		content: `{"content_images":[],"illustrations":[],"diagrams":[],"logos":[]}`,
	}})

	images := engine.CollectImages(context.Background(), "做一个博客")
	assert.Empty(t, images)
}

func TestEngine_CollectImagesUnparseablePlanReturnsEmpty(t *testing.T) {
	engine := newTestEngine(&fakePlanFactory{chatModel: &fakePlanModel{content: "这不是 JSON"}})

	images := engine.CollectImages(context.Background(), "做一个博客")
	assert.Empty(t, images)
}

func TestEngine_CollectImagesKeepsPartialResults(t *testing.T) {
	factory := &fakePlanFactory{chatModel: &fakePlanModel{content: `{
		"content_images":[{"query":"海滩"},{"query":"故障词"}],
		"illustrations":[{"query":"猫咪"}],
		"diagrams":[{"mermaid":"graph TD","description":"系统架构"}],
		"logos":[{"description":"蓝色圆形标志"}]
	}`}}
	engine := NewEngine(factory, workflowprompt.NewRegistry(),
		&fakeSearcher{failQuery: "故障词"},
		&fakeDiagramRenderer{},
		&fakeLogoGenerator{err: errors.New("image api quota exceeded")},
		&config.Config{Assets: config.AssetsConfig{Concurrency: 4}})

	images := engine.CollectImages(context.Background(), "做一个旅游网站")

	// 五个子任务中两个失败，其余三个结果完整保留
	require.Len(t, images, 3)
	byCategory := map[entity.ImageCategory]int{}
	for _, img := range images {
		byCategory[img.Category]++
		assert.NotEmpty(t, img.URL)
	}
	assert.Equal(t, 1, byCategory[entity.ImageCategoryContent])
	assert.Equal(t, 1, byCategory[entity.ImageCategoryIllustration])
	assert.Equal(t, 1, byCategory[entity.ImageCategoryDiagram])
	assert.Equal(t, 0, byCategory[entity.ImageCategoryLogo])
}

func TestImageCollectionPlan_TaskCount(t *testing.T) {
	var nilPlan *ImageCollectionPlan
	assert.Equal(t, 0, nilPlan.TaskCount())

	plan := &ImageCollectionPlan{
		ContentImages: []ImageQuery{{Query: "a"}, {Query: "b"}},
		Illustrations: []ImageQuery{{Query: "c"}},
		Diagrams:      []DiagramSpec{{Mermaid: "graph TD"}},
		Logos:         []LogoSpec{{Description: "logo"}},
	}
	require.Equal(t, 5, plan.TaskCount())
}
