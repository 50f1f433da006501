package prompt

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed templates/*.txt
var templatesFS embed.FS

type PromptID string

const (
	PromptCodegenHTMLV1       PromptID = "codegen_html_v1"
	PromptCodegenMultiFileV1  PromptID = "codegen_multi_file_v1"
	PromptCodegenVueProjectV1 PromptID = "codegen_vue_project_v1"
	PromptRouteV1             PromptID = "route_v1"
	PromptQualityCheckV1      PromptID = "quality_check_v1"
	PromptImagePlanV1         PromptID = "image_plan_v1"
)

type Registry struct {
	mu        sync.RWMutex
	templates map[PromptID]einoprompt.ChatTemplate
	systems   map[PromptID]string
}

func NewRegistry() *Registry {
	return &Registry{
		templates: make(map[PromptID]einoprompt.ChatTemplate),
		systems:   make(map[PromptID]string),
	}
}

// System 返回提示词的 system 文本，生成器自行拼接会话历史时使用
func (r *Registry) System(id PromptID) (string, error) {
	if r == nil {
		return "", fmt.Errorf("prompt registry is nil")
	}

	r.mu.RLock()
	if s, ok := r.systems[id]; ok {
		r.mu.RUnlock()
		return s, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.systems[id]; ok {
		return s, nil
	}

	s, err := readEmbeddedText(fmt.Sprintf("templates/%s.system.txt", id))
	if err != nil {
		return "", err
	}
	r.systems[id] = s
	return s, nil
}

// ChatTemplate 返回 system+user 组合模板，工作流节点使用
func (r *Registry) ChatTemplate(id PromptID) (einoprompt.ChatTemplate, error) {
	if r == nil {
		return nil, fmt.Errorf("prompt registry is nil")
	}

	r.mu.RLock()
	if tpl, ok := r.templates[id]; ok {
		r.mu.RUnlock()
		return tpl, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if tpl, ok := r.templates[id]; ok {
		return tpl, nil
	}

	system, err := readEmbeddedText(fmt.Sprintf("templates/%s.system.txt", id))
	if err != nil {
		return nil, err
	}
	user, err := readEmbeddedText(fmt.Sprintf("templates/%s.user.txt", id))
	if err != nil {
		return nil, err
	}

	tpl := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage(system),
		schema.UserMessage(user),
	)
	r.templates[id] = tpl
	return tpl, nil
}

func readEmbeddedText(path string) (string, error) {
	b, err := templatesFS.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
