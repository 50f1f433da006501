// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"time"

	"z-appgen-ai-api/internal/domain/entity"
)

// CreateAppRequest 创建应用请求
type CreateAppRequest struct {
	InitPrompt  string `json:"init_prompt" binding:"required"`
	CodeGenType string `json:"code_gen_type,omitempty"`
}

// UpdateAppNameRequest 更新应用名称请求
type UpdateAppNameRequest struct {
	Name string `json:"name" binding:"required"`
}

// AppResponse 应用响应
type AppResponse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	InitPrompt  string     `json:"init_prompt"`
	CodeGenType string     `json:"code_gen_type"`
	DeployKey   string     `json:"deploy_key,omitempty"`
	DeployedAt  *time.Time `json:"deployed_at,omitempty"`
	Cover       string     `json:"cover,omitempty"`
	OwnerID     string     `json:"owner_id"`
	Priority    int        `json:"priority"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// FromApp 实体转响应
func FromApp(app *entity.App) *AppResponse {
	if app == nil {
		return nil
	}
	return &AppResponse{
		ID:          app.ID,
		Name:        app.Name,
		InitPrompt:  app.InitPrompt,
		CodeGenType: string(app.CodeGenType),
		DeployKey:   app.DeployKey,
		DeployedAt:  app.DeployedAt,
		Cover:       app.Cover,
		OwnerID:     app.OwnerID,
		Priority:    app.Priority,
		CreatedAt:   app.CreatedAt,
		UpdatedAt:   app.UpdatedAt,
	}
}

// FromApps 实体列表转响应列表
func FromApps(apps []*entity.App) []*AppResponse {
	out := make([]*AppResponse, 0, len(apps))
	for _, app := range apps {
		out = append(out, FromApp(app))
	}
	return out
}

// DeployResponse 部署响应
type DeployResponse struct {
	DeployKey string `json:"deploy_key"`
	URL       string `json:"url"`
}

// GenerateResultResponse 首次生成工作流结果
type GenerateResultResponse struct {
	App          *AppResponse           `json:"app"`
	RouteReason  string                 `json:"route_reason,omitempty"`
	GeneratedDir string                 `json:"generated_dir,omitempty"`
	Error        string                 `json:"error,omitempty"`
	Quality      map[string]interface{} `json:"quality,omitempty"`
}
