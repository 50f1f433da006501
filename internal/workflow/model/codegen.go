// Package model 定义工作流在节点间传递的数据结构
package model

import (
	"z-appgen-ai-api/internal/domain/entity"
)

// Context 代码生成工作流的共享状态，节点读取并补充各自的结果
type Context struct {
	// App 当前应用，路由节点可能补写 CodeGenType
	App *entity.App
	// UserID 发起本次生成的用户
	UserID string
	// Prompt 用户的应用描述 / 生成指令
	Prompt string

	// RouteReason 路由节点给出的选型理由
	RouteReason string
	// Images 素材收集结果（仅 vue_project 分支）
	Images []entity.ImageResource
	// GeneratedDir 生成产物目录，生成失败时为空
	GeneratedDir string
	// GenerateError 生成节点的失败描述，成功为空
	GenerateError string
	// Quality 质量检查结果
	Quality *QualityResult
}

// QualityResult 质量检查结论
type QualityResult struct {
	// Checked 是否真正执行了检查（跳过时为 false 且 Passed 为 true）
	Checked     bool     `json:"checked"`
	Passed      bool     `json:"passed"`
	Issues      []string `json:"issues,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}
