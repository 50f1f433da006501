// Package entity 定义领域实体
package entity

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// appNameMaxLen 应用名称默认取初始提示词的前若干个字符
const appNameMaxLen = 12

// App 应用实体，一个 App 对应一个生成会话
type App struct {
	ID          string      `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string      `json:"name" gorm:"type:varchar(255);not null"`
	InitPrompt  string      `json:"init_prompt" gorm:"type:text"`
	CodeGenType CodeGenType `json:"code_gen_type" gorm:"type:varchar(50);not null;index"`
	DeployKey   string      `json:"deploy_key,omitempty" gorm:"type:varchar(64);uniqueIndex"`
	DeployedAt  *time.Time  `json:"deployed_at,omitempty"`
	Cover       string      `json:"cover,omitempty" gorm:"type:varchar(512)"`
	OwnerID     string      `json:"owner_id" gorm:"type:uuid;index;not null"`
	Priority    int         `json:"priority" gorm:"default:0"`
	CreatedAt   time.Time   `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time   `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (App) TableName() string {
	return "apps"
}

// NewApp 创建新应用，名称默认取提示词前缀
func NewApp(id, ownerID, initPrompt string, genType CodeGenType) *App {
	now := time.Now()
	return &App{
		ID:          id,
		Name:        truncateName(initPrompt),
		InitPrompt:  initPrompt,
		CodeGenType: genType,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// GenDirName 生成产物目录名：{gen_type}_{app_id}
func (a *App) GenDirName() string {
	return fmt.Sprintf("%s_%s", a.CodeGenType, a.ID)
}

// IsDeployed 是否已部署过
func (a *App) IsDeployed() bool {
	return a.DeployKey != ""
}

// truncateName 按 rune 截断名称，避免截断多字节字符
func truncateName(s string) string {
	if utf8.RuneCountInString(s) <= appNameMaxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:appNameMaxLen])
}
