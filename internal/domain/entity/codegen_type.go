// Package entity 定义领域实体
package entity

import (
	"fmt"
	"strings"
)

// CodeGenType 代码生成类型
type CodeGenType string

const (
	// CodeGenTypeHTML 单文件 HTML 页面
	CodeGenTypeHTML CodeGenType = "html"
	// CodeGenTypeMultiFile 多文件页面（HTML + CSS + JS）
	CodeGenTypeMultiFile CodeGenType = "multi_file"
	// CodeGenTypeVueProject 工程项目，由模型通过文件工具增量构建
	CodeGenTypeVueProject CodeGenType = "vue_project"
)

// ParseCodeGenType 解析生成类型，未知值返回错误
func ParseCodeGenType(s string) (CodeGenType, error) {
	switch CodeGenType(strings.TrimSpace(strings.ToLower(s))) {
	case CodeGenTypeHTML:
		return CodeGenTypeHTML, nil
	case CodeGenTypeMultiFile:
		return CodeGenTypeMultiFile, nil
	case CodeGenTypeVueProject:
		return CodeGenTypeVueProject, nil
	default:
		return "", fmt.Errorf("unknown code gen type: %q", s)
	}
}

// Valid 检查生成类型是否合法
func (t CodeGenType) Valid() bool {
	switch t {
	case CodeGenTypeHTML, CodeGenTypeMultiFile, CodeGenTypeVueProject:
		return true
	default:
		return false
	}
}

// UsesTools 是否通过工具调用流式构建产物
func (t CodeGenType) UsesTools() bool {
	return t == CodeGenTypeVueProject
}

// Description 生成类型描述
func (t CodeGenType) Description() string {
	switch t {
	case CodeGenTypeHTML:
		return "单文件 HTML 页面"
	case CodeGenTypeMultiFile:
		return "多文件页面（HTML+CSS+JS）"
	case CodeGenTypeVueProject:
		return "Vue 工程项目"
	default:
		return string(t)
	}
}
