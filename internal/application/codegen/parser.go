package codegen

import (
	"regexp"
	"strings"

	"z-appgen-ai-api/internal/domain/entity"
	"z-appgen-ai-api/pkg/errors"
)

// ParsedCode 从模型输出中提取出的代码段
type ParsedCode struct {
	GenType entity.CodeGenType
	HTML    string
	CSS     string
	JS      string
}

var (
	htmlBlockRe = regexp.MustCompile("(?is)```html\\s*\\n(.*?)```")
	cssBlockRe  = regexp.MustCompile("(?is)```css\\s*\\n(.*?)```")
	jsBlockRe   = regexp.MustCompile("(?is)```(?:js|javascript)\\s*\\n(.*?)```")
)

// ParseGeneratedCode 按生成类型从模型完整输出中提取代码。
// html 类型在没有代码块时回退为整段文本；multi_file 类型逐块提取，
// 缺失的段留空由落盘校验兜底。vue_project 不经过解析（产物即文件系统）。
func ParseGeneratedCode(genType entity.CodeGenType, text string) (*ParsedCode, error) {
	switch genType {
	case entity.CodeGenTypeHTML:
		return parseHTML(text), nil
	case entity.CodeGenTypeMultiFile:
		return parseMultiFile(text), nil
	default:
		return nil, errors.New(errors.CodeValidationFailed, "该生成类型不支持代码解析").
			WithDetail(string(genType))
	}
}

func parseHTML(text string) *ParsedCode {
	code := &ParsedCode{GenType: entity.CodeGenTypeHTML}
	if m := htmlBlockRe.FindStringSubmatch(text); m != nil {
		code.HTML = strings.TrimSpace(m[1])
		return code
	}
	// 模型偶尔不加代码块围栏，整段输出当作 HTML
	code.HTML = strings.TrimSpace(text)
	return code
}

func parseMultiFile(text string) *ParsedCode {
	code := &ParsedCode{GenType: entity.CodeGenTypeMultiFile}
	if m := htmlBlockRe.FindStringSubmatch(text); m != nil {
		code.HTML = strings.TrimSpace(m[1])
	}
	if m := cssBlockRe.FindStringSubmatch(text); m != nil {
		code.CSS = strings.TrimSpace(m[1])
	}
	if m := jsBlockRe.FindStringSubmatch(text); m != nil {
		code.JS = strings.TrimSpace(m[1])
	}
	return code
}
