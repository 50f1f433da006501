package codegen

import (
	"os"
	"path/filepath"

	"z-appgen-ai-api/internal/domain/entity"
	"z-appgen-ai-api/pkg/errors"
)

// saverStrategy 单个生成类型的落盘策略：先整体校验，再写文件
type saverStrategy struct {
	validate func(code *ParsedCode) error
	write    func(dir string, code *ParsedCode) error
}

var saverStrategies = map[entity.CodeGenType]saverStrategy{
	entity.CodeGenTypeHTML: {
		validate: func(code *ParsedCode) error {
			if code.HTML == "" {
				return errors.New(errors.CodeValidationFailed, "HTML 代码内容不能为空")
			}
			return nil
		},
		write: func(dir string, code *ParsedCode) error {
			return writeFile(dir, "index.html", code.HTML)
		},
	},
	entity.CodeGenTypeMultiFile: {
		validate: func(code *ParsedCode) error {
			if code.HTML == "" {
				return errors.New(errors.CodeValidationFailed, "HTML 代码内容不能为空")
			}
			return nil
		},
		write: func(dir string, code *ParsedCode) error {
			if err := writeFile(dir, "index.html", code.HTML); err != nil {
				return err
			}
			if err := writeFile(dir, "style.css", code.CSS); err != nil {
				return err
			}
			return writeFile(dir, "script.js", code.JS)
		},
	},
}

// Saver 把解析出的代码写入生成目录
type Saver struct {
	outputRoot string
}

// NewSaver 创建落盘器，outputRoot 为生成目录根路径
func NewSaver(outputRoot string) *Saver {
	return &Saver{outputRoot: outputRoot}
}

// Save 校验并写入代码，返回生成目录的绝对路径。
// 目录名为 {genType}_{appID}，校验失败时不产生任何写入。
func (s *Saver) Save(app *entity.App, code *ParsedCode) (string, error) {
	strategy, ok := saverStrategies[code.GenType]
	if !ok {
		return "", errors.New(errors.CodeValidationFailed, "该生成类型不支持落盘").
			WithDetail(string(code.GenType))
	}
	if err := strategy.validate(code); err != nil {
		return "", err
	}

	dir := filepath.Join(s.outputRoot, app.GenDirName())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, errors.CodeStorageError, "创建生成目录失败")
	}
	if err := strategy.write(dir, code); err != nil {
		return "", err
	}
	return dir, nil
}

// ProjectDir 返回应用的生成目录路径（不保证存在）
func (s *Saver) ProjectDir(app *entity.App) string {
	return filepath.Join(s.outputRoot, app.GenDirName())
}

// EnsureProjectDir 创建并返回应用的生成目录，vue_project 工具写入前调用
func (s *Saver) EnsureProjectDir(app *entity.App) (string, error) {
	dir := s.ProjectDir(app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, errors.CodeStorageError, "创建生成目录失败")
	}
	return dir, nil
}

func writeFile(dir, name, content string) error {
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		return errors.Wrap(err, errors.CodeStorageError, "写入生成文件失败").WithDetail(name)
	}
	return nil
}
