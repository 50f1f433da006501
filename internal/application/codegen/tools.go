package codegen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
)

// 文件工具名称
const (
	ToolWriteFile  = "write_file"
	ToolReadFile   = "read_file"
	ToolReadDir    = "read_dir"
	ToolModifyFile = "modify_file"
	ToolDeleteFile = "delete_file"
)

// FileToolset 面向单个项目目录的文件操作工具集。
// 所有路径解析后必须落在项目目录内，越界路径直接拒绝。
type FileToolset struct {
	baseDir string
}

// NewFileToolset 创建文件工具集，baseDir 为项目根目录
func NewFileToolset(baseDir string) *FileToolset {
	return &FileToolset{baseDir: baseDir}
}

// Tools 构建 Eino 工具列表
func (t *FileToolset) Tools() ([]tool.InvokableTool, error) {
	writeTool, err := utils.InferTool(ToolWriteFile,
		"在项目目录中写入文件，文件已存在时覆盖，父目录不存在时自动创建", t.writeFile)
	if err != nil {
		return nil, err
	}
	readTool, err := utils.InferTool(ToolReadFile,
		"读取项目目录中指定文件的完整内容", t.readFile)
	if err != nil {
		return nil, err
	}
	readDirTool, err := utils.InferTool(ToolReadDir,
		"递归列出项目目录中的全部文件路径", t.readDir)
	if err != nil {
		return nil, err
	}
	modifyTool, err := utils.InferTool(ToolModifyFile,
		"修改项目目录中的文件：把 old_content 替换为 new_content，old_content 必须在文件中存在", t.modifyFile)
	if err != nil {
		return nil, err
	}
	deleteTool, err := utils.InferTool(ToolDeleteFile,
		"删除项目目录中的指定文件", t.deleteFile)
	if err != nil {
		return nil, err
	}
	return []tool.InvokableTool{writeTool, readTool, readDirTool, modifyTool, deleteTool}, nil
}

// resolve 把相对路径解析到项目目录内，拒绝绝对路径和越界路径
func (t *FileToolset) resolve(rel string) (string, error) {
	if strings.TrimSpace(rel) == "" {
		return "", fmt.Errorf("path is empty")
	}
	clean := filepath.Clean(rel)
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes the project directory", rel)
	}
	return filepath.Join(t.baseDir, clean), nil
}

type writeFileParams struct {
	Path    string `json:"path" jsonschema:"description=相对项目根目录的文件路径"`
	Content string `json:"content" jsonschema:"description=文件完整内容"`
}

func (t *FileToolset) writeFile(_ context.Context, p *writeFileParams) (string, error) {
	path, err := t.resolve(p.Path)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory for %s: %w", p.Path, err)
	}
	if err := os.WriteFile(path, []byte(p.Content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", p.Path, err)
	}
	return fmt.Sprintf("文件 %s 写入成功（%d 字节）", p.Path, len(p.Content)), nil
}

type readFileParams struct {
	Path string `json:"path" jsonschema:"description=相对项目根目录的文件路径"`
}

func (t *FileToolset) readFile(_ context.Context, p *readFileParams) (string, error) {
	path, err := t.resolve(p.Path)
	if err != nil {
		return "", err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", p.Path, err)
	}
	return string(b), nil
}

type readDirParams struct {
	Path string `json:"path,omitempty" jsonschema:"description=相对项目根目录的子目录路径，留空表示项目根目录"`
}

func (t *FileToolset) readDir(_ context.Context, p *readDirParams) (string, error) {
	root := t.baseDir
	if strings.TrimSpace(p.Path) != "" {
		resolved, err := t.resolve(p.Path)
		if err != nil {
			return "", err
		}
		root = resolved
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "node_modules" || (strings.HasPrefix(d.Name(), ".") && path != root) {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(t.baseDir, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to list directory: %w", err)
	}
	if len(files) == 0 {
		return "目录为空", nil
	}
	sort.Strings(files)
	return strings.Join(files, "\n"), nil
}

type modifyFileParams struct {
	Path       string `json:"path" jsonschema:"description=相对项目根目录的文件路径"`
	OldContent string `json:"old_content" jsonschema:"description=要被替换的原始内容片段"`
	NewContent string `json:"new_content" jsonschema:"description=替换后的新内容"`
}

func (t *FileToolset) modifyFile(_ context.Context, p *modifyFileParams) (string, error) {
	path, err := t.resolve(p.Path)
	if err != nil {
		return "", err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", p.Path, err)
	}
	content := string(b)
	if !strings.Contains(content, p.OldContent) {
		return "", fmt.Errorf("old_content not found in %s", p.Path)
	}
	content = strings.Replace(content, p.OldContent, p.NewContent, 1)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", p.Path, err)
	}
	return fmt.Sprintf("文件 %s 修改成功", p.Path), nil
}

type deleteFileParams struct {
	Path string `json:"path" jsonschema:"description=相对项目根目录的文件路径"`
}

func (t *FileToolset) deleteFile(_ context.Context, p *deleteFileParams) (string, error) {
	path, err := t.resolve(p.Path)
	if err != nil {
		return "", err
	}
	if err := os.Remove(path); err != nil {
		return "", fmt.Errorf("failed to delete %s: %w", p.Path, err)
	}
	return fmt.Sprintf("文件 %s 删除成功", p.Path), nil
}
