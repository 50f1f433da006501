package node

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// 质量检查纳入的文本文件扩展名
var sourceExts = map[string]bool{
	".html": true,
	".htm":  true,
	".css":  true,
	".js":   true,
	".json": true,
	".vue":  true,
	".ts":   true,
	".jsx":  true,
	".tsx":  true,
}

// 不参与扫描的目录
var skipDirs = map[string]bool{
	"node_modules": true,
	"dist":         true,
	"target":       true,
	".git":         true,
}

// ShouldSkipDir 判断目录是否跳过扫描（依赖目录、构建产物、隐藏目录）
func ShouldSkipDir(name string) bool {
	if skipDirs[name] {
		return true
	}
	return strings.HasPrefix(name, ".")
}

// IsSourceFile 判断文件是否纳入源码扫描（按扩展名，排除隐藏文件）
func IsSourceFile(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	return sourceExts[strings.ToLower(filepath.Ext(name))]
}

// CollectSourceText 递归拼接目录下的源码文件，供质量检查提交给模型。
// 单文件超过 maxFileSize 的跳过，累计超过 maxTotal 后停止收集。
func CollectSourceText(dir string, maxFileSize, maxTotal int64) (string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && ShouldSkipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsSourceFile(d.Name()) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return "", err
	}
	sort.Strings(paths)

	var (
		sb    strings.Builder
		total int64
	)
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if maxFileSize > 0 && info.Size() > maxFileSize {
			continue
		}
		if maxTotal > 0 && total+info.Size() > maxTotal {
			break
		}
		b, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = path
		}
		fmt.Fprintf(&sb, "=== %s ===\n%s\n\n", filepath.ToSlash(rel), string(b))
		total += info.Size()
	}
	return sb.String(), nil
}
