package app

import (
	"archive/zip"
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"z-appgen-ai-api/internal/domain/entity"
	"z-appgen-ai-api/internal/infrastructure/messaging"
	wfnode "z-appgen-ai-api/internal/workflow/node"
	"z-appgen-ai-api/pkg/errors"
	"z-appgen-ai-api/pkg/logger"
	"z-appgen-ai-api/pkg/metrics"
)

const deployKeyLen = 6

const deployKeyAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// DeployResult 部署结果
type DeployResult struct {
	DeployKey string `json:"deploy_key"`
	URL       string `json:"url"`
}

// Deploy 部署应用：把生成目录复制到部署目录。
// 已部署过的应用沿用原部署标识，重复部署覆盖内容但 URL 不变；
// 部署完成后投递 app_deployed 消息，由后台任务异步截图生成封面。
func (s *Service) Deploy(ctx context.Context, userID, appID string) (*DeployResult, error) {
	ctx, span := tracer.Start(ctx, "AppService.Deploy",
		trace.WithAttributes(attribute.String("app.id", appID)))
	defer span.End()

	app, err := s.getOwned(ctx, userID, appID)
	if err != nil {
		return nil, err
	}

	srcDir := filepath.Join(s.cfg.OutputRoot, app.GenDirName())
	if info, err := os.Stat(srcDir); err != nil || !info.IsDir() {
		metrics.DeployTotal.WithLabelValues("error").Inc()
		return nil, errors.New(errors.CodeArtifactNotFound, "应用尚未生成，无法部署")
	}

	deployKey := app.DeployKey
	if deployKey == "" {
		deployKey, err = randomDeployKey()
		if err != nil {
			metrics.DeployTotal.WithLabelValues("error").Inc()
			return nil, errors.Wrap(err, errors.CodeDeployFailed, "生成部署标识失败")
		}
	}

	dstDir := filepath.Join(s.cfg.DeployRoot, deployKey)
	if err := copyDir(srcDir, dstDir); err != nil {
		span.RecordError(err)
		metrics.DeployTotal.WithLabelValues("error").Inc()
		return nil, errors.Wrap(err, errors.CodeDeployFailed, "复制部署产物失败")
	}

	if err := s.appRepo.UpdateDeployInfo(ctx, app.ID, deployKey); err != nil {
		span.RecordError(err)
		metrics.DeployTotal.WithLabelValues("error").Inc()
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "记录部署信息失败")
	}
	if err := s.cache.InvalidateApp(ctx, app.ID); err != nil {
		logger.Warn(ctx, "应用缓存失效失败", "app_id", app.ID, "error", err)
	}

	deployURL := fmt.Sprintf("%s/%s/", strings.TrimRight(s.cfg.DeployHost, "/"), deployKey)

	// 截图封面异步生成，投递失败不影响部署结果
	if _, err := s.producer.PublishAppDeployed(ctx, &messaging.AppDeployedMessage{
		AppID:     app.ID,
		UserID:    userID,
		DeployKey: deployKey,
		DeployURL: deployURL,
	}); err != nil {
		logger.Warn(ctx, "投递部署消息失败", "app_id", app.ID, "error", err)
	}

	metrics.DeployTotal.WithLabelValues("success").Inc()
	logger.Info(ctx, "应用已部署", "app_id", app.ID, "deploy_key", deployKey)
	return &DeployResult{DeployKey: deployKey, URL: deployURL}, nil
}

// WriteArchive 把生成目录打包为 zip 写入 w，跳过依赖目录和隐藏文件
func (s *Service) WriteArchive(ctx context.Context, userID, appID string, w io.Writer) (string, error) {
	ctx, span := tracer.Start(ctx, "AppService.WriteArchive",
		trace.WithAttributes(attribute.String("app.id", appID)))
	defer span.End()

	app, err := s.getOwned(ctx, userID, appID)
	if err != nil {
		return "", err
	}

	srcDir := filepath.Join(s.cfg.OutputRoot, app.GenDirName())
	if info, err := os.Stat(srcDir); err != nil || !info.IsDir() {
		return "", errors.New(errors.CodeArtifactNotFound, "应用尚未生成，没有可下载的产物")
	}

	zw := zip.NewWriter(w)
	defer zw.Close()

	err = filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != srcDir && wfnode.ShouldSkipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		f, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()
		_, err = io.Copy(f, src)
		return err
	})
	if err != nil {
		span.RecordError(err)
		return "", errors.Wrap(err, errors.CodeStorageError, "打包生成产物失败")
	}
	return app.GenDirName() + ".zip", nil
}

// UpdateCover 更新应用封面，部署后的截图任务回写使用
func (s *Service) UpdateCover(ctx context.Context, appID, coverURL string) error {
	if coverURL == "" {
		return errors.New(errors.CodeInvalidParam, "封面地址不能为空")
	}
	if err := s.appRepo.UpdateCover(ctx, appID, coverURL); err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "更新封面失败")
	}
	if err := s.cache.InvalidateApp(ctx, appID); err != nil {
		logger.Warn(ctx, "应用缓存失效失败", "app_id", appID, "error", err)
	}
	return nil
}

// GetApp 根据 ID 读取应用，后台任务使用（不做所有权校验）
func (s *Service) GetApp(ctx context.Context, appID string) (*entity.App, error) {
	return s.load(ctx, appID)
}

// randomDeployKey 生成 6 位随机字母数字部署标识
func randomDeployKey() (string, error) {
	buf := make([]byte, deployKeyLen)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	key := make([]byte, deployKeyLen)
	for i, b := range buf {
		key[i] = deployKeyAlphabet[int(b)%len(deployKeyAlphabet)]
	}
	return string(key), nil
}

// copyDir 递归复制目录内容
func copyDir(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		return os.WriteFile(target, data, 0o644)
	})
}
