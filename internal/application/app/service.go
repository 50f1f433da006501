// Package app 实现应用管理与对话生成服务
package app

import (
	"context"
	"encoding/json"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"z-appgen-ai-api/internal/application/codegen"
	"z-appgen-ai-api/internal/config"
	"z-appgen-ai-api/internal/domain/entity"
	"z-appgen-ai-api/internal/domain/repository"
	"z-appgen-ai-api/internal/infrastructure/messaging"
	rediscache "z-appgen-ai-api/internal/infrastructure/persistence/redis"
	"z-appgen-ai-api/internal/workflow/chain"
	wfmodel "z-appgen-ai-api/internal/workflow/model"
	"z-appgen-ai-api/pkg/errors"
	"z-appgen-ai-api/pkg/logger"
)

var tracer = otel.Tracer("app-service")

// featuredCacheTTL 精选列表缓存时长
const featuredCacheTTL = 5 * time.Minute

// Service 应用服务
type Service struct {
	appRepo     repository.AppRepository
	historyRepo repository.ChatHistoryRepository
	txManager   repository.Transactor
	cache       *rediscache.Cache
	facade      *codegen.Facade
	workflow    *chain.CodegenWorkflow
	producer    *messaging.Producer
	cfg         *config.CodegenConfig
}

// NewService 创建应用服务
func NewService(
	appRepo repository.AppRepository,
	historyRepo repository.ChatHistoryRepository,
	txManager repository.Transactor,
	cache *rediscache.Cache,
	facade *codegen.Facade,
	workflow *chain.CodegenWorkflow,
	producer *messaging.Producer,
	cfg *config.Config,
) *Service {
	return &Service{
		appRepo:     appRepo,
		historyRepo: historyRepo,
		txManager:   txManager,
		cache:       cache,
		facade:      facade,
		workflow:    workflow,
		producer:    producer,
		cfg:         &cfg.Codegen,
	}
}

// Create 创建应用。未指定生成类型时由工作流路由判定，
// 应用名称默认取初始提示词前缀。
func (s *Service) Create(ctx context.Context, ownerID, initPrompt, genTypeStr string) (*entity.App, error) {
	ctx, span := tracer.Start(ctx, "AppService.Create",
		trace.WithAttributes(attribute.String("app.owner_id", ownerID)))
	defer span.End()

	if initPrompt == "" {
		return nil, errors.New(errors.CodeInvalidParam, "初始提示词不能为空")
	}

	var genType entity.CodeGenType
	if genTypeStr == "" {
		routed, reason := s.workflow.RouteGenType(ctx, initPrompt)
		genType = routed
		logger.Info(ctx, "生成类型已路由", "gen_type", string(genType), "reason", reason)
	} else {
		parsed, err := entity.ParseCodeGenType(genTypeStr)
		if err != nil {
			return nil, errors.New(errors.CodeInvalidParam, "未知的生成类型").WithDetail(genTypeStr)
		}
		genType = parsed
	}

	app := entity.NewApp(entity.NewID(), ownerID, initPrompt, genType)
	if err := s.appRepo.Create(ctx, app); err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "创建应用失败")
	}
	logger.Info(ctx, "应用已创建", "app_id", app.ID, "gen_type", string(genType))
	return app, nil
}

// Get 获取应用，访问权限：所有者或已部署的应用
func (s *Service) Get(ctx context.Context, userID, appID string) (*entity.App, error) {
	app, err := s.load(ctx, appID)
	if err != nil {
		return nil, err
	}
	if app.OwnerID != userID && !app.IsDeployed() {
		return nil, errors.New(errors.CodePermissionDenied, "无权访问该应用")
	}
	return app, nil
}

// getOwned 获取应用并校验所有权
func (s *Service) getOwned(ctx context.Context, userID, appID string) (*entity.App, error) {
	app, err := s.load(ctx, appID)
	if err != nil {
		return nil, err
	}
	if app.OwnerID != userID {
		return nil, errors.New(errors.CodePermissionDenied, "无权操作该应用")
	}
	return app, nil
}

func (s *Service) load(ctx context.Context, appID string) (*entity.App, error) {
	app, err := s.appRepo.GetByID(ctx, appID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "查询应用失败")
	}
	if app == nil {
		return nil, errors.ErrAppNotFound
	}
	return app, nil
}

// ListMine 当前用户的应用列表
func (s *Service) ListMine(ctx context.Context, ownerID string, page, pageSize int) (*repository.PagedResult[*entity.App], error) {
	ctx, span := tracer.Start(ctx, "AppService.ListMine")
	defer span.End()

	result, err := s.appRepo.List(ctx, &repository.AppFilter{OwnerID: ownerID}, repository.NewPagination(page, pageSize))
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "查询应用列表失败")
	}
	return result, nil
}

// ListFeatured 精选应用列表（priority > 0），结果走 Redis 缓存
func (s *Service) ListFeatured(ctx context.Context, page, pageSize int) (*repository.PagedResult[*entity.App], error) {
	ctx, span := tracer.Start(ctx, "AppService.ListFeatured")
	defer span.End()

	pagination := repository.NewPagination(page, pageSize)
	minPriority := 1
	key := rediscache.FeaturedAppsCacheKey(pagination.Page, pagination.PageSize)

	data, err := s.cache.GetOrLoadSafe(ctx, key, featuredCacheTTL, func() (interface{}, error) {
		return s.appRepo.List(ctx, &repository.AppFilter{MinPriority: &minPriority}, pagination)
	})
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "查询精选应用失败")
	}

	var result repository.PagedResult[*entity.App]
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, errors.Wrap(err, errors.CodeCacheError, "精选应用缓存解码失败")
	}
	return &result, nil
}

// UpdateName 更新应用名称
func (s *Service) UpdateName(ctx context.Context, userID, appID, name string) (*entity.App, error) {
	if name == "" {
		return nil, errors.New(errors.CodeInvalidParam, "应用名称不能为空")
	}
	app, err := s.getOwned(ctx, userID, appID)
	if err != nil {
		return nil, err
	}
	app.Name = name
	if err := s.appRepo.Update(ctx, app); err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "更新应用失败")
	}
	if err := s.cache.InvalidateApp(ctx, appID); err != nil {
		logger.Warn(ctx, "应用缓存失效失败", "app_id", appID, "error", err)
	}
	return app, nil
}

// Delete 删除应用及其全部对话历史（同一事务），并清理会话缓存
func (s *Service) Delete(ctx context.Context, userID, appID string) error {
	ctx, span := tracer.Start(ctx, "AppService.Delete",
		trace.WithAttributes(attribute.String("app.id", appID)))
	defer span.End()

	app, err := s.getOwned(ctx, userID, appID)
	if err != nil {
		return err
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.historyRepo.DeleteByApp(txCtx, appID); err != nil {
			return err
		}
		return s.appRepo.Delete(txCtx, appID)
	})
	if err != nil {
		span.RecordError(err)
		return errors.Wrap(err, errors.CodeDatabaseError, "删除应用失败")
	}

	s.facade.InvalidateSession(app)
	if err := s.cache.InvalidateApp(ctx, appID); err != nil {
		logger.Warn(ctx, "应用缓存失效失败", "app_id", appID, "error", err)
	}
	logger.Info(ctx, "应用已删除", "app_id", appID)
	return nil
}

// ChatToGenCode 对话式生成：校验所有权、追加用户历史，然后流式生成。
// 每轮恰好写入一条用户历史和一条 AI 历史。
func (s *Service) ChatToGenCode(ctx context.Context, userID, appID, message string, emit codegen.ChunkEmitter) (*codegen.StreamResult, error) {
	ctx, span := tracer.Start(ctx, "AppService.ChatToGenCode",
		trace.WithAttributes(attribute.String("app.id", appID)))
	defer span.End()

	if message == "" {
		return nil, errors.New(errors.CodeInvalidParam, "消息内容不能为空")
	}
	app, err := s.getOwned(ctx, userID, appID)
	if err != nil {
		return nil, err
	}

	userRow := entity.NewChatHistory(entity.NewID(), app.ID, userID, message, entity.MessageTypeUser)
	if err := s.historyRepo.Append(ctx, userRow); err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, errors.CodePersistenceFailed, "追加用户历史失败")
	}

	result, err := s.facade.GenerateStream(ctx, app, userID, message, emit)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return result, nil
}

// InitialGenerate 执行完整生成工作流（路由已定型的应用按类型生成、
// vue_project 附带素材收集、最后质量检查），应用创建后的首次生成使用
func (s *Service) InitialGenerate(ctx context.Context, userID, appID string) (*wfmodel.Context, error) {
	ctx, span := tracer.Start(ctx, "AppService.InitialGenerate",
		trace.WithAttributes(attribute.String("app.id", appID)))
	defer span.End()

	app, err := s.getOwned(ctx, userID, appID)
	if err != nil {
		return nil, err
	}

	userRow := entity.NewChatHistory(entity.NewID(), app.ID, userID, app.InitPrompt, entity.MessageTypeUser)
	if err := s.historyRepo.Append(ctx, userRow); err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, errors.CodePersistenceFailed, "追加用户历史失败")
	}

	out, err := s.workflow.Execute(ctx, &wfmodel.Context{
		App:    app,
		UserID: userID,
		Prompt: app.InitPrompt,
	})
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, errors.CodeGenerationFailed, "生成工作流执行失败")
	}

	// 路由节点可能补写了生成类型
	if out.App.CodeGenType != app.CodeGenType {
		if err := s.appRepo.Update(ctx, out.App); err != nil {
			logger.Warn(ctx, "回写生成类型失败", "app_id", appID, "error", err)
		}
	}
	return out, nil
}

// ListHistory 游标分页查询对话历史
func (s *Service) ListHistory(ctx context.Context, userID, appID string, before *time.Time, limit int) ([]*entity.ChatHistory, error) {
	if _, err := s.Get(ctx, userID, appID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	records, err := s.historyRepo.ListBefore(ctx, appID, before, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "查询对话历史失败")
	}
	return records, nil
}
