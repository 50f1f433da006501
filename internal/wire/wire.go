//go:build wireinject
// +build wireinject

// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"github.com/google/wire"

	appsvc "z-appgen-ai-api/internal/application/app"
	"z-appgen-ai-api/internal/application/assets"
	"z-appgen-ai-api/internal/application/codegen"
	"z-appgen-ai-api/internal/application/user"
	"z-appgen-ai-api/internal/config"
	"z-appgen-ai-api/internal/infrastructure/diagram"
	"z-appgen-ai-api/internal/infrastructure/imagegen"
	"z-appgen-ai-api/internal/infrastructure/llm"
	"z-appgen-ai-api/internal/infrastructure/persistence/postgres"
	"z-appgen-ai-api/internal/infrastructure/persistence/redis"
	"z-appgen-ai-api/internal/infrastructure/pixabay"
	"z-appgen-ai-api/internal/infrastructure/screenshot"
	"z-appgen-ai-api/internal/domain/repository"
	"z-appgen-ai-api/internal/interfaces/http/handler"
	"z-appgen-ai-api/internal/interfaces/http/middleware"
	"z-appgen-ai-api/internal/interfaces/http/router"
	"z-appgen-ai-api/internal/workflow/chain"
	"z-appgen-ai-api/internal/workflow/port"
	workflowprompt "z-appgen-ai-api/internal/workflow/prompt"
)

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		RepoSet,
		RedisSet,
		MessagingSet,
		AssetClientSet,
		CodegenSet,
		ServiceSet,
		RouterSet,
	)
	return nil, nil, nil
}

// InitializeWorker 初始化后台任务进程依赖
func InitializeWorker(ctx context.Context, cfg *config.Config) (*WorkerLayer, func(), error) {
	wire.Build(
		RepoSet,
		RedisSet,
		MessagingSet,
		AssetClientSet,
		CodegenSet,
		ServiceSet,
		ProvideScreenshotConfig,
		screenshot.NewClient,
		wire.Struct(new(WorkerLayer), "*"),
	)
	return nil, nil, nil
}

// InitializePostgresOnly 仅初始化 PostgreSQL 数据层（用于 bootstrap）
func InitializePostgresOnly(ctx context.Context, cfg *config.Config) (*PostgresOnlyDataLayer, func(), error) {
	wire.Build(
		PostgresSet,
		wire.Struct(new(PostgresOnlyDataLayer), "*"),
	)
	return nil, nil, nil
}

// PostgresSet PostgreSQL 提供者集合
var PostgresSet = wire.NewSet(
	ProvidePostgresClient,
	postgres.NewTxManager,
	postgres.NewUserRepository,
	postgres.NewAppRepository,
	postgres.NewChatHistoryRepository,
)

// RepoSet 整合了具体实现与接口绑定的集合
var RepoSet = wire.NewSet(
	PostgresSet,
	wire.Bind(new(repository.Transactor), new(*postgres.TxManager)),
	wire.Bind(new(repository.UserRepository), new(*postgres.UserRepository)),
	wire.Bind(new(repository.AppRepository), new(*postgres.AppRepository)),
	wire.Bind(new(repository.ChatHistoryRepository), new(*postgres.ChatHistoryRepository)),
)

// RedisSet Redis 提供者集合
var RedisSet = wire.NewSet(
	ProvideRedisClient,
	redis.NewCache,
	redis.NewRateLimiter,
	wire.Bind(new(middleware.RateLimiter), new(*redis.RateLimiter)),
)

// MessagingSet 消息队列提供者集合
var MessagingSet = wire.NewSet(
	ProvideMessagingProducer,
)

// AssetClientSet 素材后端客户端提供者集合
var AssetClientSet = wire.NewSet(
	ProvidePixabayConfig,
	pixabay.NewClient,
	wire.Bind(new(assets.ImageSearcher), new(*pixabay.Client)),
	ProvideDiagramConfig,
	diagram.NewClient,
	wire.Bind(new(assets.DiagramRenderer), new(*diagram.Client)),
	ProvideLogoConfig,
	imagegen.NewClient,
	wire.Bind(new(assets.LogoGenerator), new(*imagegen.Client)),
)

// CodegenSet 代码生成提供者集合
var CodegenSet = wire.NewSet(
	llm.NewEinoFactory,
	wire.Bind(new(port.ChatModelFactory), new(*llm.EinoFactory)),
	workflowprompt.NewRegistry,
	ProvideSaver,
	codegen.NewSessionCache,
	codegen.NewGenerator,
	codegen.NewStreamHandler,
	codegen.NewFacade,
	assets.NewEngine,
	chain.NewCodegenWorkflow,
)

// ServiceSet 应用服务提供者集合
var ServiceSet = wire.NewSet(
	ProvideJWTManager,
	user.NewService,
	appsvc.NewService,
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	handler.NewHealthHandler,
	handler.NewAuthHandler,
	handler.NewAppHandler,
	handler.NewUserHandler,
	wire.Struct(new(router.Handlers), "*"),
	router.New,
)
