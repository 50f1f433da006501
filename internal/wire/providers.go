// Package wire 提供依赖注入配置
package wire

import (
	appsvc "z-appgen-ai-api/internal/application/app"
	"z-appgen-ai-api/internal/application/codegen"
	"z-appgen-ai-api/internal/config"
	"z-appgen-ai-api/internal/infrastructure/messaging"
	"z-appgen-ai-api/internal/infrastructure/persistence/postgres"
	"z-appgen-ai-api/internal/infrastructure/persistence/redis"
	"z-appgen-ai-api/internal/infrastructure/screenshot"
	"z-appgen-ai-api/pkg/utils"
)

// PostgresOnlyDataLayer 仅包含 PostgreSQL 的数据层（用于 bootstrap）
type PostgresOnlyDataLayer struct {
	PgClient    *postgres.Client
	TxManager   *postgres.TxManager
	UserRepo    *postgres.UserRepository
	AppRepo     *postgres.AppRepository
	HistoryRepo *postgres.ChatHistoryRepository
}

// WorkerLayer 后台任务进程的依赖容器
type WorkerLayer struct {
	RedisClient *redis.Client
	AppService  *appsvc.Service
	Screenshot  *screenshot.Client
}

// ProvidePostgresClient 提供 PostgreSQL 客户端
func ProvidePostgresClient(cfg *config.Config) (*postgres.Client, func(), error) {
	client, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvideRedisClient 提供 Redis 客户端
func ProvideRedisClient(cfg *config.Config) (*redis.Client, func(), error) {
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvideMessagingProducer 提供消息生产者
func ProvideMessagingProducer(redisClient *redis.Client, cfg *config.Config) *messaging.Producer {
	maxLen := cfg.Messaging.RedisStream.MaxLen
	if maxLen <= 0 {
		maxLen = 100000
	}
	return messaging.NewProducer(redisClient.Redis(), int64(maxLen))
}

// ProvidePixabayConfig 提供 Pixabay 配置
func ProvidePixabayConfig(cfg *config.Config) *config.PixabayConfig {
	return &cfg.Assets.Pixabay
}

// ProvideDiagramConfig 提供架构图渲染配置
func ProvideDiagramConfig(cfg *config.Config) *config.DiagramConfig {
	return &cfg.Assets.Diagram
}

// ProvideLogoConfig 提供 Logo 生成配置
func ProvideLogoConfig(cfg *config.Config) *config.LogoConfig {
	return &cfg.Assets.Logo
}

// ProvideScreenshotConfig 提供截图服务配置
func ProvideScreenshotConfig(cfg *config.Config) *config.ScreenshotConfig {
	return &cfg.Screenshot
}

// ProvideSaver 提供代码落盘组件
func ProvideSaver(cfg *config.Config) *codegen.Saver {
	return codegen.NewSaver(cfg.Codegen.OutputRoot)
}

// ProvideJWTManager 提供 JWT 管理器
func ProvideJWTManager(cfg *config.Config) *utils.JWTManager {
	return utils.NewJWTManager(cfg.Security.JWT.Secret, cfg.Security.JWT.Issuer)
}
