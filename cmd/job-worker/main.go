// Package main 异步任务执行器入口（job-worker）
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"z-appgen-ai-api/internal/config"
	"z-appgen-ai-api/internal/infrastructure/messaging"
	"z-appgen-ai-api/internal/wire"
	"z-appgen-ai-api/pkg/logger"
	"z-appgen-ai-api/pkg/tracer"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
	ctx := context.Background()

	shutdown, err := tracer.Init(ctx, tracer.Config{
		ServiceName: "job-worker",
		Endpoint:    cfg.Observability.Tracing.Endpoint,
		SampleRate:  cfg.Observability.Tracing.SampleRate,
		Enabled:     cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		logger.Fatal(ctx, "failed to init tracer", err)
	}
	defer func() { _ = shutdown(ctx) }()

	deps, cleanup, err := wire.InitializeWorker(ctx, cfg)
	if err != nil {
		logger.Fatal(ctx, "failed to initialize worker", err)
	}
	defer cleanup()

	consumer := messaging.NewConsumer(deps.RedisClient.Redis(), messaging.ConsumerConfig{
		Stream:        messaging.StreamAppDeployed,
		Group:         messaging.ConsumerGroupCoverWorker,
		ConsumerName:  hostnameConsumerName(),
		BlockTimeout:  cfg.Messaging.RedisStream.BlockTimeout,
		ClaimInterval: cfg.Messaging.RedisStream.ClaimInterval,
		RetryLimit:    cfg.Messaging.RedisStream.RetryLimit,
		Backoff: messaging.BackoffConfig{
			Initial:    cfg.Messaging.RedisStream.RetryBackoff.Initial,
			Max:        cfg.Messaging.RedisStream.RetryBackoff.Max,
			Multiplier: cfg.Messaging.RedisStream.RetryBackoff.Multiplier,
		},
	})

	// 部署完成后为应用截图生成封面
	consumer.RegisterHandler(messaging.MsgTypeAppDeployed, func(msgCtx context.Context, msg *messaging.Message) error {
		var payload messaging.AppDeployedMessage
		if err := msg.UnmarshalPayload(&payload); err != nil {
			return err
		}
		if payload.DeployURL == "" {
			logger.Warn(msgCtx, "部署消息缺少访问地址，跳过截图", "app_id", payload.AppID)
			return nil
		}

		coverURL, err := deps.Screenshot.Capture(msgCtx, payload.DeployURL)
		if err != nil {
			return fmt.Errorf("capture screenshot: %w", err)
		}
		if err := deps.AppService.UpdateCover(msgCtx, payload.AppID, coverURL); err != nil {
			return fmt.Errorf("update cover: %w", err)
		}

		logger.Info(msgCtx, "应用封面已更新", "app_id", payload.AppID, "cover", coverURL)
		return nil
	})

	if err := consumer.Start(ctx); err != nil {
		logger.Fatal(ctx, "failed to start consumer", err)
	}

	log := logger.FromContext(ctx)
	log.Info("job-worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("job-worker shutting down")
	consumer.Stop()
}

func hostnameConsumerName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "worker"
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}
