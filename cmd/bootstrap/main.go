package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"z-appgen-ai-api/internal/config"
	"z-appgen-ai-api/internal/domain/entity"
	"z-appgen-ai-api/internal/wire"
)

func main() {
	_ = godotenv.Load()

	fmt.Println("Starting system bootstrap...")

	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	// 2. 初始化数据层（仅 PostgreSQL）
	dataLayer, cleanup, err := wire.InitializePostgresOnly(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize data layer: %v", err)
	}
	defer cleanup()

	// 3. 迁移表结构
	fmt.Println("Running schema migration...")
	if err := dataLayer.PgClient.DB().WithContext(ctx).AutoMigrate(
		&entity.User{},
		&entity.App{},
		&entity.ChatHistory{},
	); err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}

	// 4. 创建首个管理员
	adminAccount := os.Getenv("BOOTSTRAP_ADMIN_ACCOUNT")
	if adminAccount == "" {
		adminAccount = "admin"
	}
	adminPassword := os.Getenv("BOOTSTRAP_ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "admin12345" // 生产环境请务必通过环境变量设置
	}

	userExists, err := dataLayer.UserRepo.ExistsByAccount(ctx, adminAccount)
	if err != nil {
		log.Fatalf("failed to check admin existence: %v", err)
	}

	if !userExists {
		fmt.Printf("Creating admin user: %s...\n", adminAccount)
		admin := entity.NewUser(entity.NewID(), adminAccount, "System Admin")
		admin.Role = entity.UserRoleAdmin
		if err := admin.SetPassword(adminPassword); err != nil {
			log.Fatalf("failed to hash admin password: %v", err)
		}

		if err := dataLayer.UserRepo.Create(ctx, admin); err != nil {
			log.Fatalf("failed to create admin user: %v", err)
		}
		fmt.Printf("Admin user created successfully.\n")
	} else {
		fmt.Printf("Admin user %s already exists.\n", adminAccount)
	}

	fmt.Println("Bootstrap completed successfully.")
}
