// Package user 实现用户注册登录与信息管理
package user

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"z-appgen-ai-api/internal/config"
	"z-appgen-ai-api/internal/domain/entity"
	"z-appgen-ai-api/internal/domain/repository"
	"z-appgen-ai-api/pkg/errors"
	"z-appgen-ai-api/pkg/logger"
	"z-appgen-ai-api/pkg/utils"
)

var tracer = otel.Tracer("user-service")

const (
	minAccountLen  = 4
	minPasswordLen = 8
)

// Service 用户服务
type Service struct {
	userRepo repository.UserRepository
	jwt      *utils.JWTManager
	cfg      *config.JWTConfig
}

// NewService 创建用户服务
func NewService(userRepo repository.UserRepository, jwtManager *utils.JWTManager, cfg *config.Config) *Service {
	return &Service{
		userRepo: userRepo,
		jwt:      jwtManager,
		cfg:      &cfg.Security.JWT,
	}
}

// Register 注册新用户
func (s *Service) Register(ctx context.Context, account, password, name string) (*entity.User, error) {
	ctx, span := tracer.Start(ctx, "UserService.Register",
		trace.WithAttributes(attribute.String("user.account", account)))
	defer span.End()

	if len(account) < minAccountLen {
		return nil, errors.New(errors.CodeInvalidParam, "账号长度不足")
	}
	if len(password) < minPasswordLen {
		return nil, errors.New(errors.CodeInvalidParam, "密码长度不足")
	}

	exists, err := s.userRepo.ExistsByAccount(ctx, account)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "查询账号失败")
	}
	if exists {
		return nil, errors.New(errors.CodeConflict, "账号已存在")
	}

	if name == "" {
		name = account
	}
	u := entity.NewUser(entity.NewID(), account, name)
	if err := u.SetPassword(password); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternalError, "密码加密失败")
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "创建用户失败")
	}

	logger.Info(ctx, "用户已注册", "user_id", u.ID)
	return u, nil
}

// LoginResult 登录结果
type LoginResult struct {
	User   *entity.User     `json:"user"`
	Tokens *utils.TokenPair `json:"tokens"`
}

// Login 账号密码登录，签发访问/刷新双 Token
func (s *Service) Login(ctx context.Context, account, password string) (*LoginResult, error) {
	ctx, span := tracer.Start(ctx, "UserService.Login",
		trace.WithAttributes(attribute.String("user.account", account)))
	defer span.End()

	u, err := s.userRepo.GetByAccount(ctx, account)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "查询用户失败")
	}
	// 账号不存在与密码错误返回同一错误，避免账号枚举
	if u == nil || !u.CheckPassword(password) {
		return nil, errors.New(errors.CodeUnauthorized, "账号或密码错误")
	}

	tokens, err := s.jwt.GenerateTokenPair(u.ID, string(u.Role), s.cfg.Expiration, s.cfg.RefreshExpiration)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternalError, "签发令牌失败")
	}

	now := time.Now()
	u.LastLoginAt = &now
	if err := s.userRepo.Update(ctx, u); err != nil {
		logger.Warn(ctx, "更新最近登录时间失败", "user_id", u.ID, "error", err)
	}

	return &LoginResult{User: u, Tokens: tokens}, nil
}

// Refresh 用刷新 Token 换发新的双 Token
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*utils.TokenPair, error) {
	claims, err := s.jwt.ParseToken(refreshToken)
	if err != nil {
		return nil, errors.ErrTokenInvalid
	}
	if claims.Type != "refresh" {
		return nil, errors.ErrTokenInvalid
	}
	tokens, err := s.jwt.GenerateTokenPair(claims.UserID, claims.Role, s.cfg.Expiration, s.cfg.RefreshExpiration)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternalError, "签发令牌失败")
	}
	return tokens, nil
}

// Get 获取用户信息
func (s *Service) Get(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "查询用户失败")
	}
	if u == nil {
		return nil, errors.ErrUserNotFound
	}
	return u, nil
}

// UpdateProfile 更新用户资料
func (s *Service) UpdateProfile(ctx context.Context, userID, name, avatarURL string) (*entity.User, error) {
	u, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if name != "" {
		u.Name = name
	}
	if avatarURL != "" {
		u.AvatarURL = avatarURL
	}
	if err := s.userRepo.Update(ctx, u); err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "更新用户失败")
	}
	return u, nil
}
