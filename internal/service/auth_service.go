package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"shortly-platform/internal/model"
	"shortly-platform/internal/store"
	auth "shortly-platform/pkg/jwt"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const revokedPrefix = "revoked:"

var (
	ErrEmailTaken         = errors.New("user already exists")
	ErrInvalidEmail       = errors.New("please enter a valid email")
	ErrWeakPassword       = errors.New("please enter a strong password")
	ErrSamePassword       = errors.New("new password must differ from the old one")
	ErrUserNotFound       = errors.New("user does not exist")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
)

// AuthService 用户注册、登录、会话校验与改密
type AuthService struct {
	users       *store.UserStore
	tokens      *auth.TokenManager
	cache       *redis.Client
	validate    *validator.Validate
	minPassword int
	logger      *zap.SugaredLogger
}

// NewAuthService cache 为 nil 时登出只清除 Cookie，不做令牌吊销
func NewAuthService(users *store.UserStore, tokens *auth.TokenManager, cache *redis.Client, minPassword int, logger *zap.SugaredLogger) *AuthService {
	if minPassword <= 0 {
		minPassword = 8
	}
	return &AuthService{
		users:       users,
		tokens:      tokens,
		cache:       cache,
		validate:    validator.New(),
		minPassword: minPassword,
		logger:      logger.Named("auth_service"),
	}
}

// Register 创建用户并签发会话令牌
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*model.User, string, error) {
	email = strings.TrimSpace(email)
	if err := s.validate.Var(email, "required,email"); err != nil {
		return nil, "", ErrInvalidEmail
	}
	if len(password) < s.minPassword {
		return nil, "", ErrWeakPassword
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, "", ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, "", fmt.Errorf("查询用户失败: %w", err)
	}

	user := &model.User{Name: strings.TrimSpace(name), Email: email}
	if err := user.SetPassword(password); err != nil {
		return nil, "", fmt.Errorf("密码加密失败: %w", err)
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", fmt.Errorf("创建用户失败: %w", err)
	}

	token, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login 校验邮箱和密码并签发会话令牌
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, "", ErrUserNotFound
		}
		return nil, "", fmt.Errorf("查询用户失败: %w", err)
	}
	if !user.CheckPassword(password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Authenticate 把会话令牌解析为用户
func (s *AuthService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	if s.isRevoked(ctx, claims.ID) {
		return nil, ErrUnauthenticated
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	return user, nil
}

// Logout 吊销令牌直到其自然过期。令牌无效时直接忽略。
func (s *AuthService) Logout(ctx context.Context, token string) {
	if s.cache == nil || token == "" {
		return
	}
	claims, err := s.tokens.ValidateToken(token)
	if err != nil || claims.ExpiresAt == nil {
		return
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return
	}
	if err := s.cache.Set(ctx, revokedPrefix+claims.ID, 1, ttl).Err(); err != nil {
		s.logger.Warnw("吊销令牌失败", "error", err)
	}
}

// ChangePassword 校验旧密码后更新
func (s *AuthService) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUnauthenticated
		}
		return fmt.Errorf("查询用户失败: %w", err)
	}
	if !user.CheckPassword(oldPassword) {
		return ErrInvalidCredentials
	}
	if len(newPassword) < s.minPassword {
		return ErrWeakPassword
	}
	if oldPassword == newPassword {
		return ErrSamePassword
	}

	if err := user.SetPassword(newPassword); err != nil {
		return fmt.Errorf("密码加密失败: %w", err)
	}
	return s.users.UpdatePasswordHash(ctx, user.ID, user.PasswordHash)
}

func (s *AuthService) isRevoked(ctx context.Context, jti string) bool {
	if s.cache == nil || jti == "" {
		return false
	}
	n, err := s.cache.Exists(ctx, revokedPrefix+jti).Result()
	if err != nil {
		// 缓存不可用时不阻断登录态
		s.logger.Warnw("检查令牌吊销状态失败", "error", err)
		return false
	}
	return n > 0
}
