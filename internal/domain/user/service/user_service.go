package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"wellness_shop/internal/domain/user/model"
	"wellness_shop/internal/domain/user/repository"
	"wellness_shop/internal/pkg/realtime"
	"wellness_shop/internal/pkg/session"
	"wellness_shop/pkg/logger"
	"wellness_shop/pkg/utils"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrUserNotFound       = errors.New("user not found")
)

const minPasswordLength = 8

// LoginResult 登录结果
type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      *model.User `json:"user"`
	IsAdmin   bool        `json:"isAdmin"`
}

// SessionInfo 当前会话
type SessionInfo struct {
	User    *model.User `json:"user"`
	IsAdmin bool        `json:"isAdmin"`
}

// AuthService 认证与会话服务
type AuthService interface {
	SignIn(ctx context.Context, email, password string) (*LoginResult, error)
	Session(ctx context.Context, userID string) (*SessionInfo, error)
	SignOut(ctx context.Context, userID, sessionID string) error
	IsAdmin(ctx context.Context, userID string) (bool, error)
	Register(ctx context.Context, email, password string) (*model.User, error)
	AssignRole(ctx context.Context, userID, role string) error
	ChangePassword(ctx context.Context, userID, current, password string) error
	ResetPassword(ctx context.Context, email, password string) error
}

type authService struct {
	repo      repository.UserRepository
	sessions  session.Store
	publisher realtime.Publisher
	validate  *validator.Validate
}

// NewAuthService publisher 为空时不发布登录事件
func NewAuthService(repo repository.UserRepository, sessions session.Store, publisher realtime.Publisher) AuthService {
	if publisher == nil {
		publisher = realtime.NopPublisher{}
	}
	return &authService{
		repo:      repo,
		sessions:  sessions,
		publisher: publisher,
		validate:  validator.New(),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignIn 邮箱密码登录，账号不存在和密码错误返回同一个错误
func (s *authService) SignIn(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	isAdmin, err := s.IsAdmin(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	role := model.RoleUser
	if isAdmin {
		role = model.RoleAdmin
	}

	sessionID, err := s.sessions.Create(ctx, user.ID, utils.TokenTTL())
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	token, expireAt, err := utils.GenerateToken(user.ID, role, sessionID)
	if err != nil {
		_ = s.sessions.Delete(ctx, sessionID)
		return nil, err
	}

	now := time.Now()
	if err := s.repo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		logger.Log.Warn("update last login failed", zap.String("user_id", user.ID), zap.Error(err))
	}
	user.LastLoginAt = &now

	s.publish(ctx, realtime.ActionSignedIn, user.ID)

	return &LoginResult{Token: token, ExpiresAt: *expireAt, User: user, IsAdmin: isAdmin}, nil
}

// Session 每次都重新查询角色，撤销管理员后立即生效
func (s *authService) Session(ctx context.Context, userID string) (*SessionInfo, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	isAdmin, err := s.IsAdmin(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &SessionInfo{User: user, IsAdmin: isAdmin}, nil
}

func (s *authService) SignOut(ctx context.Context, userID, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return err
	}
	s.publish(ctx, realtime.ActionSignedOut, userID)
	return nil
}

func (s *authService) IsAdmin(ctx context.Context, userID string) (bool, error) {
	return s.repo.HasRole(ctx, userID, model.RoleAdmin)
}

// Register 创建后台账号，由 cmd/admin 调用，不开放 HTTP 注册
func (s *authService) Register(ctx context.Context, email, password string) (*model.User, error) {
	email = normalizeEmail(email)
	if err := s.validate.Var(email, "required,email"); err != nil {
		return nil, ErrInvalidEmail
	}
	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{Email: email, Password: string(hash)}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) AssignRole(ctx context.Context, userID, role string) error {
	if role != model.RoleAdmin && role != model.RoleUser {
		return fmt.Errorf("unknown role %q", role)
	}
	return s.repo.AssignRole(ctx, userID, role)
}

// ChangePassword 登录用户修改自己的密码，成功后所有会话失效，需要重新登录
func (s *authService) ChangePassword(ctx context.Context, userID, current, password string) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)); err != nil {
		return ErrInvalidCredentials
	}
	return s.setPassword(ctx, user, password)
}

// ResetPassword 运营侧按邮箱重置密码，由 cmd/admin -reset 调用
func (s *authService) ResetPassword(ctx context.Context, email, password string) error {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return s.setPassword(ctx, user, password)
}

func (s *authService) setPassword(ctx context.Context, user *model.User, password string) error {
	if len(password) < minPasswordLength {
		return ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	user.Password = string(hash)

	if err := s.sessions.DeleteUser(ctx, user.ID); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}
	logger.Log.Info("password changed", zap.String("user_id", user.ID))
	s.publish(ctx, realtime.ActionSignedOut, user.ID)
	return nil
}

func (s *authService) publish(ctx context.Context, action, userID string) {
	evt := realtime.NewEvent(realtime.TableAuth, action, userID, nil)
	if err := s.publisher.Publish(ctx, evt); err != nil {
		logger.Log.Warn("publish auth event failed", zap.String("action", action), zap.Error(err))
	}
}
