package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"wellness_shop/internal/domain/user/model"
	"wellness_shop/internal/domain/user/service"
	"wellness_shop/internal/pkg/middleware"
	"wellness_shop/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockAuthService is a mock of service.AuthService
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) SignIn(ctx context.Context, email, password string) (*service.LoginResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LoginResult), args.Error(1)
}

func (m *MockAuthService) Session(ctx context.Context, userID string) (*service.SessionInfo, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SessionInfo), args.Error(1)
}

func (m *MockAuthService) SignOut(ctx context.Context, userID, sessionID string) error {
	return m.Called(ctx, userID, sessionID).Error(0)
}

func (m *MockAuthService) IsAdmin(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAuthService) Register(ctx context.Context, email, password string) (*model.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthService) AssignRole(ctx context.Context, userID, role string) error {
	return m.Called(ctx, userID, role).Error(0)
}

func (m *MockAuthService) ChangePassword(ctx context.Context, userID, current, password string) error {
	return m.Called(ctx, userID, current, password).Error(0)
}

func (m *MockAuthService) ResetPassword(ctx context.Context, email, password string) error {
	return m.Called(ctx, email, password).Error(0)
}

func newRouter(svc service.AuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewUserHandler(svc)
	r := gin.New()
	r.POST("/auth/login", h.Login)
	// 跳过真实鉴权，直接写入上下文
	fakeAuth := func(c *gin.Context) {
		c.Set(middleware.CtxUserID, "u-1")
		c.Set(middleware.CtxSessionID, "sess-1")
	}
	r.GET("/auth/session", fakeAuth, h.Session)
	r.POST("/auth/logout", fakeAuth, h.Logout)
	r.POST("/auth/password", fakeAuth, h.ChangePassword)
	return r
}

func TestLoginHandler(t *testing.T) {
	t.Run("bad credentials", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("SignIn", mock.Anything, "a@b.co", "x").Return(nil, service.ErrInvalidCredentials)

		w := httptest.NewRecorder()
		newRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/login",
			strings.NewReader(`{"email":"a@b.co","password":"x"}`)))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		var resp response.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, response.ErrAuthFailed, resp.Code)
		assert.Contains(t, resp.Message, "Identifiants invalides")
	})

	t.Run("success", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("SignIn", mock.Anything, "a@b.co", "pw").Return(&service.LoginResult{Token: "tok", IsAdmin: true}, nil)

		w := httptest.NewRecorder()
		newRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/login",
			strings.NewReader(`{"email":"a@b.co","password":"pw"}`)))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"token":"tok"`)
	})

	t.Run("missing fields", func(t *testing.T) {
		svc := new(MockAuthService)
		w := httptest.NewRecorder()
		newRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{}`)))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSessionAndLogout(t *testing.T) {
	svc := new(MockAuthService)
	svc.On("Session", mock.Anything, "u-1").Return(&service.SessionInfo{User: &model.User{Email: "a@b.co"}, IsAdmin: true}, nil)
	svc.On("SignOut", mock.Anything, "u-1", "sess-1").Return(nil)
	r := newRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/session", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"isAdmin":true`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestChangePasswordHandler(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"success", nil, http.StatusOK},
		{"wrong current password", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"weak password", service.ErrWeakPassword, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := new(MockAuthService)
			svc.On("ChangePassword", mock.Anything, "u-1", "old-secret", "new-secret").Return(tc.err)

			w := httptest.NewRecorder()
			newRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/password",
				strings.NewReader(`{"currentPassword":"old-secret","newPassword":"new-secret"}`)))

			assert.Equal(t, tc.status, w.Code)
			svc.AssertExpectations(t)
		})
	}

	t.Run("missing fields", func(t *testing.T) {
		svc := new(MockAuthService)
		w := httptest.NewRecorder()
		newRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/password", strings.NewReader(`{}`)))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "ChangePassword", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
