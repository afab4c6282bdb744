package handler

import (
	"errors"
	"net/http"

	"wellness_shop/internal/domain/user/service"
	"wellness_shop/internal/pkg/middleware"
	"wellness_shop/pkg/logger"
	"wellness_shop/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserHandler 认证接口
type UserHandler struct {
	service service.AuthService
}

func NewUserHandler(service service.AuthService) *UserHandler {
	return &UserHandler{service: service}
}

// LoginInput 登录输入
type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 邮箱密码登录
// @Summary 后台登录
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body LoginInput true "Credentials"
// @Success 200 {object} response.Response{data=service.LoginResult}
// @Failure 401 {object} response.Response
// @Router /auth/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "Email et mot de passe requis")
		return
	}

	result, err := h.service.SignIn(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, response.ErrAuthFailed,
				"Identifiants invalides. Veuillez vérifier votre email et mot de passe.")
			return
		}
		logger.Log.Error("sign in failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal,
			"Une erreur est survenue lors de la connexion.")
		return
	}
	response.Success(c, result)
}

// Session 当前会话
// @Summary 当前登录用户与管理员标记
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=service.SessionInfo}
// @Router /auth/session [get]
func (h *UserHandler) Session(c *gin.Context) {
	info, err := h.service.Session(c.Request.Context(), c.GetString(middleware.CtxUserID))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.Error(c, http.StatusUnauthorized, response.ErrTokenInvalid, "Session expirée")
			return
		}
		logger.Log.Error("load session failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, response.MsgRetry)
		return
	}
	response.Success(c, info)
}

// Logout 退出登录
// @Summary 退出登录，token 立即失效
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /auth/logout [post]
func (h *UserHandler) Logout(c *gin.Context) {
	err := h.service.SignOut(c.Request.Context(), c.GetString(middleware.CtxUserID), c.GetString(middleware.CtxSessionID))
	if err != nil {
		logger.Log.Error("sign out failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, response.MsgRetry)
		return
	}
	response.Success(c, nil)
}

// ChangePasswordInput 修改密码输入
type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

// ChangePassword 修改密码
// @Summary 修改当前账号密码，所有会话随之失效
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ChangePasswordInput true "Passwords"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/password [post]
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var input ChangePasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "Mot de passe actuel et nouveau mot de passe requis")
		return
	}

	err := h.service.ChangePassword(c.Request.Context(), c.GetString(middleware.CtxUserID), input.CurrentPassword, input.NewPassword)
	switch {
	case err == nil:
		response.Success(c, nil)
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Error(c, http.StatusUnauthorized, response.ErrAuthFailed, "Mot de passe actuel incorrect")
	case errors.Is(err, service.ErrWeakPassword):
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "Le mot de passe doit contenir au moins 8 caractères")
	case errors.Is(err, service.ErrUserNotFound):
		response.Error(c, http.StatusUnauthorized, response.ErrTokenInvalid, "Session expirée")
	default:
		logger.Log.Error("change password failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, response.MsgRetry)
	}
}
