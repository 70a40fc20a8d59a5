package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"store_rating_v1/internal/api/dto"
	"store_rating_v1/internal/middleware"
	"store_rating_v1/internal/service"
)

// ==================== AuthController 认证控制器 ====================

// AuthController 登录、注册、修改密码
type AuthController struct {
	authService *service.AuthService
	log         *zap.Logger
}

// NewAuthController 创建认证控制器
func NewAuthController(authService *service.AuthService, log *zap.Logger) *AuthController {
	return &AuthController{authService: authService, log: log}
}

// Login 用户登录
// @Summary 用户登录
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "登录信息"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} dto.MessageResponse
// @Failure 401 {object} dto.MessageResponse
// @Router /user/login [post]
func (ctrl *AuthController) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := ctrl.authService.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Register 自助注册
// @Summary 注册普通用户
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "注册信息"
// @Success 201 {object} dto.UserResponse
// @Failure 400 {object} dto.MessageResponse
// @Failure 409 {object} dto.MessageResponse
// @Router /user/register [post]
func (ctrl *AuthController) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := ctrl.authService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}

	c.JSON(http.StatusCreated, dto.UserResponse{
		Message: "User registered successfully",
		User:    user,
	})
}

// ChangePassword 修改密码
// @Summary 修改密码
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ChangePasswordRequest true "密码信息"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.MessageResponse
// @Failure 401 {object} dto.MessageResponse
// @Router /user/change-password [post]
func (ctrl *AuthController) ChangePassword(c *gin.Context) {
	var req dto.ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	userID := middleware.GetUserID(c)
	if err := ctrl.authService.ChangePassword(c.Request.Context(), userID, &req); err != nil {
		respondError(c, ctrl.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Password updated successfully"})
}

// Me 当前用户信息
// @Summary 获取当前用户信息
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} dto.MessageResponse
// @Router /user/me [get]
func (ctrl *AuthController) Me(c *gin.Context) {
	user, err := ctrl.authService.GetProfile(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.UserResponse{User: user})
}
