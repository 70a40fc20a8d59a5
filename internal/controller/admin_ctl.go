package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"store_rating_v1/internal/api/dto"
	"store_rating_v1/internal/service"
)

// ==================== AdminController 管理员控制器 ====================

// AdminController 用户 / 门店 / 评分管理
type AdminController struct {
	userService   *service.UserService
	storeService  *service.StoreService
	ratingService *service.RatingService
	log           *zap.Logger
}

// NewAdminController 创建管理员控制器
func NewAdminController(
	userService *service.UserService,
	storeService *service.StoreService,
	ratingService *service.RatingService,
	log *zap.Logger,
) *AdminController {
	return &AdminController{
		userService:   userService,
		storeService:  storeService,
		ratingService: ratingService,
		log:           log,
	}
}

// ==================== 用户 ====================

// CreateUser 创建用户
// @Summary 创建任意角色的用户
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateUserRequest true "用户信息"
// @Success 201 {object} dto.UserResponse
// @Failure 400 {object} dto.MessageResponse
// @Failure 409 {object} dto.MessageResponse
// @Router /admin/create/user [post]
func (ctrl *AdminController) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := ctrl.userService.CreateUser(c.Request.Context(), &req)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}

	c.JSON(http.StatusCreated, dto.UserResponse{
		Message: "User created successfully",
		User:    user,
	})
}

// ListUsers 用户列表
// @Summary 用户列表
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param name query string false "姓名（模糊）"
// @Param email query string false "邮箱（模糊）"
// @Param address query string false "地址（模糊）"
// @Param role query string false "角色，非法值忽略"
// @Param sort query string false "name|email|role|created_at"
// @Param order query string false "asc|desc"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页条数" default(10)
// @Success 200 {object} dto.UserListResponse
// @Router /admin/users [get]
func (ctrl *AdminController) ListUsers(c *gin.Context) {
	var req dto.UserListRequest
	if !bindQuery(c, &req) {
		return
	}

	resp, err := ctrl.userService.List(c.Request.Context(), &req)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetUser 用户详情
// @Summary 用户详情，店主附带 store_rating
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户 ID"
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} dto.MessageResponse
// @Failure 404 {object} dto.MessageResponse
// @Router /admin/users/{id} [get]
func (ctrl *AdminController) GetUser(c *gin.Context) {
	user, err := ctrl.userService.Detail(c.Request.Context(), pathID(c, "id"))
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.UserResponse{User: user})
}

// SearchUsers 用户搜索
// @Summary 按姓名 / 邮箱 / 地址搜索用户
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param q query string true "关键词"
// @Success 200 {object} dto.UserSearchResponse
// @Failure 400 {object} dto.MessageResponse
// @Router /admin/search/users [get]
func (ctrl *AdminController) SearchUsers(c *gin.Context) {
	resp, err := ctrl.userService.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ==================== 门店 ====================

// CreateStore 为店主创建门店
// @Summary 创建门店
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.AdminCreateStoreRequest true "门店信息"
// @Success 201 {object} dto.StoreResponse
// @Failure 400 {object} dto.MessageResponse
// @Failure 409 {object} dto.MessageResponse
// @Router /admin/create/store [post]
func (ctrl *AdminController) CreateStore(c *gin.Context) {
	var req dto.AdminCreateStoreRequest
	if !bindJSON(c, &req) {
		return
	}

	store, err := ctrl.storeService.CreateByAdmin(c.Request.Context(), &req)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}

	c.JSON(http.StatusCreated, dto.StoreResponse{
		Message: "Store created successfully",
		Store:   store,
	})
}

// ListStores 门店列表
// @Summary 门店列表，附带平均分
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param name query string false "名称（模糊）"
// @Param email query string false "邮箱（模糊）"
// @Param address query string false "地址（模糊）"
// @Param owner_id query int false "店主 ID，非法值忽略"
// @Param sort query string false "name|email|average_rating|created_at"
// @Param order query string false "asc|desc"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页条数" default(10)
// @Success 200 {object} dto.StoreListResponse
// @Router /admin/stores [get]
func (ctrl *AdminController) ListStores(c *gin.Context) {
	var req dto.StoreListRequest
	if !bindQuery(c, &req) {
		return
	}

	resp, err := ctrl.storeService.ListForAdmin(c.Request.Context(), &req)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetStore 门店详情
// @Summary 门店详情，附带店主名与平均分
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "门店 ID"
// @Success 200 {object} dto.StoreResponse
// @Failure 400 {object} dto.MessageResponse
// @Failure 404 {object} dto.MessageResponse
// @Router /admin/stores/{id} [get]
func (ctrl *AdminController) GetStore(c *gin.Context) {
	store, err := ctrl.storeService.Detail(c.Request.Context(), pathID(c, "id"))
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.StoreResponse{Store: store})
}

// SearchStores 门店搜索
// @Summary 门店搜索
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param q query string true "关键词"
// @Param use_fulltext query bool false "使用全文检索"
// @Success 200 {object} dto.StoreSearchResponse
// @Failure 400 {object} dto.MessageResponse
// @Router /admin/search/stores [get]
func (ctrl *AdminController) SearchStores(c *gin.Context) {
	searchStores(c, ctrl.storeService, ctrl.log)
}

// ==================== 评分 / 统计 ====================

// ListRatings 评分列表
// @Summary 全部评分
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param store_id query int false "门店 ID"
// @Param user_id query int false "用户 ID"
// @Param score query int false "分数 1-5"
// @Param status query string false "active|pending|rejected"
// @Param sort query string false "rating_id|store_id|user_id|score|status|created_at|updated_at"
// @Param order query string false "asc|desc"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页条数" default(10)
// @Success 200 {object} dto.RatingListResponse
// @Failure 400 {object} dto.MessageResponse
// @Router /admin/ratings [get]
func (ctrl *AdminController) ListRatings(c *gin.Context) {
	var req dto.RatingListRequest
	if !bindQuery(c, &req) {
		return
	}

	resp, err := ctrl.ratingService.ListForAdmin(c.Request.Context(), &req)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Dashboard 平台统计
// @Summary 用户 / 门店 / 评分总数
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.DashboardResponse
// @Router /admin/dashboard [get]
func (ctrl *AdminController) Dashboard(c *gin.Context) {
	resp, err := ctrl.userService.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// searchStores 管理员与普通用户共用的门店搜索
func searchStores(c *gin.Context, stores *service.StoreService, log *zap.Logger) {
	var req dto.StoreSearchRequest
	if !bindQuery(c, &req) {
		return
	}

	resp, err := stores.Search(c.Request.Context(), &req)
	if err != nil {
		respondError(c, log, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
