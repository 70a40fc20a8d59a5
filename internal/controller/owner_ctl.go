package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"store_rating_v1/internal/api/dto"
	"store_rating_v1/internal/middleware"
	"store_rating_v1/internal/service"
)

// ==================== OwnerController 店主控制器 ====================

// OwnerController 店主管理自己的门店
type OwnerController struct {
	storeService  *service.StoreService
	ratingService *service.RatingService
	log           *zap.Logger
}

// NewOwnerController 创建店主控制器
func NewOwnerController(storeService *service.StoreService, ratingService *service.RatingService, log *zap.Logger) *OwnerController {
	return &OwnerController{storeService: storeService, ratingService: ratingService, log: log}
}

// CreateStore 店主创建门店
// @Summary 创建门店，店主为当前用户
// @Tags Owner
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateStoreRequest true "门店信息"
// @Success 201 {object} dto.StoreResponse
// @Failure 400 {object} dto.MessageResponse
// @Failure 409 {object} dto.MessageResponse
// @Router /owner/create/store [post]
func (ctrl *OwnerController) CreateStore(c *gin.Context) {
	var req dto.CreateStoreRequest
	if !bindJSON(c, &req) {
		return
	}

	store, err := ctrl.storeService.CreateByOwner(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}

	c.JSON(http.StatusCreated, dto.StoreResponse{
		Message: "Store created successfully",
		Store:   store,
	})
}

// ListStores 名下门店
// @Summary 名下门店，附带平均分、评分数与最近评分
// @Tags Owner
// @Produce json
// @Security BearerAuth
// @Param name query string false "名称（模糊）"
// @Param address query string false "地址（模糊）"
// @Param sort query string false "name|average_rating|total_ratings_count|created_at"
// @Param order query string false "asc|desc"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页条数" default(10)
// @Success 200 {object} dto.StoreListResponse
// @Router /owner/stores [get]
func (ctrl *OwnerController) ListStores(c *gin.Context) {
	var req dto.StoreListRequest
	if !bindQuery(c, &req) {
		return
	}

	resp, err := ctrl.storeService.ListForOwner(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetStore 名下门店详情
// @Summary 门店统计与评分列表，非本人门店返回 404
// @Tags Owner
// @Produce json
// @Security BearerAuth
// @Param store_id path int true "门店 ID"
// @Param score query int false "分数 1-5"
// @Param sort query string false "user_name|score|created_at"
// @Param order query string false "asc|desc"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页条数" default(10)
// @Success 200 {object} dto.OwnerStoreDetailResponse
// @Failure 400 {object} dto.MessageResponse
// @Failure 404 {object} dto.MessageResponse
// @Router /owner/store/{store_id} [get]
func (ctrl *OwnerController) GetStore(c *gin.Context) {
	var req dto.RatingListRequest
	if !bindQuery(c, &req) {
		return
	}

	resp, err := ctrl.storeService.OwnerStoreDetail(c.Request.Context(), middleware.GetUserID(c), pathID(c, "store_id"), &req)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListRatings 名下门店的评分
// @Summary 名下所有门店的 active 评分
// @Tags Owner
// @Produce json
// @Security BearerAuth
// @Param store_id query int false "门店 ID"
// @Param score query int false "分数 1-5"
// @Param sort query string false "user_name|score|created_at"
// @Param order query string false "asc|desc"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页条数" default(10)
// @Success 200 {object} dto.RatingListResponse
// @Failure 400 {object} dto.MessageResponse
// @Router /owner/ratings [get]
func (ctrl *OwnerController) ListRatings(c *gin.Context) {
	var req dto.RatingListRequest
	if !bindQuery(c, &req) {
		return
	}

	resp, err := ctrl.ratingService.ListForOwner(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
