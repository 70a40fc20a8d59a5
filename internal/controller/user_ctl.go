package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"store_rating_v1/internal/api/dto"
	"store_rating_v1/internal/middleware"
	"store_rating_v1/internal/service"
)

// ==================== UserController 普通用户控制器 ====================

// UserController 浏览门店、提交与修改评分
type UserController struct {
	storeService  *service.StoreService
	ratingService *service.RatingService
	log           *zap.Logger
}

// NewUserController 创建用户控制器
func NewUserController(storeService *service.StoreService, ratingService *service.RatingService, log *zap.Logger) *UserController {
	return &UserController{storeService: storeService, ratingService: ratingService, log: log}
}

// ==================== 门店 ====================

// ListStores 门店列表
// @Summary 门店列表，附带平均分与本人评分
// @Tags User
// @Produce json
// @Security BearerAuth
// @Param name query string false "名称（模糊）"
// @Param address query string false "地址（模糊）"
// @Param sort query string false "name|address|average_rating|created_at"
// @Param order query string false "asc|desc"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页条数" default(10)
// @Success 200 {object} dto.StoreListResponse
// @Router /user/stores [get]
func (ctrl *UserController) ListStores(c *gin.Context) {
	var req dto.StoreListRequest
	if !bindQuery(c, &req) {
		return
	}

	resp, err := ctrl.storeService.ListForUser(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetStore 门店详情
// @Summary 门店详情
// @Tags User
// @Produce json
// @Security BearerAuth
// @Param id path int true "门店 ID"
// @Success 200 {object} dto.StoreResponse
// @Failure 400 {object} dto.MessageResponse
// @Failure 404 {object} dto.MessageResponse
// @Router /user/stores/{id} [get]
func (ctrl *UserController) GetStore(c *gin.Context) {
	store, err := ctrl.storeService.Detail(c.Request.Context(), pathID(c, "id"))
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.StoreResponse{Store: store})
}

// SearchStores 门店搜索
// @Summary 门店搜索
// @Tags User
// @Produce json
// @Security BearerAuth
// @Param q query string true "关键词"
// @Param use_fulltext query bool false "使用全文检索"
// @Success 200 {object} dto.StoreSearchResponse
// @Failure 400 {object} dto.MessageResponse
// @Router /user/search/stores [get]
func (ctrl *UserController) SearchStores(c *gin.Context) {
	searchStores(c, ctrl.storeService, ctrl.log)
}

// ==================== 评分 ====================

// ListRatings 本人评分
// @Summary 本人的 active 评分
// @Tags User
// @Produce json
// @Security BearerAuth
// @Param store_id query int false "门店 ID"
// @Param score query int false "分数 1-5"
// @Param sort query string false "store_name|score|created_at"
// @Param order query string false "asc|desc"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页条数" default(10)
// @Success 200 {object} dto.RatingListResponse
// @Failure 400 {object} dto.MessageResponse
// @Router /user/ratings [get]
func (ctrl *UserController) ListRatings(c *gin.Context) {
	var req dto.RatingListRequest
	if !bindQuery(c, &req) {
		return
	}

	resp, err := ctrl.ratingService.ListForUser(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// SubmitRating 提交评分
// @Summary 对门店提交评分，每个门店只能提交一次
// @Tags User
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param store_id path int true "门店 ID"
// @Param request body dto.SubmitRatingRequest true "score 1-5，text 可选"
// @Success 201 {object} dto.RatingResponse
// @Failure 400 {object} dto.MessageResponse
// @Failure 404 {object} dto.MessageResponse
// @Failure 409 {object} dto.MessageResponse
// @Router /user/rate/{store_id} [post]
func (ctrl *UserController) SubmitRating(c *gin.Context) {
	var req dto.SubmitRatingRequest
	if !bindJSON(c, &req) {
		return
	}

	rating, err := ctrl.ratingService.Submit(c.Request.Context(), middleware.GetUserID(c), pathID(c, "store_id"), &req)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}

	c.JSON(http.StatusCreated, dto.RatingResponse{
		Message: "Rating submitted successfully.",
		Rating:  rating,
	})
}

// EditRating 修改评分
// @Summary 修改本人评分，score 与 text 至少一个
// @Tags User
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param rating_id path int true "评分 ID"
// @Param request body dto.EditRatingRequest true "score 1-5，text 可为 null"
// @Success 200 {object} dto.RatingResponse
// @Failure 400 {object} dto.MessageResponse
// @Failure 404 {object} dto.MessageResponse
// @Router /user/edit/rating/{rating_id} [put]
func (ctrl *UserController) EditRating(c *gin.Context) {
	var req dto.EditRatingRequest
	if !bindJSON(c, &req) {
		return
	}

	rating, err := ctrl.ratingService.Edit(c.Request.Context(), middleware.GetUserID(c), pathID(c, "rating_id"), &req)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.RatingResponse{
		Message: "Rating updated successfully.",
		Rating:  rating,
	})
}
