package dto

import (
	"encoding/json"
	"time"

	"store_rating_v1/pkg/listing"
)

// ================== Store DTO ==================

// CreateStoreRequest 店主创建门店请求，owner_id 取自 token
type CreateStoreRequest struct {
	Name    string `json:"name" binding:"required,min=2,max=100"`
	Address string `json:"address" binding:"required,max=400"`
	Email   string `json:"email" binding:"omitempty,email_format"`
}

// AdminCreateStoreRequest 管理员创建门店请求
type AdminCreateStoreRequest struct {
	Name    string `json:"name" binding:"required,min=2,max=100"`
	Address string `json:"address" binding:"required,max=400"`
	Email   string `json:"email" binding:"omitempty,email_format"`
	OwnerID int64  `json:"owner_id" binding:"required"`
}

// StoreInfo 门店响应
type StoreInfo struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	Address           string    `json:"address"`
	Email             *string   `json:"email"`
	OwnerID           int64     `json:"owner_id"`
	OwnerName         string    `json:"owner_name,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	AverageRating     *float64  `json:"average_rating,omitempty"`
	TotalRatingsCount *int64    `json:"total_ratings_count,omitempty"`

	// UserRating 普通用户视角：当前用户的 active 评分
	UserRating *int `json:"user_rating,omitempty"`
	// ViewerScoped 普通用户视角，未评分时 user_rating 输出 null
	ViewerScoped bool `json:"-"`

	// RecentRatings 店主视角：最近的评分
	RecentRatings []*RatingInfo `json:"recent_ratings,omitempty"`
}

// MarshalJSON 普通用户视角下总是输出 user_rating
func (s StoreInfo) MarshalJSON() ([]byte, error) {
	type alias StoreInfo
	if !s.ViewerScoped {
		return json.Marshal(alias(s))
	}
	return json.Marshal(struct {
		alias
		UserRating *int `json:"user_rating"`
	}{alias(s), s.UserRating})
}

// StoreResponse 单个门店响应
type StoreResponse struct {
	Message string     `json:"message,omitempty"`
	Store   *StoreInfo `json:"store"`
}

// StoreListRequest 门店列表请求
type StoreListRequest struct {
	Name    string `form:"name"`
	Email   string `form:"email"`
	Address string `form:"address"`
	OwnerID string `form:"owner_id"`
	Sort    string `form:"sort"`
	Order   string `form:"order"`
	Page    string `form:"page"`
	Limit   string `form:"limit"`
}

// StoreListResponse 门店列表响应
type StoreListResponse struct {
	Stores     []*StoreInfo       `json:"stores"`
	Pagination listing.Pagination `json:"pagination"`
}

// StoreSearchRequest 门店搜索请求
type StoreSearchRequest struct {
	Q           string `form:"q"`
	UseFullText bool   `form:"use_fulltext"`
}

// StoreSearchResponse 门店搜索响应
type StoreSearchResponse struct {
	SearchTerm string       `json:"searchTerm"`
	SearchType string       `json:"searchType"`
	Results    []*StoreInfo `json:"results"`
	Count      int          `json:"count"`
}

// 搜索方式
const (
	SearchTypeFullText = "fulltext"
	SearchTypeSimple   = "simple_ilike"
)

// StoreMetrics 门店评分统计
type StoreMetrics struct {
	AverageRating     float64 `json:"average_rating"`
	TotalRatingsCount int64   `json:"total_ratings_count"`
}

// OwnerStoreDetailResponse 店主门店详情
type OwnerStoreDetailResponse struct {
	Store      *StoreInfo         `json:"store"`
	Metrics    StoreMetrics       `json:"metrics"`
	Ratings    []*RatingInfo      `json:"ratings"`
	Pagination listing.Pagination `json:"pagination"`
}
