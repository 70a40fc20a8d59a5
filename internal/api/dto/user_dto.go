package dto

import (
	"time"

	"store_rating_v1/pkg/listing"
)

// ==================== 登录 / 注册 ====================

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token string    `json:"token"`
	User  *UserInfo `json:"user"`
}

// RegisterRequest 注册请求，角色固定为 normal_user
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=60"`
	Email    string `json:"email" binding:"required,email_format"`
	Password string `json:"password" binding:"required,password"`
	Address  string `json:"address" binding:"max=400"`
}

// ==================== 密码修改 ====================

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword     string `json:"oldPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,password"`
	ConfirmPassword string `json:"confirmPassword" binding:"required,eqfield=NewPassword"`
}

// ==================== 用户信息 ====================

// UserInfo 用户信息
type UserInfo struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Address   string    `json:"address"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`

	// StoreRating 仅店主详情返回：名下门店的平均分
	StoreRating *float64 `json:"store_rating,omitempty"`
}

// UserResponse 单个用户响应
type UserResponse struct {
	Message string    `json:"message,omitempty"`
	User    *UserInfo `json:"user"`
}

// ==================== 用户管理（管理员） ====================

// CreateUserRequest 管理员创建用户请求
type CreateUserRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=60"`
	Email    string `json:"email" binding:"required,email_format"`
	Password string `json:"password" binding:"required,password"`
	Address  string `json:"address" binding:"max=400"`
	Role     string `json:"role" binding:"required,oneof=admin normal_user store_owner"`
}

// ==================== 用户列表 ====================

// UserListRequest 用户列表请求
// page / limit 保留原始字符串，非法值由分页器回退默认值
type UserListRequest struct {
	Name    string `form:"name"`
	Email   string `form:"email"`
	Address string `form:"address"`
	Role    string `form:"role"`
	Sort    string `form:"sort"`
	Order   string `form:"order"`
	Page    string `form:"page"`
	Limit   string `form:"limit"`
}

// UserListResponse 用户列表响应
type UserListResponse struct {
	Users      []*UserInfo        `json:"users"`
	Pagination listing.Pagination `json:"pagination"`
}

// UserSearchResponse 用户搜索响应
type UserSearchResponse struct {
	SearchTerm string      `json:"searchTerm"`
	Results    []*UserInfo `json:"results"`
	Count      int         `json:"count"`
}

// ==================== 仪表盘 ====================

// DashboardData 平台计数
type DashboardData struct {
	TotalUsers   int64 `json:"totalUsers"`
	TotalStores  int64 `json:"totalStores"`
	TotalRatings int64 `json:"totalRatings"`
}

// DashboardResponse 仪表盘响应
type DashboardResponse struct {
	DashboardData DashboardData `json:"dashboardData"`
}

// MessageResponse 通用消息响应
type MessageResponse struct {
	Message string `json:"message"`
}
