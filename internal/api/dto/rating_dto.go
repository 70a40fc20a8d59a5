package dto

import (
	"bytes"
	"encoding/json"
	"math"
	"time"

	"store_rating_v1/pkg/listing"
)

// ================== Rating DTO ==================

// OptionalScore 评分入参
// 区分未传 / 传了非整数 / 合法整数，范围由 service 校验
type OptionalScore struct {
	Set   bool
	Valid bool
	Value int
}

// UnmarshalJSON 只接受整数值的 JSON number，字符串 "4"、4.5、null 都记为非法
func (s *OptionalScore) UnmarshalJSON(data []byte) error {
	s.Set = true
	s.Valid = false

	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&n); err != nil {
		return nil
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return nil
	}
	s.Valid = true
	s.Value = int(f)
	return nil
}

// OptionalText 评论入参：未传 / null / 字符串
type OptionalText struct {
	Set   bool
	Valid bool
	Value *string
}

// UnmarshalJSON null 合法，非字符串记为非法
func (t *OptionalText) UnmarshalJSON(data []byte) error {
	t.Set = true
	t.Valid = false
	t.Value = nil

	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		t.Valid = true
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	t.Valid = true
	t.Value = &s
	return nil
}

// SubmitRatingRequest 提交评分请求
type SubmitRatingRequest struct {
	Score OptionalScore `json:"score"`
	Text  OptionalText  `json:"text"`
}

// EditRatingRequest 修改评分请求，至少一个字段
type EditRatingRequest struct {
	Score OptionalScore `json:"score"`
	Text  OptionalText  `json:"text"`
}

// RatingInfo 评分响应
type RatingInfo struct {
	RatingID   int64     `json:"rating_id"`
	StoreID    int64     `json:"store_id"`
	UserID     int64     `json:"user_id"`
	Score      int       `json:"score"`
	Text       *string   `json:"text"`
	LikesCount int       `json:"likes_count"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	StoreName string `json:"store_name,omitempty"`
	UserName  string `json:"user_name,omitempty"`
	UserEmail string `json:"user_email,omitempty"`
}

// RatingResponse 单条评分响应
type RatingResponse struct {
	Message string      `json:"message"`
	Rating  *RatingInfo `json:"rating"`
}

// RatingListRequest 评分列表请求
type RatingListRequest struct {
	StoreID string `form:"store_id"`
	UserID  string `form:"user_id"`
	Score   string `form:"score"`
	Status  string `form:"status"`
	Sort    string `form:"sort"`
	Order   string `form:"order"`
	Page    string `form:"page"`
	Limit   string `form:"limit"`
}

// RatingListResponse 评分列表响应
type RatingListResponse struct {
	Ratings    []*RatingInfo      `json:"ratings"`
	Pagination listing.Pagination `json:"pagination"`
}
