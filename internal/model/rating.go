package model

import "time"

// RatingStatus 评分状态
type RatingStatus string

const (
	RatingStatusActive   RatingStatus = "active"
	RatingStatusPending  RatingStatus = "pending"
	RatingStatusRejected RatingStatus = "rejected"
)

// Valid 是否为合法状态
func (s RatingStatus) Valid() bool {
	switch s {
	case RatingStatusActive, RatingStatusPending, RatingStatusRejected:
		return true
	}
	return false
}

const (
	MinScore = 1
	MaxScore = 5
)

// Rating 评分
// (store_id, user_id) 唯一：同一用户对同一门店只能有一条评分，重复提交是冲突而不是覆盖
type Rating struct {
	RatingID   int64        `gorm:"column:rating_id;primaryKey;autoIncrement" json:"rating_id"`
	StoreID    int64        `gorm:"not null;uniqueIndex:idx_ratings_store_user,priority:1" json:"store_id"`
	UserID     int64        `gorm:"not null;uniqueIndex:idx_ratings_store_user,priority:2;index" json:"user_id"`
	Score      int          `gorm:"not null;check:chk_ratings_score,score >= 1 AND score <= 5" json:"score"`
	Text       *string      `gorm:"type:text;default:''" json:"text"`
	LikesCount int          `gorm:"not null;default:0" json:"likes_count"`
	Status     RatingStatus `gorm:"size:20;not null;default:'active';index" json:"status"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`

	Store *Store `gorm:"foreignKey:StoreID" json:"-"`
	User  *User  `gorm:"foreignKey:UserID" json:"-"`
}

func (Rating) TableName() string {
	return "ratings"
}
