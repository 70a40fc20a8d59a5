package model

import "time"

// BaseModel 公共时间戳
// 评分与门店在本系统中不删除，不使用软删除
type BaseModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
