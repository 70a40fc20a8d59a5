package model

// Store 门店
// 邮箱可空，为空时存 NULL，唯一索引允许多个 NULL
type Store struct {
	BaseModel
	Name    string  `gorm:"size:100;not null;index" json:"name"`
	Address string  `gorm:"size:400" json:"address"`
	Email   *string `gorm:"size:100;uniqueIndex" json:"email"`
	OwnerID int64   `gorm:"not null;index" json:"owner_id"`

	Owner *User `gorm:"foreignKey:OwnerID" json:"-"`
}

func (Store) TableName() string {
	return "stores"
}
