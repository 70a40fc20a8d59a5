package model

// UserRole 系统角色
type UserRole string

const (
	UserRoleAdmin      UserRole = "admin"       // 系统管理员
	UserRoleNormal     UserRole = "normal_user" // 普通用户
	UserRoleStoreOwner UserRole = "store_owner" // 店主
)

// Valid 是否为合法角色
func (r UserRole) Valid() bool {
	switch r {
	case UserRoleAdmin, UserRoleNormal, UserRoleStoreOwner:
		return true
	}
	return false
}

// User 用户
// 角色创建后不可修改；密码哈希只通过修改密码流程变更
type User struct {
	BaseModel
	Name         string   `gorm:"size:60;not null" json:"name"`
	Email        string   `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string   `gorm:"size:255;not null" json:"-"`
	Address      string   `gorm:"size:400" json:"address"`
	Role         UserRole `gorm:"size:20;not null;default:'normal_user';index" json:"role"`
}

func (User) TableName() string {
	return "users"
}
