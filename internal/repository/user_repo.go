package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"store_rating_v1/internal/model"
	"store_rating_v1/pkg/listing"
)

// ==================== UserRepository 用户仓库 ====================

// UserRepository 用户仓库接口
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context, filter UserFilter) ([]model.User, int64, error)
	Search(ctx context.Context, keyword string, limit int) ([]model.User, error)
}

// UserFilter 用户列表条件
// Predicates 由 service 按接口规则校验后生成，字段必须在 userFields 白名单内
type UserFilter struct {
	Predicates []listing.Predicate
	Sort       string
	Order      string
	Page       listing.Page
}

var userColumns = []string{
	"u.id", "u.name", "u.email", "u.address", "u.role", "u.created_at", "u.updated_at",
}

var userFields = listing.Fields{
	"name":    {Expr: "u.name", Op: listing.OpContains},
	"email":   {Expr: "u.email", Op: listing.OpContains},
	"address": {Expr: "u.address", Op: listing.OpContains},
	"role":    {Expr: "u.role", Op: listing.OpEqual},
}

var userSorts = listing.Sorts{
	Allowed: map[string]string{
		"name":       "u.name",
		"email":      "u.email",
		"role":       "u.role",
		"created_at": "u.created_at",
	},
	TieBreak: "u.id",
}

// ==================== 实现 ====================

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓库
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create 创建用户
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByID 根据 ID 获取用户，不存在时返回 nil
func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail 根据邮箱获取用户，不存在时返回 nil
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdatePassword 更新密码哈希
func (r *userRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Update("password_hash", passwordHash).Error
}

// ExistsByEmail 检查邮箱是否存在
func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("email = ?", email).
		Count(&count).Error
	return count > 0, err
}

// Count 用户总数
func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Count(&count).Error
	return count, err
}

// List 用户列表
func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]model.User, int64, error) {
	st := &listing.Statement{
		Dialect: listing.DialectOf(r.db),
		From:    "users u",
		Where:   listing.NewBuilder(userFields),
		Order:   userSorts.Resolve(filter.Sort, filter.Order),
		Page:    filter.Page,
	}
	st.Select(userColumns...)

	for _, p := range filter.Predicates {
		if err := st.Where.Add(p.Field, p.Value); err != nil {
			return nil, 0, err
		}
	}

	return listing.Run[model.User](ctx, r.db, st)
}

// Search 按姓名 / 邮箱 / 地址模糊搜索，按姓名排序
func (r *userRepository) Search(ctx context.Context, keyword string, limit int) ([]model.User, error) {
	st := &listing.Statement{
		Dialect: listing.DialectOf(r.db),
		From:    "users u",
		Where: listing.NewBuilder(listing.Fields{
			"q": {Op: listing.OpContains, Or: []string{"u.name", "u.email", "u.address"}},
		}),
		Order:    listing.OrderBy("u.name ASC"),
		Page:     listing.Page{Number: 1, Limit: limit},
		NoOffset: true,
	}
	st.Select(userColumns...)

	if err := st.Where.Add("q", keyword); err != nil {
		return nil, err
	}
	return listing.Query[model.User](ctx, r.db, st)
}
