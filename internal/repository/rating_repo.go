package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"store_rating_v1/internal/model"
	"store_rating_v1/pkg/listing"
)

// ==================== RatingRepository 评分仓库 ====================

// RatingRepository 评分仓库接口
type RatingRepository interface {
	Create(ctx context.Context, rating *model.Rating) error
	GetByID(ctx context.Context, id int64) (*model.Rating, error)
	UpdateOwned(ctx context.Context, ratingID, userID int64, fields map[string]interface{}) (bool, error)
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context, filter RatingFilter) ([]RatingRow, int64, error)
	RecentByStores(ctx context.Context, storeIDs []int64, perStore int) (map[int64][]RatingRow, error)
}

// RatingView 评分列表视角
type RatingView int

const (
	RatingViewAdmin RatingView = iota // 管理员：全部评分，任意状态
	RatingViewUser                    // 普通用户：本人的 active 评分
	RatingViewOwner                   // 店主：名下门店的 active 评分
)

// RatingFilter 评分列表条件
type RatingFilter struct {
	View       RatingView
	Predicates []listing.Predicate

	// UserScope 普通用户视角的强制范围
	UserScope int64
	// OwnerScope 店主视角的强制范围
	OwnerScope int64
	// StoreScope 店主查看单个门店时的强制范围
	StoreScope int64

	Sort  string
	Order string
	Page  listing.Page
}

// RatingRow 评分查询结果（含门店名、用户名）
type RatingRow struct {
	RatingID     int64              `gorm:"column:rating_id"`
	StoreID      int64              `gorm:"column:store_id"`
	UserID       int64              `gorm:"column:user_id"`
	Score        int                `gorm:"column:score"`
	Text         *string            `gorm:"column:text"`
	LikesCount   int                `gorm:"column:likes_count"`
	Status       model.RatingStatus `gorm:"column:status"`
	CreatedAt    time.Time          `gorm:"column:created_at"`
	UpdatedAt    time.Time          `gorm:"column:updated_at"`
	StoreName    string             `gorm:"column:store_name"`
	StoreAddress string             `gorm:"column:store_address"`
	UserName     string             `gorm:"column:user_name"`
	UserEmail    string             `gorm:"column:user_email"`
}

var ratingColumns = []string{
	"r.rating_id", "r.store_id", "r.user_id", "r.score", "r.text", "r.likes_count",
	"r.status", "r.created_at", "r.updated_at",
	"s.name AS store_name", "s.address AS store_address",
	"u.name AS user_name", "u.email AS user_email",
}

var ratingFields = map[RatingView]listing.Fields{
	RatingViewAdmin: {
		"store_id": {Expr: "r.store_id", Op: listing.OpEqual},
		"user_id":  {Expr: "r.user_id", Op: listing.OpEqual},
		"score":    {Expr: "r.score", Op: listing.OpEqual},
		"status":   {Expr: "r.status", Op: listing.OpEqual},
	},
	RatingViewUser: {
		"store_id": {Expr: "r.store_id", Op: listing.OpEqual},
		"score":    {Expr: "r.score", Op: listing.OpEqual},
	},
	RatingViewOwner: {
		"store_id": {Expr: "r.store_id", Op: listing.OpEqual},
		"score":    {Expr: "r.score", Op: listing.OpEqual},
	},
}

var ratingSorts = map[RatingView]listing.Sorts{
	RatingViewAdmin: {
		Allowed: map[string]string{
			"rating_id":  "r.rating_id",
			"store_id":   "r.store_id",
			"user_id":    "r.user_id",
			"score":      "r.score",
			"status":     "r.status",
			"created_at": "r.created_at",
			"updated_at": "r.updated_at",
		},
		TieBreak: "r.rating_id",
	},
	RatingViewUser: {
		Allowed: map[string]string{
			"store_name": "s.name",
			"score":      "r.score",
			"created_at": "r.created_at",
		},
		TieBreak: "r.rating_id",
	},
	RatingViewOwner: {
		Allowed: map[string]string{
			"user_name":  "u.name",
			"score":      "r.score",
			"created_at": "r.created_at",
		},
		TieBreak: "r.rating_id",
	},
}

// ==================== 实现 ====================

type ratingRepository struct {
	db *gorm.DB
}

// NewRatingRepository 创建评分仓库
func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

// Create 创建评分，(store_id, user_id) 冲突由数据库唯一索引判定
func (r *ratingRepository) Create(ctx context.Context, rating *model.Rating) error {
	return r.db.WithContext(ctx).Create(rating).Error
}

// GetByID 根据 ID 获取评分，不存在时返回 nil
func (r *ratingRepository) GetByID(ctx context.Context, id int64) (*model.Rating, error) {
	var rating model.Rating
	err := r.db.WithContext(ctx).Where("rating_id = ?", id).First(&rating).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

// UpdateOwned 仅当评分属于 userID 时更新，返回是否命中
// 归属校验和更新在同一条 UPDATE 中完成
func (r *ratingRepository) UpdateOwned(ctx context.Context, ratingID, userID int64, fields map[string]interface{}) (bool, error) {
	if _, ok := fields["updated_at"]; !ok {
		fields["updated_at"] = time.Now()
	}

	result := r.db.WithContext(ctx).
		Model(&model.Rating{}).
		Where("rating_id = ? AND user_id = ?", ratingID, userID).
		Updates(fields)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Count 评分总数（所有状态）
func (r *ratingRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Rating{}).Count(&count).Error
	return count, err
}

// List 评分列表
func (r *ratingRepository) List(ctx context.Context, filter RatingFilter) ([]RatingRow, int64, error) {
	fields, ok := ratingFields[filter.View]
	if !ok {
		return nil, 0, fmt.Errorf("unknown rating view: %d", filter.View)
	}

	st := &listing.Statement{
		Dialect: listing.DialectOf(r.db),
		From:    "ratings r",
		Where:   listing.NewBuilder(fields),
		Order:   ratingSorts[filter.View].Resolve(filter.Sort, filter.Order),
		Page:    filter.Page,
	}
	st.Select(ratingColumns...)
	st.Join("JOIN stores s ON s.id = r.store_id", true)
	st.Join("JOIN users u ON u.id = r.user_id", true)

	active := string(model.RatingStatusActive)
	switch filter.View {
	case RatingViewUser:
		st.Where.Require("r.user_id = ?", filter.UserScope)
		st.Where.Require("r.status = ?", active)
	case RatingViewOwner:
		st.Where.Require("s.owner_id = ?", filter.OwnerScope)
		if filter.StoreScope > 0 {
			st.Where.Require("r.store_id = ?", filter.StoreScope)
		}
		st.Where.Require("r.status = ?", active)
	}

	for _, p := range filter.Predicates {
		if err := st.Where.Add(p.Field, p.Value); err != nil {
			return nil, 0, err
		}
	}

	return listing.Run[RatingRow](ctx, r.db, st)
}

// RecentByStores 每个门店最近的 perStore 条 active 评分
func (r *ratingRepository) RecentByStores(ctx context.Context, storeIDs []int64, perStore int) (map[int64][]RatingRow, error) {
	result := make(map[int64][]RatingRow, len(storeIDs))
	if len(storeIDs) == 0 {
		return result, nil
	}

	var rows []RatingRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT * FROM (
			SELECT r.rating_id, r.store_id, r.user_id, r.score, r.text, r.likes_count,
				r.status, r.created_at, r.updated_at, u.name AS user_name, u.email AS user_email,
				ROW_NUMBER() OVER (PARTITION BY r.store_id ORDER BY r.created_at DESC, r.rating_id DESC) AS rn
			FROM ratings r
			JOIN users u ON u.id = r.user_id
			WHERE r.store_id IN ? AND r.status = ?
		) recent
		WHERE recent.rn <= ?
		ORDER BY recent.store_id, recent.rn`,
		storeIDs, string(model.RatingStatusActive), perStore,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		result[row.StoreID] = append(result[row.StoreID], row)
	}
	return result, nil
}
