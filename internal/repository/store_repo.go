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

// ==================== StoreRepository 门店仓库 ====================

// StoreRepository 门店仓库接口
type StoreRepository interface {
	Create(ctx context.Context, store *model.Store) error
	GetByID(ctx context.Context, id int64) (*model.Store, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context, filter StoreFilter) ([]StoreRow, int64, error)
	Detail(ctx context.Context, id int64) (*StoreRow, error)
	Search(ctx context.Context, keyword string, fullText bool) ([]StoreRow, bool, error)
	OwnerAverage(ctx context.Context, ownerID int64) (float64, error)
}

// StoreView 门店列表视角，决定可用的过滤 / 排序字段
type StoreView int

const (
	StoreViewAdmin StoreView = iota // 管理员：全部门店
	StoreViewUser                   // 普通用户：附带本人评分
	StoreViewOwner                  // 店主：仅自己的门店，附带评分条数
)

// StoreFilter 门店列表条件
type StoreFilter struct {
	View       StoreView
	Predicates []listing.Predicate

	// ViewerID 普通用户视角下计算 user_rating 的用户
	ViewerID int64
	// OwnerScope 店主视角下的强制范围，不受过滤参数影响
	OwnerScope int64

	Sort  string
	Order string
	Page  listing.Page
}

// StoreRow 门店查询结果（含派生列）
type StoreRow struct {
	ID                int64     `gorm:"column:id"`
	Name              string    `gorm:"column:name"`
	Address           string    `gorm:"column:address"`
	Email             *string   `gorm:"column:email"`
	OwnerID           int64     `gorm:"column:owner_id"`
	OwnerName         string    `gorm:"column:owner_name"`
	CreatedAt         time.Time `gorm:"column:created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at"`
	AverageRating     float64   `gorm:"column:average_rating"`
	TotalRatingsCount int64     `gorm:"column:total_ratings_count"`
	UserRating        *int      `gorm:"column:user_rating"`
	Rank              float64   `gorm:"column:rank"`
}

// storeAverage 门店平均分：只统计 active 评分
var storeAverage = listing.Average{
	Base:       "s.id",
	Table:      "ratings",
	Alias:      "r",
	ForeignKey: "store_id",
	Score:      "score",
	Status:     "status",
	Active:     string(model.RatingStatusActive),
	As:         "average_rating",
}

var storeColumns = []string{
	"s.id", "s.name", "s.address", "s.email", "s.owner_id", "s.created_at", "s.updated_at",
}

// 各视角的过滤白名单
var storeFields = map[StoreView]listing.Fields{
	StoreViewAdmin: {
		"name":     {Expr: "s.name", Op: listing.OpContains},
		"email":    {Expr: "s.email", Op: listing.OpContains},
		"address":  {Expr: "s.address", Op: listing.OpContains},
		"owner_id": {Expr: "s.owner_id", Op: listing.OpEqual},
	},
	StoreViewUser: {
		"name":    {Expr: "s.name", Op: listing.OpContains},
		"address": {Expr: "s.address", Op: listing.OpContains},
	},
	StoreViewOwner: {
		"name":    {Expr: "s.name", Op: listing.OpContains},
		"address": {Expr: "s.address", Op: listing.OpContains},
	},
}

// 各视角的排序白名单，average_rating 引用输出别名
var storeSorts = map[StoreView]listing.Sorts{
	StoreViewAdmin: {
		Allowed: map[string]string{
			"name":           "s.name",
			"email":          "s.email",
			"average_rating": storeAverage.As,
			"created_at":     "s.created_at",
		},
		TieBreak: "s.id",
	},
	StoreViewUser: {
		Allowed: map[string]string{
			"name":           "s.name",
			"address":        "s.address",
			"average_rating": storeAverage.As,
			"created_at":     "s.created_at",
		},
		TieBreak: "s.id",
	},
	StoreViewOwner: {
		Allowed: map[string]string{
			"name":                "s.name",
			"average_rating":      storeAverage.As,
			"total_ratings_count": "total_ratings_count",
			"created_at":          "s.created_at",
		},
		TieBreak: "s.id",
	},
}

const (
	fullTextSearchLimit = 20
	simpleSearchLimit   = 50
)

// ==================== 实现 ====================

type storeRepository struct {
	db *gorm.DB
}

// NewStoreRepository 创建门店仓库
func NewStoreRepository(db *gorm.DB) StoreRepository {
	return &storeRepository{db: db}
}

// Create 创建门店
func (r *storeRepository) Create(ctx context.Context, store *model.Store) error {
	return r.db.WithContext(ctx).Create(store).Error
}

// GetByID 根据 ID 获取门店，不存在时返回 nil
func (r *storeRepository) GetByID(ctx context.Context, id int64) (*model.Store, error) {
	var store model.Store
	err := r.db.WithContext(ctx).First(&store, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &store, nil
}

// ExistsByEmail 检查门店邮箱是否存在
func (r *storeRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Store{}).
		Where("email = ?", email).
		Count(&count).Error
	return count > 0, err
}

// Count 门店总数
func (r *storeRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Store{}).Count(&count).Error
	return count, err
}

// List 门店列表（含平均分）
func (r *storeRepository) List(ctx context.Context, filter StoreFilter) ([]StoreRow, int64, error) {
	fields, ok := storeFields[filter.View]
	if !ok {
		return nil, 0, fmt.Errorf("unknown store view: %d", filter.View)
	}

	st := &listing.Statement{
		Dialect: listing.DialectOf(r.db),
		From:    "stores s",
		Where:   listing.NewBuilder(fields),
		Order:   storeSorts[filter.View].Resolve(filter.Sort, filter.Order),
		Page:    filter.Page,
	}
	st.Select(storeColumns...)

	avg := storeAverage
	switch filter.View {
	case StoreViewUser:
		// 子查询参数排在最前，过滤条件从其后编号
		st.SelectExpr("(SELECT ur.score FROM ratings ur WHERE ur.store_id = s.id AND ur.user_id = ? AND ur.status = ?) AS user_rating",
			filter.ViewerID, string(model.RatingStatusActive))
	case StoreViewOwner:
		st.Where.Require("s.owner_id = ?", filter.OwnerScope)
		avg = avg.WithCount("total_ratings_count")
	}
	avg.Apply(st)

	for _, p := range filter.Predicates {
		if err := st.Where.Add(p.Field, p.Value); err != nil {
			return nil, 0, err
		}
	}

	return listing.Run[StoreRow](ctx, r.db, st)
}

// Detail 门店详情：店主名、平均分、评分条数
func (r *storeRepository) Detail(ctx context.Context, id int64) (*StoreRow, error) {
	st := &listing.Statement{
		Dialect: listing.DialectOf(r.db),
		From:    "stores s",
		Where:   listing.NewBuilder(nil).Require("s.id = ?", id),
	}
	st.Select(storeColumns...)
	st.Select("u.name AS owner_name")
	st.Join("JOIN users u ON u.id = s.owner_id", true)
	storeAverage.WithCount("total_ratings_count").WithGroupBy("u.name").Apply(st)

	rows, err := listing.Query[StoreRow](ctx, r.db, st)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// Search 门店搜索
// fullText 且数据库支持时走全文检索（按相关度排序，最多 20 条），否则模糊匹配（按名称排序，最多 50 条）
// 第二个返回值表示实际是否使用了全文检索
func (r *storeRepository) Search(ctx context.Context, keyword string, fullText bool) ([]StoreRow, bool, error) {
	d := listing.DialectOf(r.db)

	st := &listing.Statement{
		Dialect:  d,
		From:     "stores s",
		NoOffset: true,
	}
	st.Select(storeColumns...)

	if fullText && d.FullText {
		st.SelectExpr("ts_rank_cd(to_tsvector('english', s.name || ' ' || s.address), plainto_tsquery('english', ?)) AS rank", keyword)
		storeAverage.WithGroupBy("rank").Apply(st)
		st.Where = listing.NewBuilder(nil).Require(
			"(to_tsvector('english', s.name || ' ' || s.address) @@ plainto_tsquery('english', ?) OR "+d.Contains("s.email", "?")+")",
			keyword, "%"+keyword+"%",
		)
		st.Order = listing.OrderBy("rank DESC", "s.name ASC")
		st.Page = listing.Page{Number: 1, Limit: fullTextSearchLimit}

		rows, err := listing.Query[StoreRow](ctx, r.db, st)
		return rows, true, err
	}

	storeAverage.Apply(st)
	st.Where = listing.NewBuilder(listing.Fields{
		"q": {Op: listing.OpContains, Or: []string{"s.name", "s.address", "s.email"}},
	})
	if err := st.Where.Add("q", keyword); err != nil {
		return nil, false, err
	}
	st.Order = listing.OrderBy("s.name ASC")
	st.Page = listing.Page{Number: 1, Limit: simpleSearchLimit}

	rows, err := listing.Query[StoreRow](ctx, r.db, st)
	return rows, false, err
}

// OwnerAverage 店主名下所有门店 active 评分的平均分
func (r *storeRepository) OwnerAverage(ctx context.Context, ownerID int64) (float64, error) {
	var avg float64
	err := r.db.WithContext(ctx).Raw(
		"SELECT COALESCE(ROUND(AVG(r.score), 2), 0) FROM ratings r JOIN stores s ON s.id = r.store_id WHERE s.owner_id = ? AND r.status = ?",
		ownerID, string(model.RatingStatusActive),
	).Scan(&avg).Error
	return avg, err
}
