package listing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ==================== 测试模型 ====================

type testStore struct {
	ID        int64 `gorm:"primaryKey"`
	Name      string
	CreatedAt time.Time
}

func (testStore) TableName() string { return "stores" }

type testRating struct {
	RatingID int64 `gorm:"column:rating_id;primaryKey"`
	StoreID  int64
	UserID   int64
	Score    int
	Status   string
}

func (testRating) TableName() string { return "ratings" }

type testStoreRow struct {
	ID            int64   `gorm:"column:id"`
	Name          string  `gorm:"column:name"`
	AverageRating float64 `gorm:"column:average_rating"`
	UserRating    *int    `gorm:"column:user_rating"`
}

// ==================== 测试辅助 ====================

func setupListingTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	// :memory: 库按连接隔离，固定单连接
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&testStore{}, &testRating{}))

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	stores := []testStore{
		{ID: 1, Name: "Pizza Palace", CreatedAt: base},
		{ID: 2, Name: "Pita Place", CreatedAt: base.Add(time.Hour)},
		{ID: 3, Name: "Burger Barn", CreatedAt: base.Add(2 * time.Hour)},
	}
	require.NoError(t, db.Create(&stores).Error)

	ratings := []testRating{
		{StoreID: 1, UserID: 10, Score: 5, Status: "active"},
		{StoreID: 1, UserID: 11, Score: 2, Status: "active"},
		{StoreID: 1, UserID: 12, Score: 1, Status: "pending"},
		{StoreID: 2, UserID: 10, Score: 3, Status: "active"},
		{StoreID: 3, UserID: 11, Score: 4, Status: "rejected"},
	}
	require.NoError(t, db.Create(&ratings).Error)
	return db
}

func newTestRowStatement(userID int64) *Statement {
	st := &Statement{Dialect: SQLite, From: "stores s"}
	st.Select("s.id", "s.name")
	st.SelectExpr("(SELECT ur.score FROM ratings ur WHERE ur.store_id = s.id AND ur.user_id = ? AND ur.status = 'active') AS user_rating", userID)
	testAverage.Apply(st)
	st.Where = NewBuilder(Fields{"name": {Expr: "s.name", Op: OpContains}})
	return st
}

// ==================== 测试用例 ====================

func TestRun_AverageOnlyCountsActive(t *testing.T) {
	db := setupListingTestDB(t)

	st := newTestRowStatement(10)
	st.Order = testStoreSorts.Resolve("average_rating", "asc")
	st.Page = ParsePage("1", "10")

	rows, total, err := Run[testStoreRow](context.Background(), db, st)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, rows, 3)

	// 3 号店只有 rejected 评分，均值为 0
	assert.Equal(t, int64(3), rows[0].ID)
	assert.Equal(t, 0.0, rows[0].AverageRating)
	assert.Nil(t, rows[0].UserRating)

	assert.Equal(t, int64(2), rows[1].ID)
	assert.Equal(t, 3.0, rows[1].AverageRating)
	require.NotNil(t, rows[1].UserRating)
	assert.Equal(t, 3, *rows[1].UserRating)

	// (5 + 2) / 2，pending 的 1 分不参与
	assert.Equal(t, int64(1), rows[2].ID)
	assert.Equal(t, 3.5, rows[2].AverageRating)
}

func TestRun_FilterAndPaging(t *testing.T) {
	db := setupListingTestDB(t)

	st := newTestRowStatement(10)
	require.NoError(t, st.Where.Add("name", "PI"))
	st.Order = testStoreSorts.Resolve("name", "asc")
	st.Page = ParsePage("2", "1")

	rows, total, err := Run[testStoreRow](context.Background(), db, st)
	require.NoError(t, err)

	assert.Equal(t, int64(2), total, "count 与分页使用同一组过滤条件")
	require.Len(t, rows, 1)
	assert.Equal(t, "Pizza Palace", rows[0].Name)

	pg := st.Page.Paginate(total, "totalStores")
	assert.Equal(t, 2, pg.TotalPages)
	assert.False(t, pg.HasNext)
	assert.True(t, pg.HasPrev)
}

func TestRun_EmptyResult(t *testing.T) {
	db := setupListingTestDB(t)

	st := newTestRowStatement(10)
	require.NoError(t, st.Where.Add("name", "sushi"))
	st.Order = testStoreSorts.Resolve("", "")
	st.Page = ParsePage("", "")

	rows, total, err := Run[testStoreRow](context.Background(), db, st)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)

	pg := st.Page.Paginate(total, "totalStores")
	assert.Equal(t, 0, pg.TotalPages)
	assert.False(t, pg.HasNext)
}

func TestDialectOf(t *testing.T) {
	db := setupListingTestDB(t)
	assert.Equal(t, "sqlite", DialectOf(db).Name)
	assert.Equal(t, "sqlite", DialectOf(nil).Name)
}
