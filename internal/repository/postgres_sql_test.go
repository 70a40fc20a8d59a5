package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"store_rating_v1/pkg/listing"
)

// setupPostgresMock gorm 走 postgres 方言，底层连接由 sqlmock 接管
func setupPostgresMock(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestStoreRepository_PostgresListSQL(t *testing.T) {
	db, mock := setupPostgresMock(t)
	repo := NewStoreRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM stores s WHERE s\.name ILIKE \$1$`).
		WithArgs("%piz%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	mock.ExpectQuery(`FROM stores s LEFT JOIN ratings r ON r\.store_id = s\.id AND r\.status = \$1 ` +
		`WHERE s\.name ILIKE \$2 GROUP BY s\.id ORDER BY s\.name ASC, s\.id ASC LIMIT \$3 OFFSET \$4$`).
		WithArgs("active", "%piz%", 10, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "average_rating"}).AddRow(7, "Pizza Place", 4.5))

	rows, total, err := repo.List(context.Background(), StoreFilter{
		View:       StoreViewAdmin,
		Predicates: []listing.Predicate{{Field: "name", Value: "piz"}},
		Sort:       "name",
		Order:      "ASC",
		Page:       listing.Page{Number: 2, Limit: 10},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(7), rows[0].ID)
	assert.InDelta(t, 4.5, rows[0].AverageRating, 0.001)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreRepository_PostgresUserViewSQL(t *testing.T) {
	db, mock := setupPostgresMock(t)
	repo := NewStoreRepository(db)

	// 投影子查询的参数排在 JOIN 和 WHERE 之前
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM stores s WHERE s\.address ILIKE \$1$`).
		WithArgs("%main%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`ur\.user_id = \$1 AND ur\.status = \$2\) AS user_rating.*` +
		`r\.status = \$3 WHERE s\.address ILIKE \$4 .*LIMIT \$5 OFFSET \$6$`).
		WithArgs(int64(3), "active", "active", "%main%", 10, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rows, total, err := repo.List(context.Background(), StoreFilter{
		View:       StoreViewUser,
		ViewerID:   3,
		Predicates: []listing.Predicate{{Field: "address", Value: "main"}},
		Page:       listing.Page{Number: 1, Limit: 10},
	})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreRepository_PostgresFullTextSearch(t *testing.T) {
	db, mock := setupPostgresMock(t)
	repo := NewStoreRepository(db)

	mock.ExpectQuery(`ts_rank_cd\(.*plainto_tsquery\('english', \$1\)\) AS rank.*` +
		`r\.status = \$2 WHERE \(to_tsvector\(.*@@ plainto_tsquery\('english', \$3\) OR s\.email ILIKE \$4\) ` +
		`GROUP BY s\.id, rank ORDER BY rank DESC, s\.name ASC LIMIT \$5$`).
		WithArgs("coffee", "active", "coffee", "%coffee%", 20).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "rank"}).
			AddRow(1, "Coffee House", 0.8).
			AddRow(2, "Bean Coffee", 0.3))

	rows, fullText, err := repo.Search(context.Background(), "coffee", true)
	require.NoError(t, err)
	assert.True(t, fullText)
	require.Len(t, rows, 2)
	assert.Equal(t, "Coffee House", rows[0].Name)
	assert.InDelta(t, 0.8, rows[0].Rank, 0.001)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreRepository_PostgresSimpleSearch(t *testing.T) {
	db, mock := setupPostgresMock(t)
	repo := NewStoreRepository(db)

	mock.ExpectQuery(`WHERE \(s\.name ILIKE \$2 OR s\.address ILIKE \$3 OR s\.email ILIKE \$4\) ` +
		`GROUP BY s\.id ORDER BY s\.name ASC LIMIT \$5$`).
		WithArgs("active", "%tea%", "%tea%", "%tea%", 50).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(5, "Tea Room"))

	rows, fullText, err := repo.Search(context.Background(), "tea", false)
	require.NoError(t, err)
	assert.False(t, fullText)
	require.Len(t, rows, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRatingRepository_PostgresOwnerScope(t *testing.T) {
	db, mock := setupPostgresMock(t)
	repo := NewRatingRepository(db)

	// 强制范围排在用户过滤之前
	where := `WHERE s\.owner_id = \$1 AND r\.store_id = \$2 AND r\.status = \$3 AND r\.score = \$4`
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM ratings r JOIN stores s ON s\.id = r\.store_id JOIN users u ON u\.id = r\.user_id ` + where + `$`).
		WithArgs(int64(9), int64(4), "active", 5).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(where + ` ORDER BY r\.score DESC, r\.rating_id DESC LIMIT \$5 OFFSET \$6$`).
		WithArgs(int64(9), int64(4), "active", 5, 10, 0).
		WillReturnRows(sqlmock.NewRows([]string{"rating_id"}))

	_, _, err := repo.List(context.Background(), RatingFilter{
		View:       RatingViewOwner,
		OwnerScope: 9,
		StoreScope: 4,
		Predicates: []listing.Predicate{{Field: "score", Value: 5}},
		Sort:       "score",
		Page:       listing.Page{Number: 1, Limit: 10},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListCountFailure(t *testing.T) {
	db, mock := setupPostgresMock(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users u`).WillReturnError(errors.New("connection reset"))

	_, _, err := repo.List(context.Background(), UserFilter{Page: listing.Page{Number: 1, Limit: 10}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "count query")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"gorm 翻译后的错误", fmt.Errorf("create: %w", gorm.ErrDuplicatedKey), true},
		{"pgx 23505", &pgconn.PgError{Code: "23505"}, true},
		{"pgx 其他错误码", &pgconn.PgError{Code: "23503"}, false},
		{"sqlite 信息", errors.New("UNIQUE constraint failed: users.email"), true},
		{"其他错误", errors.New("connection refused"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUniqueViolation(tt.err))
		})
	}
}
