package listing

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Run 执行列表查询：先 count，再取当前页
// SQL 已按方言渲染好占位符，直接走连接池，结果由 gorm 按列名映射到 T
func Run[T any](ctx context.Context, db *gorm.DB, st *Statement) ([]T, int64, error) {
	countSQL, countArgs := st.CountSQL()

	var total int64
	if err := db.ConnPool.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count query: %w", err)
	}

	items, err := Query[T](ctx, db, st)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Query 只执行分页查询，用于搜索等不需要总数的场景
func Query[T any](ctx context.Context, db *gorm.DB, st *Statement) ([]T, error) {
	query, args := st.SelectSQL()

	rows, err := db.ConnPool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list query: %w", err)
	}
	defer rows.Close()

	items := make([]T, 0, min(st.Page.Limit, 64))
	tx := db.WithContext(ctx)
	for rows.Next() {
		var item T
		if err := tx.ScanRows(rows, &item); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return items, nil
}
