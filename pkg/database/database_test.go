package database

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type widget struct {
	ID     int64  `gorm:"primaryKey"`
	Status string `gorm:"size:20"`
}

func memoryOptions() Options {
	return Options{Driver: DriverSQLite, Path: ":memory:"}
}

func TestOpen(t *testing.T) {
	t.Run("sqlite 内存库", func(t *testing.T) {
		db, err := Open(memoryOptions(), zap.NewNop())
		require.NoError(t, err)
		sqlDB, err := db.DB()
		require.NoError(t, err)
		assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
		require.NoError(t, Close(db))
	})

	t.Run("不支持的驱动", func(t *testing.T) {
		_, err := Open(Options{Driver: "mysql"}, nil)
		assert.ErrorContains(t, err, "unsupported driver")
	})

	t.Run("nil db", func(t *testing.T) {
		assert.Error(t, Close(nil))
	})
}

func TestSplitStatements(t *testing.T) {
	stmts := splitStatements(`
-- comment; with semicolon
CREATE INDEX a ON t (x);

CREATE INDEX b
    ON t (y);
`)
	require.Len(t, stmts, 2)
	assert.Equal(t, "CREATE INDEX a ON t (x)", stmts[0])
	assert.Equal(t, "CREATE INDEX b\n    ON t (y)", stmts[1])
}

func TestLoadSchema(t *testing.T) {
	fsys := fstest.MapFS{
		"ddl/sqlite/002_b.sql": {Data: []byte("SELECT 2;")},
		"ddl/sqlite/001_a.sql": {Data: []byte("SELECT 1;")},
		"ddl/sqlite/README.md": {Data: []byte("ignored")},
	}
	files, err := LoadSchema(fsys, "ddl", "sqlite")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "001_a.sql", files[0].Name)
	assert.Equal(t, "002_b.sql", files[1].Name)

	_, err = LoadSchema(fsys, "ddl", "postgres")
	assert.Error(t, err)
}

func TestEmbeddedSchema(t *testing.T) {
	for _, dialect := range []string{DriverPostgres, DriverSQLite} {
		files, err := LoadSchema(SchemaSQL, "schema", dialect)
		require.NoError(t, err, dialect)
		assert.NotEmpty(t, files, dialect)
	}
}

func TestInitializer(t *testing.T) {
	db, err := Open(memoryOptions(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	fsys := fstest.MapFS{
		"ddl/sqlite/001_idx.sql": {Data: []byte(
			"CREATE INDEX IF NOT EXISTS idx_widgets_active ON widgets (id) WHERE status = 'active';",
		)},
	}
	in, err := NewInitializer(db, InitOptions{FS: fsys, Root: "ddl", Models: []interface{}{&widget{}}}, nil)
	require.NoError(t, err)
	require.Len(t, in.Files(), 1)

	ctx := context.Background()
	require.NoError(t, in.Initialize(ctx))
	// 可重复执行
	require.NoError(t, in.Initialize(ctx))

	var count int64
	require.NoError(t, db.Raw("SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND name = ?", "idx_widgets_active").Scan(&count).Error)
	assert.Equal(t, int64(1), count)
}
