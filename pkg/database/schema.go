package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SchemaSQL 按方言存放的补充 DDL（索引等 AutoMigrate 表达不了的部分）
//
//go:embed schema/postgres/*.sql schema/sqlite/*.sql
var SchemaSQL embed.FS

// SchemaFile 单个 DDL 文件
type SchemaFile struct {
	Name       string
	Statements []string
}

// LoadSchema 读取某个方言的 DDL，按文件名顺序返回
func LoadSchema(fsys fs.FS, root, dialect string) ([]SchemaFile, error) {
	dir := path.Join(root, dialect)
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read schema dir %s: %w", dir, err)
	}

	var files []SchemaFile
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", e.Name(), err)
		}
		files = append(files, SchemaFile{Name: e.Name(), Statements: splitStatements(string(data))})
	}
	return files, nil
}

// splitStatements 按分号切分，跳过 -- 注释行
func splitStatements(content string) []string {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		lines = append(lines, line)
	}

	var stmts []string
	for _, s := range strings.Split(strings.Join(lines, "\n"), ";") {
		if s = strings.TrimSpace(s); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}

// ==================== Initializer ====================

// Initializer 建表 + 补充 DDL
type Initializer struct {
	db     *gorm.DB
	models []interface{}
	files  []SchemaFile
	log    *zap.Logger
}

// InitOptions 初始化选项
type InitOptions struct {
	// 嵌入文件系统，默认 SchemaSQL
	FS   fs.FS
	Root string

	// AutoMigrate 的 Model
	Models []interface{}
}

// NewInitializer 创建初始化器，DDL 方言取自连接
func NewInitializer(db *gorm.DB, opts InitOptions, log *zap.Logger) (*Initializer, error) {
	if opts.FS == nil {
		opts.FS = SchemaSQL
		opts.Root = "schema"
	}
	files, err := LoadSchema(opts.FS, opts.Root, db.Dialector.Name())
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Initializer{db: db, models: opts.Models, files: files, log: log}, nil
}

// Initialize AutoMigrate 后依次执行 DDL，语句需可重复执行
func (i *Initializer) Initialize(ctx context.Context) error {
	start := time.Now()

	if len(i.models) > 0 {
		if err := i.db.WithContext(ctx).AutoMigrate(i.models...); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
	}

	for _, f := range i.files {
		for _, stmt := range f.Statements {
			if err := i.db.WithContext(ctx).Exec(stmt).Error; err != nil {
				return fmt.Errorf("apply %s: %w", f.Name, err)
			}
		}
		i.log.Debug("schema applied", zap.String("file", f.Name), zap.Int("statements", len(f.Statements)))
	}

	i.log.Info("database initialized",
		zap.Int("models", len(i.models)),
		zap.Int("schema_files", len(i.files)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// Files 已加载的 DDL 文件
func (i *Initializer) Files() []SchemaFile {
	return i.files
}

// Migrate 使用内置 DDL 快速初始化
func Migrate(ctx context.Context, db *gorm.DB, log *zap.Logger, models ...interface{}) error {
	in, err := NewInitializer(db, InitOptions{Models: models}, log)
	if err != nil {
		return err
	}
	return in.Initialize(ctx)
}
