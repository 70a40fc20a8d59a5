package database

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// 支持的驱动
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Options 连接参数
type Options struct {
	Driver          string // postgres | sqlite
	DSN             string // postgres 连接串
	Path            string // sqlite 文件路径，":memory:" 为内存库
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	Debug           bool // 打印所有 SQL
}

// Open 打开数据库连接并设置连接池
func Open(opts Options, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch opts.Driver {
	case DriverPostgres:
		dialector = postgres.Open(opts.DSN)
	case DriverSQLite:
		dialector = sqlite.Open(opts.Path)
	default:
		return nil, fmt.Errorf("unsupported driver %q", opts.Driver)
	}

	// 开发环境下打印所有 SQL，方便调试
	level := logger.Warn
	if opts.Debug {
		level = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", opts.Driver, err)
	}

	// 获取底层的 sqlDB 对象，用于设置连接池参数
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	if opts.Driver == DriverSQLite && opts.Path == ":memory:" {
		// 内存库按连接隔离
		sqlDB.SetMaxOpenConns(1)
	} else {
		if opts.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
		}
		if opts.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
		}
		if opts.ConnMaxLifetime > 0 {
			sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
		}
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping %s: %w", opts.Driver, err)
	}

	if log != nil {
		log.Info("database connected",
			zap.String("driver", opts.Driver),
			zap.Int("max_open_conns", sqlDB.Stats().MaxOpenConnections),
		)
	}
	return db, nil
}

// Close 关闭连接池
func Close(db *gorm.DB) error {
	if db == nil {
		return errors.New("nil db")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
