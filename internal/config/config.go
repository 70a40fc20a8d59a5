package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// 运行环境
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// Config 应用配置
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	JWT      JWTConfig
	CORS     CORSConfig
	NATS     NATSConfig
	Seed     SeedConfig
}

// AppConfig 服务配置
type AppConfig struct {
	Env  string
	Port string
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver          string // postgres | sqlite
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	Path            string // sqlite 文件路径
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// DSN 生成 postgres 连接串
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// JWTConfig token 配置
type JWTConfig struct {
	Secret string
	Expire time.Duration
	Issuer string
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins []string
}

// NATSConfig 事件总线配置，URL 为空时不发布事件
type NATSConfig struct {
	URL string
}

// SeedConfig 启动时初始化账号
type SeedConfig struct {
	AdminName     string
	AdminEmail    string
	AdminPassword string
	AdminAddress  string
	Demo          bool
}

// IsDevelopment 是否开发环境
func (c *Config) IsDevelopment() bool {
	return c.App.Env == EnvDevelopment
}

const devJWTSecret = "dev-secret-change-me"

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", EnvDevelopment)
	v.SetDefault("APP_PORT", "5001")

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASS", "postgres")
	v.SetDefault("DB_NAME", "store_rating")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_PATH", "store_rating.db")
	v.SetDefault("DB_MAX_IDLE", 10)
	v.SetDefault("DB_MAX_OPEN", 100)
	v.SetDefault("DB_CONN_MAX_LIFETIME", time.Hour)

	v.SetDefault("JWT_EXPIRE", 24*time.Hour)
	v.SetDefault("JWT_ISSUER", "store-rating")

	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")

	v.SetDefault("SEED_ADMIN_NAME", "admin1")
	v.SetDefault("SEED_ADMIN_EMAIL", "admin@og.com")
	v.SetDefault("SEED_ADMIN_PASSWORD", "admin@123")
	v.SetDefault("SEED_ADMIN_ADDRESS", "Central Admin Office, City 123")
	v.SetDefault("SEED_DEMO", false)
}

// Load 读取配置：先加载 .env（可选），再读环境变量
func Load() (*Config, error) {
	// .env 不存在时直接使用环境变量
	_ = godotenv.Load()
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Env:  strings.ToLower(v.GetString("APP_ENV")),
			Port: v.GetString("APP_PORT"),
		},
		Database: DatabaseConfig{
			Driver:          strings.ToLower(v.GetString("DB_DRIVER")),
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetString("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASS"),
			Name:            v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			Path:            v.GetString("DB_PATH"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("JWT_SECRET"),
			Expire: v.GetDuration("JWT_EXPIRE"),
			Issuer: v.GetString("JWT_ISSUER"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		NATS: NATSConfig{
			URL: v.GetString("NATS_URL"),
		},
		Seed: SeedConfig{
			AdminName:     v.GetString("SEED_ADMIN_NAME"),
			AdminEmail:    v.GetString("SEED_ADMIN_EMAIL"),
			AdminPassword: v.GetString("SEED_ADMIN_PASSWORD"),
			AdminAddress:  v.GetString("SEED_ADMIN_ADDRESS"),
			Demo:          v.GetBool("SEED_DEMO"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}

	if c.JWT.Secret == "" {
		if c.App.Env != EnvDevelopment && c.App.Env != EnvTest {
			return errors.New("JWT_SECRET is required outside development")
		}
		c.JWT.Secret = devJWTSecret
	}
	if c.JWT.Expire <= 0 {
		return fmt.Errorf("JWT_EXPIRE must be positive, got %s", c.JWT.Expire)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
