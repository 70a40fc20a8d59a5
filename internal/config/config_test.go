package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()

	cfg, err := load(v)
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.App.Env)
	assert.Equal(t, "5001", cfg.App.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 10, cfg.Database.MaxIdleConns)
	assert.Equal(t, 100, cfg.Database.MaxOpenConns)
	assert.Equal(t, time.Hour, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expire)
	assert.Equal(t, devJWTSecret, cfg.JWT.Secret, "开发环境允许缺省密钥")
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("APP_ENV", "Production")
	v.Set("DB_DRIVER", "SQLite")
	v.Set("DB_PATH", "/tmp/ratings.db")
	v.Set("JWT_SECRET", "s3cret")
	v.Set("JWT_EXPIRE", "2h")
	v.Set("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	v.Set("SEED_DEMO", "true")

	cfg, err := load(v)
	require.NoError(t, err)

	assert.Equal(t, EnvProduction, cfg.App.Env)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/tmp/ratings.db", cfg.Database.Path)
	assert.Equal(t, "s3cret", cfg.JWT.Secret)
	assert.Equal(t, 2*time.Hour, cfg.JWT.Expire)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.Seed.Demo)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		set  map[string]string
	}{
		{"生产环境缺少密钥", map[string]string{"APP_ENV": "production"}},
		{"不支持的驱动", map[string]string{"DB_DRIVER": "mysql"}},
		{"过期时间非法", map[string]string{"JWT_EXPIRE": "-1h"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			for k, val := range tt.set {
				v.Set(k, val)
			}
			_, err := load(v)
			assert.Error(t, err)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable TimeZone=UTC", c.DSN())
}
