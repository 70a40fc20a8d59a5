package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"store_rating_v1/internal/config"
	"store_rating_v1/internal/controller"
	"store_rating_v1/internal/event"
	"store_rating_v1/internal/middleware"
	"store_rating_v1/internal/model"
	"store_rating_v1/internal/repository"
	"store_rating_v1/internal/router"
	"store_rating_v1/internal/service"
	"store_rating_v1/pkg/database"
	"store_rating_v1/pkg/logger"
)

// @title Store Rating API
// @version 1.0
// @description 多角色门店评分平台：管理员、店主、普通用户
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	// 2. 初始化日志
	log := logger.Must(cfg.App.Env)
	defer func() { _ = log.Sync() }()

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetJWTConfig(&middleware.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenTTL: cfg.JWT.Expire,
		Issuer:         cfg.JWT.Issuer,
	})

	// 3. 初始化数据库
	db, err := initDatabase(cfg, log)
	if err != nil {
		log.Fatal("数据库初始化失败", zap.Error(err))
	}

	// 4. 初始化依赖
	deps := initDependencies(cfg, db, log)

	// 5. 初始化账号
	if err := seedAccounts(cfg, deps, log); err != nil {
		log.Fatal("初始化账号失败", zap.Error(err))
	}

	// 6. 初始化路由
	r, err := router.SetupRouter(deps.Controllers, router.Options{
		Log:         log,
		CORSOrigins: cfg.CORS.AllowedOrigins,
		Swagger:     cfg.IsDevelopment(),
	})
	if err != nil {
		log.Fatal("路由初始化失败", zap.Error(err))
	}

	// 7. 启动服务
	startServer(cfg, r, deps, log)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Publisher   event.Publisher
	Repos       *Repositories
	Services    *Services
	Controllers *router.Controllers
}

// Repositories 仓库集合
type Repositories struct {
	User   repository.UserRepository
	Store  repository.StoreRepository
	Rating repository.RatingRepository
}

// Services 服务集合
type Services struct {
	Auth   *service.AuthService
	User   *service.UserService
	Store  *service.StoreService
	Rating *service.RatingService
	Seed   *service.SeedService
}

// ==================== 初始化函数 ====================

// initDatabase 连接数据库并建表
func initDatabase(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	db, err := database.Open(database.Options{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN(),
		Path:            cfg.Database.Path,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		Debug:           cfg.IsDevelopment(),
	}, log)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := database.Migrate(ctx, db, log, &model.User{}, &model.Store{}, &model.Rating{}); err != nil {
		_ = database.Close(db)
		return nil, err
	}
	return db, nil
}

// initPublisher NATS_URL 为空或连接失败时不发布事件
func initPublisher(cfg *config.Config, log *zap.Logger) event.Publisher {
	if cfg.NATS.URL == "" {
		return event.NoopPublisher{}
	}
	pub, err := event.NewNatsPublisher(cfg.NATS.URL, log)
	if err != nil {
		log.Warn("NATS 连接失败，评分事件不发布", zap.String("url", cfg.NATS.URL), zap.Error(err))
		return event.NoopPublisher{}
	}
	return pub
}

// initDependencies 初始化所有依赖
func initDependencies(cfg *config.Config, db *gorm.DB, log *zap.Logger) *Dependencies {
	// -------- Repo 层 --------
	repos := &Repositories{
		User:   repository.NewUserRepository(db),
		Store:  repository.NewStoreRepository(db),
		Rating: repository.NewRatingRepository(db),
	}

	// -------- 业务服务 --------
	publisher := initPublisher(cfg, log)
	services := &Services{
		Auth:   service.NewAuthService(repos.User),
		User:   service.NewUserService(repos.User, repos.Store, repos.Rating),
		Store:  service.NewStoreService(repos.Store, repos.User, repos.Rating),
		Rating: service.NewRatingService(repos.Rating, repos.Store, publisher, log),
		Seed:   service.NewSeedService(repos.User, log),
	}

	// -------- Controller 层 --------
	controllers := &router.Controllers{
		Auth:  controller.NewAuthController(services.Auth, log),
		Admin: controller.NewAdminController(services.User, services.Store, services.Rating, log),
		Owner: controller.NewOwnerController(services.Store, services.Rating, log),
		User:  controller.NewUserController(services.Store, services.Rating, log),
	}

	return &Dependencies{
		DB:          db,
		Publisher:   publisher,
		Repos:       repos,
		Services:    services,
		Controllers: controllers,
	}
}

// seedAccounts 管理员账号总是确保存在，演示账号按配置创建
func seedAccounts(cfg *config.Config, deps *Dependencies, log *zap.Logger) error {
	accounts := []service.SeedAccount{{
		Name:     cfg.Seed.AdminName,
		Email:    cfg.Seed.AdminEmail,
		Password: cfg.Seed.AdminPassword,
		Address:  cfg.Seed.AdminAddress,
		Role:     model.UserRoleAdmin,
	}}
	if cfg.Seed.Demo {
		accounts = append(accounts, service.DemoAccounts...)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	created, err := deps.Services.Seed.Run(ctx, accounts...)
	if err != nil {
		return err
	}
	log.Info("账号初始化完成", zap.Int("created", created))
	return nil
}

// ==================== 服务启动 ====================

// startServer 启动服务，收到退出信号后依次关闭 HTTP、事件连接、数据库
func startServer(cfg *config.Config, r *gin.Engine, deps *Dependencies, log *zap.Logger) {
	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 异步启动服务
	go func() {
		log.Info("服务启动", zap.String("addr", srv.Addr), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("服务启动失败", zap.Error(err))
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("正在关闭服务...")

	// 优雅关闭，最多等待 30 秒
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("服务强制关闭", zap.Error(err))
	}

	deps.Publisher.Close()
	if err := database.Close(deps.DB); err != nil {
		log.Error("关闭数据库失败", zap.Error(err))
	}

	log.Info("服务已退出")
}
