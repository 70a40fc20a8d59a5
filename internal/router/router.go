package router

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"store_rating_v1/internal/api/dto"
	"store_rating_v1/internal/controller"
	"store_rating_v1/internal/middleware"
	"store_rating_v1/internal/model"

	_ "store_rating_v1/docs"
)

// Controllers 控制器集合
type Controllers struct {
	Auth  *controller.AuthController
	Admin *controller.AdminController
	Owner *controller.OwnerController
	User  *controller.UserController
}

// Options 路由选项
type Options struct {
	Log         *zap.Logger
	CORSOrigins []string
	Swagger     bool
}

// SetupRouter 创建 gin 引擎并注册中间件与路由
func SetupRouter(ctrls *Controllers, opts Options) (*gin.Engine, error) {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if err := dto.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("register validators: %w", err)
	}

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Recovery(opts.Log),
		middleware.RequestLogger(opts.Log),
		middleware.Metrics(),
		middleware.CORS(opts.CORSOrigins),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "message": "Server is running!"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 访问 /swagger/index.html 查看文档
	if opts.Swagger {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	InitRoutes(r, ctrls)
	return r, nil
}

// InitRoutes 注册业务路由
func InitRoutes(r *gin.Engine, ctrls *Controllers) {
	admin := string(model.UserRoleAdmin)
	owner := string(model.UserRoleStoreOwner)

	api := r.Group("/api")
	{
		// 认证 + 普通用户
		user := api.Group("/user")
		{
			user.POST("/login", ctrls.Auth.Login)
			user.POST("/register", ctrls.Auth.Register)

			authed := user.Group("", middleware.JWTAuth())
			{
				authed.GET("/me", ctrls.Auth.Me)
				authed.POST("/change-password", ctrls.Auth.ChangePassword)

				authed.GET("/stores", ctrls.User.ListStores)
				authed.GET("/stores/:id", ctrls.User.GetStore)
				authed.GET("/search/stores", ctrls.User.SearchStores)

				authed.GET("/ratings", ctrls.User.ListRatings)
				authed.POST("/rate/:store_id", ctrls.User.SubmitRating)
				authed.PUT("/edit/rating/:rating_id", ctrls.User.EditRating)
			}
		}

		// 管理员
		adminGroup := api.Group("/admin", middleware.JWTAuth(), middleware.RequireRole(admin))
		{
			adminGroup.POST("/create/user", ctrls.Admin.CreateUser)
			adminGroup.POST("/create/store", ctrls.Admin.CreateStore)

			adminGroup.GET("/users", ctrls.Admin.ListUsers)
			adminGroup.GET("/users/:id", ctrls.Admin.GetUser)
			adminGroup.GET("/stores", ctrls.Admin.ListStores)
			adminGroup.GET("/stores/:id", ctrls.Admin.GetStore)
			adminGroup.GET("/ratings", ctrls.Admin.ListRatings)
			adminGroup.GET("/dashboard", ctrls.Admin.Dashboard)

			adminGroup.GET("/search/stores", ctrls.Admin.SearchStores)
			adminGroup.GET("/search/users", ctrls.Admin.SearchUsers)
		}

		// 店主
		ownerGroup := api.Group("/owner", middleware.JWTAuth(), middleware.RequireRole(owner))
		{
			ownerGroup.POST("/create/store", ctrls.Owner.CreateStore)
			ownerGroup.GET("/stores", ctrls.Owner.ListStores)
			ownerGroup.GET("/store/:store_id", ctrls.Owner.GetStore)
			ownerGroup.GET("/ratings", ctrls.Owner.ListRatings)
		}
	}
}
