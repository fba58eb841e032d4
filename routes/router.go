package routes

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/blogward/blogward/cache"
	"github.com/blogward/blogward/config"
	"github.com/blogward/blogward/controllers"
	"github.com/blogward/blogward/middleware"
	"github.com/blogward/blogward/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, listCache *cache.ListCache) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if utils.Logger != nil {
		r.Use(middleware.RequestLogger(utils.Logger))
		r.Use(middleware.Recovery(utils.Logger))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.Static("/public", cfg.UploadDir)

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(db, listCache)
	blogController := controllers.NewBlogController(db, listCache)
	tagController := controllers.NewTagController(db)

	auth := r.Group("/auth")
	auth.Use(middleware.RateLimitMiddleware())
	auth.POST("/register", authController.Register)
	auth.POST("/login", authController.Login)
	auth.POST("/logout", middleware.AuthRequired(), authController.Logout)
	auth.POST("/upload-picture", middleware.AuthRequired(), authController.UploadPicture)
	auth.PUT("/assign-to-author/:id", middleware.AuthRequired(), middleware.ModeratorRequired(), authController.AssignToAuthor)
	auth.PUT("/edit-user/:id", middleware.AuthRequired(), authController.EditUser)
	auth.DELETE("/delete-user/:id", middleware.AuthRequired(), middleware.ModeratorRequired(), authController.DeleteUser)
	auth.GET("/all-user", middleware.AuthRequired(), middleware.ModeratorRequired(), authController.AllUser)

	blog := r.Group("/blog")
	blog.Use(middleware.AuthRequired())
	blog.GET("/list", blogController.List)
	blog.GET("/detail/:id", blogController.Detail)
	blog.POST("/post", middleware.WorkerRequired(), blogController.Create)
	blog.PATCH("/edit/:id", middleware.WorkerRequired(), blogController.Edit)
	blog.DELETE("/delete/:id", middleware.WorkerRequired(), blogController.Delete)
	blog.POST("/like/:id", blogController.Like)
	blog.POST("/dislike/:id", blogController.Dislike)
	blog.DELETE("/reset-vote/:id", blogController.ResetVote)
	blog.POST("/comment/:id", blogController.Comment)
	blog.POST("/reply/:id", blogController.Reply)

	tag := r.Group("/tag")
	tag.Use(middleware.AuthRequired(), middleware.WorkerRequired())
	tag.GET("/list", tagController.List)
	tag.POST("/post", tagController.Create)
	tag.PUT("/edit/:id", tagController.Edit)
	tag.DELETE("/delete/:id", tagController.Delete)

	return r
}
