package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ariane/internal/auth"
	"github.com/ariane/internal/handler"
	"github.com/ariane/internal/logger"
	"github.com/ariane/internal/metrics"
)

// Options 描述构建路由所需的依赖。
type Options struct {
	API           *handler.API
	Verifier      auth.Verifier
	Logger        *zap.Logger
	Metrics       metrics.Recorder
	Gatherer      prometheus.Gatherer
	UploadDir     string
	UploadURLPath string
	CORSOrigins   []string
}

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.GinMiddleware(opts.Logger))
	if opts.Metrics != nil {
		r.Use(metrics.GinMiddleware(opts.Metrics))
	}
	r.Use(cors.New(corsConfig(opts.CORSOrigins)))

	// 静态文件服务
	if opts.UploadDir != "" {
		uploadURL := strings.TrimSpace(opts.UploadURLPath)
		if uploadURL == "" {
			uploadURL = "/static/uploads"
		}
		r.Static(uploadURL, opts.UploadDir)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if opts.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(metrics.Handler(opts.Gatherer)))
	}

	api := opts.API
	r.POST("/sign_up", api.SignUp)
	r.POST("/sign_in", api.SignIn)

	authed := r.Group("")
	authed.Use(auth.RequireToken(opts.Verifier))
	{
		authed.GET("/users", api.ListUsers)
		authed.POST("/users", api.CreateUser)
		authed.GET("/users/:userId", api.GetUser)
		authed.PUT("/users/:userId", api.UpdateUser)
		authed.DELETE("/users/:userId", api.DeleteUser)

		stories := authed.Group("/stories/:userId")
		{
			stories.GET("", api.ListStories)
			stories.POST("", api.CreateStory)
			stories.POST("/import", api.ImportStory)
			stories.GET("/:storyId", api.GetStory)
			stories.PUT("/:storyId", api.UpdateStory)
			stories.DELETE("/:storyId", api.DeleteStory)
			stories.GET("/:storyId/full", api.GetFullStory)
			stories.GET("/:storyId/pdf", api.RenderStoryPDF)
			stories.GET("/:storyId/export", api.ExportStory)
			stories.POST("/:storyId/cover", api.UploadStoryCover)
			stories.POST("/:storyId/stats", api.RefreshStoryStats)
		}

		pages := authed.Group("/pages")
		{
			pages.GET("/page/:pageId", api.GetPage)
			pages.PUT("/page/:pageId", api.UpdatePage)
			pages.DELETE("/page/:pageId", api.DeletePage)
			pages.POST("/page/:pageId/image", api.UploadPageImage)
			pages.GET("/page/:pageId/preview", api.PreviewPage)
			pages.GET("/:storyId", api.ListPages)
			pages.POST("/:storyId", api.CreatePage)
			pages.DELETE("/:storyId", api.DeletePages)
		}

		choices := authed.Group("/choices")
		{
			choices.GET("/choice/:choiceId", api.GetChoice)
			choices.PUT("/choice/:choiceId", api.UpdateChoice)
			choices.DELETE("/choice/:choiceId", api.DeleteChoice)
			choices.GET("/:pageId", api.ListChoices)
			choices.POST("/:pageId", api.CreateChoice)
			choices.DELETE("/:pageId", api.DeleteChoices)
		}

		authed.GET("/choice_send_to/:sendToPageId", api.GetChoiceSendTo)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", logger.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Disposition", logger.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, origin := range origins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			cfg.AllowCredentials = false
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}
