package router

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"github.com/openshare/internal/config"
	"github.com/openshare/internal/db"
	"github.com/openshare/internal/handler"
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(cfg config.AppConfig) *gin.Engine {
	r := gin.Default()

	// 配置会话中间件
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("openshare_session", store))

	handler.RegisterValidations()
	api := handler.NewAPI(db.DB, cfg)

	// 上传文件静态服务
	r.Static("/static", "./web/static")

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	root := r.Group("/api")
	{
		auth := root.Group("/auth")
		{
			auth.POST("/register", api.Register)
			auth.POST("/login", api.Login)
			auth.POST("/logout", api.Logout)
		}

		// 公共读取：带凭证时附上浏览者状态
		public := root.Group("")
		public.Use(api.OptionalAuth())
		{
			public.GET("/feed", api.GetFeed)
			public.GET("/posts/:id", api.GetPost)
			public.GET("/posts/:id/comments", api.ListComments)
			public.POST("/contact", api.SubmitContact)
		}

		// 需要认证的写操作
		authed := root.Group("")
		authed.Use(api.AuthRequired())
		{
			authed.GET("/my/posts", api.GetMyPosts)
			authed.POST("/posts", api.CreatePost)
			authed.PUT("/posts/:id", api.UpdatePost)
			authed.DELETE("/posts/:id", api.DeletePost)

			authed.POST("/posts/:id/like", api.TogglePostLike)
			authed.POST("/posts/:id/comments", api.CreateComment)
			authed.POST("/posts/:id/report", api.ReportPost)

			authed.POST("/comments/:id/like", api.ToggleCommentLike)
			authed.DELETE("/comments/:id", api.DeleteComment)

			authed.GET("/profile", api.GetProfile)
			authed.PUT("/profile", api.UpdateProfile)
			authed.POST("/profile/avatar", api.UpdateAvatar)
		}
	}

	return r
}
