package routes

import (
	"context"
	"net/http"
	"strings"
	"time"

	"socialfeed/handlers"
	"socialfeed/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Options struct {
	CORSOrigins []string
	Limiter     *middleware.RateLimiter
	// WebSocket serves GET /ws when set.
	WebSocket http.HandlerFunc
	// Ping reports database health for /api/health. Optional.
	Ping func(ctx context.Context) error
}

func SetupRouter(h *handlers.Handler, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     opts.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	router.GET("/api/health", func(c *gin.Context) {
		status, code := "ok", http.StatusOK
		if opts.Ping != nil {
			if err := opts.Ping(c.Request.Context()); err != nil {
				status, code = "degraded", http.StatusServiceUnavailable
			}
		}
		c.JSON(code, gin.H{
			"status": status,
			"time":   time.Now().Unix(),
			"ws":     "WebSocket available at /ws",
		})
	})

	if opts.WebSocket != nil {
		router.GET("/ws", gin.WrapF(opts.WebSocket))
	}

	limited := middleware.RateLimitMiddleware(opts.Limiter)

	// Public routes (no auth required)
	public := router.Group("/api")
	public.POST("/signup", limited, h.Signup)
	public.POST("/login", limited, h.Login)
	public.GET("/google/url", h.GoogleAuthURL)
	public.GET("/google/callback", limited, h.GoogleCallback)
	public.GET("/vapid-public-key", h.GetVapidPublicKey)

	public.GET("/posts", h.Posts)
	public.GET("/posts/count", h.PostCount)
	public.GET("/posts/:id", h.Post)
	public.GET("/search", h.SearchPosts)
	public.GET("/users", h.ListUsers)
	public.GET("/users/:id/posts", h.UserPosts)
	public.GET("/profile/:username", h.PublicProfile)

	// Protected routes group
	protected := router.Group("/api")
	protected.Use(middleware.JWTAuthMiddleware(h.JWTSecret))

	protected.GET("/me", h.GetMyProfile)
	protected.PUT("/me", h.UpdateMyProfile)
	protected.GET("/my/posts", h.PostsByAuthor)

	protected.POST("/post", limited, h.CreatePost)
	protected.PUT("/post/:id", limited, h.UpdatePost)
	protected.DELETE("/post/:id", limited, h.DeletePost)

	protected.POST("/uploadimages", limited, h.UploadImages)
	protected.POST("/removeimage", limited, h.RemoveImage)

	protected.POST("/subscribe", h.SubscribePush)

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Endpoint not found",
				"path":  c.Request.URL.Path,
			})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	return router
}
