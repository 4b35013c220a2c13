package route

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/decepticons/linkshortener/internal/handler"
	"github.com/decepticons/linkshortener/internal/middleware"
	"github.com/decepticons/linkshortener/internal/service"
	"github.com/decepticons/linkshortener/internal/token"
)

func SetupRouter(
	linkHandler *handler.LinkHandler,
	authHandler *handler.AuthHandler,
	validator *token.Validator,
	authSvc service.AuthService,
	limiter *middleware.RateLimiter,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.MetricsMiddleware())
	r.Use(limiter.Middleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := r.Group("/api/v1/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", authHandler.Logout)
	}

	links := r.Group("/api/v1/links")
	links.Use(middleware.AuthMiddleware(validator, authSvc))
	{
		links.POST("", linkHandler.CreateLink)
		links.GET("", linkHandler.ListMyLinks)
		links.GET("/active", linkHandler.ListMyActiveLinks)
		links.DELETE("/:id", linkHandler.DeleteLink)
		links.POST("/code/:code/deactivate", linkHandler.Deactivate)
		links.PATCH("/code/:code/expiration", linkHandler.UpdateExpiration)
	}

	// Public redirect by short code.
	r.GET("/:code", linkHandler.Redirect)

	return r
}
