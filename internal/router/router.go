// Package router sets up HTTP routes for the API.
package router

import (
	"net/http"

	"carpool/internal/handler"
	"carpool/internal/logger"
	"carpool/internal/metrics"
	"carpool/internal/middleware"
	_ "carpool/internal/swagger" // Register swagger docs
	"carpool/pkg/auth"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// Config holds all dependencies needed to set up routes.
type Config struct {
	AuthHandler *handler.AuthHandler
	RideHandler *handler.RideHandler
	Tokens      auth.TokenManager
	Lookup      middleware.EmployeeLookup
	Metrics     *metrics.Metrics
	Logger      *zap.Logger
}

// Setup creates and configures the Gin router.
func Setup(cfg *Config) *gin.Engine {
	r := gin.New()

	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(logger.Middleware(log))
	r.Use(gin.Recovery())
	r.Use(middleware.CORS())
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	// Swagger docs at /docs
	r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1
	v1 := r.Group("/api/v1")
	{
		// Auth routes (public)
		authRoutes := v1.Group("/auth")
		{
			authRoutes.POST("/signup", cfg.AuthHandler.SignUp)
			authRoutes.POST("/login", cfg.AuthHandler.LogIn)
			authRoutes.GET("/session", cfg.AuthHandler.Session)
		}

		// Auth routes (protected)
		authProtected := v1.Group("/auth")
		authProtected.Use(middleware.Auth(cfg.Tokens))
		{
			authProtected.POST("/logout", cfg.AuthHandler.LogOut)
		}

		// Ride routes (protected, caller must still be registered)
		rides := v1.Group("/rides")
		rides.Use(middleware.Auth(cfg.Tokens), middleware.RegisteredEmployee(cfg.Lookup))
		{
			rides.POST("", cfg.RideHandler.AddRide)
			rides.GET("", cfg.RideHandler.ListRides)
			rides.GET("/available", cfg.RideHandler.AvailableRides)
			rides.GET("/booked", cfg.RideHandler.BookedRides)
			rides.GET("/mine", cfg.RideHandler.MyRide)
			rides.POST("/:id/book", cfg.RideHandler.BookRide)
		}
	}

	return r
}
