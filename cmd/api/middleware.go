package main

import (
	"time"

	"property-catalog/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// ErrorHandler sits ahead of the rate limiter so rejected requests are rendered too.
func (a *App) setupMiddleware() {
	a.Router.Use(gin.Recovery())
	a.Router.Use(setupCORS(a.Config.IsProduction()))
	a.Router.Use(middleware.MetricsMiddleware())
	a.Router.Use(middleware.LoggingMiddleware())
	a.Router.Use(middleware.ErrorHandler())
	a.Router.Use(middleware.SecureHeaders(a.Config.IsProduction()))
	a.Router.Use(middleware.RateLimitMiddleware(a.RateLimiter))
}

func setupCORS(production bool) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	if production {
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
	} else {
		corsConfig.AllowAllOrigins = true
	}

	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"}
	corsConfig.ExposeHeaders = []string{"Content-Length"}
	corsConfig.MaxAge = 12 * time.Hour

	return cors.New(corsConfig)
}
