package main

import (
	"context"
	"net/http"
	_ "net/http/pprof"
	"time"

	"property-catalog/internal/auth"
	"property-catalog/internal/middleware"
	"property-catalog/pkg/cache"
	"property-catalog/pkg/database"
	"property-catalog/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

func (a *App) setupRoutes() {
	a.setupStaticRoutes()
	a.setupHealthCheck()
	a.setupAPIRoutes()
}

func (a *App) setupStaticRoutes() {
	a.Router.Static("/"+a.Config.Uploads.URLPrefix, a.images.Root())

	if !a.Config.IsProduction() {
		a.Router.GET("/debug/pprof/*any", gin.WrapH(http.DefaultServeMux))
	}

	a.Router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (a *App) setupHealthCheck() {
	a.Router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if err := database.MongoClient.Ping(ctx, readpref.Primary()); err != nil {
			logger.GlobalLogger.Warnf("MongoDB ping failed: %v", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "message": "MongoDB unavailable"})
			return
		}

		if cache.RedisClient != nil {
			if err := cache.RedisClient.Ping(ctx).Err(); err != nil {
				logger.GlobalLogger.Warnf("Redis ping failed: %v", err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "message": "Redis unavailable"})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

func (a *App) setupAPIRoutes() {
	properties := a.Router.Group("/api/private/properties")
	{
		properties.GET("", a.PropertyHandler.ListProperties)
		properties.GET("/:id", a.PropertyHandler.GetProperty)

		writes := properties.Group("", middleware.RequireScope(a.Config.Auth.JWTSecret, auth.ScopeWrite))
		writes.POST("", a.PropertyHandler.CreateProperty)
		writes.PUT("/:id", a.PropertyHandler.UpdateProperty)
		writes.DELETE("/:id", a.PropertyHandler.DeleteProperty)
	}
}
