package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"property-catalog/internal/handlers"
	"property-catalog/internal/middleware"
	"property-catalog/internal/query"
	"property-catalog/internal/repositories"
	"property-catalog/internal/services"
	"property-catalog/internal/validators"
	"property-catalog/pkg/cache"
	"property-catalog/pkg/config"
	"property-catalog/pkg/database"
	"property-catalog/pkg/filestore"
	"property-catalog/pkg/logger"
	"property-catalog/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	PropertyHandler *handlers.PropertyHandler
	RateLimiter     *middleware.RateLimiter
	Server          *http.Server

	images    *filestore.Store
	reclaimer *services.ImageReclaimer
	sweeper   *services.OrphanSweeper
	cron      *cron.Cron
	stop      context.CancelFunc
}

func NewApp(cfg *config.Config) *App {
	app := &App{Config: cfg}

	app.initializeDatabase()
	app.initializeCache()
	app.initializeFileStore()
	app.initializeMetrics()
	app.initializeRateLimiter()

	app.initializeDependencies()
	app.initializeScheduler()

	app.initializeRouter()
	return app
}

func (a *App) initializeDatabase() {
	if err := database.InitDB(a.Config); err != nil {
		logger.GlobalLogger.Errorf("failed to initialize database: %v", err)
		os.Exit(1)
	}
	if err := database.CreatePropertyIndexes(database.Collection(a.Config)); err != nil {
		logger.GlobalLogger.Warnf("failed to create indexes: %v", err)
	}
}

func (a *App) initializeCache() {
	if !a.Config.Redis.Enabled {
		logger.GlobalLogger.Println("Redis disabled, caching is off")
		return
	}
	if err := cache.InitRedis(a.Config); err != nil {
		logger.GlobalLogger.Errorf("failed to initialize Redis: %v", err)
		os.Exit(1)
	}
}

func (a *App) initializeFileStore() {
	store, err := filestore.New(a.Config.Uploads.Dir, a.Config.Uploads.URLPrefix)
	if err != nil {
		logger.GlobalLogger.Errorf("failed to initialize upload directory: %v", err)
		os.Exit(1)
	}
	a.images = store
}

func (a *App) initializeMetrics() {
	metrics.Init()
}

func (a *App) initializeRateLimiter() {
	ctx, cancel := context.WithCancel(context.Background())
	a.stop = cancel
	a.RateLimiter = middleware.NewRateLimiter(middleware.PerMinute(a.Config.RateLimit.PerMinute), a.Config.RateLimit.Burst)
	go a.RateLimiter.Cleanup(ctx, 10*time.Minute)
}

func (a *App) initializeDependencies() {
	var store cache.Store = cache.NoopStore{}
	if cache.RedisClient != nil {
		store = cache.NewRedisStore(cache.RedisClient)
	}

	// repositories
	propertyRepo := repositories.NewPropertyRepository(database.Collection(a.Config))
	propertyCache := repositories.NewPropertyCache(store, a.Config.Redis.TTL)

	// validators
	propertyValidator := validators.NewPropertyValidator(a.Config.Uploads.MaxSizeBytes)

	// services
	a.reclaimer = services.NewImageReclaimer(a.images)
	propertyService := services.NewPropertyService(
		propertyRepo,
		propertyCache,
		propertyValidator,
		a.images,
		a.reclaimer,
		query.Bounds{
			DefaultLimit: a.Config.Pagination.DefaultLimit,
			MaxLimit:     a.Config.Pagination.MaxLimit,
		},
	)
	a.sweeper = services.NewOrphanSweeper(propertyRepo, a.images, a.Config.Cleanup.GracePeriod, a.Config.Cleanup.DryRun)

	// handlers
	a.PropertyHandler = handlers.NewPropertyHandler(propertyService, a.Config.Uploads.MaxSizeBytes)
}

func (a *App) initializeRouter() {
	if a.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	a.Router = gin.New()
	a.setupMiddleware()
	a.setupRoutes()
}

// cleanup runs after the HTTP server has stopped accepting requests.
func (a *App) cleanup() {
	a.stop()
	a.stopScheduler()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.reclaimer.Wait(ctx); err != nil {
		logger.GlobalLogger.Warnf("image reclamation did not finish: %v", err)
	}

	database.CloseDB()
	cache.CloseRedis()
}
