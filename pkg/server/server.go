// Package server wires configuration, services and handlers into a gin engine
// shared by the standalone server and the serverless entry point.
package server

import (
	"context"
	"errors"
	"net/http"
	"slices"

	config "agri-demand-api/configs"
	"agri-demand-api/pkg/catalog"
	"agri-demand-api/pkg/forecast"
	"agri-demand-api/pkg/handlers"
	"agri-demand-api/pkg/logger"
	"agri-demand-api/pkg/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// insecureDefaultKey is treated as "no API key configured".
const insecureDefaultKey = "default_secret_key"

// Dependencies are the services the router exposes.
type Dependencies struct {
	Forecast    *services.DemandForecastService
	Uploads     *services.UploadService
	Datasets    *services.DatasetStore
	Monitoring  *services.MonitoringService
	Maintenance *handlers.Maintenance
}

// App is a wired application: the router plus the resources it holds open.
type App struct {
	Router  *gin.Engine
	Deps    Dependencies
	closers []func() error
}

// New builds every service from cfg. Redis and Qdrant are optional: when they
// cannot be reached the app starts without them and logs a warning.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logger.Init(cfg.Environment, cfg.LogLevel)
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	app := &App{}

	cache, err := services.NewForecastCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("forecast cache unavailable, continuing without cache")
		cache = services.NewNoopForecastCache()
	}
	app.closers = append(app.closers, cache.Close)

	var archive services.ForecastArchive
	if cfg.Qdrant.Enabled() {
		svc, err := services.NewForecastArchiveService(ctx, cfg.Qdrant)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("forecast archive unavailable, continuing without archive")
		} else {
			archive = svc
			app.closers = append(app.closers, svc.Close)
		}
	}

	engine := forecast.NewEngine(catalog.Default())
	datasets := services.NewDatasetStore()

	app.Deps = Dependencies{
		Forecast:    services.NewDemandForecastService(engine, cache, archive),
		Uploads:     services.NewUploadService(datasets, cfg.Upload.PreviewRows),
		Datasets:    datasets,
		Monitoring:  services.NewMonitoringService(services.DefaultLogCapacity, "/api/v1/monitoring"),
		Maintenance: &handlers.Maintenance{},
	}
	app.Router = NewRouter(cfg, app.Deps)

	logger.Log.Info().
		Int("products", engine.Catalog().Len()).
		Bool("cache", cfg.Cache.Enabled).
		Bool("archive", archive != nil).
		Msg("application initialized")
	return app, nil
}

// Close releases the cache and archive connections.
func (a *App) Close() error {
	var errs []error
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewRouter registers every route on a new gin engine.
func NewRouter(cfg *config.Config, deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(deps.Monitoring.LoggingMiddleware())
	r.Use(cors.New(corsConfig(cfg.AllowedOrigins)))

	demandHandler := handlers.NewDemandForecastHandler(deps.Forecast)
	catalogHandler := handlers.NewCatalogHandler(deps.Forecast)
	uploadHandler := handlers.NewUploadHandler(deps.Uploads, deps.Datasets, cfg.Upload.MaxBytes)
	healthHandler := handlers.NewHealthHandler(deps.Forecast, deps.Datasets, deps.Maintenance)
	adminHandler := handlers.NewAdminHandler(cfg, deps.Maintenance)
	monitoringHandler := handlers.NewMonitoringHandler(deps.Monitoring)

	r.GET("/", catalogHandler.Root)
	r.GET("/health", healthHandler.HealthCheck)

	auth := authMiddleware(cfg.APIKey)

	// 既存フロントエンド互換のルート。APIキー設定時は/api/v1と同じ認証を通す
	registerForecastRoutes(r.Group("", auth), demandHandler, catalogHandler, uploadHandler)

	// APIバージョン1のルートグループ
	v1 := r.Group("/api/v1")
	v1.Use(auth)
	{
		registerForecastRoutes(v1, demandHandler, catalogHandler, uploadHandler)
		v1.GET("/archive/similar", demandHandler.ArchiveSimilar)

		// 管理者向けAPI
		admin := v1.Group("/admin")
		{
			admin.GET("/health-status", adminHandler.GetHealthStatus)
			admin.POST("/maintenance/start", adminHandler.StartMaintenance)
			admin.POST("/maintenance/stop", adminHandler.StopMaintenance)
		}

		// モニタリングAPI
		monitoring := v1.Group("/monitoring")
		{
			monitoring.GET("/logs", monitoringHandler.GetLogs)
		}
	}
	return r
}

func registerForecastRoutes(g *gin.RouterGroup, demand *handlers.DemandForecastHandler, cat *handlers.CatalogHandler, upload *handlers.UploadHandler) {
	g.POST("/predict-demand", demand.PredictDemand)
	g.GET("/predict-demand", demand.GetPredictDemand)
	g.POST("/predict-batch", demand.PredictBatch)
	g.POST("/upload-excel", upload.UploadExcel)
	g.GET("/uploads/latest", upload.LatestUpload)
	g.GET("/products", cat.Products)
	g.GET("/categories", cat.Categories)
	g.GET("/model-info", cat.ModelInfo)
	g.GET("/ml-status", cat.MLStatus)
}

// 認証ミドルウェア
func authMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" || apiKey == insecureDefaultKey {
			c.Next()
			return
		}
		if c.GetHeader("X-API-KEY") != apiKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization", "X-API-KEY", services.RequestIDHeader)
	cfg.ExposeHeaders = []string{services.RequestIDHeader}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
