package main

import (
	"context"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/apotheka-systems/botendienst/internal/customers"
	"github.com/apotheka-systems/botendienst/internal/directions"
	"github.com/apotheka-systems/botendienst/internal/proof"
	"github.com/apotheka-systems/botendienst/internal/routing"
	"github.com/apotheka-systems/botendienst/internal/tours"
	"github.com/apotheka-systems/botendienst/internal/tracking"
	"github.com/apotheka-systems/botendienst/pkg/common"
	"github.com/apotheka-systems/botendienst/pkg/config"
	"github.com/apotheka-systems/botendienst/pkg/database"
	"github.com/apotheka-systems/botendienst/pkg/logger"
	"github.com/apotheka-systems/botendienst/pkg/middleware"
	redisClient "github.com/apotheka-systems/botendienst/pkg/redis"
	"github.com/apotheka-systems/botendienst/pkg/storage"
	ws "github.com/apotheka-systems/botendienst/pkg/websocket"
)

const (
	serviceName    = "botendienst-api"
	serviceVersion = "1.0.0"
)

func main() {
	cfg, err := config.Load(serviceName)
	if err != nil {
		panic(err)
	}

	if err := logger.Init(cfg.Server.Environment); err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Get()

	// Database
	if err := database.RunMigrations(&cfg.Database, "migrations"); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}
	db, err := database.NewPostgresPool(&cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to PostgreSQL", zap.Error(err))
	}
	defer database.Close(db)
	log.Info("connected to PostgreSQL")

	// Redis
	rdb, err := redisClient.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Fatal("failed to connect to Redis", zap.Error(err))
	}
	defer rdb.Close()
	log.Info("connected to Redis")

	// Object storage for proof of delivery
	store, err := storage.NewS3Storage(context.Background(), cfg.Storage)
	if err != nil {
		log.Fatal("failed to initialize object storage", zap.Error(err))
	}

	// WebSocket hub for live tour watching
	hub := ws.NewHub()
	go hub.Run()

	// Wire up services
	proofRepo := proof.NewRepository(db)
	proofService := proof.NewService(proofRepo, store)
	proofHandler := proof.NewHandler(proofService)

	var optimizer tours.RouteOptimizer
	if cfg.Google.MapsAPIKey != "" {
		optimizer = routing.NewRemoteOptimizer(cfg.Google.OptimizeProxyURL, cfg.Google.MapsAPIKey)
	} else {
		log.Warn("no Maps API key configured, road-network optimization disabled")
	}

	toursRepo := tours.NewRepository(db)
	toursService := tours.NewService(toursRepo, optimizer, proofService)
	toursHandler := tours.NewHandler(toursService)

	trackingRepo := tracking.NewRepository(db)
	trackingService := tracking.NewService(trackingRepo, rdb, hub)
	trackingHandler := tracking.NewHandler(trackingService, hub)

	customersRepo := customers.NewRepository(db)
	customersService := customers.NewService(customersRepo)
	customersHandler := customers.NewHandler(customersService)

	directionsHandler := directions.NewHandler(directions.NewClient(cfg.Google.DirectionsBaseURL))

	// Router
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics(serviceName))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(cfg.Server.CORSOrigins, ",")
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{
		"Origin", "Content-Type", "Authorization",
		middleware.PharmacyIDHeader, middleware.StaffIDHeader, tours.TourTokenHeader,
	}
	router.Use(cors.New(corsConfig))

	// Health check and metrics (no auth required)
	router.GET("/healthz", common.HealthCheckWithDeps(serviceName, serviceVersion, map[string]func() error{
		"postgres": func() error { return db.Ping(context.Background()) },
		"redis":    func() error { return rdb.Ping(context.Background()).Err() },
	}))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	api.Use(middleware.Timeout(time.Duration(cfg.Server.WriteTimeout) * time.Second))
	{
		// Route optimization proxy (fixed external contract)
		api.POST("/routes/optimize", directionsHandler.OptimizeRoute)

		// Tours
		api.POST("/tours", toursHandler.CreateTour)
		api.GET("/tours", toursHandler.ListTours)
		api.GET("/tours/:id", toursHandler.GetTour)
		api.PUT("/tours/:id", toursHandler.UpdateTour)
		api.DELETE("/tours/:id", toursHandler.DeleteTour)
		api.GET("/tours/:id/stats", toursHandler.GetTourStats)
		api.POST("/tours/:id/start", toursHandler.StartTour)
		api.POST("/tours/:id/complete", toursHandler.CompleteTour)
		api.POST("/tours/:id/cancel", toursHandler.CancelTour)
		api.POST("/tours/:id/optimize", toursHandler.OptimizeTour)
		api.GET("/tours/:id/navigation", toursHandler.GetTourNavigationURL)

		// Stops within a tour
		api.POST("/tours/:id/stops", toursHandler.AddStop)
		api.PUT("/tours/:id/stops/order", toursHandler.ReorderStops)

		// Stops
		api.PUT("/stops/:id", toursHandler.UpdateStop)
		api.DELETE("/stops/:id", toursHandler.DeleteStop)
		api.POST("/stops/:id/start", toursHandler.StartStop)
		api.POST("/stops/:id/complete", toursHandler.CompleteStop)
		api.POST("/stops/:id/skip", toursHandler.SkipStop)
		api.POST("/stops/:id/reschedule", toursHandler.RescheduleStop)
		api.POST("/stops/:id/cash", toursHandler.CollectCash)
		api.GET("/stops/:id/navigation", toursHandler.GetStopNavigationURL)

		// Proof of delivery
		api.POST("/stops/:id/photos", proofHandler.UploadPhoto)
		api.POST("/stops/:id/signature", proofHandler.UploadSignature)
		api.GET("/stops/:id/proof", proofHandler.ListArtifacts)
		api.DELETE("/proof/:id", proofHandler.DeleteArtifact)

		// Driver tracking
		api.POST("/tours/:id/position", trackingHandler.UpdatePosition)
		api.GET("/tours/:id/position", trackingHandler.GetLatestPosition)
		api.GET("/tours/:id/position/history", trackingHandler.GetHistory)
		api.GET("/tours/:id/watch", trackingHandler.WatchTour)

		// Customers
		api.POST("/customers", customersHandler.Create)
		api.GET("/customers", customersHandler.List)
		api.GET("/customers/:id", customersHandler.Get)
		api.PUT("/customers/:id", customersHandler.Update)
		api.DELETE("/customers/:id", customersHandler.Delete)

		// Driver token access
		api.GET("/driver/tour", toursHandler.GetTourByToken)
	}

	addr := ":" + cfg.Server.Port
	log.Info("botendienst service starting", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}
