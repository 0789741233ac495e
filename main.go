// api/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"mabletask/analytics/database"
	"mabletask/analytics/engine"
	"mabletask/analytics/handlers"
	"mabletask/analytics/middleware"
	"mabletask/analytics/pipeline"
	"mabletask/analytics/store"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	// Load .env at the very start.
	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file loaded", zap.Error(err))
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// --- Postgres (API accounts + reference tables) ---
	dbClient, err := database.NewPostgresDB()
	if err != nil {
		logger.Fatal("failed to initialize PostgreSQL database", zap.Error(err))
	}
	defer dbClient.Close()
	logger.Info("connected to PostgreSQL")

	// --- ClickHouse (raw events + derived tables) ---
	chClient, err := database.NewClickHouseDB()
	if err != nil {
		logger.Fatal("failed to initialize ClickHouse database", zap.Error(err))
	}
	defer chClient.Close()
	logger.Info("connected to ClickHouse")

	// --- Stores ---
	userStore := store.NewUserStore(dbClient.DB)
	eventStore := store.NewEventStore(chClient, logger)
	refStore := store.NewReferenceStore(dbClient.DB)
	warehouseStore := store.NewWarehouseStore(chClient, logger)

	// --- Engine + pipeline ---
	eng := engine.New(engine.Config{
		MaxSessionHours: envFloat("MAX_SESSION_HOURS", engine.DefaultMaxSessionHours),
	}, logger)
	pipe := pipeline.New(eventStore, refStore, warehouseStore, eng, logger)

	// --- Handlers ---
	authHandlers := handlers.NewAuthHandlers(userStore, logger)
	ingestHandlers := handlers.NewIngestHandlers(eventStore, logger)
	metricsHandlers := handlers.NewMetricsHandlers(pipe, logger)

	r := gin.Default()
	r.Use(middleware.CORSMiddleware())

	api := r.Group("/api")
	{
		api.POST("/signup", authHandlers.Signup)
		api.POST("/login", authHandlers.Login)
		api.POST("/logout", authHandlers.Logout)

		protected := api.Group("/")
		protected.Use(middleware.AuthRequired())
		{
			protected.POST("/track", ingestHandlers.TrackEvents)
			protected.POST("/refresh", metricsHandlers.Refresh)

			tables := protected.Group("/tables")
			{
				tables.GET("/sessions", metricsHandlers.GetSessions)
				tables.GET("/journeys", metricsHandlers.GetJourneys)
				tables.GET("/products", metricsHandlers.GetProducts)
				tables.GET("/daily-engagement", metricsHandlers.GetDailyEngagement)
				tables.GET("/revenue", metricsHandlers.GetRevenue)
				tables.GET("/funnel", metricsHandlers.GetFunnel)
				tables.GET("/users", metricsHandlers.GetUserDimension)
				tables.GET("/dates", metricsHandlers.GetDateDimension)
			}
			protected.GET("/checks", metricsHandlers.GetChecks)
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		logger.Info("analytics API starting", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exiting")
}

func envFloat(name string, fallback float64) float64 {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
