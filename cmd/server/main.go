// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/resaleworks/bookkeeper/internal/api"
	"github.com/resaleworks/bookkeeper/internal/api/handlers"
	"github.com/resaleworks/bookkeeper/internal/cache"
	"github.com/resaleworks/bookkeeper/internal/config"
	"github.com/resaleworks/bookkeeper/internal/ledger"
	"github.com/resaleworks/bookkeeper/internal/reconcile"
	"github.com/resaleworks/bookkeeper/internal/report"
	"github.com/resaleworks/bookkeeper/internal/repository/postgres"
	"github.com/resaleworks/bookkeeper/internal/storage"
	"github.com/resaleworks/bookkeeper/internal/taxonomy"
	"github.com/resaleworks/bookkeeper/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	records := postgres.NewRecordRepository(db)
	taxonomyRepo := postgres.NewTaxonomyRepository(db)
	platforms := postgres.NewPlatformRepository(db)
	groupings := postgres.NewGroupingRepository(db)

	seriesCache, err := cache.NewYearSeriesCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Report cache unavailable, continuing without it")
		seriesCache = cache.NewNoopYearSeriesCache()
	}

	var receipts storage.ReceiptStorage
	if cfg.Receipts.Enabled {
		client, err := storage.NewMinioClient(cfg.Receipts)
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to initialize receipt storage")
		}
		receipts = client
	}

	resolver := taxonomy.NewResolver(taxonomyRepo)
	reconciler := reconcile.NewReconciler(records)
	engine := ledger.NewEngine(records)
	reporter := report.NewReporter(records)

	router := api.NewRouter(&api.Handlers{
		Ledger:   handlers.NewLedgerHandler(engine, records),
		Reports:  handlers.NewReportHandler(reporter, seriesCache),
		Records:  handlers.NewRecordsHandler(records, reconciler, resolver, receipts, seriesCache),
		Taxonomy: handlers.NewTaxonomyHandler(resolver, groupings),
		Platform: handlers.NewPlatformHandler(platforms),
	}, cfg.Server.AllowedOrigins)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
