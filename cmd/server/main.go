package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/unicounsel/backend/config"
	"github.com/unicounsel/backend/internal/domain"
	httpDelivery "github.com/unicounsel/backend/internal/delivery/http"
	"github.com/unicounsel/backend/internal/infrastructure/cache"
	"github.com/unicounsel/backend/internal/infrastructure/flatfile"
	"github.com/unicounsel/backend/internal/infrastructure/logger"
	"github.com/unicounsel/backend/internal/infrastructure/sqlstore"
	"github.com/unicounsel/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log, err := logger.New(logger.Options{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if err != nil {
		logrus.Fatalf("Failed to configure logger: %v", err)
	}

	log.WithFields(logrus.Fields{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"database":    cfg.Database.Driver,
	}).Info("Starting UniCounsel Backend v1.0.0")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize infrastructure dependencies
	storage := openStorage(ctx, cfg.Database, log)
	defer storage.close()

	csvSource := flatfile.NewSource(flatfile.Config{
		Dirs:    cfg.Catalog.DataDirs,
		Pattern: cfg.Catalog.FilePattern,
	}, log)
	catalogCache := cache.NewMemoryCache(cfg.Catalog.CacheTTL)

	// Initialize usecase layer
	provider := usecase.NewCatalogProvider(storage.catalog, csvSource, catalogCache, log)
	matchService := usecase.NewMatchService(provider, storage.preferences, storage.matches, usecase.MatchServiceConfig{
		MinScore:           cfg.Matching.MinScore,
		EnableDebugLogging: cfg.Matching.DebugLogging,
	}, log)
	insights := usecase.NewCatalogInsights(provider)

	log.WithFields(logrus.Fields{
		"minScore": cfg.Matching.MinScore,
		"debug":    cfg.Matching.DebugLogging,
		"dataDirs": cfg.Catalog.DataDirs,
	}).Info("Matching configured")

	// Warm the catalog so the first request does not pay for it
	if catalog, err := provider.Load(ctx); err != nil {
		log.WithField("error", err.Error()).Warn("Catalog not available at startup")
	} else {
		log.WithFields(logrus.Fields{
			"source":       catalog.Source,
			"universities": len(catalog.Universities),
		}).Info("Catalog ready")
	}

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(matchService, insights, provider, log)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler, log)

	// Start server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server shutdown failed: %v", err)
	}
}

// storage is what the services persist to. catalog is nil when the
// database is unavailable, leaving the CSV files as the only catalog source.
type storage struct {
	catalog     domain.CatalogSource
	preferences domain.PreferencesRepository
	matches     domain.MatchRepository
	close       func() error
}

// openStorage connects to the structured store. When the database cannot be
// opened or migrated the server keeps running on the CSV catalog with
// in-memory user state.
func openStorage(ctx context.Context, db config.DatabaseConfig, log logrus.FieldLogger) storage {
	store, err := sqlstore.Open(ctx, db.Driver, db.DSN, log)
	if err == nil && db.Migrate {
		if err = store.Migrate(ctx); err != nil {
			store.Close()
		}
	}
	if err != nil {
		log.WithFields(logrus.Fields{
			"database": db.Driver,
			"error":    err.Error(),
		}).Warn("Database unavailable, serving the CSV catalog with in-memory user state")

		state := cache.NewUserStateStore()
		return storage{
			preferences: state,
			matches:     state,
			close:       func() error { return nil },
		}
	}

	return storage{
		catalog:     store,
		preferences: store,
		matches:     store,
		close:       store.Close,
	}
}
