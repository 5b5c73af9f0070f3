// Package app assembles the handler dependencies from configuration. The
// long-running server, the serverless entry point and the CLI share it.
package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/arnavshah/shiftledger-api/pkg/auth"
	"github.com/arnavshah/shiftledger-api/pkg/config"
	"github.com/arnavshah/shiftledger-api/pkg/database"
	"github.com/arnavshah/shiftledger-api/pkg/extract"
	"github.com/arnavshah/shiftledger-api/pkg/handlers"
	"github.com/arnavshah/shiftledger-api/pkg/metrics"
	"github.com/arnavshah/shiftledger-api/pkg/store"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OpenStore returns the session store selected by cfg.StoreDriver. The gorm
// driver reuses db; the file driver keeps a JSON document next to DATA_PATH.
func OpenStore(cfg config.Config, db *gorm.DB) (store.SessionStore, error) {
	switch cfg.StoreDriver {
	case config.DriverGorm:
		return store.NewGormStore(db, time.Local), nil
	case config.DriverFile:
		return store.NewFileStore(strings.TrimSuffix(cfg.DataPath, filepath.Ext(cfg.DataPath)) + ".json"), nil
	case config.DriverMemory:
		return store.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}

// NewHandler opens the database and store, ensures the owner account and
// connects the image extractor when a key is configured.
func NewHandler(ctx context.Context, cfg config.Config, log *zap.Logger) (*handlers.Handler, error) {
	if cfg.JWTSecret == "" || cfg.APIMasterSecret == "" {
		log.Warn("JWT_SECRET or API_MASTER_SECRET is empty; tokens and keys are not secure")
	}

	db, err := database.Open(cfg.DatabaseURL, cfg.DataPath)
	if err != nil {
		return nil, err
	}

	created, err := auth.EnsureOwnerExists(db, cfg.OwnerUsername, cfg.OwnerPassword)
	if err != nil {
		return nil, fmt.Errorf("could not ensure owner account: %w", err)
	}
	if created {
		log.Info("owner account created", zap.String("username", cfg.OwnerUsername))
	}

	s, err := OpenStore(cfg, db)
	if err != nil {
		return nil, err
	}

	if cfg.SeedDemo {
		n, err := store.Seed(ctx, s, time.Now())
		if err != nil {
			return nil, fmt.Errorf("could not seed demo shifts: %w", err)
		}
		if n > 0 {
			log.Info("seeded demo shifts", zap.Int("count", n))
		}
	}

	h := &handlers.Handler{
		DB:       db,
		Store:    s,
		Auth:     auth.NewService(cfg.JWTSecret, cfg.APIMasterSecret),
		Metrics:  metrics.New(),
		Log:      log,
		Location: cfg.DefaultLocation,
		Zone:     time.Local,
	}

	if cfg.GeminiAPIKey != "" {
		ex, err := extract.NewGeminiExtractor(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		h.Extractor = ex
	} else {
		log.Info("GEMINI_API_KEY not set; image import disabled")
	}

	return h, nil
}
