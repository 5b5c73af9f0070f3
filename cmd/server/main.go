package main

import (
	"context"
	"fmt"
	"os"

	"github.com/arnavshah/shiftledger-api/pkg/app"
	"github.com/arnavshah/shiftledger-api/pkg/config"
	"github.com/arnavshah/shiftledger-api/pkg/handlers"
	"github.com/arnavshah/shiftledger-api/pkg/logging"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load .env if it exists
	config.LoadDotEnv()
	cfg := config.Load()

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	log, err := logging.New(cfg.LogLevel, cfg.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	h, err := app.NewHandler(context.Background(), cfg, log)
	if err != nil {
		log.Fatal("could not initialize server", zap.Error(err))
	}

	r := handlers.NewRouter(h)

	log.Info("server starting", zap.String("port", cfg.Port), zap.String("store", cfg.StoreDriver))
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("could not run server", zap.Error(err))
	}
}
