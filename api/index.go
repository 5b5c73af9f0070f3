package handler

import (
	"context"
	"net/http"

	"github.com/arnavshah/shiftledger-api/pkg/app"
	"github.com/arnavshah/shiftledger-api/pkg/config"
	"github.com/arnavshah/shiftledger-api/pkg/handlers"
	"github.com/arnavshah/shiftledger-api/pkg/logging"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	r       *gin.Engine
	initErr error
)

func init() {
	// Load .env if it exists (for local testing with vercel dev)
	config.LoadDotEnv()
	cfg := config.Load()

	gin.SetMode(gin.ReleaseMode)

	log, err := logging.New(cfg.LogLevel, false)
	if err != nil {
		log = zap.NewNop()
	}

	h, err := app.NewHandler(context.Background(), cfg, log)
	if err != nil {
		log.Error("could not initialize handler", zap.Error(err))
		initErr = err
		return
	}
	r = handlers.NewRouter(h)
}

// Handler is the entry point for Vercel Go Runtime
func Handler(w http.ResponseWriter, req *http.Request) {
	if initErr != nil {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}
	r.ServeHTTP(w, req)
}
