package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arnavshah/roster-scheduler-go/pkg/config"
	"github.com/arnavshah/roster-scheduler-go/pkg/logging"
	"github.com/arnavshah/roster-scheduler-go/pkg/server"
)

var (
	r       *gin.Engine
	initErr error
)

func init() {
	cfg, err := config.Load()
	if err != nil {
		initErr = err
		return
	}

	logger, err := logging.InitLogger(cfg.LogEnv, "")
	if err != nil {
		initErr = err
		return
	}

	r, initErr = server.Build(cfg, logger)
	if initErr != nil {
		logger.Error("could not build server", zap.Error(initErr))
	}
}

// Handler is the entry point for Vercel Go Runtime
func Handler(w http.ResponseWriter, req *http.Request) {
	if initErr != nil {
		http.Error(w, `{"error":"server not configured"}`, http.StatusInternalServerError)
		return
	}
	r.ServeHTTP(w, req)
}
