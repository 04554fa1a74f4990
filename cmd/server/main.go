package main

import (
	"log"

	"go.uber.org/zap"

	"github.com/arnavshah/roster-scheduler-go/pkg/config"
	"github.com/arnavshah/roster-scheduler-go/pkg/logging"
	"github.com/arnavshah/roster-scheduler-go/pkg/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}

	logger, err := logging.InitLogger(cfg.LogEnv, cfg.LogDir)
	if err != nil {
		log.Fatalf("could not init logger: %v", err)
	}
	defer logger.Sync()

	r, err := server.Build(cfg, logger)
	if err != nil {
		logger.Fatal("could not build server", zap.Error(err))
	}

	logger.Info("Server starting", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal("could not run server", zap.Error(err))
	}
}
