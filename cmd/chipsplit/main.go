package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/chipsplit/chipsplit/internal/config"
	"github.com/chipsplit/chipsplit/internal/database"
	"github.com/chipsplit/chipsplit/internal/ledger"
	"github.com/chipsplit/chipsplit/internal/server"
	"github.com/chipsplit/chipsplit/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	zapLogger, err := logger.New(logLevel)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	cfg, err := config.Load()
	if err != nil {
		zapLogger.Fatal("failed to load configuration", zap.Error(err))
	}

	db, err := database.Open(cfg.DBDriver, cfg.DBDSN, cfg.DBMaxOpen, cfg.DBMaxIdle)
	if err != nil {
		zapLogger.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		zapLogger.Fatal("failed to migrate database", zap.Error(err))
	}

	store := ledger.NewStore(zapLogger, db)
	srv := server.New(zapLogger, store, cfg.AllowOrigins)

	if err := srv.Run(cfg.HTTPAddr); err != nil {
		zapLogger.Fatal("http server exited", zap.Error(err))
	}
}
