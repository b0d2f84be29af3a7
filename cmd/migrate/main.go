// Command migrate creates or updates the users table and exits.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"users-api/internal/core/config"
	"users-api/internal/core/database"
	"users-api/internal/core/logger"
	"users-api/internal/domain"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		panic(err)
	}
	log, cleanup := logger.New(cfg.Log.Level, cfg.Log.JSON, cfg.Log.File)
	defer cleanup()

	db, err := database.NewGorm(database.Opts{
		Driver:   cfg.DB.Driver,
		DSN:      cfg.DatabaseDSN(),
		Username: cfg.DB.Username,
		Password: cfg.DB.Password,
		LogLevel: cfg.DB.LogLevel,
	})
	if err != nil {
		log.Fatal("db open", zap.Error(err))
	}
	if err := db.AutoMigrate(&domain.User{}); err != nil {
		log.Fatal("automigrate failed", zap.Error(err))
	}
	log.Info("migration done", zap.String("driver", cfg.DB.Driver), zap.Bool("test", cfg.IsTest()))
}
