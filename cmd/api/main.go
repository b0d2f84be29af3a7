package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"users-api/internal/core/auth"
	"users-api/internal/core/cache"
	"users-api/internal/core/config"
	"users-api/internal/core/database"
	"users-api/internal/core/logger"
	"users-api/internal/core/server"
	"users-api/internal/domain"
	"users-api/internal/repo"
	"users-api/internal/transport/http/docs"
	"users-api/internal/transport/http/router"
)

var version = "dev"

// @title        Users API
// @version      1.0
// @description  Create, list, read, update and delete user accounts.
// @BasePath     /api
func main() {
	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		panic(err)
	}
	log, cleanup := logger.New(cfg.Log.Level, cfg.Log.JSON, cfg.Log.File)
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()

	if cfg.App.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	gin.DefaultWriter = logger.ToWriter(log, zapcore.DebugLevel)
	gin.DefaultErrorWriter = logger.ToWriter(log, zapcore.ErrorLevel)

	db := mustOpenDB(cfg, log)
	log.Info("database connected", zap.String("driver", cfg.DB.Driver), zap.Bool("test", cfg.IsTest()))

	if cfg.DB.AutoMigrate {
		if err := db.AutoMigrate(&domain.User{}); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}

	var users domain.UserRepository = repo.NewUserRepo(db)
	if cfg.Redis.Addr != "" {
		c := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log)
		defer c.Close()
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := c.Ping(pingCtx); err != nil {
			log.Warn("redis unreachable, reads fall through to the database", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		cancel()
		users = repo.NewCachedUserRepo(users, c, time.Duration(cfg.Redis.TTLSec)*time.Second, log)
		log.Info("user cache enabled", zap.String("addr", cfg.Redis.Addr))
	}

	if cfg.JWT.Secret == "" {
		log.Warn("JWT_SECRET is empty, account creation will fail to issue tokens")
	}
	tokens := &auth.JWTer{
		Key:    func() []byte { return []byte(cfg.JWT.Secret) },
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
	}

	docs.SwaggerInfo.Version = version
	r := router.NewAPIEngine(router.Deps{
		Log:          log,
		Users:        users,
		Tokens:       tokens,
		Silent:       cfg.IsTest(),
		DocsPath:     cfg.App.DocsPath,
		MaxBodyBytes: cfg.App.HTTP.MaxBodyBytes,
	})

	errLog, err := logger.ToStdLogger(log, zapcore.ErrorLevel)
	if err != nil {
		log.Fatal("http error logger", zap.Error(err))
	}
	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(addr, r, server.Timeouts{
		Read:  time.Duration(cfg.App.HTTP.ReadTimeoutSec) * time.Second,
		Write: time.Duration(cfg.App.HTTP.WriteTimeoutSec) * time.Second,
		Idle:  time.Duration(cfg.App.HTTP.IdleTimeoutSec) * time.Second,
	}, errLog)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("users api starting",
		zap.String("addr", addr),
		zap.String("env", cfg.App.Env),
		zap.String("docs", cfg.App.DocsPath),
	)
	if err := server.Run(ctx, srv, log, 10*time.Second); err != nil {
		log.Error("users api stopped with error", zap.Error(err))
		return
	}
	log.Info("users api stopped gracefully")
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DatabaseDSN(),
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}
