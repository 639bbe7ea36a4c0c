package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"deforest-api/internal/core/auth"
	"deforest-api/internal/core/cache"
	"deforest-api/internal/core/config"
	"deforest-api/internal/core/database"
	"deforest-api/internal/core/logger"
	"deforest-api/internal/core/oauth"
	"deforest-api/internal/core/server"
	"deforest-api/internal/domain"
	"deforest-api/internal/predict"
	"deforest-api/internal/repo"
	"deforest-api/internal/service"
	"deforest-api/internal/transport/http/handler"
	"deforest-api/internal/transport/http/router"
	"deforest-api/pkg/utils"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := newLogger(cfg)
	defer cleanup()

	// Credential store: durable if reachable, in-memory otherwise. The
	// choice is made once here; it never fails over mid-session.
	store := selectStore(cfg, log)

	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
	}

	google := oauth.NewGoogleProvider(oauth.Config{
		ClientID:     cfg.Google.ClientID,
		ClientSecret: cfg.Google.ClientSecret,
		RedirectURL:  cfg.Google.RedirectURL,
	})

	statsCache := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if statsCache != nil {
		log.Info("redis stats cache enabled", zap.String("addr", cfg.Redis.Addr))
	}

	authSvc := service.NewAuthService(store, log)
	adminSvc := service.NewAdminService(store, log)
	predictClient := predict.NewClient(cfg.Predict.BaseURL, time.Duration(cfg.Predict.TimeoutSec)*time.Second)

	r := router.NewAPIEngine(router.Options{
		Logger:      log,
		JWTer:       jwter,
		Auth:        handler.NewAuthHandler(authSvc, google, jwter, cfg.App.FrontendURL, cfg.Production(), log),
		Admin:       handler.NewAdminHandler(adminSvc, statsCache, log),
		Predict:     handler.NewPredictHandler(predictClient, log),
		CORSOrigins: cfg.App.CORSOrigins,
	})

	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	log.Info("api starting", zap.String("addr", addr))
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("api start FAILED", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info("api stopped gracefully")
}

func newLogger(cfg *config.Config) (*zap.Logger, func()) {
	if cfg.Log.File != "" {
		return logger.NewWithRotate(cfg.Log.Level, cfg.Log.JSON, cfg.Log.File,
			cfg.Log.MaxSizeMB, cfg.Log.MaxBackups, cfg.Log.MaxAgeDays, cfg.Log.Compress)
	}
	return logger.New(cfg.Log.Level, cfg.Log.JSON)
}

func selectStore(cfg *config.Config, log *zap.Logger) domain.UserStore {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
	if err == nil {
		if cfg.DB.AutoMigrate {
			if merr := db.AutoMigrate(&domain.User{}); merr != nil {
				log.Fatal("automigrate failed", zap.Error(merr))
			}
		}
		log.Info("database connected", zap.String("driver", cfg.DB.Driver))
		return repo.NewGormUserStore(db)
	}

	log.Warn("DATABASE UNREACHABLE - falling back to in-memory store; ALL USER DATA WILL BE LOST ON RESTART",
		zap.Error(err))
	mem := repo.NewMemoryUserStore()
	seedAdmin(mem, cfg, log)
	return mem
}

// seedAdmin bootstraps one admin account so an in-memory deployment is still
// administrable. Runs only against the fallback store and only when enabled.
func seedAdmin(store domain.UserStore, cfg *config.Config, log *zap.Logger) {
	if !cfg.Admin.Enable || cfg.Admin.Email == "" || cfg.Admin.Password == "" {
		return
	}
	err := store.Create(&domain.User{
		ID:           utils.NewID(),
		Email:        cfg.Admin.Email,
		Username:     cfg.Admin.Username,
		PasswordHash: utils.HashPassword(cfg.Admin.Password),
		Provider:     domain.ProviderLocal,
		Role:         domain.RoleAdmin,
	})
	if err != nil {
		log.Error("bootstrap admin seeding failed", zap.Error(err))
		return
	}
	log.Info("bootstrap admin seeded", zap.String("email", cfg.Admin.Email))
}
