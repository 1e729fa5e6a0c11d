package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"wallet-server/auth"
	"wallet-server/cache"
	"wallet-server/config"
	"wallet-server/database"
	"wallet-server/handlers"
	"wallet-server/logging"
	"wallet-server/middleware"
	"wallet-server/repository"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		logrus.WithError(err).Fatal("load .env")
	}
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	if os.Getenv(gin.EnvGinMode) == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

func run(cfg config.Config, log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.JWTSecret == config.DefaultJWTSecret {
		log.Warn("JWT_SECRET is the built-in default; set it before exposing the server")
	}

	db, dialect, err := database.Open(cfg.DatabaseURL, database.NewLogger(log, cfg.DBLogLevel))
	if err != nil {
		return err
	}
	defer database.Close(db)

	applied, err := database.NewMigrator(db, dialect, log).Up(ctx)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"dialect": dialect, "applied": len(applied)}).Info("database ready")

	proxies, err := cfg.TrustedProxyList()
	if err != nil {
		return err
	}

	deps := handlers.Deps{
		Store:          repository.New(db),
		Issuer:         auth.NewIssuer(cfg.JWTSecret, cfg.RefreshSecret()),
		Log:            log,
		RequireAuth:    cfg.AuthRequired(),
		AuthLimiter:    middleware.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst),
		TrustedProxies: proxies,
	}
	if cfg.RedisURL != "" {
		rdb, err := config.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()
		rc := cache.NewRedis(rdb, cfg.PriceCacheTTL)
		deps.Prices, deps.Revoker = rc, rc
		log.Info("redis price cache and token revocation enabled")
	} else {
		deps.Prices = cache.NewMemory(cfg.PriceCacheTTL)
	}
	deps.AuthLimiter.StartCleanup(time.Minute, ctx.Done())

	addr, err := cfg.Addr()
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           handlers.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{"addr": addr, "require_auth": deps.RequireAuth}).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
