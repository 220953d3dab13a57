package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"shuttle_admin/internal/config"
	"shuttle_admin/internal/locks"
	"shuttle_admin/internal/logger"
	"shuttle_admin/internal/middleware"
	"shuttle_admin/internal/routes"
	"shuttle_admin/internal/services"
)

func main() {
	settings, err := config.LoadSettings()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load settings")
	}

	// Initialize structured logging to stdout and a rotating file
	logger.Setup(settings.LogFile, settings.LogLevel)
	middleware.SetJWTSecret(settings.JWTSecret)

	db, err := config.InitDB(settings)
	if err != nil {
		logrus.WithError(err).Fatal("database init failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var locker locks.Locker = locks.NewMemoryLocker()
	if settings.RedisAddr != "" {
		rl, err := locks.NewRedisLocker(ctx, settings.RedisAddr, settings.RedisPassword, settings.RedisDB, 2*time.Minute)
		if err != nil {
			logrus.WithError(err).Fatal("redis lock init failed")
		}
		defer rl.Close()
		locker = rl
		logrus.WithField("addr", settings.RedisAddr).Info("using redis generation lock")
	}

	pairs := services.NewRoutePairService(db)
	// Catch up with stop changes made while the service was down.
	if res, err := pairs.Reconcile(ctx); err != nil {
		logrus.WithError(err).Error("startup route pair reconciliation failed")
	} else {
		logrus.WithField("active_pairs", res.Active).Info("route pairs in sync")
	}

	r := routes.SetupRouter(routes.Deps{
		DB:          db,
		Pairs:       pairs,
		Generator:   services.NewTemplateGenerator(db, locker, settings.GenerationPolicy),
		Propagator:  services.NewTemplatePropagator(db),
		RateLimiter: middleware.NewRateLimiter(settings.RateLimitRPS, settings.RateLimitBurst),
	})

	srv := &http.Server{
		Addr:              "0.0.0.0:" + settings.Port,
		Handler:           middleware.EnableCORS(r, settings.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.Infof("Server running at :%s", settings.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("graceful shutdown failed")
	}
}
