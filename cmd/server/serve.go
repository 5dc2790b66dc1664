package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/iliyamo/eco-stations/internal/config"
	"github.com/iliyamo/eco-stations/internal/database"
	"github.com/iliyamo/eco-stations/internal/handler"
	"github.com/iliyamo/eco-stations/internal/logging"
	"github.com/iliyamo/eco-stations/internal/metrics"
	"github.com/iliyamo/eco-stations/internal/middleware"
	"github.com/iliyamo/eco-stations/internal/queue"
	"github.com/iliyamo/eco-stations/internal/render"
	"github.com/iliyamo/eco-stations/internal/repository"
	"github.com/iliyamo/eco-stations/internal/router"
	"github.com/iliyamo/eco-stations/internal/service"
	"github.com/iliyamo/eco-stations/internal/storage"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default)",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	users := repository.NewUserRepo(db)
	stations := repository.NewStationRepo(db)
	reviews := repository.NewReviewRepo(db)
	stats := repository.NewStatsRepo(db)

	// schema and admin seeding are best effort; a failure is logged and
	// the server starts anyway
	if err := service.NewBootstrapper(db, users, cfg, log).Run(ctx); err != nil {
		log.WithError(err).Error("startup routine failed")
	}

	var rdb *redis.Client
	if c, err := config.NewRedisClient(ctx, cfg.Redis); err != nil {
		log.WithError(err).Warn("redis unavailable: response cache disabled, rate limiting in-process")
	} else {
		rdb = c
		defer rdb.Close()
	}
	cache := middleware.NewResponseCache(cfg.Cache, rdb, log)
	limiter := middleware.NewTokenBucket(cfg.RateLimit, rdb, log)

	var store storage.Store
	if s, err := storage.New(ctx, cfg.Storage); err != nil {
		log.WithError(err).Error("image storage unavailable: review images disabled")
	} else {
		store = s
	}

	publisher := service.NewReviewPublisher(cfg.Queue.URL, cfg.Queue.Enabled, log)
	if cfg.Queue.Enabled {
		consumer := queue.NewConsumer(cfg.Queue.URL, cfg.Queue.LogDir, log)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.WithError(err).Error("review consumer stopped")
			}
		}()
	}

	renderer, err := render.New(middleware.CurrentPrincipal)
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Renderer = renderer
	e.HTTPErrorHandler = handler.ErrorHandler(log)
	e.Use(echomw.Recover())
	e.Use(metrics.Middleware())
	e.Use(middleware.RequestLogger(log))
	e.Use(echomw.BodyLimit(bodyLimit(cfg.Storage.MaxBytes)))
	e.Use(middleware.Session(cfg.JWTSecret, users))

	router.RegisterRoutes(e)
	router.RegisterStatic(e, cfg.StaticDir, localUploadDir(cfg.Storage))
	router.RegisterPages(e, handler.NewPageHandler(stats))
	auth := handler.NewAuthHandler(cfg, users, log)
	router.RegisterAuth(e, auth, limiter)
	router.RegisterAPI(e, handler.NewAPIHandler(stations, stats), auth.Me, cache.Middleware())
	router.RegisterStations(e, handler.NewStationHandler(stations, reviews, store, cfg.Storage.MaxBytes, cache, publisher, log), limiter)
	router.RegisterProfile(e, handler.NewProfileHandler(cfg, users, reviews, log))
	router.RegisterAdmin(e, handler.NewAdminHandler(cfg, users, stations, reviews, cache, log))

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// bodyLimit leaves room for the form fields around the largest image.
func bodyLimit(maxUpload int64) string {
	return fmt.Sprintf("%dK", maxUpload/1024+1024)
}

func localUploadDir(sc config.StorageConfig) string {
	if b := strings.ToLower(sc.Backend); b == "" || b == "local" {
		return sc.Dir
	}
	return ""
}
