package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/ariane/internal/assets"
	"github.com/ariane/internal/auth"
	"github.com/ariane/internal/config"
	"github.com/ariane/internal/handler"
	"github.com/ariane/internal/logger"
	"github.com/ariane/internal/metrics"
	"github.com/ariane/internal/repository"
	"github.com/ariane/internal/router"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: cfg.LogEncoding})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	gin.SetMode(cfg.GinMode)

	// 初始化存储
	ctx := context.Background()
	store, err := repository.Open(ctx, cfg)
	if err != nil {
		log.Fatal("failed to open store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}

	files, err := assets.NewFileStore(cfg.UploadDir, cfg.UploadURLPath)
	if err != nil {
		log.Fatal("failed to prepare upload directory", zap.String("dir", cfg.UploadDir), zap.Error(err))
	}

	issuer, err := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL, log)
	if err != nil {
		log.Fatal("failed to create token issuer", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	rec := metrics.NewCollector(reg)

	api := handler.NewAPI(handler.Options{
		Store:          store,
		Assets:         files,
		Tokens:         issuer,
		Metrics:        rec,
		AuthorFallback: cfg.BookletAuthorFallback,
		Logger:         log,
	})

	// 设置并运行 Gin 服务器
	r := router.SetupRouter(router.Options{
		API:           api,
		Verifier:      issuer,
		Logger:        log,
		Metrics:       rec,
		Gatherer:      reg,
		UploadDir:     files.Root(),
		UploadURLPath: cfg.UploadURLPath,
		CORSOrigins:   cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("starting http server", zap.String("addr", cfg.ListenAddr), zap.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to run server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	if err := store.Close(shutdownCtx); err != nil {
		log.Error("failed to close store", zap.Error(err))
	}
	log.Info("server exited")
}
