// Package main implements the App Store API gateway. It authenticates
// requests with a static API key and forwards them to the store catalog
// client, returning the catalog's JSON untouched.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/appsift/appstore-gateway/internal/appstore"
	"github.com/appsift/appstore-gateway/internal/config"
	"github.com/appsift/appstore-gateway/internal/gateway"
	"github.com/appsift/appstore-gateway/internal/metrics"
	"github.com/appsift/appstore-gateway/internal/middleware"
	"github.com/appsift/appstore-gateway/pkg/logger"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "Optional YAML config file overriding the environment")
	flag.Parse()

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadWithFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	logg := logger.New("appstore-gateway", cfg.LogLevel)
	m := metrics.New("appstore-gateway")

	catalog := appstore.New(appstore.Config{
		Country: cfg.Country,
		Timeout: cfg.UpstreamTimeout,
		Logger:  logg,
	})

	handler := gateway.New(catalog, logg, m, version)

	router := mux.NewRouter()
	router.Use(
		middleware.Logging(logg),
		middleware.Metrics(m),
		middleware.NewCORS(cfg.Origins()).Handler,
		middleware.NewKeyAuth(cfg.APIKey, logg, []string{"/health", "/metrics"}).Handler,
	)
	handler.RegisterRoutes(router)
	router.Handle("/metrics", m.Handler()).Methods(http.MethodGet)

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logg.WithField("addr", cfg.ListenAddr).Info("gateway listening")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logg.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.WithError(err).Error("server shutdown error")
	}

	logg.Info("gateway stopped")
}
