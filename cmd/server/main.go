package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/expahub/exchange-funnel/internal/config"
	"github.com/expahub/exchange-funnel/internal/dashboard"
	"github.com/expahub/exchange-funnel/internal/fetch"
	"github.com/expahub/exchange-funnel/internal/httpx"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("config error", slog.String("err", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel()}))
	slog.SetDefault(logger)

	cl := fetch.NewHTTPClient(cfg.HTTPTimeout)
	cache := fetch.NewCache(cfg.CacheTTL)
	fetcher := fetch.NewFetcher(cl, cache, cfg.AnalyticsURL, logger)
	svc := dashboard.NewService(fetcher, logger)

	r := httpx.NewRouter(logger, svc)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("starting server", slog.String("port", cfg.Port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", slog.String("err", err.Error()))
		os.Exit(1)
	}
}
