package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/retailmatch/backend/config"
	httpDelivery "github.com/retailmatch/backend/internal/delivery/http"
	"github.com/retailmatch/backend/internal/domain"
	"github.com/retailmatch/backend/internal/infrastructure/cache"
	"github.com/retailmatch/backend/internal/infrastructure/scraper"
	"github.com/retailmatch/backend/internal/logging"
	"github.com/retailmatch/backend/internal/metrics"
	"github.com/retailmatch/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	format := cfg.Log.Format
	if cfg.Server.Environment == "production" {
		format = "json"
	}
	logging.Setup(cfg.Log.Level, format, os.Stdout)
	metrics.Register()

	log.Info().
		Str("environment", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Str("fetch_engine", cfg.Fetch.Engine).
		Msg("starting retailmatch backend v1.0.0")

	// Initialize infrastructure dependencies
	catalogStore := cache.NewMemoryCatalogStore(0)
	defer catalogStore.Close()

	fetcher, err := scraper.NewFetcher(cfg.Fetch.Engine, scraper.Options{
		Timeout:           cfg.Fetch.Timeout,
		UserAgent:         cfg.Fetch.UserAgent,
		MaxBodyBytes:      cfg.Fetch.MaxBodyBytes,
		RequestsPerSecond: cfg.Fetch.RequestsPerSecond,
		Burst:             cfg.Fetch.Burst,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create page fetcher")
	}
	if client, ok := fetcher.(*scraper.Client); ok && cfg.Server.Environment == "development" {
		client.SetDebug(true)
		log.Debug().Msg("page client debug mode enabled")
	}

	// Initialize usecase layer
	debug := cfg.Server.Environment == "development"
	brandMatchService := usecase.NewBrandMatchService(
		catalogStore,
		fetcher,
		usecase.BrandMatchServiceConfig{
			CatalogTTL:         cfg.Catalog.SessionTTL,
			FilterStopWords:    cfg.Matching.FilterStopWords,
			StopWords:          cfg.Matching.StopWords,
			FoldDiacritics:     cfg.Matching.FoldDiacritics,
			EnableDebugLogging: debug,
		},
	)

	catalog, err := brandMatchService.LoadDefaultCatalog(cfg.Catalog.Path)
	switch {
	case errors.Is(err, domain.ErrCatalogSourceMissing):
		log.Warn().Str("path", cfg.Catalog.Path).Msg("no preloaded catalog; requests must upload one")
	case err != nil:
		log.Fatal().Err(err).Str("path", cfg.Catalog.Path).Msg("failed to load catalog")
	default:
		log.Info().Str("path", cfg.Catalog.Path).Int("brands", catalog.Len()).Msg("default catalog ready")
	}

	log.Info().
		Bool("filter_stop_words", cfg.Matching.FilterStopWords).
		Int("stop_words", len(cfg.Matching.StopWords)).
		Bool("fold_diacritics", cfg.Matching.FoldDiacritics).
		Msg("matching configured")

	handler := httpDelivery.NewHandler(brandMatchService, httpDelivery.HandlerConfig{
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
	})
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info().Str("addr", addr).Msg("server listening")

	if err := router.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}
