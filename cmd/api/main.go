package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	server "cafe_reviews/internal/adapters/http_server"
	"cafe_reviews/internal/adapters/observability"
	"cafe_reviews/internal/adapters/places"
	"cafe_reviews/internal/app"
	"cafe_reviews/internal/shared"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	client, err := places.New(places.Options{
		BaseURL:     cfg.PlacesBaseURL,
		API:         cfg.PlacesAPI,
		Language:    cfg.PlacesLanguage,
		ReviewsSort: cfg.ReviewsSort,
		Timeout:     cfg.UpstreamTimeout,
		RPS:         cfg.UpstreamRPS,
		Burst:       cfg.UpstreamBurst,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize Places client")
	}

	svc := app.NewReviewsService(client, cfg.Places)
	if err := svc.ConfigErr(); err != nil {
		// keep serving so the endpoint reports the misconfiguration as a 500 envelope
		log.Error().Err(err).Msg("reviews proxy is NOT configured")
	}

	// http
	reg := observability.InitRegistry()
	srv := server.New(cfg.RequestTimeout)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Reviews: svc, EdgeCacheTTL: cfg.EdgeCacheTTL})

	servers := []*http.Server{{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}}
	if ms := observability.NewMetricsServer(cfg.MetricsAddr, reg); ms != nil {
		servers = append(servers, ms)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	for _, s := range servers {
		s := s
		g.Go(func() error {
			log.Info().Str("addr", s.Addr).Msg("listening")
			if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		for _, s := range servers {
			if err := s.Shutdown(shutdownCtx); err != nil {
				log.Warn().Err(err).Str("addr", s.Addr).Msg("shutdown failed")
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("stopped")
}
