// Command reviewscheck runs the reviews proxy pipeline once and prints the
// response JSON, for checking a deployment's credentials from a shell.
package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rs/zerolog/log"

	"cafe_reviews/internal/adapters/observability"
	"cafe_reviews/internal/adapters/places"
	"cafe_reviews/internal/app"
	"cafe_reviews/internal/domain"
	"cafe_reviews/internal/shared"
)

func main() {
	os.Exit(run())
}

// run returns the exit code so deferred cleanup happens before os.Exit.
func run() int {
	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv).Output(os.Stderr)

	log.Info().
		Str("api", cfg.PlacesAPI).
		Str("base", cfg.PlacesBaseURL).
		Str("place_id", cfg.Places.PlaceID).
		Msg("reviews check starting")

	client, err := places.New(places.Options{
		BaseURL:     cfg.PlacesBaseURL,
		API:         cfg.PlacesAPI,
		Language:    cfg.PlacesLanguage,
		ReviewsSort: cfg.ReviewsSort,
		Timeout:     cfg.UpstreamTimeout,
		RPS:         1,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize Places client")
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()

	out, err := app.NewReviewsService(client, cfg.Places).GetReviews(ctx)
	code := 0
	if err != nil {
		log.Error().Err(err).Int("http_status", domain.HTTPStatus(err)).Msg("reviews check failed")
		out = domain.EnvelopeFor(err)
		code = 1
	} else {
		log.Info().Int("reviews", len(out.Reviews)).Msg("reviews check ok")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Error().Err(err).Msg("encode output failed")
		code = 1
	}
	return code
}
