// internal/adapters/http_server/handlers.go
package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"cafe_reviews/internal/adapters/observability"
	"cafe_reviews/internal/domain"
)

const ReviewsPath = "/api/reviews"

type ReviewsSource interface {
	GetReviews(ctx context.Context) (domain.ReviewsResponse, error)
}

type Handlers struct {
	Reviews      ReviewsSource
	EdgeCacheTTL time.Duration
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get(ReviewsPath, h.getReviews)
}

func (h *Handlers) cacheControl() string {
	return fmt.Sprintf("public, max-age=0, s-maxage=%d", int(h.EdgeCacheTTL.Seconds()))
}

// writeEnvelope writes a failure response; failures are never edge-cached.
func writeEnvelope(w http.ResponseWriter, status int, env domain.ReviewsResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		log.Error().Err(err).Msg("write JSON envelope failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return "", nil, err
	}
	sum := sha1.Sum(body)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`, body, nil
}

func (h *Handlers) getReviews(w http.ResponseWriter, r *http.Request) {
	resp, err := h.Reviews.GetReviews(r.Context())
	observability.ObserveReviewsFetch(domain.Outcome(err))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	etag, body, err := calcETagAndBody(resp)
	if err != nil {
		h.fail(w, r, &domain.UpstreamError{Kind: domain.UpstreamTransport, Message: "encode response", Err: err})
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", h.cacheControl())
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write getReviews body")
	}
}

func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := domain.HTTPStatus(err)
	env := domain.EnvelopeFor(err)

	ev := log.Warn()
	if status == http.StatusInternalServerError {
		ev = log.Error()
	}
	ev.Err(err).
		Str("status", env.Status).
		Int("http_status", status).
		Str("outcome", domain.Outcome(err)).
		Str("request_id", chimw.GetReqID(r.Context())).
		Msg("reviews fetch failed")

	writeEnvelope(w, status, env)
}
