package domain

import (
	"context"
	"strings"
)

// Credentials identify the place and authorize calls to the provider.
// They come from server configuration, never from the inbound request.
type Credentials struct {
	PlaceID string
	APIKey  string
}

const (
	EnvPlaceID = "GOOGLE_PLACE_ID"
	EnvAPIKey  = "GOOGLE_PLACES_API_KEY"
)

// Missing lists the environment variables that are absent, in a fixed order.
func (c Credentials) Missing() []string {
	var out []string
	if strings.TrimSpace(c.PlaceID) == "" {
		out = append(out, EnvPlaceID)
	}
	if strings.TrimSpace(c.APIKey) == "" {
		out = append(out, EnvAPIKey)
	}
	return out
}

// ReviewsProvider fetches the raw place payload (2xx body) from the upstream API.
type ReviewsProvider interface {
	FetchPlace(ctx context.Context, creds Credentials) ([]byte, error)
}
