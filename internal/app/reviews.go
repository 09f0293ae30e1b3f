package app

import (
	"context"

	"cafe_reviews/internal/domain"
)

type ReviewsService struct {
	provider  domain.ReviewsProvider
	creds     domain.Credentials
	configErr error
}

// NewReviewsService validates credentials once; a missing value makes every
// GetReviews call fail with a ConfigError before the provider is touched.
func NewReviewsService(p domain.ReviewsProvider, creds domain.Credentials) *ReviewsService {
	s := &ReviewsService{provider: p, creds: creds}
	if missing := creds.Missing(); len(missing) > 0 {
		s.configErr = &domain.ConfigError{Missing: missing}
	}
	return s
}

// ConfigErr reports the startup validation result (nil when configured).
func (s *ReviewsService) ConfigErr() error { return s.configErr }

func (s *ReviewsService) GetReviews(ctx context.Context) (domain.ReviewsResponse, error) {
	if s.configErr != nil {
		return domain.ReviewsResponse{}, s.configErr
	}
	body, err := s.provider.FetchPlace(ctx, s.creds)
	if err != nil {
		return domain.ReviewsResponse{}, err
	}
	return Normalize(body)
}
