package domain

const (
	SourceGoogle      = "google"
	StatusOK          = "OK"
	FallbackName      = "Anonymous"
	FallbackDate      = "Recently"
	FallbackRating    = 5.0
	AvatarPlaceholder = "★"
)

// NormalizedReview is the review shape the site frontend renders.
type NormalizedReview struct {
	Name   string  `json:"name"`
	Text   string  `json:"text"`
	Rating float64 `json:"rating"`
	Date   string  `json:"date"`
	Avatar string  `json:"avatar"`
	Source string  `json:"source"`
	URL    *string `json:"url"`
}

// ReviewsResponse is returned for every request, successful or not, with the
// same keys either way. Failures carry a non-OK Status, an ErrorMessage and
// zeroed data fields; success has an empty ErrorMessage.
type ReviewsResponse struct {
	Status       string             `json:"status"`
	ErrorMessage string             `json:"error_message"`
	PlaceName    *string            `json:"placeName"`
	Rating       float64            `json:"rating"`
	Total        int64              `json:"total"`
	Reviews      []NormalizedReview `json:"reviews"`
}

func ErrorEnvelope(status, msg string) ReviewsResponse {
	return ReviewsResponse{
		Status:       status,
		ErrorMessage: msg,
		Reviews:      []NormalizedReview{},
	}
}
