package app

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/tidwall/gjson"

	"cafe_reviews/internal/domain"
)

/********** alias registries (single source of truth) **********/

// Legacy Place Details fields first, then Places API v1, then loose variants.
var reviewAliases = map[string][]string{
	"author":    {"author_name", "authorAttribution.displayName", "author"},
	"text":      {"text", "text.text", "originalText.text", "comment"},
	"rating":    {"rating", "score"},
	"relative":  {"relative_time_description", "relativePublishTimeDescription"},
	"timestamp": {"time", "publishTime", "create_time"},
	"url":       {"author_url", "authorAttribution.uri"},
}

var placeAliases = map[string][]string{
	"name":   {"displayName.text", "name"},
	"rating": {"rating"},
	"total":  {"user_ratings_total", "userRatingCount"},
}

const dateLayout = "Jan 2, 2006"

/********** tiny helpers **********/

// firstString returns the first non-blank string found under any of the paths.
func firstString(r gjson.Result, paths ...string) string {
	for _, p := range paths {
		v := r.Get(p)
		if v.Type == gjson.String {
			if s := strings.TrimSpace(v.Str); s != "" {
				return s
			}
		}
	}
	return ""
}

// firstText is firstString without trimming: the first string that is not blank
// is returned exactly as the provider sent it.
func firstText(r gjson.Result, paths ...string) string {
	for _, p := range paths {
		v := r.Get(p)
		if v.Type == gjson.String && strings.TrimSpace(v.Str) != "" {
			return v.Str
		}
	}
	return ""
}

// flexFloat reads a number or a numeric string like "4,5".
func flexFloat(v gjson.Result) (float64, bool) {
	switch v.Type {
	case gjson.Number:
		return v.Num, !math.IsNaN(v.Num) && !math.IsInf(v.Num, 0)
	case gjson.String:
		s := strings.TrimSpace(strings.ReplaceAll(v.Str, ",", "."))
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func firstFloat(r gjson.Result, paths ...string) (float64, bool) {
	for _, p := range paths {
		if f, ok := flexFloat(r.Get(p)); ok {
			return f, true
		}
	}
	return 0, false
}

// parseTimestamp accepts unix seconds, unix milliseconds or an RFC 3339 string.
func parseTimestamp(v gjson.Result) (time.Time, bool) {
	switch v.Type {
	case gjson.Number:
		return fromUnix(v.Int())
	case gjson.String:
		s := strings.TrimSpace(v.Str)
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t, true
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return fromUnix(n)
		}
	}
	return time.Time{}, false
}

func fromUnix(n int64) (time.Time, bool) {
	switch {
	case n <= 0:
		return time.Time{}, false
	case n > 1e12:
		return time.UnixMilli(n), true
	}
	return time.Unix(n, 0), true
}

func avatarFor(name string) string {
	r, _ := utf8.DecodeRuneInString(strings.TrimSpace(name))
	if r == utf8.RuneError {
		return domain.AvatarPlaceholder
	}
	return string(unicode.ToUpper(r))
}

/********** review mapper **********/

// NormalizeReview maps one provider review into the site's shape.
// It never fails: every field has a fallback.
func NormalizeReview(raw gjson.Result) domain.NormalizedReview {
	author := firstString(raw, reviewAliases["author"]...)

	rv := domain.NormalizedReview{
		Name:   author,
		Text:   firstText(raw, reviewAliases["text"]...),
		Rating: domain.FallbackRating,
		Date:   firstString(raw, reviewAliases["relative"]...),
		Avatar: avatarFor(author),
		Source: domain.SourceGoogle,
	}
	if rv.Name == "" {
		rv.Name = domain.FallbackName
	}

	// Out-of-range ratings are payload noise, not real scores.
	if f, ok := firstFloat(raw, reviewAliases["rating"]...); ok && f >= 1 && f <= 5 {
		rv.Rating = f
	}

	if rv.Date == "" {
		for _, p := range reviewAliases["timestamp"] {
			if t, ok := parseTimestamp(raw.Get(p)); ok {
				rv.Date = t.UTC().Format(dateLayout)
				break
			}
		}
	}
	if rv.Date == "" {
		rv.Date = domain.FallbackDate
	}

	if u := firstString(raw, reviewAliases["url"]...); u != "" {
		rv.URL = &u
	}
	return rv
}

/********** place mapper **********/

// Normalize turns a 2xx provider body into a ReviewsResponse. It fails only when
// the body is not JSON or the provider reports a non-OK status inside it.
func Normalize(body []byte) (domain.ReviewsResponse, error) {
	if !gjson.ValidBytes(body) {
		return domain.ReviewsResponse{}, &domain.UpstreamError{
			Kind:    domain.UpstreamTransport,
			Message: "provider returned invalid JSON",
		}
	}
	root := gjson.ParseBytes(body)

	if st := root.Get("status"); st.Type == gjson.String && st.Str != domain.StatusOK {
		return domain.ReviewsResponse{}, &domain.UpstreamError{
			Kind:           domain.UpstreamApplication,
			StatusCode:     200,
			ProviderStatus: st.Str,
			Message:        firstString(root, "error_message"),
		}
	}
	if e := root.Get("error"); e.IsObject() {
		status := firstString(e, "status")
		if status == "" {
			status = domain.StatusUpstreamError
		}
		return domain.ReviewsResponse{}, &domain.UpstreamError{
			Kind:           domain.UpstreamApplication,
			StatusCode:     200,
			ProviderStatus: status,
			Message:        firstString(e, "message"),
		}
	}

	// Place Details wraps the place in "result"; Places API v1 returns it at the root.
	place := root
	if res := root.Get("result"); res.IsObject() {
		place = res
	}

	out := domain.ReviewsResponse{
		Status:  domain.StatusOK,
		Reviews: []domain.NormalizedReview{},
	}
	for _, p := range placeAliases["name"] {
		// v1 "name" is a resource path like places/ChIJ..., not a display name.
		if s := firstString(place, p); s != "" && !strings.HasPrefix(s, "places/") {
			out.PlaceName = &s
			break
		}
	}
	if f, ok := firstFloat(place, placeAliases["rating"]...); ok {
		out.Rating = f
	}
	if f, ok := firstFloat(place, placeAliases["total"]...); ok && f > 0 {
		out.Total = int64(f)
	}

	if revs := place.Get("reviews"); revs.IsArray() {
		revs.ForEach(func(_, v gjson.Result) bool {
			if v.Type != gjson.Null {
				out.Reviews = append(out.Reviews, NormalizeReview(v))
			}
			return true
		})
	}
	return out, nil
}
