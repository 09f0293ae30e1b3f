// internal/adapters/places/client.go
package places

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"cafe_reviews/internal/adapters/observability"
	"cafe_reviews/internal/domain"
)

const (
	APILegacy = "legacy"
	APIV1     = "v1"

	legacyFields = "name,rating,user_ratings_total,reviews"
	v1FieldMask  = "displayName,rating,userRatingCount,reviews"

	maxBody      = 2 << 20
	maxErrBody   = 512
	serviceName  = "google_places"
	defaultBurst = 20
)

type Options struct {
	BaseURL     string
	API         string // legacy | v1
	Language    string
	ReviewsSort string
	Timeout     time.Duration
	RPS         int
	Burst       int // tokens available at once; defaults to max(RPS, 20)
	HTTPClient  *http.Client
}

type Client struct {
	base   string
	api    string
	lang   string
	sort   string
	hc     *http.Client
	rl     *rate.Limiter
	family string
}

func New(o Options) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(o.BaseURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid places base URL %q", o.BaseURL)
	}
	if o.API != APIV1 {
		o.API = APILegacy
	}
	if o.Timeout <= 0 {
		o.Timeout = 8 * time.Second
	}
	if o.RPS <= 0 {
		o.RPS = 5
	}
	if o.Burst <= 0 {
		o.Burst = max(o.RPS, defaultBurst)
	}
	hc := o.HTTPClient
	if hc == nil {
		hc = &http.Client{
			Timeout: o.Timeout,
			// a 3xx is a provider failure; following it would also forward the key
			CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
		}
	}
	return &Client{
		base:   strings.TrimRight(u.String(), "/"),
		api:    o.API,
		lang:   o.Language,
		sort:   o.ReviewsSort,
		hc:     hc,
		rl:     rate.NewLimiter(rate.Limit(o.RPS), o.Burst),
		family: "place_" + o.API,
	}, nil
}

// FetchPlace makes exactly one upstream call and returns the 2xx body.
// Interpreting the body (including in-body error statuses) is left to the caller.
func (c *Client) FetchPlace(ctx context.Context, creds domain.Credentials) ([]byte, error) {
	// client-side quota guard; a wait longer than the request deadline fails fast
	if err := c.rl.Wait(ctx); err != nil {
		return nil, &domain.UpstreamError{Kind: domain.UpstreamTransport, Message: "rate limit wait aborted", Err: err}
	}

	req, err := c.newRequest(ctx, creds)
	if err != nil {
		return nil, &domain.UpstreamError{Kind: domain.UpstreamTransport, Message: "build request", Err: err}
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal(serviceName, c.family, 0, time.Since(start))
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return nil, &domain.UpstreamError{Kind: domain.UpstreamTransport, Err: redact(err, creds.APIKey)}
	}
	defer resp.Body.Close()
	observability.ObserveExternal(serviceName, c.family, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return nil, &domain.UpstreamError{
			Kind:           domain.UpstreamHTTP,
			StatusCode:     resp.StatusCode,
			ProviderStatus: gjson.GetBytes(b, "error.status").String(),
			Message:        errorMessage(b),
		}
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBody+1))
	if err != nil {
		return nil, &domain.UpstreamError{Kind: domain.UpstreamTransport, Message: "read body", Err: err}
	}
	if len(b) > maxBody {
		return nil, &domain.UpstreamError{Kind: domain.UpstreamTransport, Message: "provider response too large"}
	}
	return b, nil
}

// ---- Internals ----

func (c *Client) newRequest(ctx context.Context, creds domain.Credentials) (*http.Request, error) {
	var (
		req *http.Request
		err error
	)
	switch c.api {
	case APIV1:
		u := c.base + "/v1/places/" + url.PathEscape(creds.PlaceID)
		q := url.Values{}
		if c.lang != "" {
			q.Set("languageCode", c.lang)
		}
		if len(q) > 0 {
			u += "?" + q.Encode()
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("X-Goog-Api-Key", creds.APIKey)
		req.Header.Set("X-Goog-FieldMask", v1FieldMask)
	default:
		q := url.Values{}
		q.Set("place_id", creds.PlaceID)
		q.Set("fields", legacyFields)
		q.Set("key", creds.APIKey)
		if c.lang != "" {
			q.Set("language", c.lang)
		}
		if c.sort != "" {
			q.Set("reviews_sort", c.sort)
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/maps/api/place/details/json?"+q.Encode(), nil)
		if err != nil {
			return nil, err
		}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "cafe-reviews/1.0")
	return req, nil
}

// errorMessage prefers the provider's structured message, else a trimmed body excerpt.
func errorMessage(b []byte) string {
	if gjson.ValidBytes(b) {
		for _, p := range []string{"error.message", "error_message", "message"} {
			if s := strings.TrimSpace(gjson.GetBytes(b, p).String()); s != "" {
				return s
			}
		}
	}
	s := strings.TrimSpace(string(b))
	if len(s) > maxErrBody {
		cut := maxErrBody
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut]
	}
	return s
}

// redact keeps the API key out of *url.Error messages, which embed the full URL.
func redact(err error, key string) error {
	if key == "" || !strings.Contains(err.Error(), key) {
		return err
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		return fmt.Errorf("%s %s: %w", ue.Op, "places request", ue.Err)
	}
	return errors.New(strings.ReplaceAll(err.Error(), key, "REDACTED"))
}
