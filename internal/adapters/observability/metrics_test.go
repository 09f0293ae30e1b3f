package observability_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cafe_reviews/internal/adapters/observability"
)

func TestMetricsRegistryAndHandler(t *testing.T) {
	reg := observability.InitRegistry()

	// record samples so the vectors export at least one series
	observability.ObserveHTTP("/api/reviews", "GET", 200, 12*time.Millisecond)
	observability.ObserveExternal("google_places", "place_legacy", 200, 80*time.Millisecond)
	observability.ObserveReviewsFetch("ok")

	mh := observability.MetricsHandler(reg)
	req := httptest.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	mh.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	out := string(body)
	for _, name := range []string{"cafe_http_requests_total", "cafe_external_requests_total", `cafe_reviews_fetch_total{outcome="ok"}`} {
		if !strings.Contains(out, name) {
			t.Fatalf("expected %s in output", name)
		}
	}
}

func TestNewMetricsServer_DisabledWithoutAddr(t *testing.T) {
	if srv := observability.NewMetricsServer("", observability.InitRegistry()); srv != nil {
		t.Fatalf("expected nil server when addr is empty")
	}
}
