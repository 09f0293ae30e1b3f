package app_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"cafe_reviews/internal/app"
	"cafe_reviews/internal/domain"
)

func TestNormalize_LegacyPlaceDetails(t *testing.T) {
	body := []byte(`{"status":"OK","result":{"name":"Café X","rating":4.6,"user_ratings_total":120,
		"reviews":[{"author_name":"Jo","rating":5,"text":"Great!","time":1700000000}]}}`)

	out, err := app.Normalize(body)
	require.NoError(t, err)

	require.NotNil(t, out.PlaceName)
	assert.Equal(t, "Café X", *out.PlaceName)
	assert.Equal(t, 4.6, out.Rating)
	assert.EqualValues(t, 120, out.Total)
	require.Len(t, out.Reviews, 1)

	r := out.Reviews[0]
	assert.Equal(t, "Jo", r.Name)
	assert.Equal(t, "J", r.Avatar)
	assert.Equal(t, "Great!", r.Text)
	assert.Equal(t, 5.0, r.Rating)
	assert.Equal(t, "Nov 14, 2023", r.Date)
	assert.Equal(t, "google", r.Source)
	assert.Nil(t, r.URL)
}

func TestNormalize_PlacesV1Shape(t *testing.T) {
	body := []byte(`{"name":"places/ChIJabc","displayName":{"text":"Roastery"},"rating":4.8,"userRatingCount":57,
		"reviews":[{"name":"places/ChIJabc/reviews/1","rating":4,
			"text":{"text":"Lovely flat white","languageCode":"en"},
			"relativePublishTimeDescription":"a week ago",
			"authorAttribution":{"displayName":"maria","uri":"https://maps.example/maria"}}]}`)

	out, err := app.Normalize(body)
	require.NoError(t, err)
	require.NotNil(t, out.PlaceName)
	assert.Equal(t, "Roastery", *out.PlaceName)
	assert.EqualValues(t, 57, out.Total)
	require.Len(t, out.Reviews, 1)

	r := out.Reviews[0]
	assert.Equal(t, "maria", r.Name)
	assert.Equal(t, "M", r.Avatar)
	assert.Equal(t, "Lovely flat white", r.Text)
	assert.Equal(t, "a week ago", r.Date)
	assert.Equal(t, 4.0, r.Rating)
	require.NotNil(t, r.URL)
	assert.Equal(t, "https://maps.example/maria", *r.URL)
}

func TestNormalize_DropsNullEntries(t *testing.T) {
	body := []byte(`{"status":"OK","result":{"reviews":[null,{"author_name":"A"},null,{"author_name":"B"},{}]}}`)

	out, err := app.Normalize(body)
	require.NoError(t, err)
	require.Len(t, out.Reviews, 3)
	assert.Equal(t, "A", out.Reviews[0].Name)
	assert.Equal(t, "B", out.Reviews[1].Name)
	assert.Equal(t, domain.FallbackName, out.Reviews[2].Name)
}

func TestNormalize_MissingAggregatesDefault(t *testing.T) {
	out, err := app.Normalize([]byte(`{"status":"OK"}`))
	require.NoError(t, err)
	assert.Nil(t, out.PlaceName)
	assert.Zero(t, out.Rating)
	assert.Zero(t, out.Total)
	assert.NotNil(t, out.Reviews)
	assert.Empty(t, out.Reviews)

	b, err := json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"OK","error_message":"","placeName":null,"rating":0,"total":0,"reviews":[]}`, string(b))
}

func TestNormalize_SuccessAndErrorShareKeys(t *testing.T) {
	ok, err := app.Normalize([]byte(`{"status":"OK","result":{"name":"X","rating":4,"user_ratings_total":3}}`))
	require.NoError(t, err)
	_, err = app.Normalize([]byte(`{"status":"NOT_FOUND"}`))
	require.Error(t, err)

	keys := func(v any) []string {
		b, err := json.Marshal(v)
		require.NoError(t, err)
		var m map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(b, &m))
		out := make([]string, 0, len(m))
		for k := range m {
			out = append(out, k)
		}
		return out
	}
	want := []string{"status", "error_message", "placeName", "rating", "total", "reviews"}
	assert.ElementsMatch(t, want, keys(ok))
	assert.ElementsMatch(t, want, keys(domain.EnvelopeFor(err)))
}

func TestNormalizeReview_TextPassedThroughVerbatim(t *testing.T) {
	r := app.NormalizeReview(gjson.Parse(`{"author_name":"  Jo ","text":"  Great coffee.\n\nWill return!  "}`))
	assert.Equal(t, "  Great coffee.\n\nWill return!  ", r.Text)
	assert.Equal(t, "Jo", r.Name)

	v1 := app.NormalizeReview(gjson.Parse(`{"text":"   ","originalText":{"text":" Très bon "}}`))
	assert.Equal(t, " Très bon ", v1.Text)
}

func TestNormalize_ProviderStatusIsError(t *testing.T) {
	_, err := app.Normalize([]byte(`{"status":"NOT_FOUND","error_message":"place gone"}`))
	require.Error(t, err)

	var ue *domain.UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, domain.UpstreamApplication, ue.Kind)
	assert.Equal(t, "NOT_FOUND", ue.ProviderStatus)
	assert.Contains(t, err.Error(), "place gone")
}

func TestNormalize_InvalidJSON(t *testing.T) {
	_, err := app.Normalize([]byte(`<html>oops</html>`))
	var ue *domain.UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, domain.UpstreamTransport, ue.Kind)
}

func TestNormalize_Idempotent(t *testing.T) {
	body := []byte(`{"status":"OK","result":{"name":"X","reviews":[{"author_name":"zoe","time":1700000000},null]}}`)

	a, err := app.Normalize(body)
	require.NoError(t, err)
	b, err := app.Normalize(body)
	require.NoError(t, err)

	ja, _ := json.Marshal(a)
	jb, _ := json.Marshal(b)
	assert.Equal(t, string(ja), string(jb))
}

func TestNormalizeReview_Fallbacks(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want domain.NormalizedReview
	}{
		{
			name: "empty object",
			raw:  `{}`,
			want: domain.NormalizedReview{Name: "Anonymous", Rating: 5, Date: "Recently", Avatar: "★", Source: "google"},
		},
		{
			name: "blank author",
			raw:  `{"author_name":"   ","text":"ok","rating":3}`,
			want: domain.NormalizedReview{Name: "Anonymous", Text: "ok", Rating: 3, Date: "Recently", Avatar: "★", Source: "google"},
		},
		{
			name: "rating out of range",
			raw:  `{"author_name":"éva","rating":0}`,
			want: domain.NormalizedReview{Name: "éva", Rating: 5, Date: "Recently", Avatar: "É", Source: "google"},
		},
		{
			name: "rating as string",
			raw:  `{"author_name":"li","rating":"4"}`,
			want: domain.NormalizedReview{Name: "li", Rating: 4, Date: "Recently", Avatar: "L", Source: "google"},
		},
		{
			name: "non-string fields ignored",
			raw:  `{"author_name":42,"text":{"x":1},"rating":"bad","time":"soon"}`,
			want: domain.NormalizedReview{Name: "Anonymous", Rating: 5, Date: "Recently", Avatar: "★", Source: "google"},
		},
		{
			name: "rfc3339 publish time",
			raw:  `{"authorAttribution":{"displayName":"Sam"},"publishTime":"2026-01-02T10:00:00.123456Z"}`,
			want: domain.NormalizedReview{Name: "Sam", Rating: 5, Date: "Jan 2, 2026", Avatar: "S", Source: "google"},
		},
		{
			name: "relative time wins over timestamp",
			raw:  `{"author_name":"Kim","relative_time_description":"2 days ago","time":1700000000}`,
			want: domain.NormalizedReview{Name: "Kim", Rating: 5, Date: "2 days ago", Avatar: "K", Source: "google"},
		},
		{
			name: "scalar entry",
			raw:  `"just a string"`,
			want: domain.NormalizedReview{Name: "Anonymous", Rating: 5, Date: "Recently", Avatar: "★", Source: "google"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := app.NormalizeReview(gjson.Parse(tt.raw))
			assert.Equal(t, tt.want, got)
		})
	}
}
