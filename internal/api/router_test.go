package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eldtechnologies/linkdrop/internal/api"
	"github.com/eldtechnologies/linkdrop/internal/api/middleware"
	"github.com/eldtechnologies/linkdrop/internal/handlers"
	"github.com/eldtechnologies/linkdrop/internal/metrics"
	"github.com/eldtechnologies/linkdrop/internal/store"
)

type nopSender struct{}

func (nopSender) SendMessage(context.Context, int64, string) error { return nil }

func newServer(t *testing.T, cfg api.RouterConfig) (*httptest.Server, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	kv, err := store.NewRedisStore(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })

	h := handlers.NewHandler(kv, nopSender{}, zerolog.Nop(), handlers.Options{
		TopicClosedTTL:      time.Hour,
		ConfirmationMessage: "closed",
	})
	h.SetClock(func() time.Time { return time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC) })

	srv := httptest.NewServer(api.NewRouter(zerolog.Nop(), h, kv.Client(), cfg))
	t.Cleanup(srv.Close)
	return srv, mr
}

func TestRouter_WebhookToReadAPI(t *testing.T) {
	srv, mr := newServer(t, api.RouterConfig{MaxBodyBytes: 1 << 20})

	resp, err := http.Post(srv.URL+"/webhook", "application/json",
		strings.NewReader(`{"message":{"message_id":1,"chat":{"id":42},"text":"see https://a.com."}}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, mr.Exists("links:42:2026-10-18"))

	resp, err = http.Get(srv.URL + "/chats/42/links")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-RateLimit-Limit"))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
}

func TestRouter_OversizedWebhookIs500(t *testing.T) {
	srv, mr := newServer(t, api.RouterConfig{MaxBodyBytes: 32})

	body := `{"message":{"chat":{"id":42},"text":"https://` + strings.Repeat("a", 100) + `.com"}}`
	resp, err := http.Post(srv.URL+"/webhook", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Empty(t, mr.Keys())
}

func TestRouter_ReadAPIRateLimited(t *testing.T) {
	srv, _ := newServer(t, api.RouterConfig{
		RateLimit: middleware.RateLimiterConfig{
			Limits: map[string]middleware.RateLimit{
				"links": {Requests: 1, Window: time.Minute},
				"topic": {Requests: 1, Window: time.Minute},
			},
		},
	})

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		resp, err := http.Get(srv.URL + "/chats/42/topic")
		require.NoError(t, err)
		resp.Body.Close()
		codes = append(codes, resp.StatusCode)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRouter_WebhookNotRateLimited(t *testing.T) {
	srv, _ := newServer(t, api.RouterConfig{
		RateLimit: middleware.RateLimiterConfig{
			Limits: map[string]middleware.RateLimit{
				"links": {Requests: 1, Window: time.Minute},
				"topic": {Requests: 1, Window: time.Minute},
			},
		},
	})

	for i := 0; i < 5; i++ {
		resp, err := http.Post(srv.URL+"/webhook", "application/json", strings.NewReader(`{}`))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	srv, _ := newServer(t, api.RouterConfig{})

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/chats/42/links", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://dashboard.example")
	req.Header.Set("Access-Control-Request-Method", "GET")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRouter_OperationalEndpoints(t *testing.T) {
	srv, _ := newServer(t, api.RouterConfig{})

	for _, path := range []string{"/", "/health", "/metrics"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}

func TestRouter_WithoutRedisClient(t *testing.T) {
	h := handlers.NewHandler(store.NewMemoryStore(), nopSender{}, zerolog.Nop(), handlers.Options{TopicClosedTTL: time.Hour})
	srv := httptest.NewServer(api.NewRouter(zerolog.Nop(), h, nil, api.RouterConfig{}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/chats/42/links")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("X-RateLimit-Limit"))
}

func TestRouter_MetricsByRoutePattern(t *testing.T) {
	srv, _ := newServer(t, api.RouterConfig{})

	links := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/chats/{id}/links", "200")
	badID := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/chats/{id}/links", "400")
	unmatched := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "unmatched", "404")
	linksBefore, badBefore, unmatchedBefore := testutil.ToFloat64(links), testutil.ToFloat64(badID), testutil.ToFloat64(unmatched)

	for _, path := range []string{"/chats/42/links", "/chats/-100123/links", "/chats/abc/links", "/nope", "/nope/again"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
	}

	assert.Equal(t, linksBefore+2, testutil.ToFloat64(links))
	assert.Equal(t, badBefore+1, testutil.ToFloat64(badID))
	assert.Equal(t, unmatchedBefore+2, testutil.ToFloat64(unmatched))
}
