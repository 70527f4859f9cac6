package ratelimit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenbot-eco/greenbot/internal/httputil"
	"github.com/greenbot-eco/greenbot/internal/telemetry"
)

// countingAllower denies once limit is reached, per route and client.
type countingAllower struct {
	limit   int
	counts  map[string]int
	clients []string
	err     error
}

func (c *countingAllower) Allow(_ context.Context, route, client string) (Decision, error) {
	c.clients = append(c.clients, client)
	d := Decision{Allowed: true, Limit: c.limit, Window: time.Minute, ResetAt: time.Now().Add(time.Minute)}
	if c.err != nil {
		d.Remaining = c.limit
		return d, c.err
	}
	key := bucketKey(route, client)
	if c.counts[key] >= c.limit {
		d.Allowed = false
		d.RetryAfter = 29500 * time.Millisecond
		return d, nil
	}
	c.counts[key]++
	d.Remaining = c.limit - c.counts[key]
	return d, nil
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func send(h http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/llm/chat", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	rec.Header().Set("X-Request-ID", "req-1")
	h.ServeHTTP(rec, req)
	return rec
}

func TestMiddleware_AllowsRequest(t *testing.T) {
	handler := Middleware(NewLimiter(nil, limits(true, 100, time.Minute)), nil, "chat")(okHandler())

	rec := send(handler, "10.0.0.1:5555")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "100", rec.Header().Get(headerRateLimitRequests))
	assert.Equal(t, "99", rec.Header().Get(headerRateLimitRemainingRequests))
	assert.NotEmpty(t, rec.Header().Get(headerRateLimitReset))
}

func TestMiddleware_RejectsOverLimit(t *testing.T) {
	allower := &countingAllower{limit: 2, counts: map[string]int{}}
	metrics := telemetry.NewMetrics(prometheus.NewRegistry())
	handler := Middleware(allower, metrics, "chat")(okHandler())

	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusOK, send(handler, "10.0.0.1:5555").Code, "request %d", i)
	}

	rec := send(handler, "10.0.0.1:6666")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "30", rec.Header().Get(headerRetryAfter), "Retry-After rounds up")
	assert.Equal(t, "0", rec.Header().Get(headerRateLimitRemainingRequests))

	var apiErr httputil.APIError
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&apiErr))
	assert.Equal(t, "ERROR", apiErr.Status)
	assert.Contains(t, apiErr.Message, "2 par 1m0s")

	var m dto.Metric
	require.NoError(t, metrics.RateLimitHitTotal.WithLabelValues("chat").Write(&m))
	assert.Equal(t, 1.0, m.GetCounter().GetValue())

	assert.Equal(t, http.StatusOK, send(handler, "10.0.0.2:5555").Code, "another client has its own bucket")
	assert.Equal(t, "10.0.0.1", allower.clients[0])
}

func TestMiddleware_Disabled(t *testing.T) {
	handler := Middleware(NewLimiter(nil, limits(false, 1, time.Minute)), nil, "chat")(okHandler())

	for i := 0; i < 3; i++ {
		rec := send(handler, "10.0.0.1:5555")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get(headerRateLimitRequests), "no rate limit headers when disabled")
	}
}

func TestMiddleware_ErrorFailsOpen(t *testing.T) {
	allower := &countingAllower{limit: 1, err: context.DeadlineExceeded}
	handler := Middleware(allower, nil, "chat")(okHandler())

	for i := 0; i < 3; i++ {
		rec := send(handler, "10.0.0.1:5555")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "1", rec.Header().Get(headerRateLimitRemainingRequests))
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		remote string
		want   string
	}{
		{"192.0.2.1:1234", "192.0.2.1"},
		{"[2001:db8::1]:443", "2001:db8::1"},
		{"203.0.113.7", "203.0.113.7"},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = tt.remote
		assert.Equal(t, tt.want, clientIP(r), "clientIP(%q)", tt.remote)
	}
}
