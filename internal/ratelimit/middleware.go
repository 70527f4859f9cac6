package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/greenbot-eco/greenbot/internal/httputil"
	"github.com/greenbot-eco/greenbot/internal/telemetry"
)

const (
	headerRateLimitRequests          = "X-RateLimit-Limit-Requests"
	headerRateLimitRemainingRequests = "X-RateLimit-Remaining-Requests"
	headerRateLimitReset             = "X-RateLimit-Reset-Requests"
	headerRetryAfter                 = "Retry-After"
)

// Allower is satisfied by *Limiter.
type Allower interface {
	Allow(ctx context.Context, route, client string) (Decision, error)
}

// Middleware returns chi middleware that limits each client IP on route.
// It expects middleware.RealIP to have rewritten RemoteAddr.
func Middleware(limiter Allower, metrics *telemetry.Metrics, route string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := w.Header().Get("X-Request-ID")
			client := clientIP(r)

			d, err := limiter.Allow(r.Context(), route, client)
			if err != nil {
				slog.Warn("rate limit check failed, allowing request", "request_id", reqID, "route", route, "error", err)
			}
			if d.Limit == 0 {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set(headerRateLimitRequests, strconv.Itoa(d.Limit))
			w.Header().Set(headerRateLimitRemainingRequests, strconv.Itoa(d.Remaining))
			w.Header().Set(headerRateLimitReset, d.ResetAt.Format(time.RFC3339))

			if !d.Allowed {
				slog.Warn("rate limit exceeded",
					"request_id", reqID,
					"route", route,
					"client_ip", client,
					"limit", d.Limit,
					"window", d.Window.String(),
				)
				if metrics != nil {
					metrics.RecordRateLimitHit(route)
				}
				w.Header().Set(headerRetryAfter, strconv.Itoa(int(math.Ceil(d.RetryAfter.Seconds()))))
				httputil.WriteRateLimitError(w, reqID,
					fmt.Sprintf("Trop de requêtes : %d par %s maximum. Réessayez après %s", d.Limit, d.Window, d.ResetAt.Format(time.RFC3339)))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
