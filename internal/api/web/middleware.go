package web

import (
	"context"
	"net"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/junlend/web/internal/infra/metrics"
)

// limiterIdle is how long an unused per-key limiter is kept.
const limiterIdle = 10 * time.Minute

type visitorKey struct{}

type visitorInfo struct {
	id string
	// issued is set when the request carried no valid visitor cookie.
	issued bool
}

// VisitorID returns the visitor id installed by the visitor middleware.
func VisitorID(ctx context.Context) string {
	v, _ := ctx.Value(visitorKey{}).(visitorInfo)
	return v.id
}

// visitorIssued reports whether the visitor id was created for this request.
func visitorIssued(ctx context.Context) bool {
	v, _ := ctx.Value(visitorKey{}).(visitorInfo)
	return v.issued
}

// withVisitor reads the visitor cookie, issuing a fresh id when it is missing
// or not a uuid.
func withVisitor(name string, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			issued := false
			if c, err := r.Cookie(name); err == nil {
				if parsed, err := uuid.Parse(c.Value); err == nil {
					id = parsed.String()
				}
			}
			if id == "" {
				id = uuid.New().String()
				issued = true
				http.SetCookie(w, &http.Cookie{
					Name:     name,
					Value:    id,
					Path:     "/",
					MaxAge:   int((365 * 24 * time.Hour).Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), visitorKey{}, visitorInfo{id: id, issued: issued})))
		})
	}
}

// requestLogger logs one line per request on the global logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		ev := zlog.Debug()
		if status >= http.StatusInternalServerError {
			ev = zlog.Warn()
		}
		ev.Msgf("http: method=%s path=%s status=%d bytes=%d duration=%v request_id=%s",
			r.Method, r.URL.Path, status, ww.BytesWritten(), time.Since(start), middleware.GetReqID(r.Context()))
	})
}

// recoverPanic converts panics into HTTP 500 responses.
func recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				zlog.Error().Msgf("panic recovered: method=%s path=%s request_id=%s panic=%v stack=%s",
					r.Method, r.URL.Path, middleware.GetReqID(r.Context()), rec, debug.Stack())
				w.WriteHeader(http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// RateLimiter limits requests per visitor. Requests without a valid visitor
// cookie are keyed by client address. Limiters for idle keys expire.
type RateLimiter struct {
	mu       sync.Mutex
	limiters *expirable.LRU[string, *rate.Limiter]
	rate     rate.Limit
	burst    int
}

// NewRateLimiter creates a new rate limiter.
func NewRateLimiter(requestsPerSecond, burst, maxKeys int) *RateLimiter {
	if maxKeys <= 0 {
		maxKeys = 10000
	}
	return &RateLimiter{
		limiters: expirable.NewLRU[string, *rate.Limiter](maxKeys, nil, limiterIdle),
		rate:     rate.Limit(requestsPerSecond),
		burst:    burst,
	}
}

// getLimiter returns the limiter for key, creating it on first use.
func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, ok := rl.limiters.Get(key)
	if !ok {
		limiter = rate.NewLimiter(rl.rate, rl.burst)
	}
	// Re-adding refreshes the idle expiry.
	rl.limiters.Add(key, limiter)
	return limiter
}

// Allow reports whether a request for key may proceed.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).Allow()
}

// Handler returns the rate limiting middleware handler.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := VisitorID(r.Context())
		if key == "" || visitorIssued(r.Context()) {
			key = "addr:" + clientAddr(r)
		}

		if !rl.Allow(key) {
			metrics.RecordRateLimited()
			zlog.Warn().Msgf("rate limit exceeded: key=%s path=%s", key, r.URL.Path)
			w.Header().Set("Retry-After", "1")
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "too many requests"})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
