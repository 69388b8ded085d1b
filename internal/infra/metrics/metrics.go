// Package metrics exposes the Prometheus collectors of the web shell.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "junlend"

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path"},
	)

	pageRenders = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "shell",
			Name:      "renders_total",
			Help:      "Total number of page shell renders by initial wallet status.",
		},
		[]string{"wallet_status"},
	)

	liveViews = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "live",
			Name:      "views",
			Help:      "Current number of mounted live views.",
		},
	)

	framesSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "live",
			Name:      "frames_total",
			Help:      "Total number of rotation frames pushed to live views.",
		},
	)

	toastsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "toast",
			Name:      "sent_total",
			Help:      "Total number of toasts created.",
		},
		[]string{"kind"},
	)

	walletConnects = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "wallet",
			Name:      "connects_total",
			Help:      "Total number of wallet connect requests by result code.",
		},
		[]string{"code"},
	)

	rateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Total number of requests rejected by the rate limiter.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		pageRenders,
		liveViews,
		framesSent,
		toastsSent,
		walletConnects,
		rateLimited,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps next with HTTP metrics collection.
// Requests for metricsPath and the live socket are passed through untouched.
func InstrumentHandler(metricsPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == metricsPath || r.URL.Path == "/live" {
				next.ServeHTTP(w, r)
				return
			}

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()

			httpInFlight.Inc()
			defer httpInFlight.Dec()

			next.ServeHTTP(rec, r)

			path := canonicalPath(r.URL.Path)
			method := strings.ToUpper(r.Method)

			httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
			httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		})
	}
}

// RecordRender counts a page shell render.
func RecordRender(walletStatus string) {
	pageRenders.WithLabelValues(walletStatus).Inc()
}

// ViewMounted tracks a live view mount.
func ViewMounted() {
	liveViews.Inc()
}

// ViewUnmounted tracks a live view unmount.
func ViewUnmounted() {
	liveViews.Dec()
}

// RecordFrame counts a pushed rotation frame.
func RecordFrame() {
	framesSent.Inc()
}

// RecordToast counts a created toast.
func RecordToast(kind string) {
	toastsSent.WithLabelValues(kind).Inc()
}

// RecordConnect counts a wallet connect outcome.
func RecordConnect(code string) {
	if code == "" {
		code = "unknown"
	}
	walletConnects.WithLabelValues(code).Inc()
}

// RecordRateLimited counts a rejected request.
func RecordRateLimited() {
	rateLimited.Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// canonicalPath collapses request paths to a bounded label set.
func canonicalPath(raw string) string {
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	switch parts[0] {
	case "api":
		if len(parts) >= 3 {
			return "/api/" + parts[1] + "/" + parts[2]
		}
		return "/api"
	case "theme", "manifest.json", "live", "healthz":
		return "/" + parts[0]
	}
	if strings.HasPrefix(parts[0], "junlend.") {
		return "/rpc"
	}
	if strings.Contains(parts[0], ".") {
		return "/static"
	}
	return "/other"
}
