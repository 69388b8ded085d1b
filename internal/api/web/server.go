// Package web provides the HTTP surface of the page shell: the rendered pages,
// the theme and wallet endpoints, and the live channel.
package web

import (
	"encoding/json"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	zlog "github.com/rs/zerolog/log"

	"github.com/junlend/web/internal/app/session"
	"github.com/junlend/web/internal/app/session/state"
	"github.com/junlend/web/internal/domain/site"
	"github.com/junlend/web/internal/infra/config"
	"github.com/junlend/web/internal/infra/metrics"
	"github.com/junlend/web/internal/web/static"
)

// Server serves the page shell.
type Server struct {
	mgr      *session.Manager
	cfg      *config.Config
	site     *site.Info
	limiter  *RateLimiter
	upgrader websocket.Upgrader
	rpc      []rpcRoute
}

type rpcRoute struct {
	path    string
	handler http.Handler
}

// Option customizes a Server.
type Option func(*Server)

// WithRPC mounts an RPC handler under path, e.g. a Connect service.
func WithRPC(path string, h http.Handler) Option {
	return func(s *Server) {
		s.rpc = append(s.rpc, rpcRoute{path: path, handler: h})
	}
}

// WithRateLimiter replaces the wallet API rate limiter.
func WithRateLimiter(rl *RateLimiter) Option {
	return func(s *Server) {
		s.limiter = rl
	}
}

// NewServer creates a new page shell server.
func NewServer(mgr *session.Manager, opts ...Option) *Server {
	cfg := mgr.Config()
	s := &Server{
		mgr:     mgr,
		cfg:     cfg,
		site:    cfg.SiteInfo(),
		limiter: NewRateLimiter(cfg.Wallet.RateLimitRPS, cfg.Wallet.RateBurst, cfg.Wallet.RateLimitMaxKeys),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(recoverPanic)
	r.Use(requestLogger)
	r.Use(metrics.InstrumentHandler(s.cfg.Server.MetricsPath))

	r.Get("/healthz", s.handleHealth)
	r.Get(site.ManifestPath, s.handleManifest)
	r.Get(site.OpenGraphImagePath, func(w http.ResponseWriter, r *http.Request) {
		http.ServeFileFS(w, r, static.FS(), "background.png")
	})
	r.Method(http.MethodGet, s.cfg.Server.MetricsPath, metrics.Handler())

	assets := static.Handler()
	for _, name := range static.Names() {
		r.Method(http.MethodGet, "/"+name, assets)
	}

	r.Group(func(r chi.Router) {
		r.Use(withVisitor(s.cfg.Server.VisitorCookie, s.cfg.Server.SecureCookies))

		r.Get("/", s.handleHome)
		r.Post("/theme", s.handleTheme)
		r.Get("/live", s.handleLive)

		r.Route("/api", func(r chi.Router) {
			r.Use(s.limiter.Handler)
			r.Post("/wallet/connect", s.handleConnect)
			r.Post("/wallet/disconnect", s.handleDisconnect)
			r.Post("/toasts/{toastID}/dismiss", s.handleDismiss)
		})
	})

	for _, rt := range s.rpc {
		r.Handle(strings.TrimSuffix(rt.path, "/")+"/*", rt.handler)
	}

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := s.mgr.GetStatus()
	code := http.StatusOK
	if status.Phase != state.PhaseServing {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{
		"phase":      status.Phase.String(),
		"instanceId": status.InstanceID,
	})
}

func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/manifest+json")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if err := json.NewEncoder(w).Encode(s.site.Manifest()); err != nil {
		zlog.Debug().Msgf("manifest write failed: %v", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zlog.Debug().Msgf("response write failed: %v", err)
	}
}

// wantsJSON reports whether the caller is a script rather than a form post.
func wantsJSON(r *http.Request) bool {
	if ct, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err == nil && ct == "application/json" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// redirectBack sends a form post back to the page it came from.
func redirectBack(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
