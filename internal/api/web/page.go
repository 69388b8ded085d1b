package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/a-h/templ"
	zlog "github.com/rs/zerolog/log"

	"github.com/junlend/web/internal/app/provider"
	"github.com/junlend/web/internal/app/store"
	"github.com/junlend/web/internal/app/toast"
	"github.com/junlend/web/internal/domain/theme"
	"github.com/junlend/web/internal/infra/metrics"
	"github.com/junlend/web/internal/web/templates"
)

// themeCookieAge matches the lifetime the client script writes.
const themeCookieAge = 365 * 24 * time.Hour

// StackFor builds the provider stack for one request.
// Queued toasts for the visitor are drained so each is rendered once.
func (s *Server) StackFor(r *http.Request) *provider.Stack {
	vid := VisitorID(r.Context())

	st := store.NewShell()
	if p := r.URL.Query().Get("protocol"); p != "" && s.mgr.Labels().Contains(p) {
		store.Set(st, store.SelectedProtocol, p)
	}

	var toasts []toast.Toast
	if vid != "" {
		toasts = s.mgr.Toasts().Drain(vid)
	}

	return provider.New(provider.Input{
		Theme: provider.ThemeScope{
			Preference:                s.themePreference(r),
			Attribute:                 s.cfg.Theme.Attribute,
			Cookie:                    s.cfg.Theme.Cookie,
			DisableTransitionOnChange: true,
		},
		Store: st,
		Wallet: provider.WalletScope{
			Initial:  s.mgr.Bootstrapper().FromRequest(r),
			ChainIDs: s.cfg.ChainIDs(),
		},
		Toaster: provider.ToasterScope{VisitorID: vid, Toasts: toasts},
		Page: provider.PageScope{
			Site:     s.site,
			Labels:   s.mgr.Labels(),
			PeriodMs: s.mgr.Period().Milliseconds(),
		},
	})
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	stack := s.StackFor(r)
	metrics.RecordRender(stack.Snapshot().Wallet.Status.String())

	w.Header().Set("Cache-Control", "no-store")
	templ.Handler(templates.HomePage(stack), templ.WithErrorHandler(func(r *http.Request, err error) http.Handler {
		zlog.Error().Msgf("page render failed: path=%s err=%v", r.URL.Path, err)
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		})
	})).ServeHTTP(w, r)
}

// themePreference reads the theme cookie, falling back to the configured default.
func (s *Server) themePreference(r *http.Request) theme.Preference {
	fallback := theme.Parse(s.cfg.Theme.Default, theme.System)
	c, err := r.Cookie(s.cfg.Theme.Cookie)
	if err != nil {
		return fallback
	}
	return theme.Parse(c.Value, fallback)
}

type themeRequest struct {
	Theme string `json:"theme"`
}

type themeResponse struct {
	Preference theme.Preference `json:"preference"`
	Class      string           `json:"class"`
}

// handleTheme sets the theme preference. Without a value it cycles the current one.
func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request) {
	var requested string
	if wantsJSON(r) && r.ContentLength != 0 {
		var req themeRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<10)).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}
		requested = req.Theme
	} else {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}
		requested = r.PostForm.Get("theme")
	}

	current := s.themePreference(r)
	next := current.Next()
	if requested != "" {
		parsed := theme.Parse(requested, "")
		if !parsed.Valid() {
			if wantsJSON(r) {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown theme"})
				return
			}
			http.Error(w, "unknown theme", http.StatusBadRequest)
			return
		}
		next = parsed
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.Theme.Cookie,
		Value:    next.String(),
		Path:     "/",
		MaxAge:   int(themeCookieAge.Seconds()),
		Secure:   s.cfg.Server.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	zlog.Debug().Msgf("theme changed: visitor=%s from=%s to=%s", VisitorID(r.Context()), current, next)

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, themeResponse{Preference: next, Class: next.ServerClass()})
		return
	}
	if vid := VisitorID(r.Context()); vid != "" {
		t := s.mgr.Toasts().Push(vid, toast.KindInfo, s.cfg.GetMessage("theme_changed"))
		metrics.RecordToast(string(t.Kind))
	}
	redirectBack(w, r)
}
