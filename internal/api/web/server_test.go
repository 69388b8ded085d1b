package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junlend/web/internal/app/rotation"
	"github.com/junlend/web/internal/app/session"
	"github.com/junlend/web/internal/infra/config"
)

const (
	testVisitor = "9b2f6c1e-3f7d-4c1a-9a55-0c0f3c5b7e11"
	testAddress = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
)

type manualTicker struct {
	ch chan time.Time
}

func (m *manualTicker) C() <-chan time.Time { return m.ch }
func (m *manualTicker) Stop()               {}

type tickerSource struct {
	mu      sync.Mutex
	tickers []*manualTicker
}

func (ts *tickerSource) factory() rotation.TickerFunc {
	return func(time.Duration) rotation.Ticker {
		ts.mu.Lock()
		defer ts.mu.Unlock()
		t := &manualTicker{ch: make(chan time.Time, 4)}
		ts.tickers = append(ts.tickers, t)
		return t
	}
}

func (ts *tickerSource) last() *manualTicker {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if len(ts.tickers) == 0 {
		return nil
	}
	return ts.tickers[len(ts.tickers)-1]
}

type fixture struct {
	mgr     *session.Manager
	server  *Server
	handler http.Handler
	tickers *tickerSource
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	cfg, err := config.Parse([]byte("admin:\n  token: secret\n"))
	require.NoError(t, err)

	ts := &tickerSource{}
	mgr, err := session.NewManager(cfg, session.WithTicker(ts.factory()))
	require.NoError(t, err)
	require.NoError(t, mgr.Start(context.Background()))
	t.Cleanup(func() { _ = mgr.Stop(context.Background()) })

	srv := NewServer(mgr, opts...)
	return &fixture{mgr: mgr, server: srv, handler: srv.Handler(), tickers: ts}
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func withVisitorCookie(req *http.Request) *http.Request {
	req.AddCookie(&http.Cookie{Name: "vid", Value: testVisitor})
	return req
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestHome_RendersShell(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	body := rec.Body.String()
	assert.Contains(t, body, `id="protocol-label"`)
	assert.Contains(t, body, ">Aave<")
	assert.Contains(t, body, `data-status="disconnected"`)
	assert.Contains(t, body, `id="__junlend_snapshot"`)

	vid := cookieNamed(rec, "vid")
	require.NotNil(t, vid, "first visit issues a visitor id")
	assert.True(t, vid.HttpOnly)
}

func TestHome_KeepsValidVisitorCookie(t *testing.T) {
	f := newFixture(t)

	rec := f.do(withVisitorCookie(httptest.NewRequest(http.MethodGet, "/", nil)))
	assert.Nil(t, cookieNamed(rec, "vid"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "vid", Value: "not-a-uuid"})
	assert.NotNil(t, cookieNamed(f.do(req), "vid"))
}

func TestHome_IdenticalInputsRenderIdenticalBytes(t *testing.T) {
	f := newFixture(t)

	first := f.do(withVisitorCookie(httptest.NewRequest(http.MethodGet, "/", nil)))
	second := f.do(withVisitorCookie(httptest.NewRequest(http.MethodGet, "/", nil)))
	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestHome_ThemeCookie(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "theme", Value: "dark"})
	body := f.do(req).Body.String()
	assert.Contains(t, body, `class="dark"`)
}

func TestHome_SelectedProtocolQuery(t *testing.T) {
	f := newFixture(t)

	body := f.do(httptest.NewRequest(http.MethodGet, "/?protocol=Morpho", nil)).Body.String()
	assert.Contains(t, body, `"selectedProtocol":"Morpho"`)

	body = f.do(httptest.NewRequest(http.MethodGet, "/?protocol=Unknown", nil)).Body.String()
	assert.Contains(t, body, `"selectedProtocol":""`)
}

func TestTheme_FormCyclesAndRedirects(t *testing.T) {
	f := newFixture(t)

	req := withVisitorCookie(httptest.NewRequest(http.MethodPost, "/theme", nil))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := f.do(req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	c := cookieNamed(rec, "theme")
	require.NotNil(t, c)
	assert.Equal(t, "light", c.Value)

	pending := f.mgr.Toasts().Pending(testVisitor)
	require.Len(t, pending, 1)
	assert.Equal(t, "Theme updated", pending[0].Message)
}

func TestTheme_JSON(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name     string
		body     string
		wantCode int
		wantPref string
	}{
		{"explicit", `{"theme":"dark"}`, http.StatusOK, "dark"},
		{"case insensitive", `{"theme":"LIGHT"}`, http.StatusOK, "light"},
		{"empty cycles", `{}`, http.StatusOK, "light"},
		{"unknown", `{"theme":"sepia"}`, http.StatusBadRequest, ""},
		{"malformed", `{`, http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(jsonRequest(http.MethodPost, "/theme", tt.body))
			require.Equal(t, tt.wantCode, rec.Code)
			if tt.wantPref == "" {
				assert.Nil(t, cookieNamed(rec, "theme"))
				return
			}
			var resp themeResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantPref, resp.Preference.String())
			assert.Equal(t, tt.wantPref, cookieNamed(rec, "theme").Value)
		})
	}
}

func TestWalletConnect_AcceptedSeedsNextRender(t *testing.T) {
	f := newFixture(t)

	body := `{"address":"0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed","chainId":1,"connectorId":"metaMask","connectorType":"injected"}`
	rec := f.do(withVisitorCookie(jsonRequest(http.MethodPost, "/api/wallet/connect", body)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp connectResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Accepted)
	assert.Equal(t, "connected", resp.Code)
	assert.Equal(t, testAddress, resp.Wallet.Address)

	session := cookieNamed(rec, "wagmi.store")
	require.NotNil(t, session)
	assert.Equal(t, f.mgr.Config().Wallet.CookieMaxAge, session.MaxAge)

	req := withVisitorCookie(httptest.NewRequest(http.MethodGet, "/", nil))
	req.AddCookie(session)
	page := f.do(req).Body.String()
	assert.Contains(t, page, `data-status="reconnecting"`)
	assert.Contains(t, page, `data-address="`+testAddress+`"`)
	assert.Contains(t, page, "Wallet connected", "queued toast renders on the next page")

	again := f.do(req).Body.String()
	assert.NotContains(t, again, "Wallet connected", "a toast renders once")
}

func TestWalletConnect_Rejected(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name     string
		body     string
		wantCode int
		wantErr  string
	}{
		{"bad address", `{"address":"0x12","chainId":1}`, http.StatusUnprocessableEntity, "invalid_address"},
		{"unsupported chain", `{"address":"` + testAddress + `","chainId":137}`, http.StatusUnprocessableEntity, "unsupported_chain"},
		{"malformed body", `{"address":`, http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(withVisitorCookie(jsonRequest(http.MethodPost, "/api/wallet/connect", tt.body)))
			require.Equal(t, tt.wantCode, rec.Code)
			assert.Nil(t, cookieNamed(rec, "wagmi.store"))
			if tt.wantErr == "" {
				return
			}
			var resp connectResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.False(t, resp.Accepted)
			assert.Equal(t, tt.wantErr, resp.Code)
			assert.Equal(t, "disconnected", resp.Wallet.Status.String())
		})
	}
}

func TestWalletDisconnect(t *testing.T) {
	f := newFixture(t)

	t.Run("form", func(t *testing.T) {
		req := withVisitorCookie(httptest.NewRequest(http.MethodPost, "/api/wallet/disconnect", nil))
		rec := f.do(req)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		c := cookieNamed(rec, "wagmi.store")
		require.NotNil(t, c)
		assert.Less(t, c.MaxAge, 0)
	})

	t.Run("json", func(t *testing.T) {
		rec := f.do(withVisitorCookie(jsonRequest(http.MethodPost, "/api/wallet/disconnect", `{}`)))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Wallet disconnected")
	})
}

func TestDismissToast(t *testing.T) {
	f := newFixture(t)
	queued := f.mgr.Disconnect(testVisitor)

	rec := f.do(withVisitorCookie(httptest.NewRequest(http.MethodPost, "/api/toasts/"+queued.ID+"/dismiss", nil)))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, f.mgr.Toasts().Pending(testVisitor))

	rec = f.do(withVisitorCookie(httptest.NewRequest(http.MethodPost, "/api/toasts/"+queued.ID+"/dismiss", nil)))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRateLimit(t *testing.T) {
	f := newFixture(t, WithRateLimiter(NewRateLimiter(1, 1, 10)))

	first := f.do(withVisitorCookie(jsonRequest(http.MethodPost, "/api/wallet/disconnect", `{}`)))
	assert.Equal(t, http.StatusOK, first.Code)

	second := f.do(withVisitorCookie(jsonRequest(http.MethodPost, "/api/wallet/disconnect", `{}`)))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "1", second.Header().Get("Retry-After"))

	other := f.do(jsonRequest(http.MethodPost, "/api/wallet/disconnect", `{}`))
	assert.Equal(t, http.StatusOK, other.Code, "limits are per visitor")
}

func TestRateLimit_WithoutVisitorCookie(t *testing.T) {
	f := newFixture(t, WithRateLimiter(NewRateLimiter(1, 1, 100)))

	codes := make([]int, 0, 4)
	for range 4 {
		req := jsonRequest(http.MethodPost, "/api/wallet/disconnect", `{}`)
		req.RemoteAddr = "203.0.113.7:4000"
		codes = append(codes, f.do(req).Code)
	}
	assert.Equal(t, []int{
		http.StatusOK,
		http.StatusTooManyRequests,
		http.StatusTooManyRequests,
		http.StatusTooManyRequests,
	}, codes, "cookieless requests share the client address limiter")

	req := jsonRequest(http.MethodPost, "/api/wallet/disconnect", `{}`)
	req.RemoteAddr = "198.51.100.9:4000"
	assert.Equal(t, http.StatusOK, f.do(req).Code, "other addresses keep their own budget")
}

func TestManifestHealthAndAssets(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/manifest.json", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var manifest map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &manifest))
	assert.Equal(t, "JunLend", manifest["name"])

	rec = f.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"phase":"serving"`)

	rec = f.do(httptest.NewRequest(http.MethodGet, "/app.js", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWithRPC(t *testing.T) {
	f := newFixture(t, WithRPC("/junlend.test.v1.Echo/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.URL.Path))
	})))

	rec := f.do(httptest.NewRequest(http.MethodPost, "/junlend.test.v1.Echo/Ping", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/junlend.test.v1.Echo/Ping", rec.Body.String())
}

func TestLive_RequiresUpgrade(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/live", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, f.mgr.GetStatus().ViewCount)
}

func dialLive(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	u.Scheme = "ws"
	u.Path = "/live"

	header := http.Header{}
	header.Set("Cookie", "vid="+testVisitor)
	conn, resp, err := websocket.DefaultDialer.Dial(u.String(), header)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) LiveMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg LiveMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestLive_StreamsFramesAndToasts(t *testing.T) {
	f := newFixture(t)
	queued := f.mgr.Disconnect(testVisitor)

	srv := httptest.NewServer(f.handler)
	defer srv.Close()
	conn := dialLive(t, srv)

	msg := readMessage(t, conn)
	require.Equal(t, MessageFrame, msg.Type)
	assert.Equal(t, "Aave", msg.Frame.Label)

	msg = readMessage(t, conn)
	require.Equal(t, MessageToast, msg.Type)
	assert.Equal(t, queued.ID, msg.Toast.ID)
	assert.Empty(t, f.mgr.Toasts().Pending(testVisitor), "a toast shown live is not rendered again")

	require.Eventually(t, func() bool { return f.tickers.last() != nil }, time.Second, 10*time.Millisecond)
	f.tickers.last().ch <- time.Now()
	msg = readMessage(t, conn)
	require.Equal(t, MessageFrame, msg.Type)
	assert.Equal(t, "Compound", msg.Frame.Label)
	assert.Equal(t, uint64(1), msg.Frame.Seq)

	f.mgr.Disconnect(testVisitor)
	msg = readMessage(t, conn)
	require.Equal(t, MessageToast, msg.Type)
	assert.Equal(t, "Wallet disconnected", msg.Toast.Message)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return f.mgr.GetStatus().ViewCount == 0 }, 2*time.Second, 10*time.Millisecond,
		"closing the socket unmounts the view")
}

func TestLive_StopClosesSocket(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.handler)
	defer srv.Close()
	conn := dialLive(t, srv)
	readMessage(t, conn)

	require.NoError(t, f.mgr.Stop(context.Background()))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
}
