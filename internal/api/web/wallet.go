package web

import (
	"encoding/json"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	zlog "github.com/rs/zerolog/log"

	"github.com/junlend/web/internal/app/filter"
	"github.com/junlend/web/internal/app/session"
	"github.com/junlend/web/internal/app/toast"
	"github.com/junlend/web/internal/domain/wallet"
	"github.com/junlend/web/internal/infra/metrics"
)

// maxConnectBody bounds the connect request body.
const maxConnectBody = 4 << 10

type connectRequest struct {
	Address       string `json:"address"`
	ChainID       int64  `json:"chainId"`
	ConnectorID   string `json:"connectorId"`
	ConnectorType string `json:"connectorType"`
}

type connectResponse struct {
	Accepted bool                `json:"accepted"`
	Code     string              `json:"code"`
	Message  string              `json:"message"`
	Wallet   wallet.InitialState `json:"wallet"`
	Toast    toast.Toast         `json:"toast"`
}

// handleConnect validates a wallet connection reported by the browser and, when
// accepted, persists it in the wallet session cookie.
func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxConnectBody)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	res, err := s.mgr.Connect(r.Context(), filter.ConnectRequest{
		VisitorID:     VisitorID(r.Context()),
		Address:       req.Address,
		ChainID:       req.ChainID,
		ConnectorID:   req.ConnectorID,
		ConnectorType: req.ConnectorType,
	})
	if err != nil {
		if errors.Is(err, session.ErrNotAccepting) {
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
			return
		}
		zlog.Error().Msgf("wallet connect failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	metrics.RecordConnect(res.Code)
	metrics.RecordToast(string(res.Toast.Kind))

	resp := connectResponse{
		Accepted: res.Accepted,
		Code:     res.Code,
		Message:  res.Message,
		Wallet:   wallet.Disconnected(s.cfg.ChainIDs()[0]),
		Toast:    res.Toast,
	}
	if !res.Accepted {
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}

	b := s.mgr.Bootstrapper()
	cookie, err := b.SessionCookie(res.Connection, s.cfg.Wallet.CookieMaxAge, s.cfg.Server.SecureCookies)
	if err != nil {
		zlog.Error().Msgf("wallet cookie encode failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	http.SetCookie(w, cookie)

	resp.Wallet = wallet.InitialState{
		Status:    wallet.StatusConnected,
		Address:   res.Connection.Accounts[0],
		ChainID:   res.Connection.ChainID,
		Connector: res.Connection.Connector,
		Current:   res.Connection.Connector.UID,
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleDisconnect clears the wallet session cookie.
func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, s.mgr.Bootstrapper().ClearCookie(s.cfg.Server.SecureCookies))

	t := s.mgr.Disconnect(VisitorID(r.Context()))
	metrics.RecordToast(string(t.Kind))

	if !wantsJSON(r) {
		redirectBack(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"toast": t})
}

// handleDismiss drops a queued toast the visitor closed.
func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "toastID")
	if !s.mgr.Toasts().Dismiss(VisitorID(r.Context()), id) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "toast not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
