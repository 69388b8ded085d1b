package web

import (
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gorilla/websocket"
	zlog "github.com/rs/zerolog/log"

	"github.com/junlend/web/internal/app/rotation"
	"github.com/junlend/web/internal/app/session"
	"github.com/junlend/web/internal/app/toast"
	"github.com/junlend/web/internal/infra/metrics"
)

const (
	writeWait      = 5 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxInboundSize = 512
)

// Live message types.
const (
	MessageFrame = "frame"
	MessageToast = "toast"
)

// LiveMessage is one server push on the live channel.
type LiveMessage struct {
	Type  string          `json:"type"`
	Frame *rotation.Frame `json:"frame,omitempty"`
	Toast *toast.Toast    `json:"toast,omitempty"`
}

// handleLive mounts a view for the connection and streams its frames and toasts.
// The view is closed on every exit path, which stops its rotator.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	if !websocket.IsWebSocketUpgrade(r) {
		http.Error(w, "websocket upgrade required", http.StatusBadRequest)
		return
	}

	vid := VisitorID(r.Context())
	mt, err := s.mgr.Mount(vid, clientAddr(r), r.UserAgent())
	if err != nil {
		if errors.Is(err, session.ErrNotServing) {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		zlog.Error().Msgf("live mount failed: visitor=%s err=%v", vid, err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	defer mt.Close()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied with an HTTP error.
		zlog.Debug().Msgf("live upgrade failed: visitor=%s err=%v", vid, err)
		return
	}
	defer conn.Close()

	metrics.ViewMounted()
	defer metrics.ViewUnmounted()

	gone := make(chan struct{})
	go readPump(conn, gone)

	if err := s.streamView(conn, mt, gone); err != nil {
		zlog.Debug().Msgf("live view ended: view=%s err=%v", mt.ID(), err)
	}
}

// readPump discards inbound messages and closes gone once the peer goes away.
func readPump(conn *websocket.Conn, gone chan<- struct{}) {
	defer close(gone)

	conn.SetReadLimit(maxInboundSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) streamView(conn *websocket.Conn, mt *session.Mount, gone <-chan struct{}) error {
	write := func(msg LiveMessage) error {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(msg)
	}
	sendToast := func(t toast.Toast) error {
		if err := write(LiveMessage{Type: MessageToast, Toast: &t}); err != nil {
			return errors.Wrap(err, "failed to write toast")
		}
		mt.RecordToast()
		// Shown live, so it must not be rendered again on the next page.
		s.mgr.Toasts().Dismiss(mt.VisitorID(), t.ID)
		return nil
	}

	initial := mt.Initial()
	if err := write(LiveMessage{Type: MessageFrame, Frame: &initial}); err != nil {
		return errors.Wrap(err, "failed to write initial frame")
	}
	for _, t := range mt.Pending() {
		if err := sendToast(t); err != nil {
			return err
		}
	}

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-gone:
			return nil
		case <-mt.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server stopping"),
				time.Now().Add(writeWait))
			return nil
		case f := <-mt.Frames():
			if err := write(LiveMessage{Type: MessageFrame, Frame: &f}); err != nil {
				return errors.Wrap(err, "failed to write frame")
			}
			mt.RecordFrame()
			metrics.RecordFrame()
		case t := <-mt.Toasts():
			if err := sendToast(t); err != nil {
				return err
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return errors.Wrap(err, "failed to ping")
			}
		}
	}
}
