package connect

import (
	"context"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/junlend/web/internal/api/connect/adminv1"
	"github.com/junlend/web/internal/app/session"
	"github.com/junlend/web/internal/app/session/state"
	"github.com/junlend/web/internal/app/toast"
	"github.com/junlend/web/internal/infra/metrics"
)

// maxToastLength bounds admin-supplied toast messages.
const maxToastLength = 280

// AdminService implements the AdminService RPC.
type AdminService struct {
	session *session.Manager
}

// NewAdminService creates a new AdminService.
func NewAdminService(session *session.Manager) *AdminService {
	return &AdminService{
		session: session,
	}
}

// Ensure AdminService implements the interface.
var _ adminv1.AdminServiceHandler = (*AdminService)(nil)

// GetStatus returns the current instance status.
func (s *AdminService) GetStatus(
	ctx context.Context,
	req *connect.Request[adminv1.GetStatusRequest],
) (*connect.Response[adminv1.GetStatusResponse], error) {
	status := s.session.GetStatus()

	return connect.NewResponse(&adminv1.GetStatusResponse{
		InstanceID:     status.InstanceID,
		Phase:          status.Phase.String(),
		Accepting:      status.Accepting == state.Accepting,
		UptimeSeconds:  int64(status.Uptime / time.Second),
		ViewCount:      int32(status.ViewCount),
		VisitorCount:   int32(status.VisitorCount),
		QueuedVisitors: int32(status.QueuedVisitors),
		Labels:         status.Labels,
		PeriodMs:       status.Period.Milliseconds(),
	}), nil
}

// ListViews lists all mounted live views.
func (s *AdminService) ListViews(
	ctx context.Context,
	req *connect.Request[adminv1.ListViewsRequest],
) (*connect.Response[adminv1.ListViewsResponse], error) {
	views := s.session.ListViews()
	infos := make([]*adminv1.ViewInfo, len(views))

	for i, v := range views {
		info := &adminv1.ViewInfo{
			ViewID:     v.ID,
			VisitorID:  v.VisitorID,
			RemoteAddr: v.RemoteAddr,
			UserAgent:  v.UserAgent,
			MountedAt:  v.MountedAt.Format(time.RFC3339),
			FramesSent: v.FramesSent,
			ToastsSent: v.ToastsSent,
		}
		if v.LastSentAt != nil {
			info.LastSentAt = v.LastSentAt.Format(time.RFC3339)
		}
		infos[i] = info
	}

	return connect.NewResponse(&adminv1.ListViewsResponse{
		Views: infos,
	}), nil
}

// BroadcastToast sends a toast to every mounted view.
func (s *AdminService) BroadcastToast(
	ctx context.Context,
	req *connect.Request[adminv1.BroadcastToastRequest],
) (*connect.Response[adminv1.BroadcastToastResponse], error) {
	kind, message, err := validateToast(req.Msg.Kind, req.Msg.Message)
	if err != nil {
		return connect.NewResponse(&adminv1.BroadcastToastResponse{
			Success: false,
			Message: err.Error(),
		}), nil
	}

	t, delivered := s.session.BroadcastToast(kind, message)
	metrics.RecordToast(string(kind))

	return connect.NewResponse(&adminv1.BroadcastToastResponse{
		Success:   true,
		Message:   "Toast broadcast",
		ToastID:   t.ID,
		Delivered: int32(delivered),
	}), nil
}

// SendToast queues a toast for one visitor.
func (s *AdminService) SendToast(
	ctx context.Context,
	req *connect.Request[adminv1.SendToastRequest],
) (*connect.Response[adminv1.SendToastResponse], error) {
	if strings.TrimSpace(req.Msg.VisitorID) == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("visitor id is required"))
	}
	kind, message, err := validateToast(req.Msg.Kind, req.Msg.Message)
	if err != nil {
		return connect.NewResponse(&adminv1.SendToastResponse{
			Success: false,
			Message: err.Error(),
		}), nil
	}

	t := s.session.Toasts().Push(req.Msg.VisitorID, kind, message)
	metrics.RecordToast(string(kind))

	return connect.NewResponse(&adminv1.SendToastResponse{
		Success: true,
		Message: "Toast queued",
		ToastID: t.ID,
	}), nil
}

// StopServing drains the instance. The server shuts down once it stopped.
func (s *AdminService) StopServing(
	ctx context.Context,
	req *connect.Request[adminv1.StopServingRequest],
) (*connect.Response[adminv1.StopServingResponse], error) {
	zlog.Info().Msg("stop requested by admin")

	err := s.session.Stop(ctx)
	if err != nil {
		return connect.NewResponse(&adminv1.StopServingResponse{
			Success: false,
			Message: err.Error(),
		}), nil
	}

	return connect.NewResponse(&adminv1.StopServingResponse{
		Success: true,
		Message: "Instance stopped",
	}), nil
}

func validateToast(kindName, message string) (toast.Kind, string, error) {
	kind, ok := toast.ParseKind(kindName)
	if !ok {
		return "", "", errors.Newf("unknown toast kind %q", kindName)
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return "", "", errors.New("message is required")
	}
	if len([]rune(message)) > maxToastLength {
		return "", "", errors.Newf("message exceeds %d characters", maxToastLength)
	}
	return kind, message, nil
}
