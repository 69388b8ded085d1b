package connect

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junlend/web/internal/api/connect/adminv1"
	"github.com/junlend/web/internal/app/session"
	"github.com/junlend/web/internal/infra/config"
)

func newTestAdmin(t *testing.T) (*session.Manager, *httptest.Server) {
	t.Helper()
	cfg, err := config.Parse([]byte("admin:\n  token: secret\n"))
	require.NoError(t, err)

	mgr, err := session.NewManager(cfg)
	require.NoError(t, err)
	require.NoError(t, mgr.Start(context.Background()))
	t.Cleanup(func() { _ = mgr.Stop(context.Background()) })

	path, handler := adminv1.NewAdminServiceHandler(
		NewAdminService(mgr),
		connect.WithInterceptors(NewAdminAuthInterceptor(cfg)),
	)
	mux := http.NewServeMux()
	mux.Handle(path, handler)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return mgr, srv
}

func newTestClient(srv *httptest.Server, token string) *adminv1.AdminServiceClient {
	return adminv1.NewAdminServiceClient(
		srv.Client(),
		srv.URL,
		connect.WithInterceptors(NewTokenInterceptor(token)),
	)
}

func TestAdminAuth(t *testing.T) {
	_, srv := newTestAdmin(t)

	tests := []struct {
		name     string
		token    string
		wantCode connect.Code
	}{
		{"missing token", "", connect.CodeUnauthenticated},
		{"wrong token", "nope", connect.CodeUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := adminv1.NewAdminServiceClient(srv.Client(), srv.URL)
			req := connect.NewRequest(&adminv1.GetStatusRequest{})
			if tt.token != "" {
				req.Header().Set(AdminTokenHeader, tt.token)
			}
			_, err := client.GetStatus(context.Background(), req)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, connect.CodeOf(err))
		})
	}
}

func TestAdminService_GetStatus(t *testing.T) {
	_, srv := newTestAdmin(t)
	client := newTestClient(srv, "secret")

	resp, err := client.GetStatus(context.Background(), connect.NewRequest(&adminv1.GetStatusRequest{}))
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Msg.InstanceID)
	assert.Equal(t, "serving", resp.Msg.Phase)
	assert.True(t, resp.Msg.Accepting)
	assert.Equal(t, []string{"Aave", "Compound", "Morpho", "Fluid", "Euler"}, resp.Msg.Labels)
	assert.Equal(t, int64(2500), resp.Msg.PeriodMs)
}

func TestAdminService_ListViewsAndBroadcast(t *testing.T) {
	mgr, srv := newTestAdmin(t)
	client := newTestClient(srv, "secret")

	mt, err := mgr.Mount("v1", "10.0.0.1", "curl")
	require.NoError(t, err)
	defer mt.Close()

	views, err := client.ListViews(context.Background(), connect.NewRequest(&adminv1.ListViewsRequest{}))
	require.NoError(t, err)
	require.Len(t, views.Msg.Views, 1)
	assert.Equal(t, "v1", views.Msg.Views[0].VisitorID)
	assert.Equal(t, mt.ID(), views.Msg.Views[0].ViewID)

	resp, err := client.BroadcastToast(context.Background(), connect.NewRequest(&adminv1.BroadcastToastRequest{
		Kind:    "info",
		Message: "Maintenance at noon",
	}))
	require.NoError(t, err)
	assert.True(t, resp.Msg.Success)
	assert.Equal(t, int32(1), resp.Msg.Delivered)

	got := <-mt.Toasts()
	assert.Equal(t, "Maintenance at noon", got.Message)
}

func TestAdminService_BroadcastToastValidation(t *testing.T) {
	_, srv := newTestAdmin(t)
	client := newTestClient(srv, "secret")

	tests := []struct {
		name string
		req  *adminv1.BroadcastToastRequest
	}{
		{"unknown kind", &adminv1.BroadcastToastRequest{Kind: "warning", Message: "hi"}},
		{"empty message", &adminv1.BroadcastToastRequest{Kind: "info", Message: "   "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := client.BroadcastToast(context.Background(), connect.NewRequest(tt.req))
			require.NoError(t, err)
			assert.False(t, resp.Msg.Success)
			assert.NotEmpty(t, resp.Msg.Message)
		})
	}
}

func TestAdminService_SendToast(t *testing.T) {
	mgr, srv := newTestAdmin(t)
	client := newTestClient(srv, "secret")

	resp, err := client.SendToast(context.Background(), connect.NewRequest(&adminv1.SendToastRequest{
		VisitorID: "v1",
		Kind:      "success",
		Message:   "Position migrated",
	}))
	require.NoError(t, err)
	assert.True(t, resp.Msg.Success)

	pending := mgr.Toasts().Pending("v1")
	require.Len(t, pending, 1)
	assert.Equal(t, resp.Msg.ToastID, pending[0].ID)

	_, err = client.SendToast(context.Background(), connect.NewRequest(&adminv1.SendToastRequest{Message: "x"}))
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
}

func TestAdminService_StopServing(t *testing.T) {
	mgr, srv := newTestAdmin(t)
	client := newTestClient(srv, "secret")

	resp, err := client.StopServing(context.Background(), connect.NewRequest(&adminv1.StopServingRequest{}))
	require.NoError(t, err)
	assert.True(t, resp.Msg.Success)

	select {
	case <-mgr.Done():
	default:
		t.Fatal("instance not stopped")
	}

	resp, err = client.StopServing(context.Background(), connect.NewRequest(&adminv1.StopServingRequest{}))
	require.NoError(t, err)
	assert.False(t, resp.Msg.Success)
}
