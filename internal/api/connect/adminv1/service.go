package adminv1

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// AdminServiceName is the fully-qualified name of the admin service.
const AdminServiceName = "junlend.admin.v1.AdminService"

// Procedure paths of the admin service.
const (
	AdminServiceGetStatusProcedure      = "/junlend.admin.v1.AdminService/GetStatus"
	AdminServiceListViewsProcedure      = "/junlend.admin.v1.AdminService/ListViews"
	AdminServiceBroadcastToastProcedure = "/junlend.admin.v1.AdminService/BroadcastToast"
	AdminServiceSendToastProcedure      = "/junlend.admin.v1.AdminService/SendToast"
	AdminServiceStopServingProcedure    = "/junlend.admin.v1.AdminService/StopServing"
)

// AdminServiceHandler is implemented by the admin service.
type AdminServiceHandler interface {
	GetStatus(context.Context, *connect.Request[GetStatusRequest]) (*connect.Response[GetStatusResponse], error)
	ListViews(context.Context, *connect.Request[ListViewsRequest]) (*connect.Response[ListViewsResponse], error)
	BroadcastToast(context.Context, *connect.Request[BroadcastToastRequest]) (*connect.Response[BroadcastToastResponse], error)
	SendToast(context.Context, *connect.Request[SendToastRequest]) (*connect.Response[SendToastResponse], error)
	StopServing(context.Context, *connect.Request[StopServingRequest]) (*connect.Response[StopServingResponse], error)
}

// NewAdminServiceHandler builds an HTTP handler serving svc and returns the
// path to mount it on.
func NewAdminServiceHandler(svc AdminServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(JSONCodec{})}, opts...)
	readOnly := append(opts[:len(opts):len(opts)], connect.WithIdempotency(connect.IdempotencyNoSideEffects))

	mux := http.NewServeMux()
	mux.Handle(AdminServiceGetStatusProcedure, connect.NewUnaryHandler(
		AdminServiceGetStatusProcedure, svc.GetStatus,
		readOnly...,
	))
	mux.Handle(AdminServiceListViewsProcedure, connect.NewUnaryHandler(
		AdminServiceListViewsProcedure, svc.ListViews,
		readOnly...,
	))
	mux.Handle(AdminServiceBroadcastToastProcedure, connect.NewUnaryHandler(
		AdminServiceBroadcastToastProcedure, svc.BroadcastToast, opts...,
	))
	mux.Handle(AdminServiceSendToastProcedure, connect.NewUnaryHandler(
		AdminServiceSendToastProcedure, svc.SendToast, opts...,
	))
	mux.Handle(AdminServiceStopServingProcedure, connect.NewUnaryHandler(
		AdminServiceStopServingProcedure, svc.StopServing, opts...,
	))
	return "/" + AdminServiceName + "/", mux
}

// AdminServiceClient calls the admin service.
type AdminServiceClient struct {
	getStatus      *connect.Client[GetStatusRequest, GetStatusResponse]
	listViews      *connect.Client[ListViewsRequest, ListViewsResponse]
	broadcastToast *connect.Client[BroadcastToastRequest, BroadcastToastResponse]
	sendToast      *connect.Client[SendToastRequest, SendToastResponse]
	stopServing    *connect.Client[StopServingRequest, StopServingResponse]
}

// NewAdminServiceClient creates a client for the admin service at baseURL.
func NewAdminServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *AdminServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(JSONCodec{})}, opts...)
	return &AdminServiceClient{
		getStatus:      connect.NewClient[GetStatusRequest, GetStatusResponse](httpClient, baseURL+AdminServiceGetStatusProcedure, opts...),
		listViews:      connect.NewClient[ListViewsRequest, ListViewsResponse](httpClient, baseURL+AdminServiceListViewsProcedure, opts...),
		broadcastToast: connect.NewClient[BroadcastToastRequest, BroadcastToastResponse](httpClient, baseURL+AdminServiceBroadcastToastProcedure, opts...),
		sendToast:      connect.NewClient[SendToastRequest, SendToastResponse](httpClient, baseURL+AdminServiceSendToastProcedure, opts...),
		stopServing:    connect.NewClient[StopServingRequest, StopServingResponse](httpClient, baseURL+AdminServiceStopServingProcedure, opts...),
	}
}

// GetStatus calls junlend.admin.v1.AdminService.GetStatus.
func (c *AdminServiceClient) GetStatus(ctx context.Context, req *connect.Request[GetStatusRequest]) (*connect.Response[GetStatusResponse], error) {
	return c.getStatus.CallUnary(ctx, req)
}

// ListViews calls junlend.admin.v1.AdminService.ListViews.
func (c *AdminServiceClient) ListViews(ctx context.Context, req *connect.Request[ListViewsRequest]) (*connect.Response[ListViewsResponse], error) {
	return c.listViews.CallUnary(ctx, req)
}

// BroadcastToast calls junlend.admin.v1.AdminService.BroadcastToast.
func (c *AdminServiceClient) BroadcastToast(ctx context.Context, req *connect.Request[BroadcastToastRequest]) (*connect.Response[BroadcastToastResponse], error) {
	return c.broadcastToast.CallUnary(ctx, req)
}

// SendToast calls junlend.admin.v1.AdminService.SendToast.
func (c *AdminServiceClient) SendToast(ctx context.Context, req *connect.Request[SendToastRequest]) (*connect.Response[SendToastResponse], error) {
	return c.sendToast.CallUnary(ctx, req)
}

// StopServing calls junlend.admin.v1.AdminService.StopServing.
func (c *AdminServiceClient) StopServing(ctx context.Context, req *connect.Request[StopServingRequest]) (*connect.Response[StopServingResponse], error) {
	return c.stopServing.CallUnary(ctx, req)
}
