// Package adminv1 defines the admin RPC messages, procedures and the JSON
// codec both ends of the admin service speak.
package adminv1

// GetStatusRequest is the request for GetStatus.
type GetStatusRequest struct{}

// GetStatusResponse describes the serving instance.
type GetStatusResponse struct {
	InstanceID     string   `json:"instanceId"`
	Phase          string   `json:"phase"`
	Accepting      bool     `json:"accepting"`
	UptimeSeconds  int64    `json:"uptimeSeconds"`
	ViewCount      int32    `json:"viewCount"`
	VisitorCount   int32    `json:"visitorCount"`
	QueuedVisitors int32    `json:"queuedVisitors"`
	Labels         []string `json:"labels"`
	PeriodMs       int64    `json:"periodMs"`
}

// ListViewsRequest is the request for ListViews.
type ListViewsRequest struct{}

// ViewInfo is one mounted live view.
type ViewInfo struct {
	ViewID     string `json:"viewId"`
	VisitorID  string `json:"visitorId"`
	RemoteAddr string `json:"remoteAddr"`
	UserAgent  string `json:"userAgent"`
	MountedAt  string `json:"mountedAt"`
	FramesSent uint64 `json:"framesSent"`
	ToastsSent uint64 `json:"toastsSent"`
	LastSentAt string `json:"lastSentAt,omitempty"`
}

// ListViewsResponse lists the mounted live views, oldest first.
type ListViewsResponse struct {
	Views []*ViewInfo `json:"views"`
}

// BroadcastToastRequest sends a toast to every mounted view.
type BroadcastToastRequest struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// BroadcastToastResponse reports how many views received the toast.
type BroadcastToastResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	ToastID   string `json:"toastId,omitempty"`
	Delivered int32  `json:"delivered"`
}

// SendToastRequest queues a toast for one visitor.
type SendToastRequest struct {
	VisitorID string `json:"visitorId"`
	Kind      string `json:"kind"`
	Message   string `json:"message"`
}

// SendToastResponse is the response for SendToast.
type SendToastResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ToastID string `json:"toastId,omitempty"`
}

// StopServingRequest is the request for StopServing.
type StopServingRequest struct{}

// StopServingResponse is the response for StopServing.
type StopServingResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
