// Package visitor provides the View domain entity, one mounted live page.
package visitor

import "time"

// View represents one live page mounted by a visitor.
type View struct {
	ID         string     // UUID
	VisitorID  string     // Value of the visitor cookie
	RemoteAddr string     // Client address as seen by the server
	UserAgent  string     // Client user agent
	MountedAt  time.Time  // Mount time
	FramesSent uint64     // Rotation frames delivered
	ToastsSent uint64     // Toasts delivered
	LastSentAt *time.Time // Last delivery time
	Unmounted  bool       // Set once the view is gone
}

// NewView creates a new mounted view.
func NewView(id, visitorID, remoteAddr, userAgent string) *View {
	return &View{
		ID:         id,
		VisitorID:  visitorID,
		RemoteAddr: remoteAddr,
		UserAgent:  userAgent,
		MountedAt:  time.Now(),
	}
}

// RecordFrame counts a delivered rotation frame.
func (v *View) RecordFrame() {
	v.FramesSent++
	v.touch()
}

// RecordToast counts a delivered toast.
func (v *View) RecordToast() {
	v.ToastsSent++
	v.touch()
}

// Unmount marks the view as gone.
func (v *View) Unmount() {
	v.Unmounted = true
}

// Age returns how long the view has been mounted.
func (v *View) Age(now time.Time) time.Duration {
	return now.Sub(v.MountedAt)
}

func (v *View) touch() {
	now := time.Now()
	v.LastSentAt = &now
}
