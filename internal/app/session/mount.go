package session

import (
	"sync"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/junlend/web/internal/app/rotation"
	"github.com/junlend/web/internal/app/toast"
)

var (
	ErrMountClosed = errors.New("view is closed")
	ErrSlowView    = errors.New("view is not reading toasts")
)

// toastBuffer is how many toasts a view may lag behind before deliveries fail.
const toastBuffer = 8

// Mount is one live view: a rotator plus a toast subscription.
// Close releases both exactly once, whichever exit path gets there first.
type Mount struct {
	id        string
	visitorID string
	manager   *Manager

	rotator *rotation.Rotator
	initial rotation.Frame
	subID   string
	toasts  chan toast.Toast

	once   sync.Once
	closed chan struct{}
}

// Mount creates a live view for a visitor and starts its rotation.
func (m *Manager) Mount(visitorID, remoteAddr, userAgent string) (*Mount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.stateMgr.IsServing() {
		return nil, ErrNotServing
	}

	r, err := rotation.New(rotation.Config{
		Labels:      m.labels,
		Period:      m.period,
		NewTicker:   m.newTicker,
		FrameBuffer: 4,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create rotator")
	}

	mt := &Mount{
		visitorID: visitorID,
		manager:   m,
		rotator:   r,
		initial:   r.Current(),
		toasts:    make(chan toast.Toast, toastBuffer),
		closed:    make(chan struct{}),
	}

	if err := r.Start(); err != nil {
		return nil, errors.Wrap(err, "failed to start rotator")
	}
	mt.id = m.viewReg.Mount(visitorID, remoteAddr, userAgent)
	mt.subID = m.toasts.Subscribe(visitorID, mt)
	m.mounts[mt.id] = mt

	zlog.Debug().Msgf("view mounted: view=%s visitor=%s views=%d", mt.id, visitorID, len(m.mounts))
	return mt, nil
}

// ID returns the view ID.
func (mt *Mount) ID() string {
	return mt.id
}

// VisitorID returns the visitor owning the view.
func (mt *Mount) VisitorID() string {
	return mt.visitorID
}

// Initial returns the frame shown at mount, identical to the server-rendered one.
func (mt *Mount) Initial() rotation.Frame {
	return mt.initial
}

// Frames returns the rotation frames.
func (mt *Mount) Frames() <-chan rotation.Frame {
	return mt.rotator.Frames()
}

// Toasts returns toasts pushed to the view.
func (mt *Mount) Toasts() <-chan toast.Toast {
	return mt.toasts
}

// Done is closed once the view is closed.
func (mt *Mount) Done() <-chan struct{} {
	return mt.closed
}

// Pending drains the toasts queued for the visitor before the view mounted.
func (mt *Mount) Pending() []toast.Toast {
	return mt.manager.toasts.Drain(mt.visitorID)
}

// RecordFrame counts a delivered frame.
func (mt *Mount) RecordFrame() {
	mt.manager.viewReg.RecordFrame(mt.id)
}

// RecordToast counts a delivered toast.
func (mt *Mount) RecordToast() {
	mt.manager.viewReg.RecordToast(mt.id)
}

// Send implements toast.Stream.
func (mt *Mount) Send(t toast.Toast) error {
	select {
	case <-mt.closed:
		return ErrMountClosed
	default:
	}
	select {
	case mt.toasts <- t:
		return nil
	default:
		return ErrSlowView
	}
}

// Close stops the rotator and releases the view. It is safe to call more than once.
func (mt *Mount) Close() {
	mt.once.Do(func() {
		close(mt.closed)

		if err := mt.rotator.Stop(); err != nil {
			zlog.Debug().Msgf("view rotator already stopped: view=%s err=%v", mt.id, err)
		}
		mt.manager.toasts.Unsubscribe(mt.subID)
		if err := mt.manager.viewReg.Unmount(mt.id); err != nil {
			zlog.Debug().Msgf("view unmount: view=%s err=%v", mt.id, err)
		}

		mt.manager.mu.Lock()
		delete(mt.manager.mounts, mt.id)
		mt.manager.mu.Unlock()

		zlog.Debug().Msgf("view closed: view=%s visitor=%s", mt.id, mt.visitorID)
	})
}
