// Package toast provides the per-visitor toast queue and live delivery.
package toast

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	zlog "github.com/rs/zerolog/log"
)

// sendTimeout bounds a single live delivery so a slow view cannot stall others.
const sendTimeout = 500 * time.Millisecond

// Kind represents the toast style.
type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// ParseKind returns the kind named s. An empty s is info.
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case "", KindInfo:
		return KindInfo, true
	case KindSuccess, KindError:
		return Kind(s), true
	default:
		return "", false
	}
}

// Toast is a transient message shown by the toaster.
type Toast struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Message   string    `json:"message"`
	Seq       uint64    `json:"seq"`
	CreatedAt time.Time `json:"createdAt"`
}

// Stream receives toasts for one mounted view.
type Stream interface {
	Send(Toast) error
}

type subscription struct {
	id        string
	visitorID string
	stream    Stream
}

// Config holds manager configuration.
type Config struct {
	Limit       int           // Toasts kept per visitor, oldest dropped first
	TTL         time.Duration // Queue lifetime after the last push
	MaxVisitors int           // Queues kept before least recently used ones are evicted
}

// Manager queues toasts per visitor and pushes them to live views.
type Manager struct {
	mu            sync.RWMutex
	subscriptions map[string]*subscription

	queueMu sync.Mutex
	queues  *expirable.LRU[string, []Toast]
	limit   int

	sequenceNo   uint64
	sequenceNoMu sync.Mutex

	now func() time.Time
}

// NewManager creates a new toast manager.
func NewManager(cfg Config) *Manager {
	if cfg.Limit <= 0 {
		cfg.Limit = 1
	}
	if cfg.MaxVisitors <= 0 {
		cfg.MaxVisitors = 10000
	}
	return &Manager{
		subscriptions: make(map[string]*subscription),
		queues:        expirable.NewLRU[string, []Toast](cfg.MaxVisitors, nil, cfg.TTL),
		limit:         cfg.Limit,
		now:           time.Now,
	}
}

// Subscribe registers a live view for a visitor and returns the subscription ID.
func (m *Manager) Subscribe(visitorID string, stream Stream) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.New().String()
	m.subscriptions[id] = &subscription{
		id:        id,
		visitorID: visitorID,
		stream:    stream,
	}
	return id
}

// Unsubscribe removes a subscription.
func (m *Manager) Unsubscribe(subscriptionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.subscriptions, subscriptionID)
}

// SubscriberCount returns the number of live views.
func (m *Manager) SubscriberCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subscriptions)
}

// NextSequenceNo returns the next sequence number and increments the counter.
func (m *Manager) NextSequenceNo() uint64 {
	m.sequenceNoMu.Lock()
	defer m.sequenceNoMu.Unlock()
	m.sequenceNo++
	return m.sequenceNo
}

func (m *Manager) newToast(kind Kind, message string) Toast {
	return Toast{
		ID:        uuid.New().String(),
		Kind:      kind,
		Message:   message,
		Seq:       m.NextSequenceNo(),
		CreatedAt: m.now().UTC(),
	}
}

// Push queues a toast for a visitor and delivers it to the visitor's live views.
// The queue keeps at most Limit toasts; the oldest is dropped first.
func (m *Manager) Push(visitorID string, kind Kind, message string) Toast {
	t := m.newToast(kind, message)
	if visitorID == "" {
		return t
	}

	m.queueMu.Lock()
	queue, _ := m.queues.Get(visitorID)
	queue = append(append([]Toast(nil), queue...), t)
	if len(queue) > m.limit {
		queue = queue[len(queue)-m.limit:]
	}
	m.queues.Add(visitorID, queue)
	m.queueMu.Unlock()

	m.deliver(t, func(s *subscription) bool { return s.visitorID == visitorID })
	return t
}

// Broadcast delivers a toast to every live view and returns how many views received it.
// Broadcast toasts are not queued.
func (m *Manager) Broadcast(kind Kind, message string) (Toast, int) {
	t := m.newToast(kind, message)
	n := m.deliver(t, func(*subscription) bool { return true })
	zlog.Info().Msgf("toast broadcast: seq=%d delivered=%d", t.Seq, n)
	return t, n
}

// Pending returns the visitor's queued toasts without removing them.
func (m *Manager) Pending(visitorID string) []Toast {
	m.queueMu.Lock()
	defer m.queueMu.Unlock()

	queue, ok := m.queues.Peek(visitorID)
	if !ok {
		return nil
	}
	return append([]Toast(nil), queue...)
}

// Drain removes and returns the visitor's queued toasts.
func (m *Manager) Drain(visitorID string) []Toast {
	m.queueMu.Lock()
	defer m.queueMu.Unlock()

	queue, ok := m.queues.Peek(visitorID)
	if !ok {
		return nil
	}
	m.queues.Remove(visitorID)
	return queue
}

// Dismiss removes one toast from the visitor's queue.
func (m *Manager) Dismiss(visitorID, toastID string) bool {
	m.queueMu.Lock()
	defer m.queueMu.Unlock()

	queue, ok := m.queues.Peek(visitorID)
	if !ok {
		return false
	}
	kept := make([]Toast, 0, len(queue))
	for _, t := range queue {
		if t.ID != toastID {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(queue) {
		return false
	}
	if len(kept) == 0 {
		m.queues.Remove(visitorID)
	} else {
		m.queues.Add(visitorID, kept)
	}
	return true
}

// QueuedVisitors returns the number of visitors with queued toasts.
func (m *Manager) QueuedVisitors() int {
	return m.queues.Len()
}

// Close removes all subscriptions and queues.
func (m *Manager) Close() {
	m.mu.Lock()
	m.subscriptions = make(map[string]*subscription)
	m.mu.Unlock()
	m.queues.Purge()
}

// deliver sends t to every matching subscription in parallel, each bounded by sendTimeout.
func (m *Manager) deliver(t Toast, match func(*subscription) bool) int {
	m.mu.RLock()
	subs := make([]*subscription, 0, len(m.subscriptions))
	for _, sub := range m.subscriptions {
		if match(sub) {
			subs = append(subs, sub)
		}
	}
	m.mu.RUnlock()

	var (
		wg        sync.WaitGroup
		deliverMu sync.Mutex
		delivered int
	)
	for _, sub := range subs {
		wg.Add(1)
		go func(s *subscription) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
			defer cancel()

			done := make(chan error, 1)
			go func() {
				done <- s.stream.Send(t)
			}()

			select {
			case err := <-done:
				if err != nil {
					zlog.Debug().Msgf("toast send failed: subscription=%s err=%v", s.id, err)
					return
				}
				deliverMu.Lock()
				delivered++
				deliverMu.Unlock()
			case <-ctx.Done():
				zlog.Debug().Msgf("toast send timed out: subscription=%s", s.id)
			}
		}(sub)
	}
	wg.Wait()
	return delivered
}
