// Package registry tracks the live views mounted on this instance.
package registry

import (
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/junlend/web/internal/domain/visitor"
)

var ErrUnknownView = errors.New("unknown view")

// ViewRegistry manages mounted views with thread-safe access.
type ViewRegistry struct {
	mu    sync.RWMutex
	views map[string]*visitor.View
}

// NewViewRegistry creates a new view registry.
func NewViewRegistry() *ViewRegistry {
	return &ViewRegistry{
		views: make(map[string]*visitor.View),
	}
}

// Mount adds a new view and returns its ID.
func (r *ViewRegistry) Mount(visitorID, remoteAddr, userAgent string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.New().String()
	r.views[id] = visitor.NewView(id, visitorID, remoteAddr, userAgent)
	return id
}

// Unmount removes a view. Unmounting an unknown view returns ErrUnknownView.
func (r *ViewRegistry) Unmount(viewID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.views[viewID]
	if !ok {
		return ErrUnknownView
	}
	v.Unmount()
	delete(r.views, viewID)
	return nil
}

// Get returns a copy of a view.
func (r *ViewRegistry) Get(viewID string) (visitor.View, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.views[viewID]
	if !ok {
		return visitor.View{}, ErrUnknownView
	}
	return *v, nil
}

// RecordFrame counts a frame delivered to a view.
func (r *ViewRegistry) RecordFrame(viewID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := r.views[viewID]; ok {
		v.RecordFrame()
	}
}

// RecordToast counts a toast delivered to a view.
func (r *ViewRegistry) RecordToast(viewID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := r.views[viewID]; ok {
		v.RecordToast()
	}
}

// All returns copies of all views, oldest first.
func (r *ViewRegistry) All() []visitor.View {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]visitor.View, 0, len(r.views))
	for _, v := range r.views {
		result = append(result, *v)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].MountedAt.Equal(result[j].MountedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].MountedAt.Before(result[j].MountedAt)
	})
	return result
}

// Count returns the number of mounted views.
func (r *ViewRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.views)
}

// VisitorCount returns the number of distinct visitors with a mounted view.
func (r *ViewRegistry) VisitorCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{}, len(r.views))
	for _, v := range r.views {
		seen[v.VisitorID] = struct{}{}
	}
	return len(seen)
}
