package registry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewRegistry_MountUnmount(t *testing.T) {
	r := NewViewRegistry()

	id := r.Mount("visitor-1", "10.0.0.1:1", "test")
	require.NotEmpty(t, id)
	assert.Equal(t, 1, r.Count())

	v, err := r.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "visitor-1", v.VisitorID)

	require.NoError(t, r.Unmount(id))
	assert.Equal(t, 0, r.Count())
	assert.ErrorIs(t, r.Unmount(id), ErrUnknownView)

	_, err = r.Get(id)
	assert.ErrorIs(t, err, ErrUnknownView)
}

func TestViewRegistry_Record(t *testing.T) {
	r := NewViewRegistry()
	id := r.Mount("visitor-1", "", "")

	r.RecordFrame(id)
	r.RecordFrame(id)
	r.RecordToast(id)
	r.RecordFrame("missing")

	v, err := r.Get(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), v.FramesSent)
	assert.Equal(t, uint64(1), v.ToastsSent)
}

func TestViewRegistry_AllReturnsCopies(t *testing.T) {
	r := NewViewRegistry()
	r.Mount("a", "", "")
	r.Mount("b", "", "")

	views := r.All()
	require.Len(t, views, 2)
	views[0].FramesSent = 99

	for _, v := range r.All() {
		assert.Zero(t, v.FramesSent)
	}
}

func TestViewRegistry_VisitorCount(t *testing.T) {
	r := NewViewRegistry()
	r.Mount("a", "", "")
	r.Mount("a", "", "")
	r.Mount("b", "", "")

	assert.Equal(t, 3, r.Count())
	assert.Equal(t, 2, r.VisitorCount())
}

func TestViewRegistry_Concurrent(t *testing.T) {
	r := NewViewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := r.Mount("v", "", "")
			r.RecordFrame(id)
			_ = r.All()
			_ = r.Unmount(id)
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, r.Count())
}
