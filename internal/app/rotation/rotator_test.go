package rotation

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junlend/web/internal/domain/label"
)

var protocols = label.MustNew("Aave", "Compound", "Morpho", "Fluid", "Euler")

// manualTicker fires only when the test calls fire.
type manualTicker struct {
	ch      chan time.Time
	stopped atomic.Bool
}

func newManualTicker() *manualTicker {
	return &manualTicker{ch: make(chan time.Time, 8)}
}

func (m *manualTicker) C() <-chan time.Time { return m.ch }
func (m *manualTicker) Stop()               { m.stopped.Store(true) }

func newTestRotator(t *testing.T, labels label.Set) (*Rotator, *manualTicker) {
	t.Helper()
	mt := newManualTicker()
	r, err := New(Config{
		Labels:      labels,
		Period:      2500 * time.Millisecond,
		NewTicker:   func(time.Duration) Ticker { return mt },
		FrameBuffer: 16,
	})
	require.NoError(t, err)
	return r, mt
}

// elapse fires n periods and waits until each advance is observed.
func elapse(t *testing.T, r *Rotator, mt *manualTicker, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		mt.ch <- time.Now()
		select {
		case <-r.Frames():
		case <-time.After(time.Second):
			t.Fatalf("no frame after tick %d", i+1)
		}
	}
}

func TestNew_RejectsEmptyLabels(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, ErrNoLabels)
}

func TestNew_Defaults(t *testing.T) {
	r, err := New(Config{Labels: protocols})
	require.NoError(t, err)

	assert.Equal(t, DefaultPeriod, r.Period())
	assert.Equal(t, StateIdle, r.State())
	assert.Equal(t, "Aave", r.Current().Label)
	assert.Equal(t, 0, r.Current().Index)
}

func TestRotator_Timeline(t *testing.T) {
	r, mt := newTestRotator(t, protocols)
	require.NoError(t, r.Start())
	defer func() { _ = r.Stop() }()

	assert.Equal(t, "Aave", r.Current().Label, "after 0ms")

	elapse(t, r, mt, 1)
	assert.Equal(t, "Compound", r.Current().Label, "after 2500ms")

	elapse(t, r, mt, 4)
	assert.Equal(t, "Aave", r.Current().Label, "after 12500ms")
	assert.Equal(t, uint64(5), r.Current().Seq)
}

func TestRotator_IndexIsPeriodsModuloLength(t *testing.T) {
	all := protocols.Labels()
	for size := 1; size <= len(all); size++ {
		labels := label.MustNew(all[:size]...)
		r, mt := newTestRotator(t, labels)
		require.NoError(t, r.Start())

		for n := 1; n <= 2*size+1; n++ {
			elapse(t, r, mt, 1)
			assert.Equal(t, n%size, r.Current().Index, "size=%d periods=%d", size, n)
			assert.Equal(t, labels.IndexAt(time.Duration(n)*r.Period(), r.Period()), r.Current().Index)
		}
		require.NoError(t, r.Stop())
	}
}

func TestRotator_StopHaltsRotation(t *testing.T) {
	r, mt := newTestRotator(t, protocols)
	require.NoError(t, r.Start())
	elapse(t, r, mt, 2)

	require.NoError(t, r.Stop())
	assert.True(t, mt.stopped.Load(), "ticker must be released")
	assert.Equal(t, StateStopped, r.State())

	before := r.Current()
	for i := 0; i < 3; i++ {
		mt.ch <- time.Now()
	}

	select {
	case f := <-r.Frames():
		t.Fatalf("unexpected frame after stop: %+v", f)
	case <-time.After(50 * time.Millisecond):
	}
	assert.Equal(t, before, r.Current())
}

func TestRotator_StartStopGuards(t *testing.T) {
	r, _ := newTestRotator(t, protocols)

	assert.ErrorIs(t, r.Stop(), ErrNotStarted)
	require.NoError(t, r.Start())
	assert.ErrorIs(t, r.Start(), ErrAlreadyStarted)
	require.NoError(t, r.Stop())
	assert.ErrorIs(t, r.Stop(), ErrNotStarted)
}

func TestRotator_RestartResumesFromCurrent(t *testing.T) {
	r, mt := newTestRotator(t, protocols)
	require.NoError(t, r.Start())
	elapse(t, r, mt, 2)
	require.NoError(t, r.Stop())

	require.NoError(t, r.Start())
	defer func() { _ = r.Stop() }()
	elapse(t, r, mt, 1)
	assert.Equal(t, "Fluid", r.Current().Label)
}

func TestRotator_TransitionMetadata(t *testing.T) {
	r, mt := newTestRotator(t, protocols)
	require.NoError(t, r.Start())
	defer func() { _ = r.Stop() }()

	mt.ch <- time.Now()
	f := <-r.Frames()

	assert.Equal(t, "Compound", f.Key)
	assert.True(t, f.Changed)
	assert.Equal(t, Motion{Opacity: 0, X: -30}, f.Transition.Initial)
	assert.Equal(t, Motion{Opacity: 1, X: 0}, f.Transition.Animate)
	assert.Equal(t, Motion{Opacity: 0, X: -30}, f.Transition.Exit)
	assert.Equal(t, int64(500), f.Transition.DurationMs)
}

func TestRotator_SingleLabelDoesNotRetrigger(t *testing.T) {
	r, mt := newTestRotator(t, label.MustNew("Aave"))
	require.NoError(t, r.Start())
	defer func() { _ = r.Stop() }()

	mt.ch <- time.Now()
	f := <-r.Frames()

	assert.Equal(t, "Aave", f.Key)
	assert.False(t, f.Changed, "same label keeps its transition key")
}

func TestRotator_RealTicker(t *testing.T) {
	r, err := New(Config{Labels: protocols, Period: 5 * time.Millisecond})
	require.NoError(t, err)
	require.NoError(t, r.Start())
	defer func() { _ = r.Stop() }()

	select {
	case f := <-r.Frames():
		assert.GreaterOrEqual(t, f.Seq, uint64(1))
	case <-time.After(time.Second):
		t.Fatal("real ticker never fired")
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "running", StateRunning.String())
	assert.Equal(t, "stopped", StateStopped.String())
	assert.Equal(t, "unknown", State(9).String())
}
