// Package rotation provides the timed rotating label.
package rotation

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/junlend/web/internal/domain/label"
)

// DefaultPeriod is the time each label stays on screen.
const DefaultPeriod = 2500 * time.Millisecond

// Errors
var (
	ErrAlreadyStarted = errors.New("rotation already started")
	ErrNotStarted     = errors.New("rotation not started")
	ErrNoLabels       = errors.New("rotation requires a non-empty label set")
)

// State represents the rotator lifecycle state.
type State int

const (
	StateIdle    State = iota // Created, timer not running
	StateRunning              // Timer running
	StateStopped              // Timer cancelled
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Config holds rotator configuration.
type Config struct {
	Labels      label.Set
	Period      time.Duration // Defaults to DefaultPeriod
	NewTicker   TickerFunc    // Defaults to NewTimeTicker
	FrameBuffer int           // Size of the Frames channel, defaults to 1
}

// Rotator advances a cursor over a label set on a fixed period.
// Ticks are consumed by a single goroutine, so advances never run concurrently.
type Rotator struct {
	mu sync.RWMutex

	labels    label.Set
	period    time.Duration
	newTicker TickerFunc

	state   State
	current Frame
	frames  chan Frame

	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a rotator positioned at index 0.
func New(cfg Config) (*Rotator, error) {
	if cfg.Labels.IsZero() {
		return nil, ErrNoLabels
	}
	if cfg.Period <= 0 {
		cfg.Period = DefaultPeriod
	}
	if cfg.NewTicker == nil {
		cfg.NewTicker = NewTimeTicker
	}
	if cfg.FrameBuffer <= 0 {
		cfg.FrameBuffer = 1
	}

	return &Rotator{
		labels:    cfg.Labels,
		period:    cfg.Period,
		newTicker: cfg.NewTicker,
		state:     StateIdle,
		current:   InitialFrame(cfg.Labels),
		frames:    make(chan Frame, cfg.FrameBuffer),
	}, nil
}

// InitialFrame returns the frame a freshly mounted rotator shows, without
// starting anything. Server rendering uses it for the first paint.
func InitialFrame(labels label.Set) Frame {
	first := labels.At(0)
	return Frame{Index: 0, Label: first, Key: first, Changed: true, Transition: DefaultTransition}
}

// Start begins the repeating timer.
func (r *Rotator) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateRunning {
		return ErrAlreadyStarted
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.done = make(chan struct{})
	r.state = StateRunning

	go r.loop(ctx, r.newTicker(r.period), r.done)

	zlog.Debug().Msgf("rotation started: period=%v labels=%d", r.period, r.labels.Len())
	return nil
}

// Stop cancels the timer and waits for the tick loop to exit.
// No frame is emitted after Stop returns.
func (r *Rotator) Stop() error {
	r.mu.Lock()
	if r.state != StateRunning {
		r.mu.Unlock()
		return ErrNotStarted
	}
	r.state = StateStopped
	r.cancel()
	done := r.done
	r.mu.Unlock()

	<-done
	f := r.Current()
	zlog.Debug().Msgf("rotation stopped: index=%d seq=%d", f.Index, f.Seq)
	return nil
}

// Current returns the frame currently displayed.
func (r *Rotator) Current() Frame {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// State returns the lifecycle state.
func (r *Rotator) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Period returns the rotation period.
func (r *Rotator) Period() time.Duration {
	return r.period
}

// Frames returns the channel receiving a frame on every advance.
// When the consumer falls behind, older frames are dropped.
func (r *Rotator) Frames() <-chan Frame {
	return r.frames
}

func (r *Rotator) loop(ctx context.Context, ticker Ticker, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			if f, ok := r.advance(); ok {
				r.publish(f)
			}
		}
	}
}

// advance moves the cursor one step, wrapping after the last label.
func (r *Rotator) advance() (Frame, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateRunning {
		return Frame{}, false
	}

	prev := r.current
	idx := r.labels.Wrap(prev.Index + 1)
	lbl := r.labels.At(idx)
	r.current = Frame{
		Index:      idx,
		Label:      lbl,
		Key:        lbl,
		Seq:        prev.Seq + 1,
		Changed:    lbl != prev.Label,
		Transition: DefaultTransition,
	}
	return r.current, true
}

// publish delivers f, dropping the oldest pending frame if the buffer is full.
// Only the tick loop sends, so the drain-then-send sequence cannot race another sender.
func (r *Rotator) publish(f Frame) {
	for {
		select {
		case r.frames <- f:
			return
		default:
		}
		select {
		case <-r.frames:
		default:
		}
	}
}
