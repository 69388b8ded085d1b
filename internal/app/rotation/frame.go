package rotation

import "time"

// Motion is one keyframe of the label transition.
type Motion struct {
	Opacity float64 `json:"opacity"`
	X       int     `json:"x"`
}

// Transition describes how a label enters and leaves: fade plus horizontal slide.
type Transition struct {
	Initial    Motion `json:"initial"`
	Animate    Motion `json:"animate"`
	Exit       Motion `json:"exit"`
	DurationMs int64  `json:"durationMs"`
}

// DefaultTransition is the fade + slide-from-left used by the landing page.
var DefaultTransition = Transition{
	Initial:    Motion{Opacity: 0, X: -30},
	Animate:    Motion{Opacity: 1, X: 0},
	Exit:       Motion{Opacity: 0, X: -30},
	DurationMs: (500 * time.Millisecond).Milliseconds(),
}

// Frame is the label currently displayed together with its transition metadata.
type Frame struct {
	Index int    `json:"index"`
	Label string `json:"label"`
	// Key is the label identity. Renderers restart the transition when it changes.
	Key        string     `json:"key"`
	Seq        uint64     `json:"seq"`
	Changed    bool       `json:"changed"`
	Transition Transition `json:"transition"`
}
