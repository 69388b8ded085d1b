// Package state provides the serving lifecycle state.
package state

// Phase represents the instance lifecycle phase.
type Phase int

const (
	PhaseStarting Phase = iota // Loading, not serving yet
	PhaseServing               // Serving pages and mounting live views
	PhaseDraining              // Shutting down, no new live views
	PhaseStopped               // All live views closed
)

// String returns the string representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseStarting:
		return "starting"
	case PhaseServing:
		return "serving"
	case PhaseDraining:
		return "draining"
	case PhaseStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// AcceptingState represents whether wallet connect requests are accepted.
type AcceptingState int

const (
	NotAccepting AcceptingState = iota // Not accepting requests
	Accepting                          // Accepting requests
)

// String returns the string representation of the accepting state.
func (a AcceptingState) String() string {
	switch a {
	case NotAccepting:
		return "not_accepting"
	case Accepting:
		return "accepting"
	default:
		return "unknown"
	}
}
