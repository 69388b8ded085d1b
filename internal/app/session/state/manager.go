package state

import (
	"sync"
	"time"
)

// Manager manages lifecycle state with thread-safe access.
type Manager struct {
	mu sync.RWMutex

	instanceID string
	phase      Phase
	accepting  AcceptingState
	startedAt  *time.Time
	stoppedAt  *time.Time
}

// New creates a new state manager.
func New(instanceID string) *Manager {
	return &Manager{
		instanceID: instanceID,
		phase:      PhaseStarting,
		accepting:  NotAccepting,
	}
}

// GetInstanceID returns the instance ID.
func (m *Manager) GetInstanceID() string {
	return m.instanceID
}

// GetPhase returns the current phase.
func (m *Manager) GetPhase() Phase {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.phase
}

// SetPhase sets the phase and records start and stop times.
func (m *Manager) SetPhase(p Phase) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.phase = p

	now := time.Now()
	switch p {
	case PhaseServing:
		if m.startedAt == nil {
			m.startedAt = &now
		}
	case PhaseStopped:
		m.stoppedAt = &now
	}
}

// IsServing returns true while new live views may mount.
func (m *Manager) IsServing() bool {
	return m.GetPhase() == PhaseServing
}

// StartAccepting starts accepting wallet connect requests.
func (m *Manager) StartAccepting() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accepting = Accepting
}

// StopAccepting stops accepting wallet connect requests.
func (m *Manager) StopAccepting() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accepting = NotAccepting
}

// GetAcceptingState returns the accepting state.
func (m *Manager) GetAcceptingState() AcceptingState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.accepting
}

// CanAcceptRequests returns true if wallet connect requests can be handled.
func (m *Manager) CanAcceptRequests() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.phase == PhaseServing && m.accepting == Accepting
}

// GetTimes returns the start and stop times.
func (m *Manager) GetTimes() (*time.Time, *time.Time) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.startedAt, m.stoppedAt
}

// Uptime returns the time since serving started, zero before that.
func (m *Manager) Uptime(now time.Time) time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.startedAt == nil {
		return 0
	}
	end := now
	if m.stoppedAt != nil {
		end = *m.stoppedAt
	}
	return end.Sub(*m.startedAt)
}
