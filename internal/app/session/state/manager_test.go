package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManager_Lifecycle(t *testing.T) {
	m := New("instance-1")

	assert.Equal(t, "instance-1", m.GetInstanceID())
	assert.Equal(t, PhaseStarting, m.GetPhase())
	assert.False(t, m.IsServing())
	assert.False(t, m.CanAcceptRequests())
	assert.Zero(t, m.Uptime(time.Now()))

	m.SetPhase(PhaseServing)
	m.StartAccepting()
	assert.True(t, m.IsServing())
	assert.True(t, m.CanAcceptRequests())

	started, stopped := m.GetTimes()
	assert.NotNil(t, started)
	assert.Nil(t, stopped)

	m.SetPhase(PhaseDraining)
	assert.False(t, m.CanAcceptRequests())

	m.StopAccepting()
	m.SetPhase(PhaseStopped)
	_, stopped = m.GetTimes()
	assert.NotNil(t, stopped)
	assert.Equal(t, NotAccepting, m.GetAcceptingState())

	uptime := m.Uptime(time.Now().Add(time.Hour))
	assert.Less(t, uptime, time.Minute, "uptime is frozen at stop")
}

func TestPhase_String(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{PhaseStarting, "starting"},
		{PhaseServing, "serving"},
		{PhaseDraining, "draining"},
		{PhaseStopped, "stopped"},
		{Phase(42), "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.phase.String())
	}
}

func TestAcceptingState_String(t *testing.T) {
	assert.Equal(t, "accepting", Accepting.String())
	assert.Equal(t, "not_accepting", NotAccepting.String())
	assert.Equal(t, "unknown", AcceptingState(7).String())
}
