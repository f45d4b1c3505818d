package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_Transitions(t *testing.T) {
	m := NewManager(0)
	s := m.Start()
	assert.Equal(t, StateIdle, s.State())

	require.NoError(t, s.Transition(StateAnalyzing))
	require.NoError(t, s.Transition(StateSolving))
	require.NoError(t, s.Transition(StateCompleted))
	require.NoError(t, s.Transition(StateIdle))

	// Error path resets to idle as well.
	require.NoError(t, s.Transition(StateAnalyzing))
	require.NoError(t, s.Transition(StateSolving))
	require.NoError(t, s.Transition(StateError))
	require.NoError(t, s.Transition(StateIdle))
}

func TestSession_InvalidTransitions(t *testing.T) {
	tests := []struct {
		name string
		from State
		to   State
	}{
		{name: "idle to solving skips analyzing", from: StateIdle, to: StateSolving},
		{name: "idle to completed", from: StateIdle, to: StateCompleted},
		{name: "analyzing to completed skips solving", from: StateAnalyzing, to: StateCompleted},
		{name: "completed to solving", from: StateCompleted, to: StateSolving},
		{name: "error to completed", from: StateError, to: StateCompleted},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := &Session{state: tc.from}
			err := s.Transition(tc.to)
			require.Error(t, err)
			assert.Equal(t, tc.from, s.State())
		})
	}
}

func TestSession_BeginDiscardsPreviousState(t *testing.T) {
	for _, from := range []State{StateIdle, StateAnalyzing, StateSolving, StateCompleted, StateError} {
		s := &Session{state: from}
		s.Begin()
		assert.Equal(t, StateAnalyzing, s.State())
	}
}

func TestManager_GetOrStart(t *testing.T) {
	m := NewManager(50 * time.Millisecond)
	assert.Equal(t, 50*time.Millisecond, m.AnalyzingDelay())

	s := m.Start()
	assert.NotEmpty(t, s.ID)

	got, ok := m.Get(s.ID)
	require.True(t, ok)
	assert.Same(t, s, got)

	assert.Same(t, s, m.GetOrStart(s.ID))
	assert.NotSame(t, s, m.GetOrStart(""))
	assert.NotSame(t, s, m.GetOrStart("unknown-id"))
}
