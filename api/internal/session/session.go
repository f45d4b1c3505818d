// Package session tracks the per-query presentation lifecycle:
// idle -> analyzing -> solving -> completed|error, with completed and error
// resetting to idle on an explicit user action. The analyzing phase is a fixed
// artificial pause before the real request and has no functional effect.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

type State string

const (
	StateIdle      State = "idle"
	StateAnalyzing State = "analyzing"
	StateSolving   State = "solving"
	StateCompleted State = "completed"
	StateError     State = "error"
)

var validNext = map[State][]State{
	StateIdle:      {StateAnalyzing},
	StateAnalyzing: {StateSolving},
	StateSolving:   {StateCompleted, StateError},
	StateCompleted: {StateIdle},
	StateError:     {StateIdle},
}

type Session struct {
	ID string

	mu        sync.Mutex
	state     State
	updatedAt time.Time
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Transition moves the session to next, rejecting moves the state table does
// not allow.
func (s *Session) Transition(next State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, allowed := range validNext[s.state] {
		if allowed == next {
			s.state = next
			s.updatedAt = time.Now()
			return nil
		}
	}
	return fmt.Errorf("invalid transition %s -> %s", s.state, next)
}

// Begin starts a new query on this session. A new query discards whatever the
// session was doing before, so this always succeeds and lands in analyzing.
func (s *Session) Begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateAnalyzing
	s.updatedAt = time.Now()
}

type Manager struct {
	sessions       sync.Map // id -> *Session
	analyzingDelay time.Duration
}

func NewManager(analyzingDelay time.Duration) *Manager {
	return &Manager{analyzingDelay: analyzingDelay}
}

// AnalyzingDelay is the artificial pause inserted before the real request for
// perceived responsiveness.
func (m *Manager) AnalyzingDelay() time.Duration { return m.analyzingDelay }

func (m *Manager) Start() *Session {
	s := &Session{ID: uuid.NewString(), state: StateIdle, updatedAt: time.Now()}
	m.sessions.Store(s.ID, s)
	return s
}

func (m *Manager) Get(id string) (*Session, bool) {
	if v, ok := m.sessions.Load(id); ok {
		return v.(*Session), true
	}
	return nil, false
}

// GetOrStart returns the session with the given id, creating a fresh one when
// the id is blank or unknown.
func (m *Manager) GetOrStart(id string) *Session {
	if id != "" {
		if s, ok := m.Get(id); ok {
			return s
		}
	}
	return m.Start()
}
