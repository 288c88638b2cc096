package voice

import (
	"errors"
	"fmt"
	"sync"
)

// State is the single source of truth for where a voice interaction stands.
type State string

const (
	StateIdle      State = "idle"
	StateListening State = "listening"
	StateThinking  State = "thinking"
	StateSpeaking  State = "speaking"
)

var ErrIllegalTransition = errors.New("illegal voice session transition")

// transitions is the legal state table. Anything not listed is an error,
// so states like "speaking while still recording" cannot be reached.
var transitions = map[State][]State{
	StateIdle:      {StateListening},
	StateListening: {StateThinking, StateIdle},
	StateThinking:  {StateSpeaking, StateIdle},
	StateSpeaking:  {StateIdle},
}

// Session tracks one user's voice interaction state.
type Session struct {
	mu    sync.Mutex
	state State
}

func NewSession() *Session {
	return &Session{state: StateIdle}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Transition moves the session to target if the state table allows it.
func (s *Session) Transition(target State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, allowed := range transitions[s.state] {
		if allowed == target {
			s.state = target
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, s.state, target)
}

// Reset forces the session back to idle regardless of its current state.
// Used on error paths so a failed interaction never wedges the session.
func (s *Session) Reset() {
	s.mu.Lock()
	s.state = StateIdle
	s.mu.Unlock()
}

// Sessions hands out one Session per user.
type Sessions struct {
	mu       sync.Mutex
	byUserId map[int]*Session
}

func NewSessions() *Sessions {
	return &Sessions{byUserId: map[int]*Session{}}
}

func (s *Sessions) For(userId int) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.byUserId[userId]
	if !ok {
		session = NewSession()
		s.byUserId[userId] = session
	}
	return session
}
