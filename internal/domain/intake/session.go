package intake

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is the presentation layer's mutable binding to a FormState. The
// form itself stays an immutable value; Session only swaps which value is
// current. The mutex serializes requests so edits apply one at a time.
type Session struct {
	ID        uuid.UUID
	StartedAt time.Time

	mu    sync.Mutex
	state FormState
}

// NewSession starts an empty editing session.
func NewSession() *Session {
	return &Session{
		ID:        uuid.New(),
		StartedAt: time.Now(),
		state:     NewFormState(),
	}
}

// State returns the current form.
func (s *Session) State() FormState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Apply runs fn against the current form and keeps its result. When fn
// fails the returned state is still stored, so reducers that report an error
// while returning their input leave the form untouched.
func (s *Session) Apply(fn func(FormState) (FormState, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(s.state)
	s.state = next
	return err
}
