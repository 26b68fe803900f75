package session

import (
	"sync"
	"time"
)

// Turn is one exchange shown in the chat history. Err is set only on a
// failed turn, which is shown once and never joins the history.
type Turn struct {
	User      string
	Assistant string
	Err       string
	At        time.Time
}

type Session struct {
	id      string
	turns   []Turn
	failed  *Turn
	touched time.Time
	mtx     sync.RWMutex
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Append(user string, assistant string) Turn {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	turn := Turn{
		User:      user,
		Assistant: assistant,
		At:        time.Now().UTC(),
	}

	s.turns = append(s.turns, turn)
	s.failed = nil
	s.touched = turn.At

	return turn
}

func (s *Session) Fail(user string, err error) Turn {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	turn := Turn{
		User: user,
		Err:  err.Error(),
		At:   time.Now().UTC(),
	}

	s.failed = &turn
	s.touched = turn.At

	return turn
}

func (s *Session) Turns() []Turn {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	turns := make([]Turn, len(s.turns))
	copy(turns, s.turns)

	return turns
}

// View returns the history and the failed turn awaiting display, if any.
// The failed turn is cleared so it shows once.
func (s *Session) View() ([]Turn, *Turn) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	turns := make([]Turn, len(s.turns))
	copy(turns, s.turns)

	failed := s.failed
	s.failed = nil

	return turns, failed
}

func (s *Session) lastTouched() time.Time {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.touched
}
