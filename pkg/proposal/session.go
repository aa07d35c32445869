package proposal

import (
	"sync"
	"time"
)

// Session bundles the stores of one proposal conversation with its cursor.
type Session struct {
	ID        string
	CreatedAt time.Time

	Transcript *Transcript
	Board      *Board
	Registry   *Registry

	mu    sync.RWMutex
	state ConversationState

	// held for the whole of a turn so turns never interleave
	turnMu sync.Mutex
}

// NewSession seeds the standard sections and greets the user.
func NewSession(id string) *Session {
	s := &Session{
		ID:         id,
		CreatedAt:  time.Now(),
		Transcript: NewTranscript(),
		Board:      NewBoard(),
		Registry:   NewRegistry(),
	}
	s.Board.Seed(StandardSections())
	s.Transcript.Append(RoleAssistant, WelcomeMessage)
	return s
}

func (s *Session) State() ConversationState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) setState(state ConversationState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// Snapshot is a read-only copy of everything a view renders.
type Snapshot struct {
	ID         string            `json:"id"`
	CreatedAt  time.Time         `json:"created_at"`
	State      ConversationState `json:"state"`
	Transcript []ChatEntry       `json:"transcript"`
	Sections   []Section         `json:"sections"`
	Documents  []DocumentRecord  `json:"documents"`
	Progress   Progress          `json:"progress"`
}

func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		ID:         s.ID,
		CreatedAt:  s.CreatedAt,
		State:      s.State(),
		Transcript: s.Transcript.All(),
		Sections:   s.Board.All(),
		Documents:  s.Registry.All(),
		Progress:   s.Board.Progress(),
	}
}
