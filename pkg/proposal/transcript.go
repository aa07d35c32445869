package proposal

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Transcript is the append-only chat log of a session.
type Transcript struct {
	mu      sync.RWMutex
	entries []ChatEntry
	now     func() time.Time
}

func NewTranscript() *Transcript {
	return &Transcript{now: time.Now}
}

// Append stores a new entry and returns it. It never fails.
func (t *Transcript) Append(role Role, content string) ChatEntry {
	return t.AppendWithAudio(role, content, "")
}

// AppendWithAudio stores an entry that carries an audio reference.
func (t *Transcript) AppendWithAudio(role Role, content, audioRef string) ChatEntry {
	entry := ChatEntry{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: t.now(),
		AudioRef:  audioRef,
	}

	t.mu.Lock()
	t.entries = append(t.entries, entry)
	t.mu.Unlock()

	return entry
}

// All returns a snapshot, latest entry last.
func (t *Transcript) All() []ChatEntry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]ChatEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Find looks up an entry by id.
func (t *Transcript) Find(id string) (ChatEntry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, e := range t.entries {
		if e.ID == id {
			return e, true
		}
	}
	return ChatEntry{}, false
}

func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}
