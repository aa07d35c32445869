package proposal

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry is the append-only list of uploaded documents.
type Registry struct {
	mu   sync.RWMutex
	docs []DocumentRecord
	now  func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{now: time.Now}
}

// Upload records a new, not yet analyzed document.
func (r *Registry) Upload(meta FileMeta) DocumentRecord {
	doc := DocumentRecord{
		ID:         uuid.NewString(),
		Name:       meta.Name,
		MimeType:   meta.MimeType,
		SizeBytes:  meta.SizeBytes,
		UploadedAt: r.now(),
	}

	r.mu.Lock()
	r.docs = append(r.docs, doc)
	r.mu.Unlock()

	return doc
}

// MarkAnalyzed flips the analyzed flag. It reports true only for the call
// that actually flipped it.
func (r *Registry) MarkAnalyzed(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.docs {
		if r.docs[i].ID != id {
			continue
		}
		if r.docs[i].Analyzed {
			return false
		}
		r.docs[i].Analyzed = true
		return true
	}
	return false
}

func (r *Registry) Get(id string) (DocumentRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, d := range r.docs {
		if d.ID == id {
			return d, true
		}
	}
	return DocumentRecord{}, false
}

// All returns a snapshot in upload order.
func (r *Registry) All() []DocumentRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]DocumentRecord, len(r.docs))
	copy(out, r.docs)
	return out
}
