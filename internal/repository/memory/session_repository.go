package memory

import (
	"sync"
	"time"

	"grant-assistant-be/internal/entity"
	"grant-assistant-be/internal/repository/contract"

	"github.com/patrickmn/go-cache"
)

type SessionRepository struct {
	cache *cache.Cache

	mu        sync.RWMutex
	onExpired func(sessionID string)
	deleting  map[string]struct{}
}

var _ contract.ProposalSessionRepository = &SessionRepository{}

// NewSessionRepository keeps sessions for ttl after their last Save or Get.
func NewSessionRepository(ttl time.Duration) *SessionRepository {
	r := &SessionRepository{
		cache:    cache.New(ttl, ttl/6+time.Second),
		deleting: make(map[string]struct{}),
	}
	r.cache.OnEvicted(r.evicted)
	return r
}

func (r *SessionRepository) Save(session *entity.ProposalSession) {
	r.cache.Set(session.ID, session, cache.DefaultExpiration)
}

// Get also refreshes the session's expiry.
func (r *SessionRepository) Get(sessionID string) (*entity.ProposalSession, bool) {
	x, found := r.cache.Get(sessionID)
	if !found {
		return nil, false
	}
	session := x.(*entity.ProposalSession)
	_ = r.cache.Replace(sessionID, session, cache.DefaultExpiration)
	return session, true
}

func (r *SessionRepository) Delete(sessionID string) bool {
	if _, found := r.cache.Get(sessionID); !found {
		return false
	}

	r.mu.Lock()
	r.deleting[sessionID] = struct{}{}
	r.mu.Unlock()

	r.cache.Delete(sessionID)

	r.mu.Lock()
	delete(r.deleting, sessionID)
	r.mu.Unlock()
	return true
}

func (r *SessionRepository) Count() int {
	return r.cache.ItemCount()
}

func (r *SessionRepository) OnExpired(fn func(sessionID string)) {
	r.mu.Lock()
	r.onExpired = fn
	r.mu.Unlock()
}

// DeleteExpired runs an expiry sweep now instead of waiting for the janitor.
func (r *SessionRepository) DeleteExpired() {
	r.cache.DeleteExpired()
}

// evicted fires for explicit deletes as well; those are not expirations.
func (r *SessionRepository) evicted(sessionID string, _ interface{}) {
	r.mu.RLock()
	_, explicit := r.deleting[sessionID]
	fn := r.onExpired
	r.mu.RUnlock()

	if explicit || fn == nil {
		return
	}
	fn(sessionID)
}
