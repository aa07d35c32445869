package contract

import "grant-assistant-be/internal/entity"

type ProposalSessionRepository interface {
	Save(session *entity.ProposalSession)
	Get(sessionID string) (*entity.ProposalSession, bool)
	Delete(sessionID string) bool
	Count() int
	// OnExpired registers fn to run when a session is dropped for inactivity.
	OnExpired(fn func(sessionID string))
}
