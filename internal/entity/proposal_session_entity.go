package entity

import (
	"grant-assistant-be/pkg/proposal"
	"grant-assistant-be/pkg/voice"
)

// ProposalSession is everything the service keeps for one open proposal:
// the scripted workspace plus the free-form voice chat history.
type ProposalSession struct {
	*proposal.Session
	History *voice.History
}

func NewProposalSession(id, systemPrompt string) *ProposalSession {
	return &ProposalSession{
		Session: proposal.NewSession(id),
		History: voice.NewHistory(systemPrompt),
	}
}
