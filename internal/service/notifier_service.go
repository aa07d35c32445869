package service

import (
	"context"

	"grant-assistant-be/internal/dto"
	"grant-assistant-be/internal/mapper"
	"grant-assistant-be/internal/repository/contract"
	"grant-assistant-be/internal/websocket"
	"grant-assistant-be/pkg/proposal"
	"grant-assistant-be/pkg/voice"
)

// FrameSender is satisfied by *websocket.Hub.
type FrameSender interface {
	Send(sessionID, frameType string, data interface{})
	CloseSession(sessionID string)
}

// ISessionNotifier pushes session state to connected clients. It is the
// runner's view observer and the voice adapter's player.
type ISessionNotifier interface {
	proposal.Observer
	voice.Player
	PushSnapshot(s *proposal.Session)
	Close(sessionID string)
}

type sessionNotifier struct {
	sender       FrameSender
	repo         contract.ProposalSessionRepository
	mapper       *mapper.ProposalMapper
	scriptLength int
}

func NewSessionNotifier(
	sender FrameSender,
	repo contract.ProposalSessionRepository,
	mapper *mapper.ProposalMapper,
	scriptLength int,
) ISessionNotifier {
	return &sessionNotifier{
		sender:       sender,
		repo:         repo,
		mapper:       mapper,
		scriptLength: scriptLength,
	}
}

func (n *sessionNotifier) PushSnapshot(s *proposal.Session) {
	n.sender.Send(s.ID, websocket.FrameSnapshot, n.mapper.ToSessionResponse(s.Snapshot(), n.scriptLength))
}

func (n *sessionNotifier) EffectApplied(_ context.Context, s *proposal.Session, applied proposal.Applied) {
	if !applied.Changed {
		return
	}
	n.PushSnapshot(s)
}

// Play sends the current state first so the entry being played is on screen.
func (n *sessionNotifier) Play(_ context.Context, sessionID, audioRef string) error {
	frame := dto.PlayAudioFrame{AudioUrl: n.mapper.AudioURL(audioRef)}

	if session, ok := n.repo.Get(sessionID); ok {
		n.PushSnapshot(session.Session)
		for _, e := range session.Transcript.All() {
			if e.AudioRef == audioRef {
				frame.EntryId = e.ID
			}
		}
	}

	n.sender.Send(sessionID, websocket.FramePlayAudio, frame)
	return nil
}

func (n *sessionNotifier) Close(sessionID string) {
	n.sender.CloseSession(sessionID)
}
