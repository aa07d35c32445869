package service

import (
	"context"
	"errors"

	"grant-assistant-be/internal/dto"
	"grant-assistant-be/internal/entity"
	"grant-assistant-be/internal/mapper"
	"grant-assistant-be/internal/repository/contract"
	"grant-assistant-be/pkg/events"
	"grant-assistant-be/pkg/voice"
)

var (
	ErrEntryNotFound = errors.New("chat entry not found")
	ErrAudioNotFound = errors.New("audio not found")
)

type IVoiceService interface {
	Converse(ctx context.Context, sessionID string, rec voice.Recording) (*dto.VoiceResponse, error)
	ResetConversation(ctx context.Context, sessionID string) error
	PlayEntry(ctx context.Context, sessionID, entryID string) error
	GetAudio(ctx context.Context, audioID string) (*entity.AudioClip, error)
}

type voiceService struct {
	repo      contract.ProposalSessionRepository
	audioRepo contract.AudioRepository
	adapter   *voice.Adapter
	notifier  ISessionNotifier
	activity  IActivityPublisher
	mapper    *mapper.ProposalMapper
}

func NewVoiceService(
	repo contract.ProposalSessionRepository,
	audioRepo contract.AudioRepository,
	adapter *voice.Adapter,
	notifier ISessionNotifier,
	activity IActivityPublisher,
	mapper *mapper.ProposalMapper,
) IVoiceService {
	return &voiceService{
		repo:      repo,
		audioRepo: audioRepo,
		adapter:   adapter,
		notifier:  notifier,
		activity:  activity,
		mapper:    mapper,
	}
}

// Converse runs one voice cycle. Adapter failures land in the transcript as
// a system entry, so they are not returned as errors.
func (c *voiceService) Converse(ctx context.Context, sessionID string, rec voice.Recording) (*dto.VoiceResponse, error) {
	session, ok := c.repo.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}

	entry, appended := c.adapter.Converse(ctx, session.Session, session.History, rec)
	if !appended {
		return &dto.VoiceResponse{Appended: false}, nil
	}

	c.notifier.PushSnapshot(session.Session)
	c.activity.Publish(ctx, events.VoiceCycleEnded, sessionID, map[string]interface{}{
		"entry_id": entry.ID,
		"role":     string(entry.Role),
	})

	res := c.mapper.ToChatEntryResponse(entry)
	return &dto.VoiceResponse{Appended: true, Entry: &res}, nil
}

func (c *voiceService) ResetConversation(ctx context.Context, sessionID string) error {
	session, ok := c.repo.Get(sessionID)
	if !ok {
		return ErrSessionNotFound
	}
	session.History.Reset()
	return nil
}

func (c *voiceService) PlayEntry(ctx context.Context, sessionID, entryID string) error {
	session, ok := c.repo.Get(sessionID)
	if !ok {
		return ErrSessionNotFound
	}

	err := c.adapter.PlayEntry(ctx, session.Session, entryID)
	if errors.Is(err, voice.ErrEntryNotFound) {
		return ErrEntryNotFound
	}
	if err != nil {
		return err
	}

	c.notifier.PushSnapshot(session.Session)
	return nil
}

func (c *voiceService) GetAudio(ctx context.Context, audioID string) (*entity.AudioClip, error) {
	clip, ok := c.audioRepo.Get(audioID)
	if !ok {
		return nil, ErrAudioNotFound
	}
	return clip, nil
}
