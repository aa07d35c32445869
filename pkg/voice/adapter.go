package voice

import (
	"context"
	"errors"
	"strings"
	"time"

	"grant-assistant-be/internal/pkg/logger"
	"grant-assistant-be/pkg/llm"
	"grant-assistant-be/pkg/proposal"
)

const audioFailureMessage = "⚠️ Could not generate audio. Try again later."

var ErrEntryNotFound = errors.New("chat entry not found")

// Recording is the raw audio a client captured for one voice turn.
type Recording struct {
	Filename string
	MimeType string
	Data     []byte
}

// Audio is synthesized speech ready to be stored and played.
type Audio struct {
	ContentType string
	Data        []byte
}

type Transcriber interface {
	Transcribe(ctx context.Context, rec Recording) (string, error)
}

type Completer interface {
	Complete(ctx context.Context, history []llm.Message) (string, error)
}

type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (Audio, error)
}

// AudioStore keeps synthesized audio and hands back a reference to it.
type AudioStore interface {
	Save(ctx context.Context, audio Audio) (string, error)
}

// Player plays a stored audio reference for everyone watching a session.
type Player interface {
	Play(ctx context.Context, sessionID, audioRef string) error
}

// Adapter runs voice conversation cycles against a session transcript.
type Adapter struct {
	transcriber Transcriber
	completer   Completer
	synthesizer Synthesizer
	store       AudioStore
	player      Player
	logger      logger.ILogger
	timeout     time.Duration
}

func NewAdapter(
	transcriber Transcriber,
	completer Completer,
	synthesizer Synthesizer,
	store AudioStore,
	player Player,
	logger logger.ILogger,
	timeout time.Duration,
) *Adapter {
	return &Adapter{
		transcriber: transcriber,
		completer:   completer,
		synthesizer: synthesizer,
		store:       store,
		player:      player,
		logger:      logger,
		timeout:     timeout,
	}
}

// Converse runs one cycle: transcribe, complete, synthesize, store, play.
// It returns the last entry appended to the transcript. The bool is false
// when the recording held no speech and nothing was appended.
func (a *Adapter) Converse(ctx context.Context, s *proposal.Session, history *History, rec Recording) (proposal.ChatEntry, bool) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	text, err := a.transcriber.Transcribe(ctx, rec)
	if err != nil {
		return a.fail(s, "transcribe", err), true
	}

	text = strings.TrimSpace(text)
	if text == "" {
		a.logger.Info("VOICE", "No speech in recording, waiting for the next one", map[string]interface{}{
			"session_id": s.ID,
			"bytes":      len(rec.Data),
		})
		return proposal.ChatEntry{}, false
	}

	s.Transcript.Append(proposal.RoleUser, text)
	history.Add(llm.RoleUser, text)

	reply, err := a.completer.Complete(ctx, history.Messages())
	if err != nil {
		return a.fail(s, "complete", err), true
	}
	history.Add(llm.RoleAssistant, reply)

	ref, err := a.synthesize(ctx, reply)
	if err != nil {
		return a.fail(s, "synthesize", err), true
	}

	entry := s.Transcript.AppendWithAudio(proposal.RoleAssistant, reply, ref)

	if err := a.player.Play(ctx, s.ID, ref); err != nil {
		return a.fail(s, "play", asPlaybackError(err)), true
	}

	a.logger.Info("VOICE", "Voice conversation cycle finished", map[string]interface{}{
		"session_id": s.ID,
		"entry_id":   entry.ID,
	})
	return entry, true
}

// PlayEntry synthesizes an existing entry again and plays it. Failures are
// reported as a system entry; only an unknown entry id is returned as an error.
func (a *Adapter) PlayEntry(ctx context.Context, s *proposal.Session, entryID string) error {
	entry, ok := s.Transcript.Find(entryID)
	if !ok {
		return ErrEntryNotFound
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	ref, err := a.synthesize(ctx, entry.Content)
	if err == nil {
		err = a.player.Play(ctx, s.ID, ref)
	}
	if err != nil {
		a.logger.Error("VOICE", "Failed to play entry audio", map[string]interface{}{
			"session_id": s.ID,
			"entry_id":   entryID,
			"error":      err.Error(),
		})
		s.Transcript.Append(proposal.RoleSystem, audioFailureMessage)
	}
	return nil
}

func (a *Adapter) synthesize(ctx context.Context, text string) (string, error) {
	audio, err := a.synthesizer.Synthesize(ctx, text)
	if err != nil {
		return "", err
	}
	return a.store.Save(ctx, audio)
}

func (a *Adapter) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.timeout)
}

func (a *Adapter) fail(s *proposal.Session, stage string, err error) proposal.ChatEntry {
	a.logger.Error("VOICE", "Voice conversation cycle failed", map[string]interface{}{
		"session_id": s.ID,
		"stage":      stage,
		"error":      err.Error(),
	})
	return s.Transcript.Append(proposal.RoleSystem, UserMessage(err))
}

func asPlaybackError(err error) error {
	var playbackErr *PlaybackError
	if errors.As(err, &playbackErr) {
		return err
	}
	return &PlaybackError{Err: err}
}
