package voice

import (
	"context"
	"errors"
	"testing"
	"time"

	"grant-assistant-be/internal/pkg/logger"
	"grant-assistant-be/pkg/llm"
	"grant-assistant-be/pkg/proposal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTranscriber struct {
	text string
	err  error
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ Recording) (string, error) {
	return f.text, f.err
}

type fakeCompleter struct {
	reply    string
	err      error
	received []llm.Message
}

func (f *fakeCompleter) Complete(_ context.Context, history []llm.Message) (string, error) {
	f.received = history
	return f.reply, f.err
}

type fakeSynthesizer struct {
	err   error
	texts []string
}

func (f *fakeSynthesizer) Synthesize(_ context.Context, text string) (Audio, error) {
	f.texts = append(f.texts, text)
	if f.err != nil {
		return Audio{}, f.err
	}
	return Audio{ContentType: "audio/mpeg", Data: []byte("mp3")}, nil
}

type fakeStore struct {
	saved int
}

func (f *fakeStore) Save(_ context.Context, _ Audio) (string, error) {
	f.saved++
	return "audio-1", nil
}

type fakePlayer struct {
	err    error
	played []string
}

func (f *fakePlayer) Play(_ context.Context, _ string, audioRef string) error {
	f.played = append(f.played, audioRef)
	return f.err
}

type fixture struct {
	transcriber *fakeTranscriber
	completer   *fakeCompleter
	synthesizer *fakeSynthesizer
	store       *fakeStore
	player      *fakePlayer
	adapter     *Adapter
	session     *proposal.Session
	history     *History
}

func newFixture() *fixture {
	f := &fixture{
		transcriber: &fakeTranscriber{text: "We need funding for a greenhouse"},
		completer:   &fakeCompleter{reply: "How many people will it serve?"},
		synthesizer: &fakeSynthesizer{},
		store:       &fakeStore{},
		player:      &fakePlayer{},
		session:     proposal.NewSession("s-1"),
		history:     NewHistory(""),
	}
	f.adapter = NewAdapter(f.transcriber, f.completer, f.synthesizer, f.store, f.player, logger.NewNopLogger(), time.Second)
	return f
}

func (f *fixture) newEntries() []proposal.ChatEntry {
	// the welcome entry is always first
	return f.session.Transcript.All()[1:]
}

func TestConverse_FullCycle(t *testing.T) {
	f := newFixture()

	entry, ok := f.adapter.Converse(context.Background(), f.session, f.history, Recording{Data: []byte("webm")})

	require.True(t, ok)
	assert.Equal(t, proposal.RoleAssistant, entry.Role)
	assert.Equal(t, "audio-1", entry.AudioRef)

	entries := f.newEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, proposal.RoleUser, entries[0].Role)
	assert.Equal(t, "We need funding for a greenhouse", entries[0].Content)
	assert.Equal(t, "How many people will it serve?", entries[1].Content)

	assert.Equal(t, []string{"How many people will it serve?"}, f.synthesizer.texts)
	assert.Equal(t, []string{"audio-1"}, f.player.played)

	require.Len(t, f.completer.received, 2)
	assert.Equal(t, llm.RoleSystem, f.completer.received[0].Role)
	assert.Equal(t, 3, f.history.Len())
}

func TestConverse_EmptyTranscriptAppendsNothing(t *testing.T) {
	f := newFixture()
	f.transcriber.text = "   "

	_, ok := f.adapter.Converse(context.Background(), f.session, f.history, Recording{})

	assert.False(t, ok)
	assert.Empty(t, f.newEntries())
	assert.Nil(t, f.completer.received)
	assert.Equal(t, 1, f.history.Len())
}

func TestConverse_FailuresBecomeSystemEntries(t *testing.T) {
	tests := []struct {
		name          string
		setup         func(f *fixture)
		wantEntries   int
		wantMessage   string
		wantSynthesis bool
	}{
		{
			name:        "microphone unavailable",
			setup:       func(f *fixture) { f.transcriber.err = &CaptureError{Err: errors.New("empty recording")} },
			wantEntries: 1,
			wantMessage: "⚠️ Failed to access microphone. Check that a microphone is connected.",
		},
		{
			name:        "silence reported by the service",
			setup:       func(f *fixture) { f.transcriber.err = &NoSpeechError{} },
			wantEntries: 1,
			wantMessage: "⚠️ I didn't catch that. Please try speaking again.",
		},
		{
			name: "chat completion rejected",
			setup: func(f *fixture) {
				f.completer.err = &UpstreamError{Service: "chat completion", StatusCode: 429, Body: "rate limited"}
			},
			wantEntries: 2,
			wantMessage: "⚠️ The chat completion service returned an error (429). Please try again.",
		},
		{
			name:          "speech synthesis unreachable",
			setup:         func(f *fixture) { f.synthesizer.err = &NetworkError{Err: errors.New("connection refused")} },
			wantEntries:   2,
			wantMessage:   "⚠️ Could not reach the voice service. Check your connection and try again.",
			wantSynthesis: true,
		},
		{
			name:          "playback fails after the reply is shown",
			setup:         func(f *fixture) { f.player.err = errors.New("no listeners") },
			wantEntries:   3,
			wantMessage:   "⚠️ Could not play the audio response.",
			wantSynthesis: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			tt.setup(f)

			entry, ok := f.adapter.Converse(context.Background(), f.session, f.history, Recording{Data: []byte("webm")})

			require.True(t, ok)
			assert.Equal(t, proposal.RoleSystem, entry.Role)
			assert.Equal(t, tt.wantMessage, entry.Content)

			entries := f.newEntries()
			assert.Len(t, entries, tt.wantEntries)
			assert.Equal(t, entry.ID, entries[len(entries)-1].ID)
			assert.Equal(t, tt.wantSynthesis, len(f.synthesizer.texts) > 0)
		})
	}
}

func TestConverse_Timeout(t *testing.T) {
	f := newFixture()
	f.adapter.timeout = time.Millisecond
	f.adapter.transcriber = transcriberFunc(func(ctx context.Context, _ Recording) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})

	entry, ok := f.adapter.Converse(context.Background(), f.session, f.history, Recording{})

	require.True(t, ok)
	assert.Equal(t, "⚠️ The voice service took too long to answer. Please try again.", entry.Content)
}

type transcriberFunc func(ctx context.Context, rec Recording) (string, error)

func (fn transcriberFunc) Transcribe(ctx context.Context, rec Recording) (string, error) {
	return fn(ctx, rec)
}

func TestPlayEntry(t *testing.T) {
	t.Run("replays an existing entry", func(t *testing.T) {
		f := newFixture()
		welcome := f.session.Transcript.All()[0]

		require.NoError(t, f.adapter.PlayEntry(context.Background(), f.session, welcome.ID))

		assert.Equal(t, []string{welcome.Content}, f.synthesizer.texts)
		assert.Equal(t, []string{"audio-1"}, f.player.played)
		assert.Empty(t, f.newEntries())
	})

	t.Run("unknown entry", func(t *testing.T) {
		f := newFixture()
		err := f.adapter.PlayEntry(context.Background(), f.session, "missing")
		assert.ErrorIs(t, err, ErrEntryNotFound)
	})

	t.Run("synthesis failure appends a system entry", func(t *testing.T) {
		f := newFixture()
		f.synthesizer.err = &UpstreamError{Service: "text-to-speech", StatusCode: 500}
		welcome := f.session.Transcript.All()[0]

		require.NoError(t, f.adapter.PlayEntry(context.Background(), f.session, welcome.ID))

		entries := f.newEntries()
		require.Len(t, entries, 1)
		assert.Equal(t, proposal.RoleSystem, entries[0].Role)
		assert.Equal(t, "⚠️ Could not generate audio. Try again later.", entries[0].Content)
		assert.Empty(t, f.player.played)
	})
}
