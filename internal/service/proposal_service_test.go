package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"grant-assistant-be/internal/constant"
	"grant-assistant-be/internal/dto"
	"grant-assistant-be/internal/mapper"
	"grant-assistant-be/internal/pkg/logger"
	"grant-assistant-be/internal/repository/memory"
	"grant-assistant-be/pkg/events"
	"grant-assistant-be/pkg/proposal"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type instantSleeper struct{}

func (instantSleeper) Sleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }

type fakeNotifier struct {
	mu        sync.Mutex
	snapshots map[string]int
	closed    []string
	played    []string
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{snapshots: make(map[string]int)}
}

func (n *fakeNotifier) EffectApplied(_ context.Context, s *proposal.Session, applied proposal.Applied) {
	if applied.Changed {
		n.PushSnapshot(s)
	}
}

func (n *fakeNotifier) Play(_ context.Context, _ string, audioRef string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.played = append(n.played, audioRef)
	return nil
}

func (n *fakeNotifier) PushSnapshot(s *proposal.Session) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.snapshots[s.ID]++
}

func (n *fakeNotifier) Close(sessionID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = append(n.closed, sessionID)
}

func (n *fakeNotifier) snapshotCount(id string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.snapshots[id]
}

func (n *fakeNotifier) closedSessions() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.closed...)
}

type fakeActivity struct {
	mu      sync.Mutex
	events  []string
	applied []proposal.Applied
}

func (a *fakeActivity) EffectApplied(_ context.Context, _ *proposal.Session, applied proposal.Applied) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.applied = append(a.applied, applied)
}

func (a *fakeActivity) appliedEntries(role proposal.Role) []proposal.ChatEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []proposal.ChatEntry
	for _, ap := range a.applied {
		if ap.Entry != nil && ap.Entry.Role == role {
			out = append(out, *ap.Entry)
		}
	}
	return out
}

func (a *fakeActivity) Publish(_ context.Context, eventType, _ string, _ map[string]interface{}) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, eventType)
}

func (a *fakeActivity) published() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.events...)
}

type proposalFixture struct {
	service  IProposalService
	repo     *memory.SessionRepository
	consumer ITurnConsumerService
	notifier *fakeNotifier
	activity *fakeActivity
}

func newProposalFixture(t *testing.T, ttl time.Duration) *proposalFixture {
	t.Helper()

	log := logger.NewNopLogger()
	repo := memory.NewSessionRepository(ttl)
	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, watermill.NopLogger{})
	notifier := newFakeNotifier()
	activity := &fakeActivity{}

	runner := proposal.NewRunner(
		proposal.NewDriver(proposal.DemoScript(), proposal.Delays{}),
		instantSleeper{},
		proposal.Observers{notifier, activity},
	)
	consumer := NewTurnConsumerService(pubSub, repo, runner, activity, log)

	svc := NewProposalService(
		repo,
		runner,
		NewPublisherService(pubSub),
		consumer,
		notifier,
		activity,
		mapper.NewProposalMapper("http://localhost:3000"),
		log,
		"",
	)

	t.Cleanup(func() {
		consumer.StopAll()
		_ = pubSub.Close()
	})

	return &proposalFixture{service: svc, repo: repo, consumer: consumer, notifier: notifier, activity: activity}
}

func TestProposalService_CreateSession(t *testing.T) {
	f := newProposalFixture(t, time.Hour)

	res, err := f.service.CreateSession(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, res.Id)
	assert.Len(t, res.Sections, 11)
	require.Len(t, res.Transcript, 1)
	assert.Equal(t, proposal.WelcomeMessage, res.Transcript[0].Content)
	assert.Equal(t, proposal.DemoScript().Len(), res.ScriptLength)
	assert.False(t, res.Done)
	assert.Contains(t, f.activity.published(), events.SessionCreated)
	assert.Equal(t, 1, f.repo.Count())
}

func TestProposalService_SendMessageRunsTurn(t *testing.T) {
	f := newProposalFixture(t, time.Hour)
	ctx := context.Background()

	session, err := f.service.CreateSession(ctx)
	require.NoError(t, err)

	entry, err := f.service.SendMessage(ctx, session.Id, &dto.SendMessageRequest{
		Content: "  We want to build a community greenhouse to grow fresh food year-round  ",
	})
	require.NoError(t, err)
	assert.Equal(t, string(proposal.RoleUser), entry.Role)
	assert.Equal(t, "We want to build a community greenhouse to grow fresh food year-round", entry.Content)

	require.Eventually(t, func() bool {
		res, err := f.service.GetSession(ctx, session.Id)
		return err == nil && res.StepIndex == 1 && len(res.Transcript) == 3
	}, 2*time.Second, 10*time.Millisecond)

	res, err := f.service.GetSession(ctx, session.Id)
	require.NoError(t, err)
	assert.Equal(t, string(proposal.RoleAssistant), res.Transcript[2].Role)
	assert.Equal(t, proposal.DemoScript()[0].AssistantReply, res.Transcript[2].Content)

	assert.Eventually(t, func() bool {
		for _, e := range f.activity.published() {
			if e == events.TurnCompleted {
				return true
			}
		}
		return false
	}, time.Second, 10*time.Millisecond)
	assert.Contains(t, f.activity.published(), events.MessageReceived)
	assert.Greater(t, f.notifier.snapshotCount(session.Id), 1)
}

func TestProposalService_ConsecutiveMessagesAdvanceInOrder(t *testing.T) {
	f := newProposalFixture(t, time.Hour)
	ctx := context.Background()

	session, err := f.service.CreateSession(ctx)
	require.NoError(t, err)

	for _, text := range []string{"first", "second"} {
		_, err := f.service.SendMessage(ctx, session.Id, &dto.SendMessageRequest{Content: text})
		require.NoError(t, err)
	}

	require.Eventually(t, func() bool {
		res, err := f.service.GetSession(ctx, session.Id)
		return err == nil && res.StepIndex == 2 && len(res.Transcript) == 5
	}, 2*time.Second, 10*time.Millisecond)

	res, err := f.service.GetSession(ctx, session.Id)
	require.NoError(t, err)

	var replies []string
	for _, e := range res.Transcript {
		if e.Role == string(proposal.RoleAssistant) {
			replies = append(replies, e.Content)
		}
	}
	demo := proposal.DemoScript()
	assert.Equal(t, []string{proposal.WelcomeMessage, demo[0].AssistantReply, demo[1].AssistantReply}, replies)
}

func TestProposalService_UnknownSession(t *testing.T) {
	f := newProposalFixture(t, time.Hour)
	ctx := context.Background()

	_, err := f.service.GetSession(ctx, "nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = f.service.SendMessage(ctx, "nope", &dto.SendMessageRequest{Content: "hi"})
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = f.service.UploadDocument(ctx, "nope", proposal.FileMeta{Name: "plan.pdf"})
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.ErrorIs(t, f.service.RemoveSection(ctx, "nope", "10"), ErrSessionNotFound)
	assert.ErrorIs(t, f.service.DeleteSession(ctx, "nope"), ErrSessionNotFound)
}

func TestProposalService_UploadDocument(t *testing.T) {
	f := newProposalFixture(t, time.Hour)
	ctx := context.Background()

	session, err := f.service.CreateSession(ctx)
	require.NoError(t, err)

	t.Run("rejects unsupported extension", func(t *testing.T) {
		_, err := f.service.UploadDocument(ctx, session.Id, proposal.FileMeta{Name: "notes.txt", SizeBytes: 10})
		assert.ErrorIs(t, err, ErrUnsupportedDocument)
	})

	t.Run("registers and analyzes", func(t *testing.T) {
		doc, err := f.service.UploadDocument(ctx, session.Id, proposal.FileMeta{
			Name:      "Plan.PDF",
			MimeType:  "application/octet-stream",
			SizeBytes: 2048,
		})
		require.NoError(t, err)
		assert.Equal(t, "application/pdf", doc.MimeType)
		assert.False(t, doc.Analyzed)

		require.Eventually(t, func() bool {
			res, err := f.service.GetSession(ctx, session.Id)
			return err == nil && len(res.Documents) == 1 && res.Documents[0].Analyzed
		}, 2*time.Second, 10*time.Millisecond)
	})
}

func TestProposalService_RemoveSection(t *testing.T) {
	f := newProposalFixture(t, time.Hour)
	ctx := context.Background()

	session, err := f.service.CreateSession(ctx)
	require.NoError(t, err)

	assert.ErrorIs(t, f.service.RemoveSection(ctx, session.Id, "1"), ErrSectionLocked)
	assert.ErrorIs(t, f.service.RemoveSection(ctx, session.Id, "99"), ErrSectionNotFound)

	before := f.notifier.snapshotCount(session.Id)
	require.NoError(t, f.service.RemoveSection(ctx, session.Id, "10"))
	assert.Equal(t, before+1, f.notifier.snapshotCount(session.Id))

	res, err := f.service.GetSession(ctx, session.Id)
	require.NoError(t, err)
	assert.Len(t, res.Sections, 10)
	assert.Contains(t, f.activity.published(), events.SectionRemoved)

	assert.ErrorIs(t, f.service.RemoveSection(ctx, session.Id, "10"), ErrSectionNotFound)
}

func TestProposalService_AddSectionHint(t *testing.T) {
	f := newProposalFixture(t, time.Hour)
	ctx := context.Background()

	session, err := f.service.CreateSession(ctx)
	require.NoError(t, err)

	before := f.notifier.snapshotCount(session.Id)
	entry, err := f.service.AddSectionHint(ctx, session.Id)
	require.NoError(t, err)
	assert.Equal(t, string(proposal.RoleSystem), entry.Role)
	assert.Equal(t, constant.AddSectionHint, entry.Content)
	assert.Equal(t, before+1, f.notifier.snapshotCount(session.Id))

	observed := f.activity.appliedEntries(proposal.RoleSystem)
	require.Len(t, observed, 1)
	assert.Equal(t, entry.Id, observed[0].ID)

	res, err := f.service.GetSession(ctx, session.Id)
	require.NoError(t, err)
	assert.Len(t, res.Transcript, 2)
	assert.Equal(t, 0, res.StepIndex)
}

func TestProposalService_DeleteSession(t *testing.T) {
	f := newProposalFixture(t, time.Hour)
	ctx := context.Background()

	session, err := f.service.CreateSession(ctx)
	require.NoError(t, err)

	require.NoError(t, f.service.DeleteSession(ctx, session.Id))
	assert.Equal(t, []string{session.Id}, f.notifier.closedSessions())

	_, err = f.service.GetSession(ctx, session.Id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Contains(t, f.activity.published(), events.SessionDeleted)
}

func TestProposalService_ExpiredSessionIsClosed(t *testing.T) {
	f := newProposalFixture(t, 20*time.Millisecond)
	ctx := context.Background()

	session, err := f.service.CreateSession(ctx)
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	f.repo.DeleteExpired()

	assert.Equal(t, []string{session.Id}, f.notifier.closedSessions())
	assert.Equal(t, 0, f.repo.Count())
}
