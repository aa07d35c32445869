package service

import (
	"context"
	"encoding/json"
	"sync"

	"grant-assistant-be/internal/constant"
	"grant-assistant-be/internal/dto"
	"grant-assistant-be/internal/pkg/logger"
	"grant-assistant-be/internal/repository/contract"
	"grant-assistant-be/pkg/events"
	"grant-assistant-be/pkg/proposal"

	"github.com/ThreeDotsLabs/watermill/message"
)

// ITurnConsumerService runs one consumer per session. A session's turns are
// processed one after another, each to its last effect, in the order their
// sequence numbers were handed out by the publisher. Start must be called
// before the session's first turn is published.
type ITurnConsumerService interface {
	Start(sessionID string) error
	Stop(sessionID string)
	StopAll()
}

type turnConsumerService struct {
	subscriber message.Subscriber
	repo       contract.ProposalSessionRepository
	runner     *proposal.Runner
	activity   IActivityPublisher
	logger     logger.ILogger

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	wg      sync.WaitGroup
}

func NewTurnConsumerService(
	subscriber message.Subscriber,
	repo contract.ProposalSessionRepository,
	runner *proposal.Runner,
	activity IActivityPublisher,
	logger logger.ILogger,
) ITurnConsumerService {
	return &turnConsumerService{
		subscriber: subscriber,
		repo:       repo,
		runner:     runner,
		activity:   activity,
		logger:     logger,
		cancels:    make(map[string]context.CancelFunc),
	}
}

func (cs *turnConsumerService) Start(sessionID string) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if _, running := cs.cancels[sessionID]; running {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	messages, err := cs.subscriber.Subscribe(ctx, constant.TurnTopic(sessionID))
	if err != nil {
		cancel()
		return err
	}
	cs.cancels[sessionID] = cancel

	cs.wg.Add(1)
	go func() {
		defer cs.wg.Done()
		seq := newTurnSequencer()
		for msg := range messages {
			cs.processMessage(ctx, seq, msg)
		}
	}()

	return nil
}

// Stop cancels the session's consumer; a turn in flight stops before its next effect.
func (cs *turnConsumerService) Stop(sessionID string) {
	cs.mu.Lock()
	cancel, ok := cs.cancels[sessionID]
	delete(cs.cancels, sessionID)
	cs.mu.Unlock()

	if ok {
		cancel()
	}
}

func (cs *turnConsumerService) StopAll() {
	cs.mu.Lock()
	for id, cancel := range cs.cancels {
		cancel()
		delete(cs.cancels, id)
	}
	cs.mu.Unlock()

	cs.wg.Wait()
}

func (cs *turnConsumerService) processMessage(ctx context.Context, seq *turnSequencer, msg *message.Message) {
	// Turns are never retried: replaying one would advance the cursor twice.
	defer msg.Ack()

	var turn dto.PublishTurnMessage
	if err := json.Unmarshal(msg.Payload, &turn); err != nil {
		cs.logger.Error("TURN", "Failed to unmarshal turn message", map[string]interface{}{"error": err.Error()})
		return
	}

	ready, stale := seq.release(turn)
	if stale {
		cs.logger.Warn("TURN", "Dropping already processed turn", map[string]interface{}{
			"session_id": turn.SessionId,
			"seq":        turn.Seq,
		})
		return
	}
	for _, t := range ready {
		cs.runTurn(ctx, t)
	}
}

func (cs *turnConsumerService) runTurn(ctx context.Context, turn dto.PublishTurnMessage) {
	session, ok := cs.repo.Get(turn.SessionId)
	if !ok {
		cs.logger.Warn("TURN", "Dropping turn for unknown session", map[string]interface{}{"session_id": turn.SessionId})
		return
	}

	var (
		plan proposal.Plan
		err  error
	)
	switch turn.Kind {
	case constant.TurnKindMessage:
		plan, err = cs.runner.MessageTurn(ctx, session.Session)
	case constant.TurnKindUpload:
		plan, err = cs.runner.UploadTurn(ctx, session.Session, turn.DocumentId)
	default:
		cs.logger.Warn("TURN", "Unknown turn kind", map[string]interface{}{"kind": turn.Kind})
		return
	}

	if err != nil {
		cs.logger.Warn("TURN", "Turn interrupted", map[string]interface{}{
			"session_id": turn.SessionId,
			"kind":       turn.Kind,
			"error":      err.Error(),
		})
		return
	}

	state := session.State()
	cs.logger.Info("TURN", "Turn completed", map[string]interface{}{
		"session_id": turn.SessionId,
		"kind":       turn.Kind,
		"step":       plan.Step,
		"effects":    len(plan.Effects),
		"step_index": state.StepIndex,
	})
	cs.activity.Publish(ctx, events.TurnCompleted, turn.SessionId, map[string]interface{}{
		"kind":       turn.Kind,
		"step":       plan.Step,
		"effects":    len(plan.Effects),
		"step_index": state.StepIndex,
	})
}

// turnSequencer holds back turns that arrive ahead of their predecessors.
// Unsequenced turns pass straight through.
type turnSequencer struct {
	next    uint64
	pending map[uint64]dto.PublishTurnMessage
}

func newTurnSequencer() *turnSequencer {
	return &turnSequencer{next: 1, pending: make(map[uint64]dto.PublishTurnMessage)}
}

// release returns the turns that may run now, in order. stale reports a
// sequence number that has already been released.
func (q *turnSequencer) release(turn dto.PublishTurnMessage) (ready []dto.PublishTurnMessage, stale bool) {
	if turn.Seq == 0 {
		return []dto.PublishTurnMessage{turn}, false
	}
	if turn.Seq < q.next {
		return nil, true
	}
	if _, dup := q.pending[turn.Seq]; dup {
		return nil, true
	}

	q.pending[turn.Seq] = turn
	for {
		next, ok := q.pending[q.next]
		if !ok {
			return ready, false
		}
		delete(q.pending, q.next)
		q.next++
		ready = append(ready, next)
	}
}
