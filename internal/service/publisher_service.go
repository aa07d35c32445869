package service

import (
	"context"
	"encoding/json"
	"sync"

	"grant-assistant-be/internal/constant"
	"grant-assistant-be/internal/dto"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

type IPublisherService interface {
	PublishTurn(ctx context.Context, turn dto.PublishTurnMessage) error
	Forget(sessionID string)
}

type publisherService struct {
	publisher message.Publisher

	mu  sync.Mutex
	seq map[string]uint64
}

func NewPublisherService(publisher message.Publisher) IPublisherService {
	return &publisherService{publisher: publisher, seq: make(map[string]uint64)}
}

// PublishTurn stamps the turn with the session's next sequence number and
// queues it on the session's topic. A failed publish does not use up a number.
func (s *publisherService) PublishTurn(ctx context.Context, turn dto.PublishTurnMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	turn.Seq = s.seq[turn.SessionId] + 1
	payload, err := json.Marshal(turn)
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	if err := s.publisher.Publish(constant.TurnTopic(turn.SessionId), msg); err != nil {
		return err
	}

	s.seq[turn.SessionId] = turn.Seq
	return nil
}

// Forget drops the counter of a session that is gone.
func (s *publisherService) Forget(sessionID string) {
	s.mu.Lock()
	delete(s.seq, sessionID)
	s.mu.Unlock()
}
