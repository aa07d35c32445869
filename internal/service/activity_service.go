package service

import (
	"context"
	"time"

	"grant-assistant-be/internal/pkg/logger"
	"grant-assistant-be/pkg/events"
	pktNats "grant-assistant-be/pkg/nats"
	"grant-assistant-be/pkg/proposal"
)

// EventPublisher is satisfied by *pktNats.Publisher.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// IActivityPublisher emits domain events about proposal sessions. It also
// observes the runner so every scripted effect becomes an event.
type IActivityPublisher interface {
	proposal.Observer
	Publish(ctx context.Context, eventType, sessionID string, data map[string]interface{})
}

type activityPublisher struct {
	publisher EventPublisher
	logger    logger.ILogger
}

// NewActivityPublisher accepts a nil publisher; events are then dropped.
func NewActivityPublisher(publisher EventPublisher, logger logger.ILogger) IActivityPublisher {
	return &activityPublisher{publisher: publisher, logger: logger}
}

func (p *activityPublisher) Publish(ctx context.Context, eventType, sessionID string, data map[string]interface{}) {
	if p.publisher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()

	evt := events.NewSessionEvent(eventType, sessionID, data)
	if err := p.publisher.Publish(ctx, evt); err != nil {
		p.logger.Error("ACTIVITY", "Failed to publish "+eventType+" event", map[string]interface{}{"error": err.Error()})
	}
}

func (p *activityPublisher) EffectApplied(ctx context.Context, s *proposal.Session, applied proposal.Applied) {
	if !applied.Changed {
		return
	}

	switch applied.Effect.Kind {
	case proposal.EffectAppendEntry:
		p.Publish(ctx, events.EntryAppended, s.ID, map[string]interface{}{
			"entry_id": applied.Entry.ID,
			"role":     string(applied.Entry.Role),
		})
	case proposal.EffectPatchSection:
		p.Publish(ctx, events.SectionUpdated, s.ID, map[string]interface{}{
			"section_id": applied.Section.ID,
			"status":     string(applied.Section.Status),
		})
	case proposal.EffectInsertSection:
		p.Publish(ctx, events.SectionInserted, s.ID, map[string]interface{}{
			"section_id": applied.Section.ID,
			"title":      applied.Section.Title,
		})
	case proposal.EffectRegisterDocument:
		p.Publish(ctx, events.DocumentUploaded, s.ID, map[string]interface{}{
			"document_id": applied.Document.ID,
			"name":        applied.Document.Name,
		})
	case proposal.EffectMarkAnalyzed:
		p.Publish(ctx, events.DocumentAnalyzed, s.ID, map[string]interface{}{
			"document_id": applied.Document.ID,
		})
	}
}

// ActivityService consumes the event stream into the activity log.
type ActivityService struct {
	subscriber *pktNats.Subscriber
	logger     logger.ILogger
}

func NewActivityService(subscriber *pktNats.Subscriber, activityLogger logger.ILogger) *ActivityService {
	return &ActivityService{subscriber: subscriber, logger: activityLogger}
}

func (s *ActivityService) Start(ctx context.Context) error {
	return s.subscriber.Subscribe(ctx, pktNats.SubjectPrefix+".>", "activity-log", s.Handle)
}

func (s *ActivityService) Handle(_ context.Context, event events.Event) error {
	details := make(map[string]interface{}, len(event.Payload())+1)
	for k, v := range event.Payload() {
		details[k] = v
	}
	details["occurred_at"] = event.Timestamp()

	s.logger.Info("ACTIVITY", event.EventType(), details)
	return nil
}
