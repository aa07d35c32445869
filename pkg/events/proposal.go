package events

import "time"

const (
	SessionCreated   = "SESSION_CREATED"
	SessionDeleted   = "SESSION_DELETED"
	MessageReceived  = "MESSAGE_RECEIVED"
	TurnCompleted    = "TURN_COMPLETED"
	EntryAppended    = "ENTRY_APPENDED"
	SectionUpdated   = "SECTION_UPDATED"
	SectionInserted  = "SECTION_INSERTED"
	SectionRemoved   = "SECTION_REMOVED"
	DocumentUploaded = "DOCUMENT_UPLOADED"
	DocumentAnalyzed = "DOCUMENT_ANALYZED"
	VoiceCycleEnded  = "VOICE_CYCLE_ENDED"
)

// NewSessionEvent builds an event scoped to one proposal session.
func NewSessionEvent(eventType, sessionID string, data map[string]interface{}) BaseEvent {
	payload := make(map[string]interface{}, len(data)+1)
	for k, v := range data {
		payload[k] = v
	}
	payload["session_id"] = sessionID

	return BaseEvent{
		Type:       eventType,
		Data:       payload,
		OccurredAt: time.Now(),
	}
}
