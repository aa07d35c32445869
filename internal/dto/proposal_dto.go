package dto

import "time"

type ChatEntryResponse struct {
	Id        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	AudioUrl  string    `json:"audio_url,omitempty"`
}

type SectionResponse struct {
	Id          string   `json:"id"`
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Status      string   `json:"status"`
	AIGenerated bool     `json:"ai_generated"`
	IsCustom    bool     `json:"is_custom"`
	CanDelete   bool     `json:"can_delete"`
	Sources     []string `json:"sources,omitempty"`
}

type DocumentResponse struct {
	Id         string    `json:"id"`
	Name       string    `json:"name"`
	MimeType   string    `json:"mime_type"`
	SizeBytes  int64     `json:"size_bytes"`
	UploadedAt time.Time `json:"uploaded_at"`
	Analyzed   bool      `json:"analyzed"`
}

type ProgressResponse struct {
	Completed int     `json:"completed"`
	Total     int     `json:"total"`
	Percent   float64 `json:"percent"`
}

// SessionResponse is the full state of a proposal session; it is also the
// payload of every websocket snapshot frame.
type SessionResponse struct {
	Id           string              `json:"id"`
	CreatedAt    time.Time           `json:"created_at"`
	StepIndex    int                 `json:"step_index"`
	ScriptLength int                 `json:"script_length"`
	Done         bool                `json:"done"`
	Transcript   []ChatEntryResponse `json:"transcript"`
	Sections     []SectionResponse   `json:"sections"`
	Documents    []DocumentResponse  `json:"documents"`
	Progress     ProgressResponse    `json:"progress"`
}

type SendMessageRequest struct {
	Content string `json:"content" validate:"required,max=4000"`
}

type VoiceResponse struct {
	Appended bool               `json:"appended"`
	Entry    *ChatEntryResponse `json:"entry,omitempty"`
}

type PlayAudioFrame struct {
	EntryId  string `json:"entry_id,omitempty"`
	AudioUrl string `json:"audio_url"`
}

// PublishTurnMessage is queued on the session's turn topic. Seq counts from 1
// per session; zero means unsequenced.
type PublishTurnMessage struct {
	SessionId  string `json:"session_id"`
	Seq        uint64 `json:"seq,omitempty"`
	Kind       string `json:"kind"`
	DocumentId string `json:"document_id,omitempty"`
}
