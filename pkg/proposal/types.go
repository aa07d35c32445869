package proposal

import "time"

// Role identifies who authored a chat entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// SectionStatus is advisory: incomplete -> in-progress -> complete, but any patch may set any value.
type SectionStatus string

const (
	StatusIncomplete SectionStatus = "incomplete"
	StatusInProgress SectionStatus = "in-progress"
	StatusComplete   SectionStatus = "complete"
)

// ChatEntry is one immutable line of the transcript.
type ChatEntry struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	AudioRef  string    `json:"audio_ref,omitempty"`
}

// Section is one subdivision of the proposal tracked on the checklist.
type Section struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Content     string        `json:"content"`
	Status      SectionStatus `json:"status"`
	AIGenerated bool          `json:"ai_generated"`
	IsCustom    bool          `json:"is_custom"`
	CanDelete   bool          `json:"can_delete"`
	Sources     []string      `json:"sources,omitempty"`
}

// SectionPatch is a partial update. Nil fields are left untouched.
type SectionPatch struct {
	SectionID string
	Status    *SectionStatus
	Content   *string
}

// DocumentRecord describes an uploaded file. Only Analyzed ever changes.
type DocumentRecord struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	MimeType   string    `json:"mime_type"`
	SizeBytes  int64     `json:"size_bytes"`
	UploadedAt time.Time `json:"uploaded_at"`
	Analyzed   bool      `json:"analyzed"`
}

// FileMeta is what the caller knows about a file at upload time.
type FileMeta struct {
	Name      string
	MimeType  string
	SizeBytes int64
}

// Progress counts completed sections against the board size.
type Progress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// Percent returns Completed/Total*100, or 0 for an empty board.
func (p Progress) Percent() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Completed) / float64(p.Total) * 100
}

// StatusPtr and StringPtr keep script literals short.
func StatusPtr(s SectionStatus) *SectionStatus { return &s }

func StringPtr(s string) *string { return &s }
