package constant

const (
	APIBasePath = "/api/proposal/v1"

	TurnTopicPrefix = "proposal.turns."

	TurnKindMessage = "message"
	TurnKindUpload  = "upload"

	AddSectionHint = "To add a custom section, just tell me via voice or text what section you want to add!\n\n" +
		"For example: \"Add a section about elder involvement\" or \"Add a section for our timeline\""

	MaxMessageLength  = 4000
	MaxUploadBytes    = 25 << 20
	MaxRecordingBytes = 10 << 20
)

// AcceptedDocumentExtensions lists the upload types the file picker offers.
var AcceptedDocumentExtensions = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

func TurnTopic(sessionID string) string {
	return TurnTopicPrefix + sessionID
}
