package mapper

import (
	"grant-assistant-be/internal/constant"
	"grant-assistant-be/internal/dto"
	"grant-assistant-be/pkg/proposal"
)

type ProposalMapper struct {
	baseURL string
}

// NewProposalMapper builds audio links against baseURL (e.g. http://localhost:3000).
func NewProposalMapper(baseURL string) *ProposalMapper {
	return &ProposalMapper{baseURL: baseURL}
}

func (m *ProposalMapper) AudioURL(audioRef string) string {
	if audioRef == "" {
		return ""
	}
	return m.baseURL + constant.APIBasePath + "/audio/" + audioRef
}

func (m *ProposalMapper) ToChatEntryResponse(e proposal.ChatEntry) dto.ChatEntryResponse {
	return dto.ChatEntryResponse{
		Id:        e.ID,
		Role:      string(e.Role),
		Content:   e.Content,
		Timestamp: e.Timestamp,
		AudioUrl:  m.AudioURL(e.AudioRef),
	}
}

func (m *ProposalMapper) ToSectionResponse(s proposal.Section) dto.SectionResponse {
	return dto.SectionResponse{
		Id:          s.ID,
		Title:       s.Title,
		Content:     s.Content,
		Status:      string(s.Status),
		AIGenerated: s.AIGenerated,
		IsCustom:    s.IsCustom,
		CanDelete:   s.CanDelete,
		Sources:     s.Sources,
	}
}

func (m *ProposalMapper) ToDocumentResponse(d proposal.DocumentRecord) dto.DocumentResponse {
	return dto.DocumentResponse{
		Id:         d.ID,
		Name:       d.Name,
		MimeType:   d.MimeType,
		SizeBytes:  d.SizeBytes,
		UploadedAt: d.UploadedAt,
		Analyzed:   d.Analyzed,
	}
}

func (m *ProposalMapper) ToSessionResponse(snap proposal.Snapshot, scriptLength int) *dto.SessionResponse {
	res := &dto.SessionResponse{
		Id:           snap.ID,
		CreatedAt:    snap.CreatedAt,
		StepIndex:    snap.State.StepIndex,
		ScriptLength: scriptLength,
		Done:         snap.State.StepIndex >= scriptLength,
		Transcript:   make([]dto.ChatEntryResponse, 0, len(snap.Transcript)),
		Sections:     make([]dto.SectionResponse, 0, len(snap.Sections)),
		Documents:    make([]dto.DocumentResponse, 0, len(snap.Documents)),
		Progress: dto.ProgressResponse{
			Completed: snap.Progress.Completed,
			Total:     snap.Progress.Total,
			Percent:   snap.Progress.Percent(),
		},
	}

	for _, e := range snap.Transcript {
		res.Transcript = append(res.Transcript, m.ToChatEntryResponse(e))
	}
	for _, s := range snap.Sections {
		res.Sections = append(res.Sections, m.ToSectionResponse(s))
	}
	for _, d := range snap.Documents {
		res.Documents = append(res.Documents, m.ToDocumentResponse(d))
	}
	return res
}
