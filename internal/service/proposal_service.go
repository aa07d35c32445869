package service

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"grant-assistant-be/internal/constant"
	"grant-assistant-be/internal/dto"
	"grant-assistant-be/internal/entity"
	"grant-assistant-be/internal/mapper"
	"grant-assistant-be/internal/pkg/logger"
	"grant-assistant-be/internal/repository/contract"
	"grant-assistant-be/pkg/events"
	"grant-assistant-be/pkg/proposal"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrSectionNotFound     = errors.New("section not found")
	ErrSectionLocked       = errors.New("section cannot be deleted")
	ErrUnsupportedDocument = errors.New("only .pdf, .doc and .docx files are accepted")
)

type IProposalService interface {
	CreateSession(ctx context.Context) (*dto.SessionResponse, error)
	GetSession(ctx context.Context, sessionID string) (*dto.SessionResponse, error)
	DeleteSession(ctx context.Context, sessionID string) error
	SendMessage(ctx context.Context, sessionID string, req *dto.SendMessageRequest) (*dto.ChatEntryResponse, error)
	UploadDocument(ctx context.Context, sessionID string, meta proposal.FileMeta) (*dto.DocumentResponse, error)
	RemoveSection(ctx context.Context, sessionID, sectionID string) error
	AddSectionHint(ctx context.Context, sessionID string) (*dto.ChatEntryResponse, error)
}

type proposalService struct {
	repo         contract.ProposalSessionRepository
	runner       *proposal.Runner
	publisher    IPublisherService
	consumer     ITurnConsumerService
	notifier     ISessionNotifier
	activity     IActivityPublisher
	mapper       *mapper.ProposalMapper
	logger       logger.ILogger
	systemPrompt string
}

func NewProposalService(
	repo contract.ProposalSessionRepository,
	runner *proposal.Runner,
	publisher IPublisherService,
	consumer ITurnConsumerService,
	notifier ISessionNotifier,
	activity IActivityPublisher,
	mapper *mapper.ProposalMapper,
	logger logger.ILogger,
	systemPrompt string,
) IProposalService {
	s := &proposalService{
		repo:         repo,
		runner:       runner,
		publisher:    publisher,
		consumer:     consumer,
		notifier:     notifier,
		activity:     activity,
		mapper:       mapper,
		logger:       logger,
		systemPrompt: systemPrompt,
	}
	repo.OnExpired(s.expire)
	return s
}

func (c *proposalService) CreateSession(ctx context.Context) (*dto.SessionResponse, error) {
	session := entity.NewProposalSession(uuid.NewString(), c.systemPrompt)
	c.repo.Save(session)

	if err := c.consumer.Start(session.ID); err != nil {
		c.repo.Delete(session.ID)
		return nil, err
	}

	c.logger.Info("PROPOSAL", "Session created", map[string]interface{}{"session_id": session.ID})
	c.activity.Publish(ctx, events.SessionCreated, session.ID, nil)

	return c.toResponse(session), nil
}

func (c *proposalService) GetSession(ctx context.Context, sessionID string) (*dto.SessionResponse, error) {
	session, err := c.find(sessionID)
	if err != nil {
		return nil, err
	}
	return c.toResponse(session), nil
}

func (c *proposalService) DeleteSession(ctx context.Context, sessionID string) error {
	if !c.repo.Delete(sessionID) {
		return ErrSessionNotFound
	}
	c.consumer.Stop(sessionID)
	c.publisher.Forget(sessionID)
	c.notifier.Close(sessionID)

	c.activity.Publish(ctx, events.SessionDeleted, sessionID, nil)
	return nil
}

func (c *proposalService) SendMessage(ctx context.Context, sessionID string, req *dto.SendMessageRequest) (*dto.ChatEntryResponse, error) {
	session, err := c.find(sessionID)
	if err != nil {
		return nil, err
	}

	entry := c.runner.AcceptMessage(ctx, session.Session, strings.TrimSpace(req.Content))

	err = c.publisher.PublishTurn(ctx, dto.PublishTurnMessage{
		SessionId: sessionID,
		Kind:      constant.TurnKindMessage,
	})
	if err != nil {
		return nil, err
	}

	c.activity.Publish(ctx, events.MessageReceived, sessionID, map[string]interface{}{"entry_id": entry.ID})

	res := c.mapper.ToChatEntryResponse(entry)
	return &res, nil
}

func (c *proposalService) UploadDocument(ctx context.Context, sessionID string, meta proposal.FileMeta) (*dto.DocumentResponse, error) {
	session, err := c.find(sessionID)
	if err != nil {
		return nil, err
	}

	mimeType, ok := constant.AcceptedDocumentExtensions[strings.ToLower(filepath.Ext(meta.Name))]
	if !ok {
		return nil, ErrUnsupportedDocument
	}
	if meta.MimeType == "" || meta.MimeType == "application/octet-stream" {
		meta.MimeType = mimeType
	}

	doc := c.runner.AcceptUpload(ctx, session.Session, meta)

	err = c.publisher.PublishTurn(ctx, dto.PublishTurnMessage{
		SessionId:  sessionID,
		Kind:       constant.TurnKindUpload,
		DocumentId: doc.ID,
	})
	if err != nil {
		return nil, err
	}

	res := c.mapper.ToDocumentResponse(doc)
	return &res, nil
}

func (c *proposalService) RemoveSection(ctx context.Context, sessionID, sectionID string) error {
	session, err := c.find(sessionID)
	if err != nil {
		return err
	}

	section, ok := session.Board.Get(sectionID)
	if !ok {
		return ErrSectionNotFound
	}
	if !section.CanDelete {
		return ErrSectionLocked
	}

	if session.Board.Remove(sectionID) {
		c.notifier.PushSnapshot(session.Session)
		c.activity.Publish(ctx, events.SectionRemoved, sessionID, map[string]interface{}{
			"section_id": sectionID,
			"title":      section.Title,
		})
	}
	return nil
}

func (c *proposalService) AddSectionHint(ctx context.Context, sessionID string) (*dto.ChatEntryResponse, error) {
	session, err := c.find(sessionID)
	if err != nil {
		return nil, err
	}

	entry := c.runner.AppendSystem(ctx, session.Session, constant.AddSectionHint)

	res := c.mapper.ToChatEntryResponse(entry)
	return &res, nil
}

func (c *proposalService) find(sessionID string) (*entity.ProposalSession, error) {
	session, ok := c.repo.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (c *proposalService) toResponse(session *entity.ProposalSession) *dto.SessionResponse {
	return c.mapper.ToSessionResponse(session.Snapshot(), c.runner.Driver().Script().Len())
}

// expire runs when the repository drops an idle session.
func (c *proposalService) expire(sessionID string) {
	c.consumer.Stop(sessionID)
	c.publisher.Forget(sessionID)
	c.notifier.Close(sessionID)
	c.logger.Info("PROPOSAL", "Session expired", map[string]interface{}{"session_id": sessionID})
}
