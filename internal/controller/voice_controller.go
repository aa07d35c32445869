package controller

import (
	"io"

	"grant-assistant-be/internal/constant"
	"grant-assistant-be/internal/pkg/serverutils"
	"grant-assistant-be/internal/service"
	"grant-assistant-be/pkg/voice"

	"github.com/gofiber/fiber/v2"
)

type IVoiceController interface {
	RegisterRoutes(r fiber.Router)
	Converse(ctx *fiber.Ctx) error
	ResetConversation(ctx *fiber.Ctx) error
	PlayEntry(ctx *fiber.Ctx) error
	GetAudio(ctx *fiber.Ctx) error
}

type voiceController struct {
	service service.IVoiceService
}

func NewVoiceController(service service.IVoiceService) IVoiceController {
	return &voiceController{service: service}
}

func (c *voiceController) RegisterRoutes(r fiber.Router) {
	h := r.Group(constant.APIBasePath)
	h.Post("/sessions/:id/voice", c.Converse)
	h.Post("/sessions/:id/voice/reset", c.ResetConversation)
	h.Post("/sessions/:id/messages/:messageId/audio", c.PlayEntry)
	h.Get("/audio/:id", c.GetAudio)
}

func (c *voiceController) Converse(ctx *fiber.Ctx) error {
	file, err := ctx.FormFile("audio")
	if err != nil {
		return serverutils.BadRequest("Missing 'audio' form field")
	}
	if file.Size > constant.MaxRecordingBytes {
		return serverutils.NewAppError(fiber.StatusRequestEntityTooLarge, "Recording is too large")
	}

	f, err := file.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return err
	}

	res, err := c.service.Converse(ctx.UserContext(), ctx.Params("id"), voice.Recording{
		Filename: file.Filename,
		MimeType: file.Header.Get("Content-Type"),
		Data:     data,
	})
	if err != nil {
		return serviceError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Voice cycle finished", res))
}

func (c *voiceController) ResetConversation(ctx *fiber.Ctx) error {
	if err := c.service.ResetConversation(ctx.UserContext(), ctx.Params("id")); err != nil {
		return serviceError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Conversation history reset", nil))
}

func (c *voiceController) PlayEntry(ctx *fiber.Ctx) error {
	if err := c.service.PlayEntry(ctx.UserContext(), ctx.Params("id"), ctx.Params("messageId")); err != nil {
		return serviceError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Audio queued", nil))
}

func (c *voiceController) GetAudio(ctx *fiber.Ctx) error {
	clip, err := c.service.GetAudio(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return serviceError(err)
	}

	ctx.Set(fiber.HeaderContentType, clip.ContentType)
	ctx.Set(fiber.HeaderCacheControl, "private, max-age=3600")
	return ctx.Send(clip.Data)
}
