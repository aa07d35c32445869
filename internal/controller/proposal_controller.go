package controller

import (
	"grant-assistant-be/internal/constant"
	"grant-assistant-be/internal/dto"
	"grant-assistant-be/internal/pkg/serverutils"
	"grant-assistant-be/internal/service"
	"grant-assistant-be/pkg/proposal"

	"github.com/gofiber/fiber/v2"
)

type IProposalController interface {
	RegisterRoutes(r fiber.Router)
	CreateSession(ctx *fiber.Ctx) error
	GetSession(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
	SendMessage(ctx *fiber.Ctx) error
	UploadDocument(ctx *fiber.Ctx) error
	RemoveSection(ctx *fiber.Ctx) error
	AddSectionHint(ctx *fiber.Ctx) error
}

type proposalController struct {
	service service.IProposalService
}

func NewProposalController(service service.IProposalService) IProposalController {
	return &proposalController{service: service}
}

func (c *proposalController) RegisterRoutes(r fiber.Router) {
	h := r.Group(constant.APIBasePath + "/sessions")
	h.Post("", c.CreateSession)
	h.Get(":id", c.GetSession)
	h.Delete(":id", c.DeleteSession)
	h.Post(":id/messages", c.SendMessage)
	h.Post(":id/documents", c.UploadDocument)
	h.Post(":id/sections/hint", c.AddSectionHint)
	h.Delete(":id/sections/:sectionId", c.RemoveSection)
}

func (c *proposalController) CreateSession(ctx *fiber.Ctx) error {
	res, err := c.service.CreateSession(ctx.UserContext())
	if err != nil {
		return serviceError(err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create session", res))
}

func (c *proposalController) GetSession(ctx *fiber.Ctx) error {
	res, err := c.service.GetSession(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return serviceError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show session", res))
}

func (c *proposalController) DeleteSession(ctx *fiber.Ctx) error {
	if err := c.service.DeleteSession(ctx.UserContext(), ctx.Params("id")); err != nil {
		return serviceError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete session", nil))
}

func (c *proposalController) SendMessage(ctx *fiber.Ctx) error {
	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.BadRequest("Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SendMessage(ctx.UserContext(), ctx.Params("id"), &req)
	if err != nil {
		return serviceError(err)
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Message accepted", res))
}

func (c *proposalController) UploadDocument(ctx *fiber.Ctx) error {
	file, err := ctx.FormFile("file")
	if err != nil {
		return serverutils.BadRequest("Missing 'file' form field")
	}

	meta := proposal.FileMeta{
		Name:      file.Filename,
		MimeType:  file.Header.Get("Content-Type"),
		SizeBytes: file.Size,
	}

	res, err := c.service.UploadDocument(ctx.UserContext(), ctx.Params("id"), meta)
	if err != nil {
		return serviceError(err)
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Document uploaded", res))
}

func (c *proposalController) RemoveSection(ctx *fiber.Ctx) error {
	if err := c.service.RemoveSection(ctx.UserContext(), ctx.Params("id"), ctx.Params("sectionId")); err != nil {
		return serviceError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success remove section", nil))
}

func (c *proposalController) AddSectionHint(ctx *fiber.Ctx) error {
	res, err := c.service.AddSectionHint(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return serviceError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success add section hint", res))
}
