package handler

import (
	"grant-assistant-be/internal/constant"
	"grant-assistant-be/internal/pkg/logger"
	"grant-assistant-be/internal/pkg/serverutils"
	"grant-assistant-be/internal/service"
	internalWS "grant-assistant-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/gofiber/websocket/v2"
)

// StreamHandler upgrades clients to a websocket that receives every state
// change of one proposal session.
type StreamHandler struct {
	service service.IProposalService
	hub     *internalWS.Hub
	logger  logger.ILogger
}

func NewStreamHandler(service service.IProposalService, hub *internalWS.Hub, log logger.ILogger) *StreamHandler {
	return &StreamHandler{
		service: service,
		hub:     hub,
		logger:  log,
	}
}

func (h *StreamHandler) ServeWs(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	// Params alias the pooled request buffer; the socket outlives this request.
	sessionID := utils.CopyString(c.Params("id"))
	snapshot, err := h.service.GetSession(c.UserContext(), sessionID)
	if err != nil {
		return serverutils.NotFound(err.Error())
	}

	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("StreamHandler", "Starting WebSocket session", map[string]interface{}{"session_id": sessionID})
		internalWS.ServeWs(h.hub, conn, sessionID, snapshot)
		h.logger.Info("StreamHandler", "WebSocket session ended", map[string]interface{}{"session_id": sessionID})
	})(c)
}

func (h *StreamHandler) RegisterRoutes(router fiber.Router) {
	router.Get(constant.APIBasePath+"/sessions/:id/ws", h.ServeWs)
}
