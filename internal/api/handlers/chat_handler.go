package handlers

import (
	"errors"
	"strings"
	"time"

	"mba-counselor/internal/dto"
	"mba-counselor/internal/models"
	"mba-counselor/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ChatHandler struct {
	chatService *service.ChatService
	sessions    *service.SessionStore
	turns       service.TurnStore
	store       service.SimilarityStore
	embedder    service.Embedder
	logger      *zap.Logger
}

func NewChatHandler(
	chatService *service.ChatService,
	sessions *service.SessionStore,
	turns service.TurnStore,
	store service.SimilarityStore,
	embedder service.Embedder,
	logger *zap.Logger,
) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		sessions:    sessions,
		turns:       turns,
		store:       store,
		embedder:    embedder,
		logger:      logger,
	}
}

// Chat godoc
// @Summary Send a message to the MBA counselor
// @Description Process one chat turn: extract preferences, search programs and return recommendations
// @Tags chat
// @Accept json
// @Produce json
// @Param request body dto.ChatRequest true "Chat message; omit session_id to start a new conversation"
// @Success 200 {object} dto.ChatResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/v1/chat [post]
func (h *ChatHandler) Chat(c *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "Invalid request body",
			Code:  "bad_request",
		})
	}

	if strings.TrimSpace(req.Message) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "Message is required",
			Code:  "bad_request",
		})
	}

	session, err := h.resolveSession(req.SessionID)
	if err != nil {
		if errors.Is(err, models.ErrInvalidSession) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: "Unknown session, please start a new conversation",
				Code:  "invalid_session",
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "Invalid session id",
			Code:  "bad_request",
		})
	}

	resp, err := h.chatService.Chat(c.Context(), session, req.Message)
	if err != nil {
		if errors.Is(err, models.ErrUpstreamUnavailable) {
			// the session stays valid, so a just-created id must still
			// reach the client for the retry
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Error:     "Recommendation backend is unavailable, please try again later",
				Code:      "upstream_unavailable",
				SessionID: session.ID.String(),
			})
		}
		h.logger.Error("Chat turn failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error:     "Failed to process message",
			Code:      "internal",
			SessionID: session.ID.String(),
		})
	}

	return c.JSON(resp)
}

// Reset godoc
// @Summary Reset a conversation
// @Description Clear a session's history and accumulated preferences
// @Tags chat
// @Accept json
// @Produce json
// @Param request body dto.ResetRequest true "Session to reset"
// @Success 200 {object} dto.ResetResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/chat/reset [post]
func (h *ChatHandler) Reset(c *fiber.Ctx) error {
	var req dto.ResetRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "Invalid request body",
			Code:  "bad_request",
		})
	}

	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "Invalid session id",
			Code:  "bad_request",
		})
	}

	if err := h.sessions.Reset(sessionID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: "Unknown session",
			Code:  "invalid_session",
		})
	}

	if err := h.turns.DeleteBySession(c.Context(), sessionID); err != nil {
		h.logger.Warn("Failed to delete persisted turns", zap.Error(err))
	}

	return c.JSON(dto.ResetResponse{
		Success: true,
		Message: "Conversation reset. Let's start fresh!",
	})
}

// Health godoc
// @Summary Service health
// @Description Report reachability of the database and the embedding provider
// @Tags system
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func (h *ChatHandler) Health(c *fiber.Ctx) error {
	resp := dto.HealthResponse{
		Status:     "healthy",
		Database:   "connected",
		Embeddings: "connected",
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}

	if err := h.store.Ping(c.Context()); err != nil {
		resp.Status = "degraded"
		resp.Database = "unreachable"
	}
	if err := h.embedder.Ping(c.Context()); err != nil {
		resp.Status = "degraded"
		resp.Embeddings = "unreachable"
	}

	return c.JSON(resp)
}

// resolveSession maps an optional session id to a session: empty id starts
// a new conversation, a malformed or unknown id is rejected.
func (h *ChatHandler) resolveSession(id string) (*service.Session, error) {
	if strings.TrimSpace(id) == "" {
		return h.sessions.Create(), nil
	}

	sessionID, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	return h.sessions.Get(sessionID)
}
