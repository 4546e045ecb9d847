package handlers

import (
	"errors"
	"strconv"
	"strings"

	"rag-learning/internal/dto"
	"rag-learning/internal/models"
	"rag-learning/internal/repository"
	"rag-learning/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ConversationHandler struct {
	orchestrator *service.Orchestrator
	logger       *zap.Logger
}

func NewConversationHandler(orchestrator *service.Orchestrator, logger *zap.Logger) *ConversationHandler {
	return &ConversationHandler{
		orchestrator: orchestrator,
		logger:       logger,
	}
}

// StartConversation godoc
// @Summary Start a diagnostic conversation
// @Description Create an empty conversation and return its identifier
// @Tags conversation
// @Produce json
// @Success 201 {object} dto.StartConversationResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/conversation/start [post]
func (h *ConversationHandler) StartConversation(c *fiber.Ctx) error {
	id, err := h.orchestrator.StartConversation(c.Context())
	if err != nil {
		h.logger.Error("Failed to start conversation", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to start conversation",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(dto.StartConversationResponse{
		ConversationID: id,
	})
}

// Chat godoc
// @Summary Send a message in a diagnostic conversation
// @Description Answer the student's message with a Socratic, retrieval-grounded reply and persist the turn
// @Tags conversation
// @Accept json
// @Produce json
// @Param request body dto.ChatRequest true "Chat request"
// @Success 200 {object} dto.ChatResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/conversation/chat [post]
func (h *ConversationHandler) Chat(c *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if strings.TrimSpace(req.Message) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Message is required",
		})
	}

	result, err := h.orchestrator.Chat(c.Context(), req.ConversationID, req.Message, req.TopK)
	if err != nil {
		if errors.Is(err, repository.ErrConversationNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Conversation not found",
			})
		}
		h.logger.Error("Failed to process chat message", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to process chat message",
		})
	}

	return c.JSON(dto.ChatResponse{
		ConversationID: result.ConversationID,
		Answer:         result.Answer,
		History:        result.History,
	})
}

// ListContents godoc
// @Summary List generated contents for a conversation
// @Description Return every personalized content row generated for the conversation, newest first
// @Tags conversation
// @Produce json
// @Param id path int true "Conversation ID"
// @Success 200 {array} models.PersonalizedContent
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/conversation/{id}/contents [get]
func (h *ConversationHandler) ListContents(c *fiber.Ctx) error {
	conversationID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid conversation ID",
		})
	}

	contents, err := h.orchestrator.ListContents(c.Context(), conversationID)
	if err != nil {
		if errors.Is(err, repository.ErrConversationNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Conversation not found",
			})
		}
		h.logger.Error("Failed to list contents",
			zap.Int64("conversation_id", conversationID),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list contents",
		})
	}

	if contents == nil {
		contents = []*models.PersonalizedContent{}
	}
	return c.JSON(contents)
}

// AnalyzeAndGenerate godoc
// @Summary Analyze a conversation and generate remedial content
// @Description Grade the student's competence per sub-topic, persist the profile, and generate study content for the weakest tier
// @Tags conversation
// @Accept json
// @Produce json
// @Param id path int true "Conversation ID"
// @Param request body dto.AnalyzeRequest false "Analysis options"
// @Success 200 {object} dto.AnalyzeResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/conversation/{id}/analyze-and-generate [post]
func (h *ConversationHandler) AnalyzeAndGenerate(c *fiber.Ctx) error {
	conversationID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid conversation ID",
		})
	}

	var req dto.AnalyzeRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}
	}

	if req.PreferredFormat != "" && !models.IsContentFormat(req.PreferredFormat) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid preferred format",
		})
	}

	result, err := h.orchestrator.AnalyzeAndGenerate(c.Context(), conversationID, req.PreferredFormat)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrConversationNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Conversation not found",
			})
		case errors.Is(err, service.ErrEmptyHistory):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Conversation has no turns to analyze",
			})
		}
		h.logger.Error("Failed to analyze conversation",
			zap.Int64("conversation_id", conversationID),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to analyze conversation",
		})
	}

	return c.JSON(dto.AnalyzeResponse{
		Analysis: result.Assessments,
		Contents: result.Contents,
	})
}
