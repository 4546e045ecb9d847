package handlers

import (
	"errors"
	"os"
	"path/filepath"

	"rag-learning/internal/dto"
	"rag-learning/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type IngestHandler struct {
	orchestrator *service.Orchestrator
	logger       *zap.Logger
}

func NewIngestHandler(orchestrator *service.Orchestrator, logger *zap.Logger) *IngestHandler {
	return &IngestHandler{
		orchestrator: orchestrator,
		logger:       logger,
	}
}

// Ingest godoc
// @Summary Ingest a document into the knowledge base
// @Description Upload a PDF, text, JSON, audio, video, or image file; it is extracted, chunked, embedded, and stored
// @Tags ingestion
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Source file"
// @Param title formData string false "Human-readable title (defaults to the file name)"
// @Success 200 {object} dto.IngestResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/ingest [post]
func (h *IngestHandler) Ingest(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "File is required",
		})
	}

	title := c.FormValue("title")
	if title == "" {
		title = file.Filename
	}

	// Spill to a scratch directory keeping the original file name, since the
	// base name doubles as the dedup source key.
	scratchDir := filepath.Join(os.TempDir(), uuid.NewString())
	if err := os.MkdirAll(scratchDir, 0o755); err != nil {
		h.logger.Error("Failed to create scratch directory", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save uploaded file",
		})
	}
	defer os.RemoveAll(scratchDir)

	scratch := filepath.Join(scratchDir, filepath.Base(file.Filename))
	if err := c.SaveFile(file, scratch); err != nil {
		h.logger.Error("Failed to save uploaded file", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save uploaded file",
		})
	}

	result, err := h.orchestrator.Ingest(c.Context(), scratch, title)
	if err != nil {
		if errors.Is(err, service.ErrUnsupportedFormat) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		h.logger.Error("Failed to ingest file", zap.String("file", file.Filename), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to ingest file",
		})
	}

	return c.JSON(dto.IngestResponse{
		Skipped:        result.Skipped,
		Reason:         result.Reason,
		InsertedChunks: result.InsertedChunks,
		Metadata:       result.Metadata,
	})
}
