package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"rag-learning/internal/models"
	"rag-learning/pkg/config"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
)

// MediaExtractor covers the model-backed extraction paths.
type MediaExtractor interface {
	Transcribe(ctx context.Context, filePath string) (string, error)
	DescribeImage(ctx context.Context, filePath string) (string, error)
}

// ExtractionService turns a source file into raw text: go-fitz for PDFs,
// direct reads for text and JSON, the transcription endpoint for audio and
// video, the vision model for images.
type ExtractionService struct {
	media  MediaExtractor
	groq   *config.GroqConfig
	logger *zap.Logger
}

func NewExtractionService(media MediaExtractor, groq *config.GroqConfig, logger *zap.Logger) *ExtractionService {
	return &ExtractionService{
		media:  media,
		groq:   groq,
		logger: logger,
	}
}

// Classify maps a file to its document type, or ErrUnsupportedFormat.
func (s *ExtractionService) Classify(filePath string) (models.DocType, error) {
	docType, ok := models.ClassifyExtension(filePath)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filePath))
	}
	return docType, nil
}

// BuildMetadata assembles the chunk metadata for a source file before any
// extraction happens, so dedup can run first.
func (s *ExtractionService) BuildMetadata(filePath, title string, docType models.DocType) models.ChunkMetadata {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filePath)), ".")
	meta := models.ChunkMetadata{
		Source:         filepath.Base(filePath),
		Title:          title,
		Type:           docType,
		OriginalFormat: ext,
	}

	switch docType {
	case models.DocTypeAudio, models.DocTypeVideo:
		meta.TranscriptionModel = s.groq.TranscriptionModel
		meta.Provider = "groq"
	case models.DocTypeImage:
		meta.VisionModel = s.groq.VisionModel
		meta.Provider = "groq"
		if info, err := os.Stat(filePath); err == nil {
			meta.FileSizeBytes = info.Size()
		}
	}

	return meta
}

// Extract dispatches to the handler for one document type. One handler per
// variant; adding a format stays a localized change.
func (s *ExtractionService) Extract(ctx context.Context, filePath string, docType models.DocType) (string, error) {
	var (
		text string
		err  error
	)

	switch docType {
	case models.DocTypePDF:
		text, err = s.extractPDF(filePath)
	case models.DocTypeText:
		text, err = s.readTextFile(filePath)
	case models.DocTypeJSON:
		text, err = s.readJSONFile(filePath)
	case models.DocTypeAudio, models.DocTypeVideo:
		text, err = s.media.Transcribe(ctx, filePath)
	case models.DocTypeImage:
		text, err = s.media.DescribeImage(ctx, filePath)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, docType)
	}
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	s.logger.Info("Text extracted",
		zap.String("file", filepath.Base(filePath)),
		zap.String("type", string(docType)),
		zap.Int("text_length", len(text)),
	)

	return text, nil
}

func (s *ExtractionService) extractPDF(pdfPath string) (string, error) {
	doc, err := fitz.New(pdfPath)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	var pages []string
	for i := 0; i < doc.NumPage(); i++ {
		pageText, err := doc.Text(i)
		if err != nil {
			s.logger.Warn("Failed to extract text from page",
				zap.Int("page", i+1),
				zap.String("file", pdfPath),
				zap.Error(err),
			)
			continue
		}
		pages = append(pages, pageText)
	}

	return strings.Join(pages, "\n\n"), nil
}

func (s *ExtractionService) readTextFile(filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read text file: %w", err)
	}
	return string(data), nil
}

// readJSONFile re-indents valid JSON so the structure survives chunking;
// invalid JSON is ingested as plain text.
func (s *ExtractionService) readJSONFile(filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read JSON file: %w", err)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, "", "  "); err != nil {
		return string(data), nil
	}
	return pretty.String(), nil
}
