package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"rag-learning/pkg/config"

	"go.uber.org/zap"
)

// Completer produces one assistant message from a system and user prompt.
type Completer interface {
	Complete(ctx context.Context, model, systemPrompt, userPrompt string, temperature float64) (string, error)
}

// LLMService talks to the Groq API: chat completions for answering,
// analysis and content scripting, plus the media endpoints used during
// ingestion (audio/video transcription, image description).
type LLMService struct {
	config     *config.GroqConfig
	httpClient *http.Client
	logger     *zap.Logger
}

func NewLLMService(cfg *config.GroqConfig, logger *zap.Logger) *LLMService {
	return &LLMService{
		config:     cfg,
		httpClient: &http.Client{},
		logger:     logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete runs one chat completion and returns the assistant text,
// trimmed. Non-2xx responses and timeouts surface as errors; there is no
// retry at this layer.
func (s *LLMService) Complete(ctx context.Context, model, systemPrompt, userPrompt string, temperature float64) (string, error) {
	payload := map[string]any{
		"model":       model,
		"temperature": temperature,
		"messages": []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	}

	content, err := s.chatRequest(ctx, payload, s.config.ChatTimeout)
	if err != nil {
		return "", err
	}

	s.logger.Debug("Chat completion finished",
		zap.String("model", model),
		zap.Int("response_length", len(content)),
	)

	return content, nil
}

// Transcribe uploads an audio or video file to the transcription endpoint
// and returns the transcript text.
func (s *LLMService) Transcribe(ctx context.Context, filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open media file: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("failed to copy media file: %w", err)
	}

	fields := map[string]string{
		"model":           s.config.TranscriptionModel,
		"temperature":     "0",
		"response_format": "json",
		"language":        "pt",
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return "", fmt.Errorf("failed to write form field %s: %w", name, err)
		}
	}

	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.MediaTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.TranscriptionEndpoint, &body)
	if err != nil {
		return "", fmt.Errorf("failed to create transcription request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("transcription failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode transcription response: %w", err)
	}

	text := strings.TrimSpace(out.Text)
	s.logger.Info("Media transcribed",
		zap.String("file", filepath.Base(filePath)),
		zap.Int("text_length", len(text)),
	)

	return text, nil
}

// DescribeImage sends an image inline as a data URL to the vision model and
// returns its description plus any transcribed text.
func (s *LLMService) DescribeImage(ctx context.Context, filePath string) (string, error) {
	imgBytes, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(filePath))
	dataURL := fmt.Sprintf("data:%s;base64,%s", guessImageMIME(ext), base64.StdEncoding.EncodeToString(imgBytes))

	systemPrompt := "Você é um assistente que analisa imagens.\n" +
		"Responda SEMPRE em português do Brasil.\n" +
		"1) Descreva em detalhes o que aparece na imagem.\n" +
		"2) Se houver texto legível, transcreva-o.\n" +
		"3) Se for documento, faça um resumo estrutural."

	userPrompt := "Analise cuidadosamente a imagem enviada. " +
		"Descreva o conteúdo visual e transcreva qualquer texto legível."

	payload := map[string]any{
		"model": s.config.VisionModel,
		"messages": []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: []map[string]any{
				{"type": "text", "text": userPrompt},
				{"type": "image_url", "image_url": map[string]any{"url": dataURL, "detail": "high"}},
			}},
		},
		"temperature": 0.2,
		"max_tokens":  2048,
	}

	content, err := s.chatRequest(ctx, payload, s.config.MediaTimeout)
	if err != nil {
		return "", err
	}

	s.logger.Info("Image described",
		zap.String("file", filepath.Base(filePath)),
		zap.Int("text_length", len(content)),
	)

	return content, nil
}

func (s *LLMService) chatRequest(ctx context.Context, payload map[string]any, timeout time.Duration) (string, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.ChatEndpoint, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("chat request failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("failed to decode chat response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no response from LLM")
	}

	return strings.TrimSpace(chatResp.Choices[0].Message.Content), nil
}

func guessImageMIME(ext string) string {
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	case ".bmp":
		return "image/bmp"
	case ".tif", ".tiff":
		return "image/tiff"
	default:
		return "image/jpeg"
	}
}
