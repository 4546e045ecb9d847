package dto

import "rag-learning/internal/models"

type StartConversationResponse struct {
	ConversationID int64 `json:"conversation_id"`
}

type ChatRequest struct {
	ConversationID *int64 `json:"conversation_id,omitempty"`
	Message        string `json:"message"`
	TopK           int    `json:"top_k,omitempty"`
}

type ChatResponse struct {
	ConversationID int64         `json:"conversation_id"`
	Answer         string        `json:"answer"`
	History        []models.Turn `json:"history"`
}
