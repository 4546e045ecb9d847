package dto

import "rag-learning/internal/models"

type AnalyzeRequest struct {
	PreferredFormat string `json:"preferred_format,omitempty"`
}

type AnalyzeResponse struct {
	Analysis []models.CompetenceAssessment `json:"analysis"`
	Contents []*models.PersonalizedContent `json:"contents"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
