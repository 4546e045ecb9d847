package dto

import "rag-learning/internal/models"

type IngestResponse struct {
	Skipped        bool                 `json:"skipped"`
	Reason         string               `json:"reason,omitempty"`
	InsertedChunks int                  `json:"inserted_chunks"`
	Metadata       models.ChunkMetadata `json:"metadata"`
}
