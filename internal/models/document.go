package models

import (
	"path/filepath"
	"strings"
)

// DocType is the closed set of source material types the ingestion
// pipeline accepts. Adding a format means adding a variant here plus one
// extraction handler.
type DocType string

const (
	DocTypePDF   DocType = "pdf"
	DocTypeText  DocType = "text"
	DocTypeJSON  DocType = "json"
	DocTypeAudio DocType = "audio"
	DocTypeVideo DocType = "video"
	DocTypeImage DocType = "image"
)

var (
	audioExts = map[string]bool{".wav": true, ".mp3": true}
	videoExts = map[string]bool{".mp4": true, ".mpeg": true, ".mov": true, ".webm": true}
	imageExts = map[string]bool{
		".png": true, ".jpg": true, ".jpeg": true, ".webp": true,
		".bmp": true, ".gif": true, ".tiff": true,
	}
)

// ClassifyExtension maps a file path to its DocType by extension.
// Unknown extensions return false.
func ClassifyExtension(filePath string) (DocType, bool) {
	ext := strings.ToLower(filepath.Ext(filePath))
	switch {
	case ext == ".pdf":
		return DocTypePDF, true
	case ext == ".txt":
		return DocTypeText, true
	case ext == ".json":
		return DocTypeJSON, true
	case audioExts[ext]:
		return DocTypeAudio, true
	case videoExts[ext]:
		return DocTypeVideo, true
	case imageExts[ext]:
		return DocTypeImage, true
	default:
		return "", false
	}
}

// ChunkMetadata travels with every chunk of one source file. Source and
// Type form the natural key used for ingestion dedup.
type ChunkMetadata struct {
	Source             string  `json:"source"`
	Title              string  `json:"title,omitempty"`
	Type               DocType `json:"type"`
	OriginalFormat     string  `json:"original_format,omitempty"`
	TranscriptionModel string  `json:"transcription_model,omitempty"`
	VisionModel        string  `json:"vision_model,omitempty"`
	Provider           string  `json:"provider,omitempty"`
	FileSizeBytes      int64   `json:"file_size_bytes,omitempty"`
}

// DocumentChunk is one stored retrieval unit. Immutable once written.
type DocumentChunk struct {
	ID        int64         `db:"id"`
	Content   string        `db:"content"`
	Metadata  ChunkMetadata `db:"metadata"`
	Embedding []float32     `db:"embedding"`
}

// SearchResult is one nearest-neighbor hit, distance ascending from the
// query vector under the store's L2 metric.
type SearchResult struct {
	ID       int64         `json:"id"`
	Content  string        `json:"content"`
	Metadata ChunkMetadata `json:"metadata"`
	Distance float64       `json:"distance"`
}
