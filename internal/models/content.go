package models

import "time"

// Content formats the generator can produce.
const (
	FormatVideo = "video"
	FormatAudio = "audio"
	FormatText  = "texto"
)

// AllContentFormats in generation order when no preference is given.
var AllContentFormats = []string{FormatVideo, FormatAudio, FormatText}

// IsContentFormat reports whether f is one of the known formats.
func IsContentFormat(f string) bool {
	return f == FormatVideo || f == FormatAudio || f == FormatText
}

// ContentMetadata records the provenance of one generated content row:
// which chunks grounded it and why the sub-topic was selected.
type ContentMetadata struct {
	Justification      string  `json:"justificativa"`
	SourceDocIDs       []int64 `json:"source_doc_ids"`
	ContextChunkCount  int     `json:"num_trechos_contexto"`
	RankUsed           int     `json:"nivel_rank_usado"`
	SelectionCriterion string  `json:"criterio_geracao"`
}

// PersonalizedContent is one generated remedial item, one row per
// (selected sub-topic, format) pair.
type PersonalizedContent struct {
	ID             int64           `db:"id" json:"id"`
	ConversationID int64           `db:"conversation_id" json:"conversation_id"`
	AnalysisID     int64           `db:"analysis_id" json:"analysis_id"`
	Subtopic       string          `db:"subtema" json:"subtema"`
	Level          string          `db:"nivel" json:"nivel"`
	ContentFormat  string          `db:"content_type" json:"content_type"`
	Title          string          `db:"title" json:"title"`
	Script         string          `db:"script" json:"script"`
	ExtraMetadata  ContentMetadata `db:"extra_metadata" json:"extra_metadata"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}
