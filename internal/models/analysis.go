package models

import (
	"strings"
	"time"
)

// Competence levels as the analysis model reports them (pt-BR).
const (
	LevelBasic        = "básico"
	LevelIntermediate = "intermediário"
	LevelAdvanced     = "avançado"
	LevelMastery      = "domina"
)

// SubtopicAnalysisFailed marks the synthetic assessment emitted when the
// model output could not be parsed as JSON.
const SubtopicAnalysisFailed = "ANALYSIS_FAILED"

// levelRanks maps a level to its remediation rank, lowest = weakest.
// Keys cover both accented and plain spellings since model output varies.
var levelRanks = map[string]int{
	"básico":        1,
	"basico":        1,
	"intermediário": 2,
	"intermediario": 2,
	"avançado":      3,
	"avancado":      3,
	"domina":        4,
}

// LevelRank returns the rank for a competence level, matching
// case-insensitively and tolerating missing diacritics. ok is false for
// levels outside the rubric.
func LevelRank(level string) (int, bool) {
	rank, ok := levelRanks[strings.ToLower(strings.TrimSpace(level))]
	return rank, ok
}

// CompetenceAssessment is the judged proficiency for one sub-topic.
// JSON keys match the analysis model's output contract.
type CompetenceAssessment struct {
	Subtopic      string `json:"subtema"`
	Level         string `json:"nivel"`
	Justification string `json:"justificativa"`
}

// Profile is one persisted analysis run over a conversation.
type Profile struct {
	ID              int64                  `db:"id"`
	ConversationID  int64                  `db:"conversation_id"`
	PreferredFormat string                 `db:"prefered_format"`
	RawHistory      []Turn                 `db:"raw_conversation"`
	Assessments     []CompetenceAssessment `db:"analysis"`
	CreatedAt       time.Time              `db:"created_at"`
}
