package service

import (
	"context"

	"rag-learning/internal/models"

	"go.uber.org/zap"
)

// ProfileStore persists analysis runs.
type ProfileStore interface {
	SaveProfile(ctx context.Context, conversationID int64, preferredFormat string, history []models.Turn, assessments []models.CompetenceAssessment) (int64, error)
}

// AnalyzeResult bundles an analysis run with the contents it produced.
type AnalyzeResult struct {
	Assessments []models.CompetenceAssessment `json:"analysis"`
	Contents    []*models.PersonalizedContent `json:"contents"`
}

// Orchestrator sequences the services into the three user-facing
// operations: ingest, chat, analyze-and-generate.
type Orchestrator struct {
	ingestion     *IngestionService
	conversations *ConversationService
	analysis      *AnalysisService
	contents      *ContentService
	profiles      ProfileStore
	history       ConversationStore
	logger        *zap.Logger
}

func NewOrchestrator(
	ingestion *IngestionService,
	conversations *ConversationService,
	analysis *AnalysisService,
	contents *ContentService,
	profiles ProfileStore,
	history ConversationStore,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		ingestion:     ingestion,
		conversations: conversations,
		analysis:      analysis,
		contents:      contents,
		profiles:      profiles,
		history:       history,
		logger:        logger,
	}
}

// Ingest runs the ingestion pipeline for one uploaded file.
func (o *Orchestrator) Ingest(ctx context.Context, filePath, title string) (*IngestResult, error) {
	return o.ingestion.Ingest(ctx, filePath, title)
}

// StartConversation creates an empty conversation.
func (o *Orchestrator) StartConversation(ctx context.Context) (int64, error) {
	return o.conversations.Start(ctx)
}

// Chat advances one conversation turn; a nil id starts a new conversation.
func (o *Orchestrator) Chat(ctx context.Context, conversationID *int64, message string, topK int) (*ChatResult, error) {
	return o.conversations.Step(ctx, conversationID, message, topK)
}

// ListContents returns the generated contents for a conversation. The id
// must resolve to an existing conversation.
func (o *Orchestrator) ListContents(ctx context.Context, conversationID int64) ([]*models.PersonalizedContent, error) {
	if _, err := o.history.GetHistory(ctx, conversationID); err != nil {
		return nil, err
	}
	return o.contents.ListByConversation(ctx, conversationID)
}

// AnalyzeAndGenerate analyzes the conversation, persists the profile, and
// generates remedial content for the weakest tier. A conversation with no
// turns fails with ErrEmptyHistory.
func (o *Orchestrator) AnalyzeAndGenerate(ctx context.Context, conversationID int64, preferredFormat string) (*AnalyzeResult, error) {
	history, err := o.history.GetHistory(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, ErrEmptyHistory
	}

	assessments, err := o.analysis.Analyze(ctx, history)
	if err != nil {
		return nil, err
	}

	analysisID, err := o.profiles.SaveProfile(ctx, conversationID, preferredFormat, history, assessments)
	if err != nil {
		return nil, err
	}

	contents, err := o.contents.Generate(ctx, conversationID, analysisID, assessments, preferredFormat)
	if err != nil {
		return nil, err
	}

	o.logger.Info("Analysis and generation completed",
		zap.Int64("conversation_id", conversationID),
		zap.Int64("analysis_id", analysisID),
		zap.Int("assessments", len(assessments)),
		zap.Int("contents", len(contents)),
	)

	return &AnalyzeResult{Assessments: assessments, Contents: contents}, nil
}
