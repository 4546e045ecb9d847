package service

import (
	"context"
	"fmt"
	"strings"

	"rag-learning/internal/models"
	"rag-learning/pkg/config"

	"go.uber.org/zap"
)

const contentTemperature = 0.5

// selectionCriterion labels why a sub-topic was remediated, recorded with
// every generated row for auditability.
const selectionCriterion = "apenas níveis de maior dificuldade na análise"

const contentSystemPrompt = `Você é um especialista em educação e criação de conteúdos didáticos personalizados.

Seu trabalho:
- Criar um conteúdo focado em sanar dificuldades do aluno em um subtema específico.
- Usar APENAS o contexto fornecido (trechos da base de documentos).
- NÃO inventar fatos fora desse contexto.
- Ser claro, objetivo e em português do Brasil.

Formato de saída:
- Retorne ESTRITAMENTE um JSON válido com:
  {
    "title": "título curto e claro",
    "script": "roteiro ou texto completo"
  }`

// formatArchetypes maps a content format to the archetype named in the
// generation prompt.
var formatArchetypes = map[string]string{
	models.FormatVideo: "roteiro de vídeo curto explicativo",
	models.FormatAudio: "roteiro de áudio/podcast curto",
	models.FormatText:  "texto explicativo curto",
}

// ContentStore persists generated remedial content.
type ContentStore interface {
	InsertContent(ctx context.Context, content *models.PersonalizedContent) error
	ListByConversation(ctx context.Context, conversationID int64) ([]*models.PersonalizedContent, error)
}

// ContentService generates remedial content for the weakest competence
// tier found in an analysis.
type ContentService struct {
	retriever Retriever
	completer Completer
	store     ContentStore
	groq      *config.GroqConfig
	topK      int
	logger    *zap.Logger
}

func NewContentService(
	retriever Retriever,
	completer Completer,
	store ContentStore,
	groq *config.GroqConfig,
	ragCfg *config.RAGConfig,
	logger *zap.Logger,
) *ContentService {
	topK := ragCfg.ContentTopK
	if topK <= 0 {
		topK = 8
	}
	return &ContentService{
		retriever: retriever,
		completer: completer,
		store:     store,
		groq:      groq,
		topK:      topK,
		logger:    logger,
	}
}

// Generate selects the assessments at the weakest tier present, retrieves
// grounding per sub-topic, and produces one content row per
// (sub-topic, format) pair. Sub-topics without grounding are skipped; a
// generation whose output is not JSON falls back to the raw text as script.
func (s *ContentService) Generate(
	ctx context.Context,
	conversationID, analysisID int64,
	assessments []models.CompetenceAssessment,
	preferredFormat string,
) ([]*models.PersonalizedContent, error) {
	minRank, ok := minimumRank(assessments)
	if !ok {
		s.logger.Info("No rankable assessments, nothing to generate",
			zap.Int64("analysis_id", analysisID),
		)
		return nil, nil
	}

	formats := models.AllContentFormats
	if models.IsContentFormat(preferredFormat) {
		formats = []string{preferredFormat}
	}

	var generated []*models.PersonalizedContent

	for _, assessment := range assessments {
		subtopic := strings.TrimSpace(assessment.Subtopic)
		level := strings.TrimSpace(assessment.Level)
		if subtopic == "" || level == "" {
			continue
		}

		rank, ok := models.LevelRank(level)
		if !ok || rank != minRank {
			continue
		}

		// Grounding comes from the sub-topic itself, not the conversation.
		results, err := s.retriever.Search(ctx, subtopic, s.topK)
		if err != nil {
			return nil, err
		}
		if len(results) == 0 {
			s.logger.Warn("No grounding chunks for sub-topic, skipping",
				zap.String("subtopic", subtopic),
			)
			continue
		}

		context := BuildContext(results)
		sourceDocIDs := make([]int64, len(results))
		for i, r := range results {
			sourceDocIDs[i] = r.ID
		}

		for _, format := range formats {
			title, script, err := s.generateScript(ctx, subtopic, level, format, context, assessment.Justification)
			if err != nil {
				return nil, err
			}

			content := &models.PersonalizedContent{
				ConversationID: conversationID,
				AnalysisID:     analysisID,
				Subtopic:       subtopic,
				Level:          level,
				ContentFormat:  format,
				Title:          title,
				Script:         script,
				ExtraMetadata: models.ContentMetadata{
					Justification:      strings.TrimSpace(assessment.Justification),
					SourceDocIDs:       sourceDocIDs,
					ContextChunkCount:  len(results),
					RankUsed:           rank,
					SelectionCriterion: selectionCriterion,
				},
			}

			if err := s.store.InsertContent(ctx, content); err != nil {
				return nil, err
			}
			generated = append(generated, content)
		}
	}

	s.logger.Info("Personalized contents generated",
		zap.Int64("analysis_id", analysisID),
		zap.Int("count", len(generated)),
	)

	return generated, nil
}

func (s *ContentService) generateScript(ctx context.Context, subtopic, level, format, context, justification string) (string, string, error) {
	archetype, ok := formatArchetypes[strings.ToLower(format)]
	if !ok {
		archetype = formatArchetypes[models.FormatText]
	}

	if strings.TrimSpace(justification) == "" {
		justification = "(sem justificativa detalhada fornecida)"
	}

	userPrompt := fmt.Sprintf(`Subtema: %s
Nível atual do aluno (segundo análise): %s

Tipo de conteúdo desejado: %s

Justificativa/resumo das dificuldades do aluno:
%s

Contexto (trechos da base de conhecimento) – USE APENAS ESTA FONTE:
%s

Tarefa:
- Gere um conteúdo no formato especificado, explicando o subtema de forma acessível ao nível do aluno.
- Ajude o aluno a avançar, mas sem ser superficial.
- Use exemplos simples quando fizer sentido.
- Adote um tom amigável e motivador.

IMPORTANTE:
- Saída ESTRITAMENTE em JSON com os campos "title" e "script".
- Não inclua comentários, markdown ou texto fora do JSON.`,
		subtopic, level, archetype, justification, context)

	raw, err := s.completer.Complete(ctx, s.groq.LearningContentModel, contentSystemPrompt, userPrompt, contentTemperature)
	if err != nil {
		return "", "", err
	}

	type scriptPayload struct {
		Title  string `json:"title"`
		Script string `json:"script"`
	}

	outcome := decodeModelJSON[scriptPayload](raw)
	if !outcome.ok {
		// Degrade, don't fail: the raw output becomes the script.
		return "Conteúdo sobre " + subtopic, outcome.raw, nil
	}

	title := outcome.value.Title
	if title == "" {
		title = "Conteúdo sobre " + subtopic
	}

	return title, outcome.value.Script, nil
}

// ListByConversation returns everything generated for one conversation
// across all its analysis runs.
func (s *ContentService) ListByConversation(ctx context.Context, conversationID int64) ([]*models.PersonalizedContent, error) {
	return s.store.ListByConversation(ctx, conversationID)
}

// minimumRank finds the weakest tier present among the assessments.
// Unmapped levels are excluded; ok is false when none map.
func minimumRank(assessments []models.CompetenceAssessment) (int, bool) {
	minRank := 0
	found := false
	for _, a := range assessments {
		rank, ok := models.LevelRank(a.Level)
		if !ok {
			continue
		}
		if !found || rank < minRank {
			minRank = rank
			found = true
		}
	}
	return minRank, found
}
