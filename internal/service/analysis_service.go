package service

import (
	"context"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"rag-learning/internal/models"
	"rag-learning/pkg/config"

	"go.uber.org/zap"
)

const analysisTemperature = 0.1

// rawFallbackLimit bounds how much raw model output lands in the synthetic
// assessment's justification.
const rawFallbackLimit = 500

const analysisSystemPrompt = `Você é um avaliador pedagógico.

Receberá o histórico de uma conversa entre um assistente e um aluno.
Seu objetivo é identificar os SUBTEMAS discutidos e avaliar o NÍVEL DE CONHECIMENTO do aluno em cada subtema.

Avalie o nível de domínio do aluno exclusivamente pelas respostas que ele dá às perguntas — considerando precisão, clareza e coerência.
Ignore qualquer autodeclaração do aluno sobre ser bom ou ruim em um assunto.
Baseie-se apenas no desempenho real dele nas respostas.

Níveis possíveis (APENAS estes):
- "básico"
- "intermediário"
- "avançado"
- "domina"

Definição resumida:
- básico: contato superficial, muitos erros conceituais.
- intermediário: entende conceitos principais, mas com lacunas.
- avançado: domina bem, poucas lacunas.
- domina: domínio profundo, quase como especialista.

Retorne ESTRITAMENTE um JSON válido.`

// AnalysisService judges per-sub-topic competence from the full turn
// history.
type AnalysisService struct {
	completer Completer
	groq      *config.GroqConfig
	logger    *zap.Logger
}

func NewAnalysisService(completer Completer, groq *config.GroqConfig, logger *zap.Logger) *AnalysisService {
	return &AnalysisService{
		completer: completer,
		groq:      groq,
		logger:    logger,
	}
}

// Analyze produces one assessment list for the given history. Output that
// fails to parse as JSON degrades into a single synthetic assessment so the
// pipeline can keep moving; it never fails the operation.
func (s *AnalysisService) Analyze(ctx context.Context, history []models.Turn) ([]models.CompetenceAssessment, error) {
	historyJSON, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode history: %w", err)
	}

	userPrompt := fmt.Sprintf(`A seguir está o histórico da conversa em formato JSON com campos "pergunta" e "resposta":

%s

Agora, produza um JSON no formato:

[
  {
    "subtema": "nome do subtema",
    "nivel": "básico|intermediário|avançado|domina",
    "justificativa": "texto curto explicando por que você atribuiu esse nível"
  }
]

Retorne APENAS o JSON.`, historyJSON)

	raw, err := s.completer.Complete(ctx, s.groq.ChatModel, analysisSystemPrompt, userPrompt, analysisTemperature)
	if err != nil {
		return nil, err
	}

	return parseAssessments(raw, s.logger), nil
}

// parseAssessments decodes the model output as a list, normalizing a bare
// object to a one-element list and anything unparseable to the synthetic
// failure marker.
func parseAssessments(raw string, logger *zap.Logger) []models.CompetenceAssessment {
	if list := decodeModelJSON[[]models.CompetenceAssessment](raw); list.ok {
		return list.value
	}

	if single := decodeModelJSON[models.CompetenceAssessment](raw); single.ok {
		return []models.CompetenceAssessment{single.value}
	}

	logger.Warn("Analysis output was not valid JSON, degrading to synthetic assessment",
		zap.Int("raw_length", len(raw)),
	)

	truncated := stripFences(raw)
	if len(truncated) > rawFallbackLimit {
		// Back off to a rune boundary so the stored justification stays
		// valid UTF-8.
		cut := rawFallbackLimit
		for cut > 0 && !utf8.RuneStart(truncated[cut]) {
			cut--
		}
		truncated = truncated[:cut]
	}

	return []models.CompetenceAssessment{{
		Subtopic: models.SubtopicAnalysisFailed,
		Level:    models.LevelBasic,
		Justification: "Não foi possível interpretar o JSON retornado pelo modelo. " +
			"Conteúdo bruto: " + truncated,
	}}
}
