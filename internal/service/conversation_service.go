package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"rag-learning/internal/models"
	"rag-learning/pkg/config"

	"go.uber.org/zap"
)

// EmptyRetrievalAnswer is the fixed answer when no relevant chunk exists;
// the completion capability is not called in that case.
const EmptyRetrievalAnswer = "Não encontrei nada relevante na base de conhecimento para responder à sua pergunta."

const chatTemperature = 0.2

const chatSystemPrompt = `Você é um assistente conversacional especializado em interagir APENAS com base no contexto fornecido.
Se a resposta não estiver claramente contida nesse contexto, diga que não sabe com base nesse material.
Use o conteúdo para conduzir uma conversa fluida com o objetivo de identificar lacunas de conhecimento
do usuário sobre os temas do contexto.

Comece com perguntas mais fáceis e vá aumentando a complexidade quando perceber que o usuário domina o tema.
Não revele que está usando esse contexto como base de conhecimento.
Não dê aulas completas; seu foco é identificar lacunas, não ensinar tudo.
Responda em português do Brasil.`

// ConversationStore persists conversations and their turn history.
type ConversationStore interface {
	Create(ctx context.Context) (int64, error)
	GetHistory(ctx context.Context, conversationID int64) ([]models.Turn, error)
	SaveHistory(ctx context.Context, conversationID int64, history []models.Turn) error
}

// ChatResult is the outcome of one chat step.
type ChatResult struct {
	ConversationID int64         `json:"conversation_id"`
	Answer         string        `json:"answer"`
	History        []models.Turn `json:"history"`
}

// ConversationService threads multi-turn dialogue through retrieval and
// completion. Steps on the same conversation id are serialized in-process
// by a per-id lock; the stored history is a full overwrite either way.
type ConversationService struct {
	store     ConversationStore
	retriever Retriever
	completer Completer
	groq      *config.GroqConfig
	topK      int
	logger    *zap.Logger

	mu    sync.Mutex
	locks map[int64]*convLock
}

func NewConversationService(
	store ConversationStore,
	retriever Retriever,
	completer Completer,
	groq *config.GroqConfig,
	ragCfg *config.RAGConfig,
	logger *zap.Logger,
) *ConversationService {
	topK := ragCfg.TopK
	if topK <= 0 {
		topK = 5
	}
	return &ConversationService{
		store:     store,
		retriever: retriever,
		completer: completer,
		groq:      groq,
		topK:      topK,
		logger:    logger,
		locks:     make(map[int64]*convLock),
	}
}

// Start creates an empty conversation and returns its id.
func (s *ConversationService) Start(ctx context.Context) (int64, error) {
	return s.store.Create(ctx)
}

// Step runs one chat turn. A nil conversationID starts a new conversation;
// otherwise the id must resolve to an existing one. A topK of zero or less
// falls back to the configured retrieval depth.
func (s *ConversationService) Step(ctx context.Context, conversationID *int64, question string, topK int) (*ChatResult, error) {
	var (
		id      int64
		history []models.Turn
		err     error
	)

	if topK <= 0 {
		topK = s.topK
	}

	if conversationID == nil {
		id, err = s.store.Create(ctx)
		if err != nil {
			return nil, err
		}
	} else {
		id = *conversationID
	}

	lock := s.lockConversation(id)
	defer s.unlockConversation(id, lock)

	if conversationID != nil {
		history, err = s.store.GetHistory(ctx, id)
		if err != nil {
			return nil, err
		}
	}

	results, err := s.retriever.Search(ctx, question, topK)
	if err != nil {
		return nil, err
	}

	var answer string
	if len(results) == 0 {
		answer = EmptyRetrievalAnswer
	} else {
		userPrompt := buildChatPrompt(history, BuildContext(results), question)
		answer, err = s.completer.Complete(ctx, s.groq.ChatModel, chatSystemPrompt, userPrompt, chatTemperature)
		if err != nil {
			return nil, err
		}
	}

	history = append(history, models.Turn{Question: question, Answer: answer})
	if err := s.store.SaveHistory(ctx, id, history); err != nil {
		return nil, fmt.Errorf("failed to save conversation history: %w", err)
	}

	s.logger.Info("Chat step completed",
		zap.Int64("conversation_id", id),
		zap.Int("turns", len(history)),
		zap.Bool("empty_retrieval", len(results) == 0),
	)

	return &ChatResult{ConversationID: id, Answer: answer, History: history}, nil
}

// convLock is one per-conversation mutex carrying a waiter count, so the
// lock table can drop entries no step is using.
type convLock struct {
	mu   sync.Mutex
	refs int
}

func (s *ConversationService) lockConversation(id int64) *convLock {
	s.mu.Lock()
	lock, ok := s.locks[id]
	if !ok {
		lock = &convLock{}
		s.locks[id] = lock
	}
	lock.refs++
	s.mu.Unlock()

	lock.mu.Lock()
	return lock
}

func (s *ConversationService) unlockConversation(id int64, lock *convLock) {
	lock.mu.Unlock()

	s.mu.Lock()
	lock.refs--
	if lock.refs == 0 {
		delete(s.locks, id)
	}
	s.mu.Unlock()
}

// buildChatPrompt serializes the prior history turn by turn, then the
// retrieved context, then the current question.
func buildChatPrompt(history []models.Turn, context, question string) string {
	var historyText string
	if len(history) == 0 {
		historyText = "Nenhum histórico anterior. Esta é a primeira interação."
	} else {
		parts := make([]string, len(history))
		for i, turn := range history {
			parts[i] = fmt.Sprintf("Turno %d:\nUsuário: %s\nAssistente: %s", i+1, turn.Question, turn.Answer)
		}
		historyText = strings.Join(parts, "\n\n")
	}

	return fmt.Sprintf(
		"Histórico da conversa até agora:\n%s\n\nContexto (única fonte de informação nesta rodada):\n%s\n\nPergunta atual do usuário:\n%s",
		historyText, context, question,
	)
}
