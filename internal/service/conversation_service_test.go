package service

import (
	"context"
	"testing"

	"rag-learning/internal/models"
	"rag-learning/internal/repository"
	"rag-learning/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestConversation(store *fakeConversationStore, retriever *fakeRetriever, completer *fakeCompleter) *ConversationService {
	groq := &config.GroqConfig{ChatModel: "test-chat-model"}
	ragCfg := &config.RAGConfig{TopK: 4}
	return NewConversationService(store, retriever, completer, groq, ragCfg, zap.NewNop())
}

func TestStepCreatesConversationWhenIDNil(t *testing.T) {
	store := newFakeConversationStore()
	store.createFn = func(ctx context.Context) (int64, error) { return 11, nil }
	retriever := &fakeRetriever{
		searchFn: func(context.Context, string, int) ([]models.SearchResult, error) {
			return []models.SearchResult{{Content: "juros compostos crescem exponencialmente"}}, nil
		},
	}
	completer := &fakeCompleter{
		completeFn: func(context.Context, string, string, string, float64) (string, error) {
			return "O que você acha que acontece com o montante ao longo do tempo?", nil
		},
	}

	result, err := newTestConversation(store, retriever, completer).Step(context.Background(), nil, "O que são juros compostos?", 5)

	require.NoError(t, err)
	assert.Equal(t, int64(11), result.ConversationID)
	require.Len(t, result.History, 1)
	assert.Equal(t, "O que são juros compostos?", result.History[0].Question)
	assert.Equal(t, result.Answer, result.History[0].Answer)
	assert.Equal(t, result.History, store.saved[11])
	assert.Equal(t, "test-chat-model", completer.lastModel)
}

func TestStepDefaultsRetrievalDepth(t *testing.T) {
	// An API request without top_k reaches Step as zero; retrieval must run
	// at the configured depth instead of LIMIT 0 returning nothing.
	corpus := []models.SearchResult{
		{ID: 1, Content: "juros compostos somam juros sobre juros"},
		{ID: 2, Content: "o montante cresce exponencialmente"},
	}
	retriever := &fakeRetriever{
		searchFn: func(ctx context.Context, query string, k int) ([]models.SearchResult, error) {
			if k < len(corpus) {
				return corpus[:k], nil
			}
			return corpus, nil
		},
	}
	completer := &fakeCompleter{
		completeFn: func(context.Context, string, string, string, float64) (string, error) {
			return "E o que acontece quando o prazo dobra?", nil
		},
	}
	svc := newTestConversation(newFakeConversationStore(), retriever, completer)

	for _, topK := range []int{0, -3} {
		result, err := svc.Step(context.Background(), nil, "O que são juros compostos?", topK)

		require.NoError(t, err)
		assert.NotEqual(t, EmptyRetrievalAnswer, result.Answer)
	}
	assert.Equal(t, []int{4, 4}, retriever.ks, "configured depth replaces non-positive top_k")
	assert.Equal(t, 2, completer.calls)
}

func TestStepExplicitTopKIsForwarded(t *testing.T) {
	retriever := &fakeRetriever{
		searchFn: func(context.Context, string, int) ([]models.SearchResult, error) {
			return []models.SearchResult{{Content: "trecho"}}, nil
		},
	}
	completer := &fakeCompleter{
		completeFn: func(context.Context, string, string, string, float64) (string, error) {
			return "resposta", nil
		},
	}
	svc := newTestConversation(newFakeConversationStore(), retriever, completer)

	_, err := svc.Step(context.Background(), nil, "Pergunta", 9)

	require.NoError(t, err)
	assert.Equal(t, []int{9}, retriever.ks)
}

func TestStepReleasesConversationLock(t *testing.T) {
	retriever := &fakeRetriever{
		searchFn: func(context.Context, string, int) ([]models.SearchResult, error) {
			return nil, nil
		},
	}
	svc := newTestConversation(newFakeConversationStore(), retriever, &fakeCompleter{})

	for i := 0; i < 3; i++ {
		_, err := svc.Step(context.Background(), nil, "Oi", 5)
		require.NoError(t, err)
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()
	assert.Empty(t, svc.locks, "idle lock entries must be evicted")
}

func TestStepEmptyRetrievalSkipsCompletion(t *testing.T) {
	store := newFakeConversationStore()
	retriever := &fakeRetriever{
		searchFn: func(context.Context, string, int) ([]models.SearchResult, error) {
			return nil, nil
		},
	}
	completer := &fakeCompleter{
		completeFn: func(context.Context, string, string, string, float64) (string, error) {
			t.Fatal("completion must not run on empty retrieval")
			return "", nil
		},
	}

	result, err := newTestConversation(store, retriever, completer).Step(context.Background(), nil, "Tema fora da base", 5)

	require.NoError(t, err)
	assert.Equal(t, EmptyRetrievalAnswer, result.Answer)
	assert.Zero(t, completer.calls)
	// The turn is still persisted so the analysis sees the attempt.
	require.Len(t, store.saved[result.ConversationID], 1)
	assert.Equal(t, EmptyRetrievalAnswer, store.saved[result.ConversationID][0].Answer)
}

func TestStepUnknownConversation(t *testing.T) {
	store := newFakeConversationStore()
	store.historyFn = func(ctx context.Context, id int64) ([]models.Turn, error) {
		return nil, repository.ErrConversationNotFound
	}

	id := int64(999)
	_, err := newTestConversation(store, &fakeRetriever{}, &fakeCompleter{}).Step(context.Background(), &id, "Oi", 5)

	assert.ErrorIs(t, err, repository.ErrConversationNotFound)
}

func TestStepAppendsToExistingHistory(t *testing.T) {
	store := newFakeConversationStore()
	store.saved[3] = []models.Turn{{Question: "Pergunta um", Answer: "Resposta um"}}
	retriever := &fakeRetriever{
		searchFn: func(context.Context, string, int) ([]models.SearchResult, error) {
			return []models.SearchResult{{Content: "contexto"}}, nil
		},
	}
	completer := &fakeCompleter{
		completeFn: func(context.Context, string, string, string, float64) (string, error) {
			return "Resposta dois", nil
		},
	}

	id := int64(3)
	result, err := newTestConversation(store, retriever, completer).Step(context.Background(), &id, "Pergunta dois", 5)

	require.NoError(t, err)
	require.Len(t, result.History, 2)
	assert.Equal(t, "Pergunta um", result.History[0].Question)
	assert.Equal(t, "Pergunta dois", result.History[1].Question)

	// Prior turns are serialized into the prompt, numbered from one.
	assert.Contains(t, completer.lastUser, "Turno 1:")
	assert.Contains(t, completer.lastUser, "Usuário: Pergunta um")
	assert.Contains(t, completer.lastUser, "Pergunta dois")
}

func TestBuildChatPromptFirstInteraction(t *testing.T) {
	prompt := buildChatPrompt(nil, "contexto qualquer", "Primeira pergunta")

	assert.Contains(t, prompt, "Nenhum histórico anterior. Esta é a primeira interação.")
	assert.Contains(t, prompt, "contexto qualquer")
	assert.Contains(t, prompt, "Primeira pergunta")
}
