package service

import (
	"context"

	"rag-learning/internal/models"
)

type fakeEmbedder struct {
	embedFn func(ctx context.Context, texts []string) ([][]float32, error)
	calls   int
}

func (f *fakeEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	return f.embedFn(ctx, texts)
}

type fakeCompleter struct {
	completeFn func(ctx context.Context, model, systemPrompt, userPrompt string, temperature float64) (string, error)
	calls      int
	lastUser   string
	lastModel  string
}

func (f *fakeCompleter) Complete(ctx context.Context, model, systemPrompt, userPrompt string, temperature float64) (string, error) {
	f.calls++
	f.lastUser = userPrompt
	f.lastModel = model
	return f.completeFn(ctx, model, systemPrompt, userPrompt, temperature)
}

type fakeRetriever struct {
	searchFn func(ctx context.Context, query string, k int) ([]models.SearchResult, error)
	queries  []string
	ks       []int
}

func (f *fakeRetriever) Search(ctx context.Context, query string, k int) ([]models.SearchResult, error) {
	f.queries = append(f.queries, query)
	f.ks = append(f.ks, k)
	return f.searchFn(ctx, query, k)
}

type fakeChunkStore struct {
	hasSourceFn func(ctx context.Context, source string, docType models.DocType) (bool, error)
	inserted    []insertedChunk
	insertErr   error
}

type insertedChunk struct {
	content   string
	metadata  models.ChunkMetadata
	embedding []float32
}

func (f *fakeChunkStore) HasSource(ctx context.Context, source string, docType models.DocType) (bool, error) {
	if f.hasSourceFn != nil {
		return f.hasSourceFn(ctx, source, docType)
	}
	return false, nil
}

func (f *fakeChunkStore) InsertChunk(ctx context.Context, content string, metadata models.ChunkMetadata, embedding []float32) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, insertedChunk{content: content, metadata: metadata, embedding: embedding})
	return nil
}

type fakeExtractor struct {
	classifyFn func(filePath string) (models.DocType, error)
	extractFn  func(ctx context.Context, filePath string, docType models.DocType) (string, error)
}

func (f *fakeExtractor) Classify(filePath string) (models.DocType, error) {
	return f.classifyFn(filePath)
}

func (f *fakeExtractor) BuildMetadata(filePath, title string, docType models.DocType) models.ChunkMetadata {
	return models.ChunkMetadata{Source: filePath, Title: title, Type: docType}
}

func (f *fakeExtractor) Extract(ctx context.Context, filePath string, docType models.DocType) (string, error) {
	return f.extractFn(ctx, filePath, docType)
}

type fakeConversationStore struct {
	createFn  func(ctx context.Context) (int64, error)
	historyFn func(ctx context.Context, id int64) ([]models.Turn, error)
	saved     map[int64][]models.Turn
}

func newFakeConversationStore() *fakeConversationStore {
	return &fakeConversationStore{saved: make(map[int64][]models.Turn)}
}

func (f *fakeConversationStore) Create(ctx context.Context) (int64, error) {
	if f.createFn != nil {
		return f.createFn(ctx)
	}
	return 1, nil
}

func (f *fakeConversationStore) GetHistory(ctx context.Context, id int64) ([]models.Turn, error) {
	if f.historyFn != nil {
		return f.historyFn(ctx, id)
	}
	return f.saved[id], nil
}

func (f *fakeConversationStore) SaveHistory(ctx context.Context, id int64, history []models.Turn) error {
	f.saved[id] = history
	return nil
}

type fakeContentStore struct {
	inserted  []*models.PersonalizedContent
	insertErr error
}

func (f *fakeContentStore) InsertContent(ctx context.Context, content *models.PersonalizedContent) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	content.ID = int64(len(f.inserted) + 1)
	f.inserted = append(f.inserted, content)
	return nil
}

func (f *fakeContentStore) ListByConversation(ctx context.Context, conversationID int64) ([]*models.PersonalizedContent, error) {
	var out []*models.PersonalizedContent
	for _, c := range f.inserted {
		if c.ConversationID == conversationID {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeProfileStore struct {
	saveFn func(ctx context.Context, conversationID int64, preferredFormat string, history []models.Turn, assessments []models.CompetenceAssessment) (int64, error)
	saves  int
}

func (f *fakeProfileStore) SaveProfile(ctx context.Context, conversationID int64, preferredFormat string, history []models.Turn, assessments []models.CompetenceAssessment) (int64, error) {
	f.saves++
	if f.saveFn != nil {
		return f.saveFn(ctx, conversationID, preferredFormat, history, assessments)
	}
	return 42, nil
}
