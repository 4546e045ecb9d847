package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"rag-learning/internal/models"
	"rag-learning/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeMedia struct {
	transcribeFn func(ctx context.Context, filePath string) (string, error)
	describeFn   func(ctx context.Context, filePath string) (string, error)
}

func (f *fakeMedia) Transcribe(ctx context.Context, filePath string) (string, error) {
	return f.transcribeFn(ctx, filePath)
}

func (f *fakeMedia) DescribeImage(ctx context.Context, filePath string) (string, error) {
	return f.describeFn(ctx, filePath)
}

func newTestExtraction(media MediaExtractor) *ExtractionService {
	groq := &config.GroqConfig{
		TranscriptionModel: "test-whisper",
		VisionModel:        "test-vision",
	}
	return NewExtractionService(media, groq, zap.NewNop())
}

func TestClassify(t *testing.T) {
	svc := newTestExtraction(&fakeMedia{})

	cases := []struct {
		path string
		want models.DocType
	}{
		{"apostila.pdf", models.DocTypePDF},
		{"notas.TXT", models.DocTypeText},
		{"dados.json", models.DocTypeJSON},
		{"aula.mp3", models.DocTypeAudio},
		{"aula.wav", models.DocTypeAudio},
		{"aula.mp4", models.DocTypeVideo},
		{"aula.webm", models.DocTypeVideo},
		{"grafico.png", models.DocTypeImage},
		{"grafico.JPEG", models.DocTypeImage},
	}
	for _, tc := range cases {
		docType, err := svc.Classify(tc.path)
		require.NoError(t, err, tc.path)
		assert.Equal(t, tc.want, docType, tc.path)
	}

	_, err := svc.Classify("planilha.xlsx")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	_, err = svc.Classify("sem_extensao")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestBuildMetadata(t *testing.T) {
	svc := newTestExtraction(&fakeMedia{})

	meta := svc.BuildMetadata("/tmp/abc/apostila.pdf", "Apostila de Finanças", models.DocTypePDF)
	assert.Equal(t, "apostila.pdf", meta.Source)
	assert.Equal(t, "Apostila de Finanças", meta.Title)
	assert.Equal(t, "pdf", meta.OriginalFormat)
	assert.Empty(t, meta.Provider)

	meta = svc.BuildMetadata("/tmp/aula.mp3", "Aula", models.DocTypeAudio)
	assert.Equal(t, "test-whisper", meta.TranscriptionModel)
	assert.Equal(t, "groq", meta.Provider)
}

func TestBuildMetadataImageRecordsSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grafico.png")
	require.NoError(t, os.WriteFile(path, []byte("12345"), 0o644))

	meta := newTestExtraction(&fakeMedia{}).BuildMetadata(path, "Gráfico", models.DocTypeImage)

	assert.Equal(t, "test-vision", meta.VisionModel)
	assert.Equal(t, "groq", meta.Provider)
	assert.Equal(t, int64(5), meta.FileSizeBytes)
}

func TestExtractTextFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notas.txt")
	require.NoError(t, os.WriteFile(path, []byte("  Conteúdo do arquivo.  \n"), 0o644))

	text, err := newTestExtraction(&fakeMedia{}).Extract(context.Background(), path, models.DocTypeText)

	require.NoError(t, err)
	assert.Equal(t, "Conteúdo do arquivo.", text)
}

func TestExtractJSONIsPrettyPrinted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dados.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"tema":"juros","nivel":1}`), 0o644))

	text, err := newTestExtraction(&fakeMedia{}).Extract(context.Background(), path, models.DocTypeJSON)

	require.NoError(t, err)
	assert.Contains(t, text, "\"tema\"")
	assert.Contains(t, text, "\n")
}

func TestExtractMalformedJSONFallsBackToRaw(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dados.json")
	require.NoError(t, os.WriteFile(path, []byte("{tema: sem aspas}"), 0o644))

	text, err := newTestExtraction(&fakeMedia{}).Extract(context.Background(), path, models.DocTypeJSON)

	require.NoError(t, err)
	assert.Equal(t, "{tema: sem aspas}", text)
}

func TestExtractDispatchesMediaPaths(t *testing.T) {
	media := &fakeMedia{
		transcribeFn: func(ctx context.Context, filePath string) (string, error) {
			return "transcrição da aula", nil
		},
		describeFn: func(ctx context.Context, filePath string) (string, error) {
			return "descrição do gráfico", nil
		},
	}
	svc := newTestExtraction(media)

	text, err := svc.Extract(context.Background(), "aula.mp3", models.DocTypeAudio)
	require.NoError(t, err)
	assert.Equal(t, "transcrição da aula", text)

	text, err = svc.Extract(context.Background(), "aula.mp4", models.DocTypeVideo)
	require.NoError(t, err)
	assert.Equal(t, "transcrição da aula", text)

	text, err = svc.Extract(context.Background(), "grafico.png", models.DocTypeImage)
	require.NoError(t, err)
	assert.Equal(t, "descrição do gráfico", text)
}
