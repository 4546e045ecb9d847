package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	OpenRouter OpenRouterConfig
	Groq       GroqConfig
	RAG        RAGConfig
	Logger     LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// OpenRouterConfig configures the embedding provider.
type OpenRouterConfig struct {
	APIKey         string
	SiteURL        string
	AppName        string
	EmbeddingModel string
	EmbeddingDim   int
	Endpoint       string
	Timeout        time.Duration
}

// GroqConfig configures the completion provider. Transcription and vision
// calls share the account but get a much longer timeout than chat.
type GroqConfig struct {
	APIKey                string
	ChatModel             string
	LearningContentModel  string
	TranscriptionModel    string
	VisionModel           string
	ChatEndpoint          string
	TranscriptionEndpoint string
	ChatTimeout           time.Duration
	MediaTimeout          time.Duration
}

type RAGConfig struct {
	TopK         int
	ContentTopK  int
	MinWords     int
	MaxWords     int
	OverlapUnits int
}

func Load() (*Config, error) {
	// Try to load .env file from current directory or project root
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}
	// If no .env file was found, environment variables are used directly
	// (useful for Docker/K8s)

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "30"))
	embeddingDim, _ := strconv.Atoi(getEnv("EMBEDDING_DIM", "1536"))
	embedTimeout, _ := strconv.Atoi(getEnv("EMBEDDING_TIMEOUT", "60"))
	chatTimeout, _ := strconv.Atoi(getEnv("GROQ_CHAT_TIMEOUT", "120"))
	mediaTimeout, _ := strconv.Atoi(getEnv("GROQ_MEDIA_TIMEOUT", "600"))
	topK, _ := strconv.Atoi(getEnv("RAG_TOP_K", "5"))
	contentTopK, _ := strconv.Atoi(getEnv("RAG_CONTENT_TOP_K", "8"))
	minWords, _ := strconv.Atoi(getEnv("RAG_CHUNK_MIN_WORDS", "200"))
	maxWords, _ := strconv.Atoi(getEnv("RAG_CHUNK_MAX_WORDS", "400"))
	overlapUnits, _ := strconv.Atoi(getEnv("RAG_CHUNK_OVERLAP_UNITS", "1"))

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "rag_learning"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		OpenRouter: OpenRouterConfig{
			APIKey:         getEnv("OPENROUTER_API_KEY", ""),
			SiteURL:        getEnv("OPENROUTER_SITE_URL", ""),
			AppName:        getEnv("OPENROUTER_APP_NAME", "rag-learning-web"),
			EmbeddingModel: getEnv("EMBEDDING_MODEL_NAME", "openai/text-embedding-3-small"),
			EmbeddingDim:   embeddingDim,
			Endpoint:       getEnv("OPENROUTER_EMBEDDINGS_ENDPOINT", "https://openrouter.ai/api/v1/embeddings"),
			Timeout:        time.Duration(embedTimeout) * time.Second,
		},
		Groq: GroqConfig{
			APIKey:                getEnv("GROQ_API_KEY", ""),
			ChatModel:             getEnv("GROQ_CHAT_MODEL", "openai/gpt-oss-120b"),
			LearningContentModel:  getEnv("LEARNING_CONTENT_MODEL", "llama-3.3-70b-versatile"),
			TranscriptionModel:    getEnv("TRANSCRIPTION_MODEL_NAME", "whisper-large-v3-turbo"),
			VisionModel:           getEnv("VISION_MODEL_NAME", "meta-llama/llama-4-maverick-17b-128e-instruct"),
			ChatEndpoint:          getEnv("GROQ_CHAT_COMPLETIONS_ENDPOINT", "https://api.groq.com/openai/v1/chat/completions"),
			TranscriptionEndpoint: getEnv("GROQ_TRANSCRIPTION_ENDPOINT", "https://api.groq.com/openai/v1/audio/transcriptions"),
			ChatTimeout:           time.Duration(chatTimeout) * time.Second,
			MediaTimeout:          time.Duration(mediaTimeout) * time.Second,
		},
		RAG: RAGConfig{
			TopK:         topK,
			ContentTopK:  contentTopK,
			MinWords:     minWords,
			MaxWords:     maxWords,
			OverlapUnits: overlapUnits,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
