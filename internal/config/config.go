package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Backend selects the vector index implementation.
const (
	BackendFlat   = "flat"
	BackendQdrant = "qdrant"
)

// Config holds all configuration for the application.
type Config struct {
	LLMBaseURL         string
	LLMModelName       string
	LLMAPIKey          string
	EmbeddingBaseURL   string
	EmbeddingModelName string
	VectorSize         int

	VectorBackend string

	// Flat backend: prebuilt index files plus the aligned metadata table.
	ArtifactIndexPath string
	HistoryIndexPath  string
	CorpusDBPath      string

	// Qdrant backend.
	QdrantURL          string
	ArtifactCollection string
	HistoryCollection  string

	APIPort   string
	LogLevel  slog.Level
	LogFormat string
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or a parent directory, it is
// loaded automatically; variables already set in the environment take precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	// Walk up a few levels so the binary can be started from cmd/ subdirectories.
	if wd, err := os.Getwd(); err == nil {
		dir := wd
		for i := 0; i < 5; i++ {
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	cfg := &Config{
		LLMBaseURL:         getEnv("LLM_BASE_URL", "http://localhost:8080"),
		LLMModelName:       getEnv("LLM_MODEL", "gemma-3-12b-it"),
		LLMAPIKey:          os.Getenv("LLM_API_KEY"),
		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", "http://localhost:8081"),
		EmbeddingModelName: getEnv("EMBEDDING_MODEL_NAME", "bge-m3-korean"),
		VectorBackend:      getEnv("VECTOR_BACKEND", BackendFlat),
		ArtifactIndexPath:  getEnv("ARTIFACT_INDEX_PATH", "./vector_store/artifacts.index"),
		HistoryIndexPath:   getEnv("HISTORY_INDEX_PATH", "./vector_store/history.index"),
		CorpusDBPath:       getEnv("CORPUS_DB_PATH", "./vector_store/corpus.db"),
		QdrantURL:          getEnv("QDRANT_URL", "http://localhost:6333"),
		ArtifactCollection: getEnv("QDRANT_ARTIFACT_COLLECTION", "artifacts"),
		HistoryCollection:  getEnv("QDRANT_HISTORY_COLLECTION", "history"),
		APIPort:            getEnv("API_PORT", "9000"),
		LogFormat:          getEnv("LOG_FORMAT", "text"),
	}

	level, err := parseLogLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	// VECTOR_SIZE must match the output dimension of the embeddings model.
	// If the model changes, the indexes must be rebuilt with cmd/buildindex.
	vectorSizeStr := os.Getenv("VECTOR_SIZE")
	if vectorSizeStr == "" {
		return nil, fmt.Errorf("VECTOR_SIZE is required")
	}
	vectorSize, err := strconv.Atoi(vectorSizeStr)
	if err != nil {
		return nil, fmt.Errorf("VECTOR_SIZE must be a valid integer: %w", err)
	}
	if vectorSize <= 0 {
		return nil, fmt.Errorf("VECTOR_SIZE must be greater than 0")
	}
	cfg.VectorSize = vectorSize

	if cfg.LLMAPIKey == "" {
		return nil, fmt.Errorf("LLM_API_KEY is required")
	}

	switch cfg.VectorBackend {
	case BackendFlat:
		if cfg.ArtifactIndexPath == "" || cfg.HistoryIndexPath == "" {
			return nil, fmt.Errorf("ARTIFACT_INDEX_PATH and HISTORY_INDEX_PATH are required for the flat backend")
		}
		if cfg.CorpusDBPath == "" {
			return nil, fmt.Errorf("CORPUS_DB_PATH is required for the flat backend")
		}
	case BackendQdrant:
		if cfg.QdrantURL == "" {
			return nil, fmt.Errorf("QDRANT_URL is required for the qdrant backend")
		}
		if cfg.CorpusDBPath == "" {
			return nil, fmt.Errorf("CORPUS_DB_PATH is required (row metadata is always local)")
		}
	default:
		return nil, fmt.Errorf("unknown VECTOR_BACKEND %q (want %q or %q)", cfg.VectorBackend, BackendFlat, BackendQdrant)
	}

	return cfg, nil
}

// parseLogLevel converts a level name to a slog.Level.
func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown LOG_LEVEL %q", s)
	}
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
