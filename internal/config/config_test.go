package config

import (
	"log/slog"
	"os"
	"testing"
)

// setEnv sets an environment variable, ignoring errors (for test setup)
func setEnv(key, value string) {
	_ = os.Setenv(key, value)
}

// unsetEnv unsets an environment variable, ignoring errors (for test cleanup)
func unsetEnv(key string) {
	_ = os.Unsetenv(key)
}

var configEnvVars = []string{
	"LLM_BASE_URL", "LLM_MODEL", "LLM_API_KEY",
	"EMBEDDING_BASE_URL", "EMBEDDING_MODEL_NAME",
	"VECTOR_SIZE", "VECTOR_BACKEND",
	"ARTIFACT_INDEX_PATH", "HISTORY_INDEX_PATH", "CORPUS_DB_PATH",
	"QDRANT_URL", "QDRANT_ARTIFACT_COLLECTION", "QDRANT_HISTORY_COLLECTION",
	"API_PORT", "LOG_LEVEL", "LOG_FORMAT",
}

func withCleanEnv(t *testing.T) {
	t.Helper()
	original := make(map[string]string)
	for _, key := range configEnvVars {
		original[key] = os.Getenv(key)
		unsetEnv(key)
	}
	t.Cleanup(func() {
		for key, value := range original {
			if value != "" {
				setEnv(key, value)
			} else {
				unsetEnv(key)
			}
		}
	})
}

func TestLoad(t *testing.T) {
	withCleanEnv(t)

	tests := []struct {
		name        string
		setupEnv    func()
		wantErr     bool
		checkConfig func(*Config) bool
	}{
		{
			name: "valid flat backend config",
			setupEnv: func() {
				setEnv("VECTOR_SIZE", "1024")
				setEnv("LLM_API_KEY", "test-key")
			},
			wantErr: false,
			checkConfig: func(cfg *Config) bool {
				return cfg.VectorSize == 1024 &&
					cfg.VectorBackend == BackendFlat &&
					cfg.APIPort == "9000" &&
					cfg.LogLevel == slog.LevelInfo
			},
		},
		{
			name: "missing VECTOR_SIZE",
			setupEnv: func() {
				setEnv("LLM_API_KEY", "test-key")
			},
			wantErr: true,
		},
		{
			name: "non-numeric VECTOR_SIZE",
			setupEnv: func() {
				setEnv("VECTOR_SIZE", "abc")
				setEnv("LLM_API_KEY", "test-key")
			},
			wantErr: true,
		},
		{
			name: "negative VECTOR_SIZE",
			setupEnv: func() {
				setEnv("VECTOR_SIZE", "-1")
				setEnv("LLM_API_KEY", "test-key")
			},
			wantErr: true,
		},
		{
			name: "missing LLM_API_KEY",
			setupEnv: func() {
				setEnv("VECTOR_SIZE", "1024")
			},
			wantErr: true,
		},
		{
			name: "unknown backend",
			setupEnv: func() {
				setEnv("VECTOR_SIZE", "1024")
				setEnv("LLM_API_KEY", "test-key")
				setEnv("VECTOR_BACKEND", "pinecone")
			},
			wantErr: true,
		},
		{
			name: "qdrant backend",
			setupEnv: func() {
				setEnv("VECTOR_SIZE", "1024")
				setEnv("LLM_API_KEY", "test-key")
				setEnv("VECTOR_BACKEND", "qdrant")
				setEnv("QDRANT_URL", "http://localhost:6333")
			},
			wantErr: false,
			checkConfig: func(cfg *Config) bool {
				return cfg.VectorBackend == BackendQdrant &&
					cfg.ArtifactCollection == "artifacts" &&
					cfg.HistoryCollection == "history"
			},
		},
		{
			name: "invalid log level",
			setupEnv: func() {
				setEnv("VECTOR_SIZE", "1024")
				setEnv("LLM_API_KEY", "test-key")
				setEnv("LOG_LEVEL", "verbose")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range configEnvVars {
				unsetEnv(key)
			}
			tt.setupEnv()

			cfg, err := Load()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if tt.checkConfig != nil && !tt.checkConfig(cfg) {
				t.Errorf("Load() returned unexpected config: %+v", cfg)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"WARN", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"trace", 0, true},
	}

	for _, tt := range tests {
		got, err := parseLogLevel(tt.input)
		if (err != nil) != tt.wantErr {
			t.Fatalf("parseLogLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if err == nil && got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
