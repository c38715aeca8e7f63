// Package config loads service configuration from the environment.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv      string `env:"APP_ENV" envDefault:"local"`
	HTTPPort    int    `env:"HTTP_PORT" envDefault:"8000"`
	PostgresDSN string `env:"POSTGRES_DSN,required"`

	// Gmail
	GmailCredentialsPath string `env:"GMAIL_CREDENTIALS_PATH" envDefault:"./credentials.json"`
	GmailTokenPath       string `env:"GMAIL_TOKEN_PATH" envDefault:"./token.json"`
	DigestRecipient      string `env:"DIGEST_RECIPIENT"`
	FetchLimit           int    `env:"FETCH_LIMIT" envDefault:"20"`

	// Summarization backends
	GroqAPIKey     string        `env:"GROQ_API_KEY"`
	GroqModel      string        `env:"GROQ_MODEL"`
	GeminiAPIKey   string        `env:"GEMINI_API_KEY"`
	GeminiModel    string        `env:"GEMINI_MODEL"`
	HFAPIKey       string        `env:"HF_API_KEY"`
	HFModel        string        `env:"HF_MODEL"`
	BackendTimeout time.Duration `env:"BACKEND_TIMEOUT" envDefault:"60s"`
	RateLimitRPS   int           `env:"RATE_LIMIT_RPS" envDefault:"1"`
	ChunkSize      int           `env:"EMAIL_CHUNK_SIZE" envDefault:"5"`
	MaxChunkWords  int           `env:"MAX_CHUNK_WORDS" envDefault:"1000"`
	ParallelChunks bool          `env:"PARALLEL_CHUNKS" envDefault:"false"`

	// Circuit breaker
	CircuitThreshold int           `env:"CIRCUIT_THRESHOLD" envDefault:"5"`
	CircuitReset     time.Duration `env:"CIRCUIT_RESET" envDefault:"1m"`

	// Embeddings and semantic search
	OpenAIAPIKey        string `env:"OPENAI_API_KEY"`
	EmbeddingModel      string `env:"EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
	EmbeddingDimensions int    `env:"EMBEDDING_DIMENSIONS" envDefault:"1536"`
	RAGTopK             int    `env:"RAG_TOP_K" envDefault:"5"`

	// Scheduler
	SchedulerEnabled bool   `env:"SCHEDULER_ENABLED" envDefault:"true"`
	ScheduleHour     int    `env:"DIGEST_HOUR" envDefault:"7"`
	ScheduleMinute   int    `env:"DIGEST_MINUTE" envDefault:"0"`
	ScheduleTimezone string `env:"DIGEST_TIMEZONE" envDefault:"UTC"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
