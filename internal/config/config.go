package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	ServerPort string `envconfig:"PORT" default:"8080"`

	// StoreBackend selects the persistence layer: postgres or memory
	// (memory is for local runs without a database; nothing survives a
	// restart).
	StoreBackend string `envconfig:"STORE_BACKEND" default:"postgres"`

	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBName     string `envconfig:"DB_NAME" default:"mentor"`
	DBUser     string `envconfig:"DB_USER" default:"mentor"`
	DBPassword string `envconfig:"DB_PASSWORD" default:""`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"require"` // disable|require|verify-full

	RedisURL string `envconfig:"REDIS_URL" default:""` // empty disables caching

	GeminiAPIKey string        `envconfig:"GEMINI_API_KEY" default:""`
	GeminiModel  string        `envconfig:"GEMINI_MODEL" default:"gemini-1.5-flash"`
	GeminiURL    string        `envconfig:"GEMINI_URL" default:"https://generativelanguage.googleapis.com/v1beta"`
	ModelTimeout time.Duration `envconfig:"MODEL_TIMEOUT" default:"30s"`

	HistoryWindow int    `envconfig:"HISTORY_WINDOW" default:"20"`          // prior turns replayed to the model
	PromptMode    string `envconfig:"PROMPT_MODE" default:"structured"`     // structured|flattened
	Persona       string `envconfig:"PERSONA" default:""`                   // empty falls back to DefaultPersona
	RateLimit     int    `envconfig:"CHAT_RATE_LIMIT_PER_MINUTE" default:"100"`
}

// DefaultPersona is the coaching system instruction used when PERSONA
// is not set.
const DefaultPersona = `You are Dr. Mentor, an AI accountability coach specializing in NEET PG preparation.

Your role:
- Check in daily with students about their study progress
- Ask specific questions about study hours, subjects covered, and challenges
- Provide constructive feedback and motivation
- Maintain context of previous conversations
- Understand medical subjects and NEET PG exam structure
- Be supportive but firm - you're an accountability partner, not just a cheerleader
- Know NEET PG 2026 is in August 2026

Keep responses concise (under 150 words) and conversational. Ask one main question per response.`

// Load reads environment variables into Config.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.Persona == "" {
		cfg.Persona = DefaultPersona
	}
	if cfg.HistoryWindow <= 0 {
		return nil, fmt.Errorf("HISTORY_WINDOW must be positive, got %d", cfg.HistoryWindow)
	}
	if cfg.PromptMode != "structured" && cfg.PromptMode != "flattened" {
		return nil, fmt.Errorf("PROMPT_MODE must be structured or flattened, got %q", cfg.PromptMode)
	}
	if cfg.StoreBackend != "postgres" && cfg.StoreBackend != "memory" {
		return nil, fmt.Errorf("STORE_BACKEND must be postgres or memory, got %q", cfg.StoreBackend)
	}
	return &cfg, nil
}

// DSN assembles the Postgres connection string from the discrete
// connection parameters.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPassword, c.DBSSLMode)
}
