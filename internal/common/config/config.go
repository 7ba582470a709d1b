// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig          `mapstructure:"app"`
	Server        ServerConfig       `mapstructure:"server"`
	Database      DatabaseConfig     `mapstructure:"database"`
	RateLimit     RateLimitConfig    `mapstructure:"rate_limit"`
	Retrieval     RetrievalConfig    `mapstructure:"retrieval"`
	Prompt        PromptConfig       `mapstructure:"prompt"`
	Generation    GenerationConfig   `mapstructure:"generation"`
	Embedding     EmbeddingConfig    `mapstructure:"embedding"`
	Quality       QualityConfig      `mapstructure:"quality"`
	History       HistoryConfig      `mapstructure:"history"`
	Recorder      RecorderConfig     `mapstructure:"recorder"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Logging       LoggingConfig      `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	ListenAddress   string `mapstructure:"listen_address"`
	MessageDeadline int    `mapstructure:"message_deadline"` // milliseconds, end-to-end per message
	ShutdownGrace   int    `mapstructure:"shutdown_grace"`   // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses  []string `mapstructure:"addresses"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	SSLEnabled bool     `mapstructure:"ssl_enabled"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// --- Pipeline Stage Config ---

// RateLimitConfig bounds messages per sender inside a fixed window.
// Store selects the window store backend: "redis" or "memory".
type RateLimitConfig struct {
	Limit         int    `mapstructure:"limit"`
	WindowSeconds int    `mapstructure:"window_seconds"`
	Store         string `mapstructure:"store"`
}

type RetrievalConfig struct {
	Index          string  `mapstructure:"index"`
	TopK           int     `mapstructure:"top_k"`
	ScoreThreshold float64 `mapstructure:"score_threshold"`
	Timeout        int     `mapstructure:"timeout"` // milliseconds
}

type PromptConfig struct {
	Budget      int    `mapstructure:"budget"` // characters
	Institution string `mapstructure:"institution"`
}

type GenerationConfig struct {
	BaseURL     string  `mapstructure:"base_url"`
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Timeout     int     `mapstructure:"timeout"` // milliseconds
	MaxAttempts int     `mapstructure:"max_attempts"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

type EmbeddingConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

type QualityConfig struct {
	Threshold         float64 `mapstructure:"threshold"`
	MaxReplyChars     int     `mapstructure:"max_reply_chars"`
	EscalationContact string  `mapstructure:"escalation_contact"`
}

type HistoryConfig struct {
	MaxTurns int `mapstructure:"max_turns"` // retained (query, reply) turns per session
}

type RecorderConfig struct {
	QueueSize int    `mapstructure:"queue_size"`
	Table     string `mapstructure:"table"`
}

// NotificationConfig holds settings for the escalation notifier.
type NotificationConfig struct {
	Email struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
		ToEmail   string `mapstructure:"to_email"`
	} `mapstructure:"email"`
	SMS struct {
		Enabled bool   `mapstructure:"enabled"`
		ToPhone string `mapstructure:"to_phone"`
	} `mapstructure:"sms"`
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
