package config

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

type Config struct {
	Environment string          `yaml:"environment"`
	Server      ServerConfig    `yaml:"server"`
	Ollama      OllamaConfig    `yaml:"ollama"`
	Events      EventsConfig    `yaml:"events"`
	Database    DatabaseConfig  `yaml:"database"`
	Redis       RedisConfig     `yaml:"redis"`
	RateLimit   RateLimitConfig `yaml:"rate_limit"`
	Telemetry   TelemetryConfig `yaml:"telemetry"`
	Filter      FilterConfig    `yaml:"filter"`
}

type ServerConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
	CORSOrigins      []string      `yaml:"cors_origins"`
}

// Addr returns the listen address in host:port form.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// OllamaConfig describes the upstream inference server and the generation
// defaults applied when a chat request leaves them out.
type OllamaConfig struct {
	BaseURL       string        `yaml:"base_url"`
	DefaultModel  string        `yaml:"default_model"`
	Timeout       time.Duration `yaml:"timeout"`
	ChatMaxTokens int           `yaml:"chat_max_tokens"`
	TestMaxTokens int           `yaml:"test_max_tokens"`
	Temperature   float64       `yaml:"temperature"`
	TopP          float64       `yaml:"top_p"`
	SystemPrompt  string        `yaml:"system_prompt"`
}

const (
	EventsSourceStatic   = "static"
	EventsSourceFile     = "file"
	EventsSourcePostgres = "postgres"
)

type EventsConfig struct {
	Source   string `yaml:"source"`
	File     string `yaml:"file"`
	Timezone string `yaml:"timezone"`
}

type DatabaseConfig struct {
	URL             string        `yaml:"url"`
	MaxConns        int32         `yaml:"max_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type RateLimitConfig struct {
	Enabled           bool          `yaml:"enabled"`
	RequestsPerWindow int           `yaml:"requests_per_window"`
	Window            time.Duration `yaml:"window"`
}

type TelemetryConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

type FilterConfig struct {
	Secrets   SecretsFilterConfig   `yaml:"secrets"`
	Injection InjectionFilterConfig `yaml:"injection"`
}

type SecretsFilterConfig struct {
	Enabled bool `yaml:"enabled"`
}

type InjectionFilterConfig struct {
	Enabled        bool    `yaml:"enabled"`
	BlockThreshold float64 `yaml:"block_threshold"`
	FlagThreshold  float64 `yaml:"flag_threshold"`
}

const defaultSystemPrompt = `
Tu es GreenBot, un assistant spécialisé en écologie et développement durable. Fournis des informations précises et concises.
Expertise: changement climatique, biodiversité, énergies renouvelables, gestion des déchets, agriculture durable.
Réponds de manière claire, factuelle et directe. Évite les réponses trop longues.
`

func DefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             3000,
			ReadTimeout:      30 * time.Second,
			WriteTimeout:     150 * time.Second,
			IdleTimeout:      120 * time.Second,
			GracefulShutdown: 30 * time.Second,
			CORSOrigins:      []string{"*"},
		},
		Ollama: OllamaConfig{
			BaseURL:       "http://localhost:11434",
			DefaultModel:  "llama3",
			Timeout:       120 * time.Second,
			ChatMaxTokens: 500,
			TestMaxTokens: 300,
			Temperature:   0.5,
			TopP:          0.8,
			SystemPrompt:  defaultSystemPrompt,
		},
		Events: EventsConfig{
			Source:   EventsSourceStatic,
			Timezone: "Europe/Paris",
		},
		Database: DatabaseConfig{
			MaxConns:        5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Redis: RedisConfig{
			PoolSize: 10,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerWindow: 20,
			Window:            time.Minute,
		},
		Telemetry: TelemetryConfig{
			LogLevel:  "info",
			LogFormat: "json",
		},
		Filter: FilterConfig{
			Secrets: SecretsFilterConfig{Enabled: true},
			Injection: InjectionFilterConfig{
				Enabled:        true,
				BlockThreshold: 0.9,
				FlagThreshold:  0.7,
			},
		},
	}
}

// Validate reports the first setting that would leave a server unusable.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Ollama.BaseURL == "" {
		return fmt.Errorf("ollama.base_url is required")
	}
	if c.Ollama.Timeout <= 0 {
		return fmt.Errorf("ollama.timeout must be positive")
	}
	switch c.Events.Source {
	case EventsSourceStatic:
	case EventsSourceFile:
		if c.Events.File == "" {
			return fmt.Errorf("events.file is required when events.source is %q", EventsSourceFile)
		}
	case EventsSourcePostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("database.url is required when events.source is %q", EventsSourcePostgres)
		}
	default:
		return fmt.Errorf("unknown events.source %q", c.Events.Source)
	}
	if _, err := time.LoadLocation(c.Events.Timezone); err != nil {
		return fmt.Errorf("events.timezone: %w", err)
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerWindow <= 0 || c.RateLimit.Window <= 0) {
		return fmt.Errorf("rate_limit needs a positive requests_per_window and window")
	}
	return nil
}
