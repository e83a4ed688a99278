package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Sessions SessionsConfig `yaml:"sessions"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Retry    RetryConfig    `yaml:"retry"`
	Chat     ChatConfig     `yaml:"chat"`
	Identity IdentityConfig `yaml:"identity"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Addr      string  `yaml:"addr"`
	RateRPS   float64 `yaml:"rate_rps"`
	RateBurst int     `yaml:"rate_burst"`
}

type SessionsConfig struct {
	Dir       string `yaml:"dir"`
	BackupDir string `yaml:"backup_dir"`
}

type UpstreamConfig struct {
	Model          string   `yaml:"model"`
	BaseURL        string   `yaml:"base_url"`
	TimeoutSeconds int      `yaml:"timeout_seconds"`
	APIKeys        []string `yaml:"api_keys"`
}

type RetryConfig struct {
	MaxAttempts         int `yaml:"max_attempts"`
	InitialDelaySeconds int `yaml:"initial_delay_seconds"`
}

type ChatConfig struct {
	TemplatePath      string   `yaml:"template_path"`
	Welcome           string   `yaml:"welcome"`
	GreetingReply     string   `yaml:"greeting_reply"`
	GreetingPhrases   []string `yaml:"greeting_phrases"`
	GreetingWordLimit int      `yaml:"greeting_word_limit"`
	FollowupWordLimit int      `yaml:"followup_word_limit"`
	FollowupCues      []string `yaml:"followup_cues"`
}

type IdentityConfig struct {
	DBPath    string `yaml:"db_path"`
	JWTSecret string `yaml:"jwt_secret"`
	Audit     bool   `yaml:"audit"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// Default returns a configuration populated with working defaults for
// everything except the upstream API keys.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:      ":8060",
			RateRPS:   5,
			RateBurst: 10,
		},
		Sessions: SessionsConfig{
			Dir:       "sessions",
			BackupDir: "backup_sessions",
		},
		Upstream: UpstreamConfig{
			Model:          "gemini-1.5-flash",
			BaseURL:        "https://generativelanguage.googleapis.com/v1beta",
			TimeoutSeconds: 30,
		},
		Retry: RetryConfig{
			MaxAttempts:         3,
			InitialDelaySeconds: 5,
		},
		Chat: ChatConfig{
			Welcome:           "Hello! I am your medical assistant. Describe your symptoms or ask a health question and I will do my best to help.",
			GreetingReply:     "Hello! How can I assist you with your health questions today?",
			GreetingPhrases:   []string{"hi", "hello", "hey", "good morning", "good afternoon", "good evening", "greetings", "namaste"},
			GreetingWordLimit: 2,
			FollowupWordLimit: 5,
			FollowupCues:      []string{"more", "explain", "clarify", "further", "continue"},
		},
		Identity: IdentityConfig{
			DBPath: "medchat.db",
			Audit:  true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from a YAML file and applies environment
// overrides. A missing file is not an error; defaults apply. Validation is
// the caller's call: maintenance commands run fine without upstream keys.
func Load(path string) (*Config, error) {
	// Pull in a local .env first so overrides below can see it.
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	// Override with environment variables if present
	if addr := os.Getenv("MEDCHAT_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}
	if dir := os.Getenv("MEDCHAT_SESSIONS_DIR"); dir != "" {
		cfg.Sessions.Dir = dir
	}
	if keys := os.Getenv("GEMINI_API_KEYS"); keys != "" {
		cfg.Upstream.APIKeys = splitKeys(keys)
	}
	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		cfg.Upstream.Model = model
	}
	if db := os.Getenv("MEDCHAT_DB"); db != "" {
		cfg.Identity.DBPath = db
	}
	if secret := os.Getenv("MEDCHAT_JWT_SECRET"); secret != "" {
		cfg.Identity.JWTSecret = secret
	}
	if level := os.Getenv("MEDCHAT_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}

	return cfg, nil
}

// Validate checks that the configuration can run the chat service.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Sessions.Dir == "" {
		return fmt.Errorf("sessions.dir is required")
	}
	if c.Sessions.BackupDir == "" {
		return fmt.Errorf("sessions.backup_dir is required")
	}
	if len(c.Upstream.APIKeys) == 0 {
		return fmt.Errorf("upstream.api_keys is required (or set GEMINI_API_KEYS)")
	}
	if c.Upstream.Model == "" {
		return fmt.Errorf("upstream.model is required")
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts must be >= 1")
	}
	if c.Retry.InitialDelaySeconds < 0 {
		return fmt.Errorf("retry.initial_delay_seconds must be >= 0")
	}
	if c.Chat.GreetingWordLimit < 1 {
		return fmt.Errorf("chat.greeting_word_limit must be >= 1")
	}
	if c.Chat.FollowupWordLimit < 1 {
		return fmt.Errorf("chat.followup_word_limit must be >= 1")
	}
	return nil
}

func splitKeys(s string) []string {
	var keys []string
	for _, k := range strings.Split(s, ",") {
		k = strings.TrimSpace(k)
		if k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}
