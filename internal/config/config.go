// Package config loads the recap configuration from a YAML file with
// environment variable expansion, so secrets stay out of the file itself
// (`api_key: ${ANTHROPIC_API_KEY}`).
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/teemow/recap/internal/analysis"
	"github.com/teemow/recap/internal/claude"
)

// Config holds all recap configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Zoom      ZoomConfig      `yaml:"zoom"`
	Anthropic AnthropicConfig `yaml:"anthropic"`
	Google    GoogleConfig    `yaml:"google"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig controls the webhook server's listen addresses.
type ServerConfig struct {
	Addr        string `yaml:"addr"`
	MetricsAddr string `yaml:"metrics_addr"`
}

// ZoomConfig holds Server-to-Server OAuth credentials and the webhook
// secret token.
type ZoomConfig struct {
	AccountID     string `yaml:"account_id"`
	ClientID      string `yaml:"client_id"`
	ClientSecret  string `yaml:"client_secret"`
	WebhookSecret string `yaml:"webhook_secret"`
	BaseURL       string `yaml:"base_url"`
}

// AnthropicConfig holds the model provider settings and the rate budget
// the request queue enforces.
type AnthropicConfig struct {
	APIKey          string        `yaml:"api_key"`
	Model           string        `yaml:"model"`
	BaseURL         string        `yaml:"base_url"`
	TokensPerMinute int           `yaml:"tokens_per_minute"`
	CallCeiling     int           `yaml:"call_ceiling"`
	MaxOutputTokens int           `yaml:"max_output_tokens"`
	Temperature     float64       `yaml:"temperature"`
	Cooldown        time.Duration `yaml:"cooldown"`
	ChunkBaseDelay  time.Duration `yaml:"chunk_base_delay"`
}

// GoogleConfig holds service account credentials and Drive/Sheets targets.
type GoogleConfig struct {
	CredentialsFile   string `yaml:"credentials_file"`
	SharedDriveID     string `yaml:"shared_drive_id"`
	RootFolderID      string `yaml:"root_folder_id"`
	ReportSpreadsheet string `yaml:"report_spreadsheet_id"`
}

// AnalysisConfig controls which analyses run and their pacing.
type AnalysisConfig struct {
	Kinds          []string      `yaml:"kinds"`
	InterKindDelay time.Duration `yaml:"inter_kind_delay"`
}

// LoggingConfig selects log level and format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns a Config with sensible defaults. Credentials have no
// defaults; they come from the file or the environment.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:        ":8080",
			MetricsAddr: ":9090",
		},
		Anthropic: AnthropicConfig{
			Model:           claude.DefaultModel,
			TokensPerMinute: claude.DefaultTokensPerMinute,
			CallCeiling:     claude.DefaultCallCeiling,
			MaxOutputTokens: 4000,
			Temperature:     0.2,
			Cooldown:        claude.DefaultCooldown,
			ChunkBaseDelay:  claude.DefaultChunkBaseDelay,
		},
		Analysis: AnalysisConfig{
			InterKindDelay: 5 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a YAML config file and expands environment variables.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration can actually run the server.
func (c *Config) Validate() error {
	if c.Zoom.AccountID == "" || c.Zoom.ClientID == "" || c.Zoom.ClientSecret == "" {
		return fmt.Errorf("zoom account_id, client_id and client_secret are required")
	}
	if c.Anthropic.APIKey == "" {
		return fmt.Errorf("anthropic api_key is required")
	}
	if c.Anthropic.TokensPerMinute <= 0 {
		return fmt.Errorf("anthropic tokens_per_minute must be positive, got %d", c.Anthropic.TokensPerMinute)
	}
	if c.Anthropic.CallCeiling <= 0 {
		return fmt.Errorf("anthropic call_ceiling must be positive, got %d", c.Anthropic.CallCeiling)
	}
	if c.Anthropic.CallCeiling > c.Anthropic.TokensPerMinute {
		return fmt.Errorf("anthropic call_ceiling (%d) cannot exceed tokens_per_minute (%d)",
			c.Anthropic.CallCeiling, c.Anthropic.TokensPerMinute)
	}
	if c.Google.CredentialsFile == "" {
		return fmt.Errorf("google credentials_file is required")
	}
	if c.Google.RootFolderID == "" {
		return fmt.Errorf("google root_folder_id is required")
	}
	for _, name := range c.Analysis.Kinds {
		if _, ok := analysis.ParseKind(name); !ok {
			return fmt.Errorf("unknown analysis kind %q", name)
		}
	}
	return nil
}

// AnalysisKinds returns the configured analysis kinds as typed values.
// Call Validate first; unknown names are skipped here.
func (c *Config) AnalysisKinds() []analysis.Kind {
	var kinds []analysis.Kind
	for _, name := range c.Analysis.Kinds {
		if kind, ok := analysis.ParseKind(name); ok {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}
