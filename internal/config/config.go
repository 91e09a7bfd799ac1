package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// MaxUploadBytes is the hard cap on uploaded audio. Config may lower it, never raise it.
	MaxUploadBytes = 100 << 20
	// RenderTimeout bounds document rendering.
	RenderTimeout = 30 * time.Second
)

// SupportedLanguages lists the transcription/generation languages accepted by the pipeline.
var SupportedLanguages = []string{"es", "en", "pt", "fr", "de", "it"}

type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Transcription TranscriptionConfig `yaml:"transcription"`
	Generation    GenerationConfig    `yaml:"generation"`
	Limits        LimitsConfig        `yaml:"limits"`
	Render        RenderConfig        `yaml:"render"`
	Paths         PathsConfig         `yaml:"paths"`
	Logging       LoggingConfig       `yaml:"logging"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type TranscriptionConfig struct {
	Provider string `yaml:"provider"`
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"`
	Model    string `yaml:"model"`
	Language string `yaml:"language"`
}

type GenerationConfig struct {
	Provider string `yaml:"provider"`
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"`
	Model    string `yaml:"model"`
}

type LimitsConfig struct {
	MaxUploadBytes       int64         `yaml:"max_upload_bytes"`
	RenderTimeout        time.Duration `yaml:"render_timeout"`
	TranscriptionTimeout time.Duration `yaml:"transcription_timeout"`
	GenerationTimeout    time.Duration `yaml:"generation_timeout"`
	MaxConcurrent        int           `yaml:"max_concurrent"`
}

type RenderConfig struct {
	Format string  `yaml:"format"`
	Margin float64 `yaml:"margin"`
}

type PathsConfig struct {
	Uploads  string `yaml:"uploads"`
	Output   string `yaml:"output"`
	Inbox    string `yaml:"inbox"`
	Archived string `yaml:"archived"`
	Database string `yaml:"database"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a YAML config file, applies environment overrides and validates it.
// A missing file is not an error when path is empty.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// providerKeyEnv names the environment variable holding each provider's key.
var providerKeyEnv = map[string]string{
	"deepgram": "DEEPGRAM_API_KEY",
	"voxtral":  "MISTRAL_API_KEY",
	"gemini":   "GEMINI_API_KEY",
	"openai":   "OPENAI_API_KEY",
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MINUTES_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("MINUTES_LANGUAGE"); v != "" {
		cfg.Transcription.Language = v
	}
	if v := os.Getenv("MINUTES_MODEL"); v != "" {
		cfg.Generation.Model = v
	}

	// Keys are read only for the provider actually selected.
	if cfg.Transcription.Provider == "" {
		cfg.Transcription.Provider = "deepgram"
	}
	if cfg.Generation.Provider == "" {
		cfg.Generation.Provider = "gemini"
	}
	if cfg.Transcription.APIKey == "" {
		cfg.Transcription.APIKey = os.Getenv(providerKeyEnv[cfg.Transcription.Provider])
	}
	if cfg.Generation.APIKey == "" {
		cfg.Generation.APIKey = os.Getenv(providerKeyEnv[cfg.Generation.Provider])
	}
}

func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		c.Server.Addr = ":3000"
	}

	switch c.Transcription.Provider {
	case "":
		c.Transcription.Provider = "deepgram"
	case "deepgram", "voxtral":
	default:
		return fmt.Errorf("transcription.provider %q is not supported", c.Transcription.Provider)
	}
	if c.Transcription.Language == "" {
		c.Transcription.Language = "es"
	}
	if !IsSupportedLanguage(c.Transcription.Language) {
		return fmt.Errorf("transcription.language %q is not supported", c.Transcription.Language)
	}
	if c.Transcription.Model == "" && c.Transcription.Provider == "deepgram" {
		c.Transcription.Model = "nova-2"
	}
	if c.Transcription.Model == "" && c.Transcription.Provider == "voxtral" {
		c.Transcription.Model = "voxtral-mini-latest"
	}

	switch c.Generation.Provider {
	case "":
		c.Generation.Provider = "gemini"
	case "gemini", "openai":
	default:
		return fmt.Errorf("generation.provider %q is not supported", c.Generation.Provider)
	}
	if c.Generation.Model == "" && c.Generation.Provider == "gemini" {
		c.Generation.Model = "gemini-2.5-flash"
	}
	if c.Generation.Model == "" && c.Generation.Provider == "openai" {
		c.Generation.Model = "gpt-4o-mini"
	}

	if c.Limits.MaxUploadBytes <= 0 || c.Limits.MaxUploadBytes > MaxUploadBytes {
		c.Limits.MaxUploadBytes = MaxUploadBytes
	}
	// The render budget is fixed.
	c.Limits.RenderTimeout = RenderTimeout
	if c.Limits.TranscriptionTimeout <= 0 {
		c.Limits.TranscriptionTimeout = 10 * time.Minute
	}
	if c.Limits.GenerationTimeout <= 0 {
		c.Limits.GenerationTimeout = 5 * time.Minute
	}
	if c.Limits.MaxConcurrent <= 0 {
		c.Limits.MaxConcurrent = 2
	}

	switch c.Render.Format {
	case "":
		c.Render.Format = "pdf"
	case "pdf", "docx":
	default:
		return fmt.Errorf("render.format %q is not supported", c.Render.Format)
	}
	if c.Render.Margin <= 0 {
		c.Render.Margin = 50
	}

	if c.Paths.Uploads == "" {
		c.Paths.Uploads = "data/uploads"
	}
	if c.Paths.Output == "" {
		c.Paths.Output = "data/output"
	}
	if c.Paths.Inbox == "" {
		c.Paths.Inbox = "data/inbox"
	}
	if c.Paths.Archived == "" {
		c.Paths.Archived = "data/archived"
	}
	if c.Paths.Database == "" {
		c.Paths.Database = "data/minutes.db"
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}

	return nil
}

// IsSupportedLanguage reports whether code is one of SupportedLanguages.
func IsSupportedLanguage(code string) bool {
	for _, l := range SupportedLanguages {
		if l == code {
			return true
		}
	}
	return false
}
