package config

import "time"

// Config is the full application configuration.
type Config struct {
	Providers ProvidersConfig `mapstructure:"providers" yaml:"providers"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline" yaml:"pipeline"`
	Output    OutputConfig    `mapstructure:"output" yaml:"output"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
}

// ProvidersConfig configures the text extraction engines.
type ProvidersConfig struct {
	Upstage   UpstageConfig   `mapstructure:"upstage" yaml:"upstage"`
	Tesseract TesseractConfig `mapstructure:"tesseract" yaml:"tesseract"`
}

// UpstageConfig configures the cloud document-AI engine.
type UpstageConfig struct {
	APIKey         string `mapstructure:"api_key" yaml:"api_key"`
	BaseURL        string `mapstructure:"base_url" yaml:"base_url"`
	Model          string `mapstructure:"model" yaml:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	Enabled        bool   `mapstructure:"enabled" yaml:"enabled"`
}

// TesseractConfig configures local OCR.
type TesseractConfig struct {
	Languages []string `mapstructure:"languages" yaml:"languages"`
	DPI       int      `mapstructure:"dpi" yaml:"dpi"`
	Enabled   bool     `mapstructure:"enabled" yaml:"enabled"`
}

// PipelineConfig configures per-file processing.
type PipelineConfig struct {
	PreferredEngine        string `mapstructure:"preferred_engine" yaml:"preferred_engine"`
	ProviderTimeoutSeconds int    `mapstructure:"provider_timeout_seconds" yaml:"provider_timeout_seconds"`
	FileTimeoutSeconds     int    `mapstructure:"file_timeout_seconds" yaml:"file_timeout_seconds"`
	Workers                int    `mapstructure:"workers" yaml:"workers"`
}

// OutputConfig configures result writing.
type OutputConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// LoggingConfig configures the slog handler.
type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// DefaultConfig returns the built-in defaults. API keys reference
// environment variables via ${VAR} syntax and are resolved at use time.
func DefaultConfig() *Config {
	return &Config{
		Providers: ProvidersConfig{
			Upstage: UpstageConfig{
				APIKey:         "${UPSTAGE_API_KEY}",
				BaseURL:        "https://api.upstage.ai/v1",
				Model:          "document-parse",
				TimeoutSeconds: 120,
				Enabled:        true,
			},
			Tesseract: TesseractConfig{
				Languages: []string{"kor", "eng"},
				DPI:       300,
				Enabled:   true,
			},
		},
		Pipeline: PipelineConfig{
			ProviderTimeoutSeconds: 120,
			FileTimeoutSeconds:     600,
			Workers:                4,
		},
		Output: OutputConfig{
			Dir: "results",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// ProviderTimeout returns the per-provider timeout as a duration.
func (c *Config) ProviderTimeout() time.Duration {
	return time.Duration(c.Pipeline.ProviderTimeoutSeconds) * time.Second
}

// FileTimeout returns the whole-file timeout as a duration.
func (c *Config) FileTimeout() time.Duration {
	return time.Duration(c.Pipeline.FileTimeoutSeconds) * time.Second
}
