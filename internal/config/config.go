// Package config loads and hot-reloads the application configuration via
// viper, with TRADESCAN_ environment overrides and ${ENV_VAR} resolution
// for secrets.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"github.com/seongmin-k/tradescan/internal/providers"
)

// Manager handles loading and hot-reloading configuration.
type Manager struct {
	mu        sync.RWMutex
	config    *Config
	callbacks []func(*Config)
}

// NewManager creates a new config manager and loads initial config.
func NewManager(cfgFile string) (*Manager, error) {
	cm := &Manager{
		callbacks: make([]func(*Config), 0),
	}

	if err := cm.initViper(cfgFile); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg

	return cm, nil
}

// initViper sets up viper with defaults and config file.
func (cm *Manager) initViper(cfgFile string) error {
	defaults := DefaultConfig()
	viper.SetDefault("providers", defaults.Providers)
	viper.SetDefault("pipeline", defaults.Pipeline)
	viper.SetDefault("output", defaults.Output)
	viper.SetDefault("logging", defaults.Logging)

	viper.SetEnvPrefix("TRADESCAN")
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.tradescan")
	}

	// Config file is optional; defaults plus env cover the common case.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// load parses the current viper state into a Config struct.
func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Get returns the current configuration (thread-safe).
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// OnChange registers a callback for config changes.
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// WatchConfig enables hot-reloading of configuration.
func (cm *Manager) WatchConfig() {
	viper.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := cm.load()
		if err != nil {
			return
		}

		cm.mu.Lock()
		cm.config = cfg
		callbacks := make([]func(*Config), len(cm.callbacks))
		copy(callbacks, cm.callbacks)
		cm.mu.Unlock()

		for _, fn := range callbacks {
			fn(cfg)
		}
	})
	viper.WatchConfig()
}

// ResolveEnvVars expands ${ENV_VAR} references in a string.
func ResolveEnvVars(value string) string {
	if value == "" {
		return value
	}
	pattern := regexp.MustCompile(`\$\{([^}]+)\}`)
	return pattern.ReplaceAllStringFunc(value, func(match string) string {
		varName := match[2 : len(match)-1]
		return os.Getenv(varName)
	})
}

// BuildRegistry constructs the provider registry for the current config,
// resolving ${ENV_VAR} references in API keys. The upstage provider is
// registered only when enabled and a key resolves; text-layer providers
// are always available.
func (c *Config) BuildRegistry() *providers.Registry {
	reg := providers.NewRegistry()

	if c.Providers.Upstage.Enabled {
		if apiKey := ResolveEnvVars(c.Providers.Upstage.APIKey); apiKey != "" {
			reg.Register(providers.NewUpstageProvider(providers.UpstageConfig{
				APIKey:  apiKey,
				BaseURL: c.Providers.Upstage.BaseURL,
				Model:   c.Providers.Upstage.Model,
				Timeout: time.Duration(c.Providers.Upstage.TimeoutSeconds) * time.Second,
			}))
		}
	}

	reg.Register(providers.NewNativeProvider())
	reg.Register(providers.NewLayoutProvider())

	if c.Providers.Tesseract.Enabled {
		reg.Register(providers.NewTesseractProvider(providers.TesseractConfig{
			Languages: c.Providers.Tesseract.Languages,
			DPI:       c.Providers.Tesseract.DPI,
		}))
	}

	return reg
}

// WriteDefault writes the default configuration to the specified path.
func WriteDefault(path string) error {
	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# tradescan configuration
# API keys use ${ENV_VAR} syntax to reference environment variables
# Set these in your shell or .env file: UPSTAGE_API_KEY=xxx

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
