package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

// Manager handles loading and hot-reloading configuration.
type Manager struct {
	mu        sync.RWMutex
	v         *viper.Viper
	config    *Config
	callbacks []func(*Config)
}

// NewManager creates a new config manager and loads initial config.
func NewManager(cfgFile string) (*Manager, error) {
	cm := &Manager{
		v:         viper.New(),
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
	v := cm.v
	defaults := DefaultConfig()
	v.SetDefault("server.host", defaults.Server.Host)
	v.SetDefault("server.port", defaults.Server.Port)
	v.SetDefault("books.path", defaults.Books.Path)
	v.SetDefault("books.image_filter", defaults.Books.ImageFilter)
	v.SetDefault("books.pdf_dpi", defaults.Books.PDFDPI)
	v.SetDefault("engine.url", defaults.Engine.URL)
	v.SetDefault("engine.timeout_seconds", defaults.Engine.TimeoutSeconds)
	v.SetDefault("engine.max_retries", defaults.Engine.MaxRetries)
	v.SetDefault("engine.docker.container_name", defaults.Engine.Docker.ContainerName)
	v.SetDefault("engine.docker.image", defaults.Engine.Docker.Image)
	v.SetDefault("engine.docker.port", defaults.Engine.Docker.Port)
	v.SetDefault("translation.strict", defaults.Translation.Strict)
	v.SetDefault("segmentation.text_dilation_x", defaults.Segmentation.TextDilationX)
	v.SetDefault("segmentation.text_dilation_y", defaults.Segmentation.TextDilationY)
	v.SetDefault("segmentation.image_dilation_x", defaults.Segmentation.ImageDilationX)
	v.SetDefault("segmentation.image_dilation_y", defaults.Segmentation.ImageDilationY)
	v.SetDefault("segmentation.combine_images", defaults.Segmentation.CombineImages)
	v.SetDefault("segmentation.image_seg_type", defaults.Segmentation.ImageSegType)
	v.SetDefault("store.redis_url", defaults.Store.RedisURL)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.format", defaults.Log.Format)

	// Environment variables with FOLIO_ prefix, e.g. FOLIO_ENGINE_URL
	v.SetEnvPrefix("FOLIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.folio")
	}

	// Try to read config file (not required)
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// load parses the current viper state into a Config struct.
func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := cm.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if _, err := cfg.Segmentation.Defaults(); err != nil {
		return nil, fmt.Errorf("invalid segmentation config: %w", err)
	}
	return &cfg, nil
}

// Get returns the current configuration (thread-safe).
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// ConfigFile returns the file the configuration was read from, if any.
func (cm *Manager) ConfigFile() string {
	return cm.v.ConfigFileUsed()
}

// OnChange registers a callback for config changes.
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// WatchConfig enables hot-reloading of configuration. An edit that fails to
// parse keeps the previous configuration.
func (cm *Manager) WatchConfig() {
	cm.v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := cm.load()
		if err != nil {
			slog.Warn("ignoring invalid config change", "file", e.Name, "error", err)
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
	cm.v.WatchConfig()
}

// ParseLevel maps a config log level onto slog. Unknown values mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WriteDefault writes the default configuration to the specified path.
func WriteDefault(path string) error {
	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# Folio configuration
# Every key can be overridden with a FOLIO_ environment variable,
# e.g. FOLIO_ENGINE_URL=http://engine:8181 or FOLIO_STORE_REDIS_URL=redis://localhost:6379/0

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
