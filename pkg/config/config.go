package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
	apperrors "github.com/xiaotaozi1127/story-teller-backend/pkg/errors"
)

// EnvPrefix is prepended to environment overrides, e.g. STORYTELLER_SERVER_PORT
const EnvPrefix = "STORYTELLER"

var (
	once    sync.Once
	initErr error
)

// Init initializes the configuration system
// This should be called once at application startup
func Init() error {
	once.Do(func() {
		initErr = load("./config/settings.yaml")
	})

	return initErr
}

// load reads defaults, the config file at path and environment overrides
func load(path string) error {
	setDefaults()

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	configPath := filepath.Clean(path)
	viper.SetConfigFile(configPath)

	if err := viper.ReadInConfig(); err != nil {
		// A missing file is fine; defaults and env vars apply
		if !os.IsNotExist(err) {
			return fmt.Errorf("error reading config file %s: %w", configPath, err)
		}
	}

	if err := validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	return nil
}

// GetConfig returns the current configuration as a struct
// Init() must be called before using this
func GetConfig() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &config, nil
}

// Get returns a config value by key using Viper directly
func Get(key string) any {
	return viper.Get(key)
}

// GetString returns a string config value
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetDuration returns a time.Duration config value
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}

// GetStringSlice returns a string slice config value
func GetStringSlice(key string) []string {
	return viper.GetStringSlice(key)
}

// Set overrides a config value, used by command line flags
func Set(key string, value any) {
	viper.Set(key, value)
}

// validate validates the configuration using Viper values
func validate() error {
	port := viper.GetInt("server.port")
	if port <= 0 || port > 65535 {
		return apperrors.ConfigError("server.port", fmt.Sprintf("must be between 1 and 65535, got %d", port))
	}

	switch backend := viper.GetString("storage.backend"); backend {
	case "memory":
	case "sqlite":
		if viper.GetString("database.path") == "" {
			return apperrors.ConfigError("database.path", "required when storage.backend is sqlite")
		}
	default:
		return apperrors.ConfigError("storage.backend", fmt.Sprintf("unknown backend %q", backend))
	}

	switch backend := viper.GetString("tts.backend"); backend {
	case "tone":
	case "exec":
		if viper.GetString("tts.exec.command") == "" {
			return apperrors.ConfigError("tts.exec.command", "required when tts.backend is exec")
		}
	case "http":
		if viper.GetString("tts.http.url") == "" {
			return apperrors.ConfigError("tts.http.url", "required when tts.backend is http")
		}
	default:
		return apperrors.ConfigError("tts.backend", fmt.Sprintf("unknown backend %q", backend))
	}

	if len(viper.GetStringSlice("stories.languages")) == 0 {
		return apperrors.ConfigError("stories.languages", "must list at least one language")
	}

	if viper.GetDuration("voices.min_duration") > viper.GetDuration("voices.max_duration") {
		return apperrors.ConfigError("voices.min_duration", "exceeds voices.max_duration")
	}

	// Auto-correct invalid worker count
	if viper.GetInt("processing.workers") <= 0 {
		viper.Set("processing.workers", 1)
	}

	// Auto-correct invalid queue size
	if viper.GetInt("processing.max_queue_size") <= 0 {
		viper.Set("processing.max_queue_size", 100)
	}

	// Auto-correct chunk sizes
	if viper.GetInt("stories.max_chunk_size") <= 0 {
		viper.Set("stories.max_chunk_size", 1000)
	}
	if d := viper.GetInt("stories.default_chunk_size"); d <= 0 || d > viper.GetInt("stories.max_chunk_size") {
		viper.Set("stories.default_chunk_size", min(300, viper.GetInt("stories.max_chunk_size")))
	}

	return nil
}

// Validate validates a Config struct (for testing)
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return apperrors.ConfigError("server.port", fmt.Sprintf("must be between 1 and 65535, got %d", c.Server.Port))
	}

	if c.Storage.Backend == "sqlite" && c.Database.Path == "" {
		return apperrors.ConfigError("database.path", "required when storage.backend is sqlite")
	}

	if c.Voices.MinDuration > c.Voices.MaxDuration {
		return apperrors.ConfigError("voices.min_duration", "exceeds voices.max_duration")
	}

	if c.Processing.Workers <= 0 {
		c.Processing.Workers = 1
	}

	if c.Processing.MaxQueueSize <= 0 {
		c.Processing.MaxQueueSize = 100
	}

	return nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8000)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 60*time.Second)
	viper.SetDefault("server.shutdown_timeout", 10*time.Second)
	viper.SetDefault("server.max_header_bytes", 1048576)
	viper.SetDefault("server.max_upload_bytes", 20*1024*1024)

	// Storage defaults
	viper.SetDefault("storage.backend", "memory")
	viper.SetDefault("storage.temp_dir", "./tmp")
	viper.SetDefault("storage.audio_dir", "./outputs")
	viper.SetDefault("storage.voice_dir", "./voices")
	viper.SetDefault("storage.max_temp_age", 1*time.Hour)
	viper.SetDefault("storage.cleanup_interval", 15*time.Minute)

	// Database defaults
	viper.SetDefault("database.path", "./data/stories.db")
	viper.SetDefault("database.enable_wal", true)
	viper.SetDefault("database.enable_foreign_keys", true)
	viper.SetDefault("database.log_queries", false)

	// Processing defaults
	viper.SetDefault("processing.workers", 1)
	viper.SetDefault("processing.max_queue_size", 100)
	viper.SetDefault("processing.poll_interval", 500*time.Millisecond)
	viper.SetDefault("processing.chunk_timeout", 0)

	// Story defaults
	viper.SetDefault("stories.max_text_length", 30000)
	viper.SetDefault("stories.default_chunk_size", 300)
	viper.SetDefault("stories.max_chunk_size", 1000)
	viper.SetDefault("stories.min_chunk_length", 80)
	viper.SetDefault("stories.languages", []string{"en", "zh"})
	viper.SetDefault("stories.default_title", "Untitled Story")

	// Voice defaults
	viper.SetDefault("voices.min_duration", 3*time.Second)
	viper.SetDefault("voices.max_duration", 30*time.Second)
	viper.SetDefault("voices.max_upload_size", 10*1024*1024)

	// TTS defaults
	viper.SetDefault("tts.backend", "tone")
	viper.SetDefault("tts.serialize", true)
	viper.SetDefault("tts.sample_rate", 24000)
	viper.SetDefault("tts.exec.command", "")
	viper.SetDefault("tts.exec.timeout", 5*time.Minute)
	viper.SetDefault("tts.http.url", "")
	viper.SetDefault("tts.http.timeout", 5*time.Minute)
	viper.SetDefault("tts.http.breaker_threshold", 5)
	viper.SetDefault("tts.http.breaker_timeout", 30*time.Second)

	// FFmpeg defaults
	viper.SetDefault("ffmpeg.enabled", false)
	viper.SetDefault("ffmpeg.ffmpeg_path", "ffmpeg")
	viper.SetDefault("ffmpeg.ffprobe_path", "ffprobe")
	viper.SetDefault("ffmpeg.timeout", 30*time.Second)

	// Event defaults
	viper.SetDefault("events.nats_url", "")
	viper.SetDefault("events.subject_prefix", "storyteller.stories")
	viper.SetDefault("events.client_name", "story-teller-backend")
	viper.SetDefault("events.timeout", 5*time.Second)

	// Rate limiting defaults
	viper.SetDefault("rate_limiting.enabled", true)
	viper.SetDefault("rate_limiting.endpoints", map[string]int{
		"synthesis": 10,
		"upload":    10,
		"default":   120,
	})

	// Security defaults
	viper.SetDefault("security.enable_cors", true)
	viper.SetDefault("security.cors_origins", []string{"*"})
	viper.SetDefault("security.cors_methods", []string{"GET", "POST", "OPTIONS"})
	viper.SetDefault("security.cors_headers", []string{"Content-Type", "Authorization"})
	viper.SetDefault("security.enable_recovery", true)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")
	viper.SetDefault("logging.output", "stdout")

	// Monitoring defaults
	viper.SetDefault("monitoring.enabled", false)
	viper.SetDefault("monitoring.metrics_path", "/metrics")
	viper.SetDefault("monitoring.service_name", "story-teller-backend")
}
