package config

import "time"

// Config represents the complete application configuration
type Config struct {
	Server       ServerConfig     `mapstructure:"server"`
	Storage      StorageConfig    `mapstructure:"storage"`
	Database     DatabaseConfig   `mapstructure:"database"`
	Processing   ProcessingConfig `mapstructure:"processing"`
	Stories      StoriesConfig    `mapstructure:"stories"`
	Voices       VoicesConfig     `mapstructure:"voices"`
	TTS          TTSConfig        `mapstructure:"tts"`
	FFmpeg       FFmpegConfig     `mapstructure:"ffmpeg"`
	Events       EventsConfig     `mapstructure:"events"`
	Monitoring   MonitoringConfig `mapstructure:"monitoring"`
	Logging      LoggingConfig    `mapstructure:"logging"`
	RateLimiting RateLimitConfig  `mapstructure:"rate_limiting"`
	Security     SecurityConfig   `mapstructure:"security"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxHeaderBytes  int           `mapstructure:"max_header_bytes"`
	MaxUploadBytes  int64         `mapstructure:"max_upload_bytes"`
}

// StorageConfig contains storage settings
type StorageConfig struct {
	// Backend selects the story and voice store: "memory" or "sqlite"
	Backend         string        `mapstructure:"backend"`
	TempDir         string        `mapstructure:"temp_dir"`
	AudioDir        string        `mapstructure:"audio_dir"`
	VoiceDir        string        `mapstructure:"voice_dir"`
	MaxTempAge      time.Duration `mapstructure:"max_temp_age"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Path              string `mapstructure:"path"`
	EnableWAL         bool   `mapstructure:"enable_wal"`
	EnableForeignKeys bool   `mapstructure:"enable_foreign_keys"`
	LogQueries        bool   `mapstructure:"log_queries"`
}

// ProcessingConfig contains synthesis queue settings
type ProcessingConfig struct {
	Workers      int           `mapstructure:"workers"`
	MaxQueueSize int           `mapstructure:"max_queue_size"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	// ChunkTimeout bounds a single backend call; zero disables the deadline
	ChunkTimeout time.Duration `mapstructure:"chunk_timeout"`
}

// StoriesConfig contains story validation settings
type StoriesConfig struct {
	MaxTextLength    int      `mapstructure:"max_text_length"`
	DefaultChunkSize int      `mapstructure:"default_chunk_size"`
	MaxChunkSize     int      `mapstructure:"max_chunk_size"`
	MinChunkLength   int      `mapstructure:"min_chunk_length"`
	Languages        []string `mapstructure:"languages"`
	DefaultTitle     string   `mapstructure:"default_title"`
}

// VoicesConfig contains reference voice validation settings
type VoicesConfig struct {
	MinDuration   time.Duration `mapstructure:"min_duration"`
	MaxDuration   time.Duration `mapstructure:"max_duration"`
	MaxUploadSize int64         `mapstructure:"max_upload_size"`
}

// TTSConfig selects and configures the synthesis backend
type TTSConfig struct {
	// Backend is one of "tone", "exec" or "http"
	Backend string `mapstructure:"backend"`
	// Serialize allows a single backend call at a time across the process
	Serialize  bool              `mapstructure:"serialize"`
	SampleRate int               `mapstructure:"sample_rate"`
	Exec       ExecBackendConfig `mapstructure:"exec"`
	HTTP       HTTPBackendConfig `mapstructure:"http"`
}

// ExecBackendConfig runs an external synthesis command
type ExecBackendConfig struct {
	Command string        `mapstructure:"command"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// HTTPBackendConfig calls a synthesis server over HTTP
type HTTPBackendConfig struct {
	URL              string        `mapstructure:"url"`
	Timeout          time.Duration `mapstructure:"timeout"`
	BreakerThreshold uint32        `mapstructure:"breaker_threshold"`
	BreakerTimeout   time.Duration `mapstructure:"breaker_timeout"`
}

// FFmpegConfig contains ffprobe settings used for non-WAV voice samples
type FFmpegConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	FFmpegPath  string        `mapstructure:"ffmpeg_path"`
	FFprobePath string        `mapstructure:"ffprobe_path"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// EventsConfig contains progress event publishing settings
type EventsConfig struct {
	NATSURL       string        `mapstructure:"nats_url"`
	SubjectPrefix string        `mapstructure:"subject_prefix"`
	ClientName    string        `mapstructure:"client_name"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// RateLimitConfig contains rate limiting settings
type RateLimitConfig struct {
	Enabled   bool           `mapstructure:"enabled"`
	Endpoints map[string]int `mapstructure:"endpoints"`
}

// SecurityConfig contains security settings
type SecurityConfig struct {
	EnableCORS     bool     `mapstructure:"enable_cors"`
	CORSOrigins    []string `mapstructure:"cors_origins"`
	CORSMethods    []string `mapstructure:"cors_methods"`
	CORSHeaders    []string `mapstructure:"cors_headers"`
	EnableRecovery bool     `mapstructure:"enable_recovery"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// MonitoringConfig contains monitoring settings
type MonitoringConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	MetricsPath string `mapstructure:"metrics_path"`
	ServiceName string `mapstructure:"service_name"`
}
