package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete service configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	HTTP    HTTPConfig    `yaml:"http"`
	Audio   AudioConfig   `yaml:"audio"`
	Stream  StreamConfig  `yaml:"stream"`
	Engine  EngineConfig  `yaml:"engine"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig contains WebSocket server configuration
type ServerConfig struct {
	Port           int    `yaml:"port"`
	BindAddress    string `yaml:"bind_address"`
	MaxMessageSize int64  `yaml:"max_message_size"` // bytes, per WebSocket frame
	IdleTimeout    int    `yaml:"idle_timeout"`     // seconds without any inbound frame
	PingInterval   int    `yaml:"ping_interval"`    // seconds between keep-alive pings
}

// HTTPConfig contains HTTP monitoring API server configuration
type HTTPConfig struct {
	Port    int    `yaml:"port"`
	Address string `yaml:"address"`
	Enabled bool   `yaml:"enabled"`
}

// AudioConfig contains audio input parameters
type AudioConfig struct {
	SampleRate int `yaml:"sample_rate"`
}

// StreamConfig contains the sliding-window transcription parameters
type StreamConfig struct {
	StepMs         int    `yaml:"step_ms"`          // inference cadence
	WindowMs       int    `yaml:"window_ms"`        // target inference window length
	KeepMs         int    `yaml:"keep_ms"`          // carried-over left context
	MaxTokens      int    `yaml:"max_tokens"`       // decoding cap per cycle
	Language       string `yaml:"language"`
	Translate      bool   `yaml:"translate"`
	UseContext     bool   `yaml:"use_context"`      // feed previous tokens back to the engine
	Timestamps     bool   `yaml:"timestamps"`       // annotate segments with [t0 --> t1]
	Diarize        bool   `yaml:"diarize"`          // append speaker-turn markers if reported
	TickIntervalMs int    `yaml:"tick_interval_ms"` // server-side processing tick
	SessionTimeout int    `yaml:"session_timeout"`  // seconds before an idle session is torn down
}

// EngineConfig contains ASR engine endpoint configuration
type EngineConfig struct {
	Endpoint      string `yaml:"endpoint"`
	APIKey        string `yaml:"api_key"`
	Timeout       int    `yaml:"timeout"` // seconds
	MaxRetries    int    `yaml:"max_retries"`
	MaxConcurrent int    `yaml:"max_concurrent"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// Validate performs comprehensive validation of the configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.HTTP.Validate(); err != nil {
		return fmt.Errorf("http config: %w", err)
	}

	if err := c.Audio.Validate(); err != nil {
		return fmt.Errorf("audio config: %w", err)
	}

	if err := c.Stream.Validate(); err != nil {
		return fmt.Errorf("stream config: %w", err)
	}

	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("engine config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates server configuration
func (s *ServerConfig) Validate() error {
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", s.Port)
	}

	if s.BindAddress == "" {
		return fmt.Errorf("bind_address cannot be empty")
	}

	if s.MaxMessageSize < 1024 {
		return fmt.Errorf("max_message_size must be at least 1024 bytes, got %d", s.MaxMessageSize)
	}

	if s.IdleTimeout < 1 {
		return fmt.Errorf("idle_timeout must be at least 1 second, got %d", s.IdleTimeout)
	}

	if s.PingInterval < 1 {
		return fmt.Errorf("ping_interval must be at least 1 second, got %d", s.PingInterval)
	}

	if s.PingInterval >= s.IdleTimeout {
		return fmt.Errorf("ping_interval (%d) must be shorter than idle_timeout (%d)",
			s.PingInterval, s.IdleTimeout)
	}

	return nil
}

// Validate validates HTTP configuration
func (h *HTTPConfig) Validate() error {
	if h.Enabled {
		if h.Port < 1 || h.Port > 65535 {
			return fmt.Errorf("http port must be between 1 and 65535, got %d", h.Port)
		}

		if h.Address == "" {
			return fmt.Errorf("http address cannot be empty when HTTP is enabled")
		}
	}

	return nil
}

// Validate validates audio configuration
func (a *AudioConfig) Validate() error {
	if a.SampleRate != 16000 {
		return fmt.Errorf("sample_rate must be 16000 Hz for the ASR engine, got %d", a.SampleRate)
	}

	return nil
}

// Validate validates stream configuration
func (s *StreamConfig) Validate() error {
	if s.StepMs < 100 {
		return fmt.Errorf("step_ms must be at least 100, got %d", s.StepMs)
	}

	if s.WindowMs < s.StepMs {
		return fmt.Errorf("window_ms (%d) must be at least step_ms (%d)", s.WindowMs, s.StepMs)
	}

	if s.KeepMs < 0 {
		return fmt.Errorf("keep_ms cannot be negative, got %d", s.KeepMs)
	}

	if s.KeepMs > s.WindowMs {
		return fmt.Errorf("keep_ms (%d) cannot exceed window_ms (%d)", s.KeepMs, s.WindowMs)
	}

	if s.MaxTokens < 1 {
		return fmt.Errorf("max_tokens must be at least 1, got %d", s.MaxTokens)
	}

	if s.Language == "" {
		return fmt.Errorf("language cannot be empty")
	}

	if s.TickIntervalMs < 10 {
		return fmt.Errorf("tick_interval_ms must be at least 10, got %d", s.TickIntervalMs)
	}

	if s.SessionTimeout < 1 {
		return fmt.Errorf("session_timeout must be at least 1 second, got %d", s.SessionTimeout)
	}

	return nil
}

// Validate validates engine configuration
func (e *EngineConfig) Validate() error {
	if e.Endpoint == "" {
		return fmt.Errorf("endpoint cannot be empty")
	}

	if e.Timeout < 1 {
		return fmt.Errorf("timeout must be at least 1 second, got %d", e.Timeout)
	}

	if e.MaxRetries < 0 {
		return fmt.Errorf("max_retries cannot be negative, got %d", e.MaxRetries)
	}

	if e.MaxConcurrent < 1 {
		return fmt.Errorf("max_concurrent must be at least 1, got %d", e.MaxConcurrent)
	}

	return nil
}

// Validate validates logging configuration
func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("level must be one of [debug, info, warn, error], got '%s'", l.Level)
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("format must be 'json' or 'text', got '%s'", l.Format)
	}

	return nil
}

// GetIdleTimeoutDuration returns the WebSocket idle timeout as a time.Duration
func (s *ServerConfig) GetIdleTimeoutDuration() time.Duration {
	return time.Duration(s.IdleTimeout) * time.Second
}

// GetPingIntervalDuration returns the keep-alive ping interval as a time.Duration
func (s *ServerConfig) GetPingIntervalDuration() time.Duration {
	return time.Duration(s.PingInterval) * time.Second
}

// GetStepDuration returns the inference step as a time.Duration
func (s *StreamConfig) GetStepDuration() time.Duration {
	return time.Duration(s.StepMs) * time.Millisecond
}

// GetWindowDuration returns the inference window length as a time.Duration
func (s *StreamConfig) GetWindowDuration() time.Duration {
	return time.Duration(s.WindowMs) * time.Millisecond
}

// GetKeepDuration returns the carry-over context length as a time.Duration
func (s *StreamConfig) GetKeepDuration() time.Duration {
	return time.Duration(s.KeepMs) * time.Millisecond
}

// GetTickIntervalDuration returns the processing tick interval as a time.Duration
func (s *StreamConfig) GetTickIntervalDuration() time.Duration {
	return time.Duration(s.TickIntervalMs) * time.Millisecond
}

// GetSessionTimeoutDuration returns the idle session timeout as a time.Duration
func (s *StreamConfig) GetSessionTimeoutDuration() time.Duration {
	return time.Duration(s.SessionTimeout) * time.Second
}

// GetTimeoutDuration returns the engine request timeout as a time.Duration
func (e *EngineConfig) GetTimeoutDuration() time.Duration {
	return time.Duration(e.Timeout) * time.Second
}
