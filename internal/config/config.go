package config

import (
	"time"

	"github.com/weiawesome/wes-io-live/liveroom-console/internal/domain"
	pkgconfig "github.com/weiawesome/wes-io-live/liveroom-console/pkg/config"
)

// Config holds all configuration for the live room console.
type Config struct {
	Backend     BackendConfig      `mapstructure:"backend"`
	Auth        AuthConfig         `mapstructure:"auth"`
	Room        RoomConfig         `mapstructure:"room"`
	Environment domain.Environment `mapstructure:"environment"`
	Clipboard   ClipboardConfig    `mapstructure:"clipboard"`
	UI          UIConfig           `mapstructure:"ui"`
	Log         LogConfig          `mapstructure:"log"`
}

// BackendConfig describes the live room REST API.
type BackendConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	PathPrefix string        `mapstructure:"path_prefix"`
	Timeout    time.Duration `mapstructure:"timeout"` // 0 disables the client timeout
}

// AuthConfig holds the bearer credential. Token wins over TokenFile.
type AuthConfig struct {
	Token     string `mapstructure:"token"`
	TokenFile string `mapstructure:"token_file"`
}

// RoomConfig holds room list behaviour.
type RoomConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	DefaultTitle string        `mapstructure:"default_title"`
}

// ClipboardConfig toggles the system clipboard.
type ClipboardConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	Language string `mapstructure:"language"` // "en" or "zh"
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// Load reads configuration from config.yaml and LIVEROOM_* env vars. The
// directory defaults to ./config and can be moved with LIVEROOM_CONFIG_DIR.
func Load() (*Config, error) {
	v, err := pkgconfig.Load(pkgconfig.GetEnv("LIVEROOM_CONFIG_DIR", "./config"), "config", "LIVEROOM")
	if err != nil {
		return nil, err
	}

	// Set defaults
	v.SetDefault("backend.base_url", "http://localhost:2022")
	v.SetDefault("backend.path_prefix", "/terraform/v1/live/room")
	v.SetDefault("backend.timeout", 0)
	v.SetDefault("room.poll_interval", 3*time.Second)
	v.SetDefault("room.default_title", "My Live Room")
	v.SetDefault("environment.host", "localhost")
	v.SetDefault("environment.scheme", "http")
	v.SetDefault("environment.http_port", 0)
	v.SetDefault("environment.rtmp_port", 1935)
	v.SetDefault("environment.srt_port", 10080)
	v.SetDefault("clipboard.enabled", true)
	v.SetDefault("ui.language", "en")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// Bind environment variables
	v.BindEnv("backend.base_url", "LIVEROOM_BACKEND_URL")
	v.BindEnv("backend.timeout", "LIVEROOM_BACKEND_TIMEOUT")
	v.BindEnv("auth.token", "LIVEROOM_TOKEN")
	v.BindEnv("auth.token_file", "LIVEROOM_TOKEN_FILE")
	v.BindEnv("room.poll_interval", "LIVEROOM_POLL_INTERVAL")
	v.BindEnv("environment.host", "LIVEROOM_HOST")
	v.BindEnv("environment.scheme", "LIVEROOM_SCHEME")
	v.BindEnv("clipboard.enabled", "LIVEROOM_CLIPBOARD")
	v.BindEnv("ui.language", "LIVEROOM_LANGUAGE")
	v.BindEnv("log.level", "LOG_LEVEL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.Room.PollInterval <= 0 {
		cfg.Room.PollInterval = 3 * time.Second
	}

	return &cfg, nil
}
