package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lazywalker/YabaiIndicator/internal/ipc"
	"github.com/lazywalker/YabaiIndicator/internal/state"
	"github.com/lazywalker/YabaiIndicator/internal/yabai"
)

const (
	DefaultConfigDir  = ".config/yabaiindicator"
	DefaultConfigFile = "config.yaml"

	DefaultInterval    = "5s"
	DefaultDebounce    = "100ms"
	DefaultReadTimeout = "2s"
	DefaultBinary      = "yabai"

	// StatusFileDisabled turns off snapshot persistence
	StatusFileDisabled = "-"
)

// Default returns the configuration used when no file exists
func Default() *Config {
	return &Config{
		Settings: Settings{
			ButtonStyle:          ButtonStyleNumeric,
			ShowDisplaySeparator: true,
		},
		Refresh: RefreshConfig{
			Interval:   DefaultInterval,
			Debounce:   DefaultDebounce,
			StatusFile: state.GetStatePath(),
		},
		IPC: IPCConfig{
			SocketPath:  ipc.DefaultSocketPath,
			ReadTimeout: DefaultReadTimeout,
		},
		Yabai: YabaiConfig{
			Transport:      TransportSocket,
			Binary:         DefaultBinary,
			MaxTitleLength: yabai.DefaultMaxTitleLength,
			MaxSpaceIndex:  yabai.DefaultMaxSpaceIndex,
			MaxArgs:        yabai.DefaultMaxArgs,
			MaxArgLength:   yabai.DefaultMaxArgLength,
		},
	}
}

// LoadConfig loads configuration from the specified path or default location.
// If path is empty, uses ~/.config/yabaiindicator/config.yaml (or .json) and
// falls back to defaults when neither exists.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		found, ok := findDefaultConfig()
		if !ok {
			return Default(), nil
		}
		path = found
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return LoadConfigFromBytes(data, ext)
}

// LoadConfigFromBytes loads configuration from raw bytes.
// format should be "yaml" or "json". Unset fields keep their defaults.
func LoadConfigFromBytes(data []byte, format string) (*Config, error) {
	cfg := Default()

	switch format {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case "json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", format)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetConfigPath returns the default config file path
func GetConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, DefaultConfigDir, DefaultConfigFile)
}

// ResolvePath returns the file LoadConfig(path) reads: path itself when
// set, otherwise the existing default file, falling back to the default
// YAML location when none exists yet
func ResolvePath(path string) string {
	if path != "" {
		return path
	}
	if found, ok := findDefaultConfig(); ok {
		return found
	}
	return GetConfigPath()
}

func findDefaultConfig() (string, bool) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", false
	}
	// Try YAML first, then JSON
	for _, name := range []string{"config.yaml", "config.json"} {
		p := filepath.Join(home, DefaultConfigDir, name)
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}

// Marshal renders the config as YAML
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// WriteDefault writes the default config to path, refusing to overwrite
func WriteDefault(path string) error {
	if path == "" {
		path = GetConfigPath()
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	data, err := Default().Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// RefreshInterval returns the periodic refresh interval, zero when disabled
func (c *Config) RefreshInterval() time.Duration {
	d, _ := parseDuration(c.Refresh.Interval)
	return d
}

// DebounceWindow returns the refresh debounce threshold
func (c *Config) DebounceWindow() time.Duration {
	d, _ := parseDuration(c.Refresh.Debounce)
	return d
}

// IPCReadTimeout returns how long the IPC server waits for a command line
func (c *Config) IPCReadTimeout() time.Duration {
	d, _ := parseDuration(c.IPC.ReadTimeout)
	return d
}

// StatusFilePath returns the snapshot path, or "" if persistence is disabled
func (c *Config) StatusFilePath() string {
	if c.Refresh.StatusFile == StatusFileDisabled {
		return ""
	}
	return expandHome(c.Refresh.StatusFile)
}

// YabaiSocketPath returns the configured yabai socket or yabai's default
func (c *Config) YabaiSocketPath() string {
	if c.Yabai.SocketPath == "" {
		return yabai.DefaultSocketPath()
	}
	return expandHome(c.Yabai.SocketPath)
}

// YabaiLimits returns the outbound request limits
func (c *Config) YabaiLimits() yabai.Limits {
	return yabai.Limits{
		MaxArgs:        c.Yabai.MaxArgs,
		MaxArgLength:   c.Yabai.MaxArgLength,
		MaxTitleLength: c.Yabai.MaxTitleLength,
		MaxSpaceIndex:  c.Yabai.MaxSpaceIndex,
	}
}

// NewYabaiTransport builds the configured transport
func (c *Config) NewYabaiTransport() yabai.Transport {
	if c.Yabai.Transport == TransportExec {
		return yabai.NewExecTransport(c.Yabai.Binary)
	}
	return yabai.NewSocketTransport(c.YabaiSocketPath())
}

// parseDuration accepts Go duration strings plus a bare "0"
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	return p
}
