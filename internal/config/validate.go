package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if err := validateSettings(&c.Settings); err != nil {
		return fmt.Errorf("settings: %w", err)
	}
	if err := validateRefresh(&c.Refresh); err != nil {
		return fmt.Errorf("refresh: %w", err)
	}
	if err := validateIPC(&c.IPC); err != nil {
		return fmt.Errorf("ipc: %w", err)
	}
	if err := validateYabai(&c.Yabai); err != nil {
		return fmt.Errorf("yabai: %w", err)
	}
	return nil
}

func validateSettings(s *Settings) error {
	switch s.ButtonStyle {
	case ButtonStyleNumeric, ButtonStyleWindows:
	case "":
		s.ButtonStyle = ButtonStyleNumeric
	default:
		return fmt.Errorf("invalid buttonStyle: %s (valid: %s, %s)", s.ButtonStyle, ButtonStyleNumeric, ButtonStyleWindows)
	}
	return nil
}

func validateRefresh(r *RefreshConfig) error {
	interval, err := parseDuration(r.Interval)
	if err != nil {
		return fmt.Errorf("invalid interval %q: %w", r.Interval, err)
	}
	if interval < 0 {
		return fmt.Errorf("interval cannot be negative: %s", r.Interval)
	}
	if interval > 0 && interval < time.Second {
		return fmt.Errorf("interval must be at least 1s or 0 to disable: %s", r.Interval)
	}

	debounce, err := parseDuration(r.Debounce)
	if err != nil {
		return fmt.Errorf("invalid debounce %q: %w", r.Debounce, err)
	}
	if debounce < time.Millisecond || debounce > 5*time.Second {
		return fmt.Errorf("debounce must be between 1ms and 5s: %q", r.Debounce)
	}
	return nil
}

func validateIPC(i *IPCConfig) error {
	if strings.TrimSpace(i.SocketPath) == "" {
		return fmt.Errorf("socketPath cannot be empty")
	}
	timeout, err := parseDuration(i.ReadTimeout)
	if err != nil {
		return fmt.Errorf("invalid readTimeout %q: %w", i.ReadTimeout, err)
	}
	if timeout < 0 {
		return fmt.Errorf("readTimeout cannot be negative: %s", i.ReadTimeout)
	}
	return nil
}

func validateYabai(y *YabaiConfig) error {
	switch y.Transport {
	case TransportSocket, TransportExec:
	default:
		return fmt.Errorf("invalid transport: %s (valid: %s, %s)", y.Transport, TransportSocket, TransportExec)
	}
	if y.Transport == TransportExec && strings.TrimSpace(y.Binary) == "" {
		return fmt.Errorf("binary is required for the exec transport")
	}

	limits := []struct {
		name  string
		value int
	}{
		{"maxTitleLength", y.MaxTitleLength},
		{"maxSpaceIndex", y.MaxSpaceIndex},
		{"maxArgs", y.MaxArgs},
		{"maxArgLength", y.MaxArgLength},
	}
	for _, l := range limits {
		if l.value <= 0 {
			return fmt.Errorf("%s must be positive, got %d", l.name, l.value)
		}
	}
	return nil
}
