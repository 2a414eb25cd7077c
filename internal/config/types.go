package config

// ButtonStyle selects how the status bar draws each space
type ButtonStyle string

const (
	ButtonStyleNumeric ButtonStyle = "numeric"
	ButtonStyleWindows ButtonStyle = "windows"
)

// NeedsWindows returns true if the style draws window data
func (s ButtonStyle) NeedsWindows() bool {
	return s == ButtonStyleWindows
}

// Yabai transports
const (
	TransportSocket = "socket"
	TransportExec   = "exec"
)

// Config is the root configuration structure
type Config struct {
	Settings Settings      `yaml:"settings" json:"settings"`
	Refresh  RefreshConfig `yaml:"refresh" json:"refresh"`
	IPC      IPCConfig     `yaml:"ipc" json:"ipc"`
	Yabai    YabaiConfig   `yaml:"yabai" json:"yabai"`
}

// Settings contains presentation settings
type Settings struct {
	ButtonStyle          ButtonStyle `yaml:"buttonStyle" json:"buttonStyle"`
	ShowDisplaySeparator bool        `yaml:"showDisplaySeparator" json:"showDisplaySeparator"`
	ShowCurrentSpaceOnly bool        `yaml:"showCurrentSpaceOnly" json:"showCurrentSpaceOnly"`
}

// RefreshConfig tunes the refresh coordinator
type RefreshConfig struct {
	Interval   string `yaml:"interval" json:"interval"`     // "0" disables the periodic timer
	Debounce   string `yaml:"debounce" json:"debounce"`
	StatusFile string `yaml:"statusFile" json:"statusFile"` // "-" disables the snapshot file
}

// IPCConfig configures the local refresh socket
type IPCConfig struct {
	SocketPath  string `yaml:"socketPath" json:"socketPath"`
	ReadTimeout string `yaml:"readTimeout" json:"readTimeout"`
}

// YabaiConfig configures the window-manager client
type YabaiConfig struct {
	Transport      string `yaml:"transport" json:"transport"`
	SocketPath     string `yaml:"socketPath,omitempty" json:"socketPath,omitempty"` // Defaults to /tmp/yabai_$USER.socket
	Binary         string `yaml:"binary" json:"binary"`
	MaxTitleLength int    `yaml:"maxTitleLength" json:"maxTitleLength"`
	MaxSpaceIndex  int    `yaml:"maxSpaceIndex" json:"maxSpaceIndex"`
	MaxArgs        int    `yaml:"maxArgs" json:"maxArgs"`
	MaxArgLength   int    `yaml:"maxArgLength" json:"maxArgLength"`
}
