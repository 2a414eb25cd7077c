package models

import "fmt"

// Rect represents pixel bounds in global display coordinates
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// HasArea returns true if both dimensions are positive
func (r Rect) HasArea() bool {
	return r.Width > 0 && r.Height > 0
}

// String returns a formatted representation like "1920x1080 @ (0, 0)"
func (r Rect) String() string {
	return fmt.Sprintf("%.0fx%.0f @ (%.0f, %.0f)", r.Width, r.Height, r.X, r.Y)
}

// Display represents a monitor managed by the OS
type Display struct {
	ID    uint64 `json:"id"`    // Platform display handle
	UUID  string `json:"uuid"`  // Stable identity across refreshes
	Index int    `json:"index"` // 0-based, OS ordering
	Frame Rect   `json:"frame"`
}

// SpaceType is the closed set of space kinds
type SpaceType int

const (
	SpaceStandard SpaceType = iota
	SpaceFullscreen
	SpaceDivider // Synthetic, inserted by the status bar between displays
)

// String returns the string representation of a SpaceType
func (t SpaceType) String() string {
	switch t {
	case SpaceStandard:
		return "standard"
	case SpaceFullscreen:
		return "fullscreen"
	case SpaceDivider:
		return "divider"
	default:
		return "unknown"
	}
}

// MarshalText encodes the type by name so snapshots stay readable
func (t SpaceType) MarshalText() ([]byte, error) {
	s := t.String()
	if s == "unknown" {
		return nil, fmt.Errorf("invalid space type %d", int(t))
	}
	return []byte(s), nil
}

// UnmarshalText decodes a type name
func (t *SpaceType) UnmarshalText(b []byte) error {
	parsed, ok := ParseSpaceType(string(b))
	if !ok {
		return fmt.Errorf("invalid space type %q", string(b))
	}
	*t = parsed
	return nil
}

// ParseSpaceType converts a string to SpaceType
func ParseSpaceType(s string) (SpaceType, bool) {
	switch s {
	case "standard":
		return SpaceStandard, true
	case "fullscreen":
		return SpaceFullscreen, true
	case "divider":
		return SpaceDivider, true
	default:
		return 0, false
	}
}

// Space represents a macOS space (virtual desktop)
type Space struct {
	SpaceID    uint64    `json:"spaceId"`
	UUID       string    `json:"uuid"`
	Visible    bool      `json:"visible"`
	Active     bool      `json:"active"`
	Display    int       `json:"display"`    // 1-based display ordinal
	Index      int       `json:"index"`      // 1-based, standard spaces only, 0 otherwise
	YabaiIndex int       `json:"yabaiIndex"` // 1-based global ordinal used by yabai
	Type       SpaceType `json:"type"`
}

// Divider returns the synthetic separator entry placed between displays
func Divider(display int) Space {
	return Space{Display: display, Type: SpaceDivider}
}

// IsDivider returns true for synthetic separator entries
func (s Space) IsDivider() bool {
	return s.Type == SpaceDivider
}

// Window represents an application window as reported by yabai
type Window struct {
	ID           uint64 `json:"id"`
	PID          uint64 `json:"pid"`
	App          string `json:"app"`
	Title        string `json:"title"`
	Frame        Rect   `json:"frame"`
	DisplayIndex int    `json:"displayIndex"`
	SpaceIndex   int    `json:"spaceIndex"`
}
