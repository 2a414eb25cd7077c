package state

import (
	"slices"
	"time"

	"github.com/lazywalker/YabaiIndicator/internal/models"
)

// Model is the single mutable snapshot the status bar renders from.
// It carries no lock: all writes and reads happen on the main loop.
type Model struct {
	Displays     []models.Display
	Spaces       []models.Space
	Windows      []models.Window
	ErrorMessage string
	UpdatedAt    time.Time

	observers []func(Snapshot)
}

// Snapshot is a detached copy of the model
type Snapshot struct {
	Version      int              `json:"version"`
	Displays     []models.Display `json:"displays"`
	Spaces       []models.Space   `json:"spaces"`
	Windows      []models.Window  `json:"windows"`
	ErrorMessage string           `json:"errorMessage,omitempty"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

// IsError returns true if the snapshot is in the error state
func (s Snapshot) IsError() bool {
	return s.ErrorMessage != ""
}

// Update is one batch of changes. Fields are only applied when the matching
// Set flag is true, so a space-only refresh leaves windows untouched.
type Update struct {
	SetTopology bool
	Displays    []models.Display
	Spaces      []models.Space

	SetWindows bool
	Windows    []models.Window

	SetError     bool
	ErrorMessage string // Empty clears the error
}

// New creates an empty model
func New() *Model {
	return &Model{
		Displays: []models.Display{},
		Spaces:   []models.Space{},
		Windows:  []models.Window{},
	}
}

// IsError returns true if the last refresh failed for some category
func (m *Model) IsError() bool {
	return m.ErrorMessage != ""
}

// Observe registers fn to run after every batch that changed a value
func (m *Model) Observe(fn func(Snapshot)) {
	m.observers = append(m.observers, fn)
}

// Apply mutates the model in one batch and notifies observers on change.
// Returns true if any value changed.
func (m *Model) Apply(u Update) bool {
	changed := false

	if u.SetTopology {
		displays := nonNil(u.Displays)
		spaces := nonNil(u.Spaces)
		if !slices.Equal(m.Displays, displays) {
			m.Displays = displays
			changed = true
		}
		if !slices.Equal(m.Spaces, spaces) {
			m.Spaces = spaces
			changed = true
		}
	}

	if u.SetWindows {
		windows := nonNil(u.Windows)
		if !slices.Equal(m.Windows, windows) {
			m.Windows = windows
			changed = true
		}
	}

	if u.SetError && m.ErrorMessage != u.ErrorMessage {
		m.ErrorMessage = u.ErrorMessage
		changed = true
	}

	if !changed {
		return false
	}

	m.UpdatedAt = time.Now()
	snap := m.Snapshot()
	for _, fn := range m.observers {
		fn(snap)
	}
	return true
}

// Snapshot returns a copy safe to hand to other goroutines
func (m *Model) Snapshot() Snapshot {
	return Snapshot{
		Version:      SnapshotVersion,
		Displays:     slices.Clone(m.Displays),
		Spaces:       slices.Clone(m.Spaces),
		Windows:      slices.Clone(m.Windows),
		ErrorMessage: m.ErrorMessage,
		UpdatedAt:    m.UpdatedAt,
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
