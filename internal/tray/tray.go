// Package tray presents the shared state model in the status bar. On macOS
// it drives a getlantern/systray menu; elsewhere it runs headless and only
// logs what it would draw.
package tray

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/lazywalker/YabaiIndicator/internal/config"
	"github.com/lazywalker/YabaiIndicator/internal/models"
	"github.com/lazywalker/YabaiIndicator/internal/state"
)

// MaxMenuSpaces bounds the space items in the status bar menu. systray
// can't remove items, so a fixed set of slots is shown and hidden.
const MaxMenuSpaces = 16

// Actions are the coordinator operations the menu can trigger
type Actions interface {
	FocusSpace(ctx context.Context, yabaiIndex int) error
	RequestRefresh() bool
}

// Tray holds the last rendered snapshot and the presentation settings
type Tray struct {
	actions Actions
	logger  zerolog.Logger

	mu       sync.Mutex
	settings config.Settings
	snap     state.Snapshot
	title    string
	tooltip  string

	quit     chan struct{}
	quitOnce sync.Once

	platform platformState
}

// New creates a tray. Call Run to show it.
func New(actions Actions, settings config.Settings, logger zerolog.Logger) *Tray {
	return &Tray{
		actions:  actions,
		logger:   logger,
		settings: settings,
		title:    ErrorGlyph,
		tooltip:  DefaultTooltip,
		quit:     make(chan struct{}),
	}
}

// Update re-renders from snap. Registered as a model observer.
func (t *Tray) Update(snap state.Snapshot) {
	t.mu.Lock()
	t.snap = snap
	t.mu.Unlock()
	t.redraw()
}

// SetSettings applies new presentation settings
func (t *Tray) SetSettings(s config.Settings) {
	t.mu.Lock()
	t.settings = s
	t.mu.Unlock()
	t.redraw()
}

// Title returns the current status bar title
func (t *Tray) Title() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.title
}

// Tooltip returns the current tooltip
func (t *Tray) Tooltip() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tooltip
}

// Quit closes the tray, making Run return
func (t *Tray) Quit() {
	t.quitOnce.Do(func() {
		close(t.quit)
		t.quitPlatform()
	})
}

// redraw renders under the lock, then hands the result to the platform
func (t *Tray) redraw() {
	t.mu.Lock()
	t.title = Title(t.snap, t.settings)
	t.tooltip = Tooltip(t.snap)
	v := view{
		title:   t.title,
		tooltip: t.tooltip,
		items:   Items(t.snap, t.settings),
	}
	t.mu.Unlock()

	t.logger.Debug().Str("title", v.title).Str("tooltip", v.tooltip).Msg("tray redraw")
	t.draw(v)
}

// focus is what clicking a space does
func (t *Tray) focus(yabaiIndex int) {
	if err := t.actions.FocusSpace(context.Background(), yabaiIndex); err != nil {
		t.logger.Warn().Err(err).Int("index", yabaiIndex).Msg("focus from menu failed")
	}
}

// menuSpaces returns the spaces that get a menu item and how many were
// left out for lack of slots
func menuSpaces(items []models.Space) ([]models.Space, int) {
	spaces := make([]models.Space, 0, len(items))
	for _, sp := range items {
		if !sp.IsDivider() {
			spaces = append(spaces, sp)
		}
	}
	if len(spaces) <= MaxMenuSpaces {
		return spaces, 0
	}
	return spaces[:MaxMenuSpaces], len(spaces) - MaxMenuSpaces
}

// view is one rendered frame
type view struct {
	title   string
	tooltip string
	items   []models.Space
}
