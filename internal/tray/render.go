package tray

import (
	"strconv"
	"strings"

	"github.com/lazywalker/YabaiIndicator/internal/config"
	"github.com/lazywalker/YabaiIndicator/internal/models"
	"github.com/lazywalker/YabaiIndicator/internal/state"
)

const (
	// ErrorGlyph prefixes the title while any query category is failing
	ErrorGlyph = "⚠"
	// DefaultTooltip is shown when nothing is wrong
	DefaultTooltip = "YabaiIndicator"
)

// Items returns the spaces to draw, in order, with a divider between
// displays when separators are enabled
func Items(snap state.Snapshot, s config.Settings) []models.Space {
	items := make([]models.Space, 0, len(snap.Spaces)+len(snap.Displays))

	lastDisplay := 0
	for _, sp := range snap.Spaces {
		if s.ShowCurrentSpaceOnly && !sp.Visible {
			continue
		}
		if s.ShowDisplaySeparator && lastDisplay != 0 && sp.Display != lastDisplay {
			items = append(items, models.Divider(sp.Display))
		}
		lastDisplay = sp.Display
		items = append(items, sp)
	}
	return items
}

// WindowCounts returns the number of windows per yabai space index
func WindowCounts(windows []models.Window) map[int]int {
	counts := make(map[int]int)
	for _, w := range windows {
		counts[w.SpaceIndex]++
	}
	return counts
}

// Label is the text for one space button
func Label(sp models.Space, windows int, style config.ButtonStyle) string {
	var label string
	switch sp.Type {
	case models.SpaceDivider:
		return "|"
	case models.SpaceFullscreen:
		label = "F"
	default:
		label = strconv.Itoa(sp.Index)
		if style.NeedsWindows() {
			label += ":" + strconv.Itoa(windows)
		}
	}

	switch {
	case sp.Active:
		return "[" + label + "]"
	case sp.Visible:
		return "(" + label + ")"
	default:
		return label
	}
}

// Title renders the whole status bar title
func Title(snap state.Snapshot, s config.Settings) string {
	counts := WindowCounts(snap.Windows)

	items := Items(snap, s)
	labels := make([]string, 0, len(items))
	for _, sp := range items {
		labels = append(labels, Label(sp, counts[sp.YabaiIndex], s.ButtonStyle))
	}
	title := strings.Join(labels, " ")

	if snap.IsError() {
		if title == "" {
			return ErrorGlyph
		}
		return ErrorGlyph + " " + title
	}
	return title
}

// Tooltip is the error message, or the app name when healthy
func Tooltip(snap state.Snapshot) string {
	if snap.IsError() {
		return snap.ErrorMessage
	}
	return DefaultTooltip
}
