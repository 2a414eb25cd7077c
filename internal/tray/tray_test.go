package tray

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/lazywalker/YabaiIndicator/internal/config"
	"github.com/lazywalker/YabaiIndicator/internal/models"
	"github.com/lazywalker/YabaiIndicator/internal/state"
)

// twoDisplays has 1 [2] F on the main display and (3) on the second
func twoDisplays() state.Snapshot {
	return state.Snapshot{
		Spaces: []models.Space{
			{SpaceID: 1, UUID: "a", Display: 1, Index: 1, YabaiIndex: 1, Type: models.SpaceStandard},
			{SpaceID: 2, UUID: "b", Display: 1, Index: 2, YabaiIndex: 2, Type: models.SpaceStandard, Visible: true, Active: true},
			{SpaceID: 3, UUID: "c", Display: 1, YabaiIndex: 3, Type: models.SpaceFullscreen},
			{SpaceID: 4, UUID: "d", Display: 2, Index: 3, YabaiIndex: 4, Type: models.SpaceStandard, Visible: true},
		},
		Windows: []models.Window{
			{ID: 10, SpaceIndex: 2},
			{ID: 11, SpaceIndex: 2},
			{ID: 12, SpaceIndex: 4},
		},
	}
}

// === Render Tests ===

func TestItems(t *testing.T) {
	tests := []struct {
		name     string
		settings config.Settings
		wantIDs  []uint64 // 0 marks a divider
	}{
		{"plain", config.Settings{}, []uint64{1, 2, 3, 4}},
		{"separator", config.Settings{ShowDisplaySeparator: true}, []uint64{1, 2, 3, 0, 4}},
		{"current only", config.Settings{ShowCurrentSpaceOnly: true}, []uint64{2, 4}},
		{"current only with separator", config.Settings{ShowCurrentSpaceOnly: true, ShowDisplaySeparator: true}, []uint64{2, 0, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := Items(twoDisplays(), tt.settings)
			if len(items) != len(tt.wantIDs) {
				t.Fatalf("got %d items, want %d: %+v", len(items), len(tt.wantIDs), items)
			}
			for i, want := range tt.wantIDs {
				if items[i].SpaceID != want {
					t.Errorf("item %d SpaceID = %d, want %d", i, items[i].SpaceID, want)
				}
				if want == 0 && (!items[i].IsDivider() || items[i].UUID != "") {
					t.Errorf("item %d should be a divider: %+v", i, items[i])
				}
			}
		})
	}
}

func TestTitle(t *testing.T) {
	tests := []struct {
		name     string
		settings config.Settings
		want     string
	}{
		{"numeric", config.Settings{ButtonStyle: config.ButtonStyleNumeric, ShowDisplaySeparator: true}, "1 [2] F | (3)"},
		{"windows", config.Settings{ButtonStyle: config.ButtonStyleWindows}, "1:0 [2:2] F (3:1)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Title(twoDisplays(), tt.settings); got != tt.want {
				t.Errorf("Title() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTitle_Error(t *testing.T) {
	snap := twoDisplays()
	snap.ErrorMessage = "Windows unavailable: yabai down"

	if got := Title(snap, config.Settings{}); got != "⚠ 1 [2] F (3)" {
		t.Errorf("Title() = %q", got)
	}
	if got := Tooltip(snap); got != snap.ErrorMessage {
		t.Errorf("Tooltip() = %q", got)
	}

	empty := state.Snapshot{ErrorMessage: "Spaces unavailable: x"}
	if got := Title(empty, config.Settings{}); got != ErrorGlyph {
		t.Errorf("Title() = %q, want bare glyph", got)
	}
	if got := Tooltip(state.Snapshot{}); got != DefaultTooltip {
		t.Errorf("Tooltip() = %q", got)
	}
}

func TestMenuSpaces(t *testing.T) {
	many := func(n int) []models.Space {
		var items []models.Space
		for i := 1; i <= n; i++ {
			items = append(items, models.Space{SpaceID: uint64(i), Display: 1, Index: i, YabaiIndex: i, Type: models.SpaceStandard})
			if i%4 == 0 {
				items = append(items, models.Divider(1))
			}
		}
		return items
	}

	tests := []struct {
		name        string
		items       []models.Space
		wantShown   int
		wantDropped int
	}{
		{"fits", many(3), 3, 0},
		{"exactly full", many(MaxMenuSpaces), MaxMenuSpaces, 0},
		{"overflow", many(20), MaxMenuSpaces, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shown, dropped := menuSpaces(tt.items)
			if len(shown) != tt.wantShown || dropped != tt.wantDropped {
				t.Fatalf("menuSpaces() = %d shown, %d dropped, want %d, %d", len(shown), dropped, tt.wantShown, tt.wantDropped)
			}
			for _, sp := range shown {
				if sp.IsDivider() {
					t.Errorf("divider should not get a menu item: %+v", sp)
				}
			}
		})
	}
}

// === Tray Tests ===

type fakeActions struct {
	focused   []int
	refreshes int
}

func (f *fakeActions) FocusSpace(ctx context.Context, yabaiIndex int) error {
	f.focused = append(f.focused, yabaiIndex)
	return nil
}

func (f *fakeActions) RequestRefresh() bool {
	f.refreshes++
	return true
}

func TestTray_UpdateAndSettings(t *testing.T) {
	tr := New(&fakeActions{}, config.Settings{}, zerolog.Nop())

	tr.Update(twoDisplays())
	if got := tr.Title(); got != "1 [2] F (3)" {
		t.Errorf("Title() = %q", got)
	}

	tr.SetSettings(config.Settings{ShowCurrentSpaceOnly: true})
	if got := tr.Title(); got != "[2] (3)" {
		t.Errorf("Title() after SetSettings = %q", got)
	}
	if got := tr.Tooltip(); got != DefaultTooltip {
		t.Errorf("Tooltip() = %q", got)
	}
}

func TestTray_Focus(t *testing.T) {
	actions := &fakeActions{}
	tr := New(actions, config.Settings{}, zerolog.Nop())

	tr.focus(4)
	if len(actions.focused) != 1 || actions.focused[0] != 4 {
		t.Errorf("focused = %v", actions.focused)
	}
}
