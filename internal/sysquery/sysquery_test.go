package sysquery

import (
	"context"
	"errors"
	"testing"

	"github.com/lazywalker/YabaiIndicator/internal/models"
)

type fakePlatform struct {
	ids        []uint64
	idsOK      bool
	infos      map[uint64]DisplayInfo
	activeUUID string
	activeOK   bool
	topology   interface{}
	topoOK     bool
}

func (f *fakePlatform) DisplayIDs() ([]uint64, bool) { return f.ids, f.idsOK }

func (f *fakePlatform) DisplayInfo(id uint64) (DisplayInfo, bool) {
	info, ok := f.infos[id]
	return info, ok
}

func (f *fakePlatform) ActiveDisplayUUID() (string, bool) { return f.activeUUID, f.activeOK }

func (f *fakePlatform) ManagedDisplaySpaces() (interface{}, bool) { return f.topology, f.topoOK }

func rawSpace(id float64, uuid string, typ float64) map[string]interface{} {
	return map[string]interface{}{"ManagedSpaceID": id, "uuid": uuid, "type": typ}
}

func rawDisplay(uuid, current string, spaces ...interface{}) map[string]interface{} {
	return map[string]interface{}{
		"Display Identifier": uuid,
		"Current Space":      map[string]interface{}{"uuid": current},
		"Spaces":             spaces,
	}
}

func twoDisplayTopology() []interface{} {
	return []interface{}{
		rawDisplay("D1", "s2",
			rawSpace(10, "s1", rawSpaceUser),
			rawSpace(11, "s2", rawSpaceUser),
			rawSpace(12, "fs", rawSpaceFullscreen),
		),
		rawDisplay("D2", "s4",
			rawSpace(13, "s4", rawSpaceUser),
			rawSpace(14, "s5", rawSpaceUser),
		),
	}
}

// === QueryDisplays ===

func TestQueryDisplays_FiltersInactiveAndEmptyFrames(t *testing.T) {
	p := &fakePlatform{
		ids:   []uint64{1, 2, 3, 4, 5},
		idsOK: true,
		infos: map[uint64]DisplayInfo{
			1: {UUID: "main", IsMain: true, Bounds: models.Rect{Width: 1440, Height: 900}},
			2: {UUID: "mirror", Bounds: models.Rect{Width: 1920, Height: 1080}},
			3: {UUID: "zero", IsActive: true, Bounds: models.Rect{Width: 0, Height: 1080}},
			4: {UUID: "ext", IsActive: true, Bounds: models.Rect{X: 1440, Width: 2560, Height: 1440}},
			5: {UUID: "", IsActive: true, Bounds: models.Rect{Width: 800, Height: 600}},
		},
	}

	displays, err := NewClient(p).QueryDisplays(context.Background())
	if err != nil {
		t.Fatalf("QueryDisplays() error: %v", err)
	}
	if len(displays) != 2 {
		t.Fatalf("expected 2 displays, got %d: %+v", len(displays), displays)
	}
	if displays[0].UUID != "main" || displays[1].UUID != "ext" {
		t.Errorf("unexpected displays: %+v", displays)
	}
	for i, d := range displays {
		if d.Index != i {
			t.Errorf("display %s Index = %d, want %d", d.UUID, d.Index, i)
		}
		if !d.Frame.HasArea() || d.UUID == "" {
			t.Errorf("display %+v violates geometry/uuid invariant", d)
		}
	}
}

func TestQueryDisplays_NoHandles(t *testing.T) {
	tests := []struct {
		name string
		p    *fakePlatform
	}{
		{"call failed", &fakePlatform{idsOK: false}},
		{"empty set", &fakePlatform{idsOK: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.p).QueryDisplays(context.Background())
			if !errors.Is(err, ErrConnectionFailed) {
				t.Errorf("error = %v, want ErrConnectionFailed", err)
			}
		})
	}
}

// === QuerySpaces ===

func TestQuerySpaces_Ordering(t *testing.T) {
	p := &fakePlatform{activeUUID: "D2", activeOK: true, topology: twoDisplayTopology(), topoOK: true}

	spaces, err := NewClient(p).QuerySpaces(context.Background())
	if err != nil {
		t.Fatalf("QuerySpaces() error: %v", err)
	}

	want := []models.Space{
		{SpaceID: 10, UUID: "s1", Display: 1, Index: 1, YabaiIndex: 1, Type: models.SpaceStandard},
		{SpaceID: 11, UUID: "s2", Display: 1, Index: 2, YabaiIndex: 2, Type: models.SpaceStandard, Visible: true},
		{SpaceID: 12, UUID: "fs", Display: 1, Index: 0, YabaiIndex: 3, Type: models.SpaceFullscreen},
		{SpaceID: 13, UUID: "s4", Display: 2, Index: 3, YabaiIndex: 4, Type: models.SpaceStandard, Visible: true, Active: true},
		{SpaceID: 14, UUID: "s5", Display: 2, Index: 4, YabaiIndex: 5, Type: models.SpaceStandard},
	}

	if len(spaces) != len(want) {
		t.Fatalf("expected %d spaces, got %d", len(want), len(spaces))
	}
	for i := range want {
		if spaces[i] != want[i] {
			t.Errorf("space %d = %+v, want %+v", i, spaces[i], want[i])
		}
	}
}

func TestQuerySpaces_Invariants(t *testing.T) {
	p := &fakePlatform{activeUUID: "D1", activeOK: true, topology: twoDisplayTopology(), topoOK: true}

	spaces, err := NewClient(p).QuerySpaces(context.Background())
	if err != nil {
		t.Fatalf("QuerySpaces() error: %v", err)
	}

	visiblePerDisplay := make(map[int]int)
	active := 0
	for _, s := range spaces {
		if s.SpaceID == 0 || s.Display < 1 {
			t.Errorf("space %+v has invalid id or display", s)
		}
		if s.Type == models.SpaceStandard && s.Index < 1 {
			t.Errorf("standard space %+v has index < 1", s)
		}
		if s.IsDivider() {
			t.Errorf("divider returned by query: %+v", s)
		}
		if s.Visible {
			visiblePerDisplay[s.Display]++
		}
		if s.Active {
			active++
			if !s.Visible || s.Display != 1 {
				t.Errorf("active space %+v must be visible on the active display", s)
			}
		}
	}
	for d, n := range visiblePerDisplay {
		if n != 1 {
			t.Errorf("display %d has %d visible spaces, want 1", d, n)
		}
	}
	if active != 1 {
		t.Errorf("expected exactly one active space, got %d", active)
	}
}

func TestQuerySpaces_SkipsUnknownTypes(t *testing.T) {
	topo := []interface{}{
		rawDisplay("D1", "a",
			rawSpace(1, "a", rawSpaceUser),
			rawSpace(2, "sys", 2),
			rawSpace(3, "b", rawSpaceUser),
		),
	}
	p := &fakePlatform{activeUUID: "D1", activeOK: true, topology: topo, topoOK: true}

	spaces, err := NewClient(p).QuerySpaces(context.Background())
	if err != nil {
		t.Fatalf("QuerySpaces() error: %v", err)
	}
	if len(spaces) != 2 {
		t.Fatalf("expected 2 spaces, got %d", len(spaces))
	}
	if spaces[1].SpaceID != 3 || spaces[1].YabaiIndex != 2 || spaces[1].Index != 2 {
		t.Errorf("unexpected second space: %+v", spaces[1])
	}
}

func TestQuerySpaces_Errors(t *testing.T) {
	tests := []struct {
		name string
		p    *fakePlatform
		want error
	}{
		{
			name: "no active display",
			p:    &fakePlatform{activeOK: false, topology: twoDisplayTopology(), topoOK: true},
			want: ErrConnectionFailed,
		},
		{
			name: "no topology",
			p:    &fakePlatform{activeUUID: "D1", activeOK: true, topoOK: false},
			want: ErrDisplayQueryFailed,
		},
		{
			name: "topology not a list",
			p:    &fakePlatform{activeUUID: "D1", activeOK: true, topology: map[string]interface{}{}, topoOK: true},
			want: ErrSpaceQueryFailed,
		},
		{
			name: "malformed display aborts batch",
			p: &fakePlatform{activeUUID: "D1", activeOK: true, topoOK: true, topology: []interface{}{
				rawDisplay("D1", "a", rawSpace(1, "a", rawSpaceUser)),
				"not a display",
			}},
			want: ErrInvalidDisplayData,
		},
		{
			name: "display without space list",
			p: &fakePlatform{activeUUID: "D1", activeOK: true, topoOK: true, topology: []interface{}{
				map[string]interface{}{
					"Display Identifier": "D1",
					"Current Space":      map[string]interface{}{"uuid": "a"},
				},
			}},
			want: ErrInvalidDisplayData,
		},
		{
			name: "space without id",
			p: &fakePlatform{activeUUID: "D1", activeOK: true, topoOK: true, topology: []interface{}{
				rawDisplay("D1", "a", map[string]interface{}{"uuid": "a", "type": float64(0)}),
			}},
			want: ErrInvalidSpaceData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spaces, err := NewClient(tt.p).QuerySpaces(context.Background())
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
			if spaces != nil {
				t.Errorf("expected nil spaces on error, got %+v", spaces)
			}
		})
	}
}

func TestQuerySpaces_Cancelled(t *testing.T) {
	p := &fakePlatform{activeUUID: "D1", activeOK: true, topology: twoDisplayTopology(), topoOK: true}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewClient(p).QuerySpaces(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
