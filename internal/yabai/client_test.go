package yabai

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
)

type fakeTransport struct {
	calls [][]string
	reply []byte
	err   error
}

func (f *fakeTransport) Send(ctx context.Context, args []string) ([]byte, error) {
	f.calls = append(f.calls, args)
	return f.reply, f.err
}

const windowsReply = `[
	{"id": 101, "pid": 500, "app": "Safari", "title": "Home", "frame": {"x": 0, "y": 25, "w": 1440, "h": 875}, "display": 1, "space": 2},
	{"id": 102, "pid": 501, "app": "", "title": "nameless", "frame": {"x": 0, "y": 0, "w": 10, "h": 10}, "display": 1, "space": 1},
	{"id": 103, "pid": 502, "app": "kitty", "frame": {"x": 0, "y": 0, "w": 10, "h": 10}, "display": 1, "space": 1},
	{"pid": 503, "app": "Mail", "title": "Inbox", "frame": {"x": 0, "y": 0, "w": 10, "h": 10}, "display": 1, "space": 1},
	"garbage",
	{"id": 18446744073709551615, "pid": 504, "app": "Notes", "title": "", "frame": {"x": 1440, "y": 0, "width": 800, "height": 600}, "display": 2, "space": 4}
]`

// === Validation ===

func TestRequest_RejectsBeforeTransport(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"empty", nil},
		{"null byte", []string{"query", "--windows\x00--destroy"}},
		{"too many", strings.Fields(strings.Repeat("a ", DefaultMaxArgs+1))},
		{"too long", []string{"query", strings.Repeat("x", DefaultMaxArgLength+1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ft := &fakeTransport{}
			c := NewClient(ft, Limits{})

			_, err := c.Request(context.Background(), tt.args...)
			if !IsInvalidInput(err) {
				t.Errorf("error = %v, want InvalidInputError", err)
			}
			if len(ft.calls) != 0 {
				t.Errorf("transport called %d times, want 0", len(ft.calls))
			}
		})
	}
}

func TestRequest_AcceptsLimits(t *testing.T) {
	ft := &fakeTransport{}
	c := NewClient(ft, Limits{})

	args := strings.Fields(strings.Repeat("a ", DefaultMaxArgs))
	args[0] = strings.Repeat("x", DefaultMaxArgLength)
	if _, err := c.Request(context.Background(), args...); err != nil {
		t.Fatalf("Request() error: %v", err)
	}
	if len(ft.calls) != 1 {
		t.Errorf("transport called %d times, want 1", len(ft.calls))
	}
}

func TestRequest_ParseFailure(t *testing.T) {
	ft := &fakeTransport{reply: []byte("{not json")}
	c := NewClient(ft, Limits{})

	_, err := c.Request(context.Background(), "query", "--spaces")
	if !errors.Is(err, ErrJSONParsingFailed) {
		t.Errorf("error = %v, want ErrJSONParsingFailed", err)
	}
}

func TestRequest_TransportErrorPassesThrough(t *testing.T) {
	ft := &fakeTransport{err: &CommandFailedError{Code: 1, Message: "unknown command"}}
	c := NewClient(ft, Limits{})

	_, err := c.Request(context.Background(), "query", "--bogus")
	var cmdErr *CommandFailedError
	if !errors.As(err, &cmdErr) || cmdErr.Code != 1 {
		t.Errorf("error = %v, want CommandFailedError(1)", err)
	}
}

// === QueryWindows ===

func TestQueryWindows_DropsMalformedRecords(t *testing.T) {
	ft := &fakeTransport{reply: []byte(windowsReply)}
	c := NewClient(ft, Limits{})

	windows, err := c.QueryWindows(context.Background())
	if err != nil {
		t.Fatalf("QueryWindows() error: %v", err)
	}

	if len(ft.calls) != 1 || strings.Join(ft.calls[0], " ") != "query --windows" {
		t.Errorf("unexpected transport calls: %v", ft.calls)
	}
	if len(windows) != 2 {
		t.Fatalf("expected 2 windows, got %d: %+v", len(windows), windows)
	}

	if w := windows[0]; w.ID != 101 || w.PID != 500 || w.App != "Safari" || w.SpaceIndex != 2 || w.Frame.Width != 1440 {
		t.Errorf("unexpected first window: %+v", w)
	}
	if w := windows[1]; w.ID != 18446744073709551615 || w.DisplayIndex != 2 || w.Frame.Height != 600 {
		t.Errorf("unexpected second window: %+v", w)
	}
}

func TestQueryWindows_TitleLength(t *testing.T) {
	reply := `[
		{"id": 1, "pid": 1, "app": "a", "title": "` + strings.Repeat("t", 8) + `", "frame": {"x": 0, "y": 0, "w": 1, "h": 1}, "display": 1, "space": 1},
		{"id": 2, "pid": 1, "app": "a", "title": "` + strings.Repeat("t", 9) + `", "frame": {"x": 0, "y": 0, "w": 1, "h": 1}, "display": 1, "space": 1}
	]`
	c := NewClient(&fakeTransport{reply: []byte(reply)}, Limits{MaxTitleLength: 8})

	windows, err := c.QueryWindows(context.Background())
	if err != nil {
		t.Fatalf("QueryWindows() error: %v", err)
	}
	if len(windows) != 1 || windows[0].ID != 1 {
		t.Errorf("expected only window 1, got %+v", windows)
	}
}

func TestQueryWindows_NotAList(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"object", `{"id": 1}`},
		{"scalar", `42`},
		{"empty", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClient(&fakeTransport{reply: []byte(tt.reply)}, Limits{})
			_, err := c.QueryWindows(context.Background())
			if !errors.Is(err, ErrInvalidResponse) {
				t.Errorf("error = %v, want ErrInvalidResponse", err)
			}
		})
	}
}

// === FocusSpace ===

func TestFocusSpace(t *testing.T) {
	tests := []struct {
		index     int
		wantCalls int
	}{
		{-1, 0},
		{0, 0},
		{1, 1},
		{7, 1},
		{DefaultMaxSpaceIndex, 1},
		{DefaultMaxSpaceIndex + 1, 0},
	}

	for _, tt := range tests {
		ft := &fakeTransport{}
		c := NewClient(ft, Limits{})

		err := c.FocusSpace(context.Background(), tt.index)
		if len(ft.calls) != tt.wantCalls {
			t.Errorf("FocusSpace(%d) made %d calls, want %d", tt.index, len(ft.calls), tt.wantCalls)
		}
		if tt.wantCalls == 0 {
			if !IsInvalidInput(err) {
				t.Errorf("FocusSpace(%d) error = %v, want InvalidInputError", tt.index, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("FocusSpace(%d) unexpected error: %v", tt.index, err)
		}
		want := []string{"space", "--focus", strconv.Itoa(tt.index)}
		if strings.Join(ft.calls[0], "|") != strings.Join(want, "|") {
			t.Errorf("FocusSpace(%d) sent %q, want %q", tt.index, ft.calls[0], want)
		}
	}
}

// === Signals ===

func TestAddSignal(t *testing.T) {
	ft := &fakeTransport{}
	c := NewClient(ft, Limits{})

	sig := IndicatorSignals("/tmp/yabai-indicator.socket")[0]
	if err := c.AddSignal(context.Background(), sig); err != nil {
		t.Fatalf("AddSignal() error: %v", err)
	}

	if len(ft.calls) != 2 {
		t.Fatalf("expected remove + add, got %v", ft.calls)
	}
	if strings.Join(ft.calls[0], " ") != "signal --remove yabai-indicator-space_changed" {
		t.Errorf("unexpected remove call: %q", ft.calls[0])
	}
	add := ft.calls[1]
	if add[0] != "signal" || add[1] != "--add" || add[2] != "event=space_changed" {
		t.Errorf("unexpected add call: %q", add)
	}
	if !strings.Contains(add[3], "refresh spaces") || !strings.Contains(add[3], "/tmp/yabai-indicator.socket") {
		t.Errorf("action = %q, missing refresh line or socket", add[3])
	}
}

func TestIndicatorSignals_QuotesSocketPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/tmp/yabai-indicator.socket", `echo 'refresh spaces' | nc -U '/tmp/yabai-indicator.socket'`},
		{"/tmp/my dir/s.sock", `echo 'refresh spaces' | nc -U '/tmp/my dir/s.sock'`},
		{"/tmp/x;rm -rf ~", `echo 'refresh spaces' | nc -U '/tmp/x;rm -rf ~'`},
		{"/tmp/it's.sock", `echo 'refresh spaces' | nc -U '/tmp/it'\''s.sock'`},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := IndicatorSignals(tt.path)[0].Action; got != tt.want {
				t.Errorf("Action = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIndicatorSignals_UniqueLabels(t *testing.T) {
	seen := make(map[string]bool)
	for _, s := range IndicatorSignals("/tmp/x.socket") {
		if seen[s.Label()] {
			t.Errorf("duplicate label %s", s.Label())
		}
		seen[s.Label()] = true
	}
}
