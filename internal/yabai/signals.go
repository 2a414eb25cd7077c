package yabai

import (
	"context"
	"fmt"
	"strings"
)

// SignalLabelPrefix tags every signal this program registers
const SignalLabelPrefix = "yabai-indicator-"

// Signal is one yabai event hook
type Signal struct {
	Event  string
	Action string
}

// Label returns the yabai label used to add and remove the signal
func (s Signal) Label() string {
	return SignalLabelPrefix + s.Event
}

// Args returns the `signal --add` argument vector
func (s Signal) Args() []string {
	return []string{
		"signal", "--add",
		"event=" + s.Event,
		"action=" + s.Action,
		"label=" + s.Label(),
	}
}

// IndicatorSignals returns the hooks that push refresh lines into the
// indicator socket whenever yabai observes a change.
func IndicatorSignals(indicatorSocket string) []Signal {
	send := func(line string) string {
		return fmt.Sprintf("echo %s | nc -U %s", shellQuote(line), shellQuote(indicatorSocket))
	}

	return []Signal{
		{Event: "space_changed", Action: send("refresh spaces")},
		{Event: "display_changed", Action: send("refresh spaces")},
		{Event: "display_added", Action: send("refresh")},
		{Event: "display_removed", Action: send("refresh")},
		{Event: "mission_control_exit", Action: send("refresh")},
		{Event: "window_created", Action: send("refresh windows")},
		{Event: "window_destroyed", Action: send("refresh windows")},
		{Event: "window_moved", Action: send("refresh windows")},
		{Event: "window_resized", Action: send("refresh windows")},
		{Event: "application_launched", Action: send("refresh windows")},
		{Event: "application_terminated", Action: send("refresh windows")},
	}
}

// shellQuote wraps s in single quotes for sh, escaping embedded quotes
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// AddSignal registers a signal, replacing any previous one with the same label
func (c *Client) AddSignal(ctx context.Context, s Signal) error {
	if s.Event == "" {
		return &InvalidInputError{Reason: "signal event is empty"}
	}
	_ = c.RemoveSignal(ctx, s.Label())
	_, err := c.Request(ctx, s.Args()...)
	return err
}

// RemoveSignal removes a signal by label
func (c *Client) RemoveSignal(ctx context.Context, label string) error {
	_, err := c.Request(ctx, "signal", "--remove", label)
	return err
}
