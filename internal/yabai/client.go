// Package yabai talks to the yabai window manager over its control channel.
package yabai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/lazywalker/YabaiIndicator/internal/models"
)

const (
	DefaultMaxArgs        = 16
	DefaultMaxArgLength   = 1024
	DefaultMaxTitleLength = 512
	DefaultMaxSpaceIndex  = 128
)

// Transport delivers one argument vector to yabai and returns the raw reply
type Transport interface {
	Send(ctx context.Context, args []string) ([]byte, error)
}

// Limits bounds outbound requests and inbound records
type Limits struct {
	MaxArgs        int
	MaxArgLength   int
	MaxTitleLength int
	MaxSpaceIndex  int
}

// DefaultLimits returns the built-in limits
func DefaultLimits() Limits {
	return Limits{
		MaxArgs:        DefaultMaxArgs,
		MaxArgLength:   DefaultMaxArgLength,
		MaxTitleLength: DefaultMaxTitleLength,
		MaxSpaceIndex:  DefaultMaxSpaceIndex,
	}
}

// Client is the yabai query client
type Client struct {
	transport Transport
	limits    Limits
}

// NewClient creates a client. Zero limits fall back to defaults.
func NewClient(t Transport, limits Limits) *Client {
	def := DefaultLimits()
	if limits.MaxArgs <= 0 {
		limits.MaxArgs = def.MaxArgs
	}
	if limits.MaxArgLength <= 0 {
		limits.MaxArgLength = def.MaxArgLength
	}
	if limits.MaxTitleLength <= 0 {
		limits.MaxTitleLength = def.MaxTitleLength
	}
	if limits.MaxSpaceIndex <= 0 {
		limits.MaxSpaceIndex = def.MaxSpaceIndex
	}
	return &Client{transport: t, limits: limits}
}

// Limits returns the effective limits
func (c *Client) Limits() Limits {
	return c.limits
}

// Request validates args, sends them and parses the reply. An empty reply
// returns a nil tree.
func (c *Client) Request(ctx context.Context, args ...string) (interface{}, error) {
	if err := c.validateArgs(args); err != nil {
		return nil, err
	}

	body, err := c.transport.Send(ctx, args)
	if err != nil {
		return nil, err
	}

	return parseBody(body)
}

func (c *Client) validateArgs(args []string) error {
	if len(args) == 0 {
		return &InvalidInputError{Reason: "empty argument list"}
	}
	if len(args) > c.limits.MaxArgs {
		return &InvalidInputError{Reason: fmt.Sprintf("%d arguments exceeds maximum of %d", len(args), c.limits.MaxArgs)}
	}
	for i, arg := range args {
		if len(arg) > c.limits.MaxArgLength {
			return &InvalidInputError{Reason: fmt.Sprintf("argument %d exceeds %d bytes", i, c.limits.MaxArgLength)}
		}
		if strings.IndexByte(arg, 0) >= 0 {
			return &InvalidInputError{Reason: fmt.Sprintf("argument %d contains a null byte", i)}
		}
	}
	return nil
}

func parseBody(body []byte) (interface{}, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var tree interface{}
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrJSONParsingFailed, err)
	}
	return tree, nil
}

// QueryWindows returns every window yabai tracks. Records that fail
// validation are dropped.
func (c *Client) QueryWindows(ctx context.Context) ([]models.Window, error) {
	tree, err := c.Request(ctx, "query", "--windows")
	if err != nil {
		return nil, err
	}

	list, ok := tree.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: windows reply is %T, want list", ErrInvalidResponse, tree)
	}

	windows := make([]models.Window, 0, len(list))
	for _, item := range list {
		if w, ok := c.parseWindow(item); ok {
			windows = append(windows, w)
		}
	}
	return windows, nil
}

func (c *Client) parseWindow(item interface{}) (models.Window, bool) {
	rec, ok := item.(map[string]interface{})
	if !ok {
		return models.Window{}, false
	}

	id, ok := toUint64(rec["id"])
	if !ok {
		return models.Window{}, false
	}
	pid, ok := toUint64(rec["pid"])
	if !ok {
		return models.Window{}, false
	}
	app, ok := rec["app"].(string)
	if !ok || app == "" {
		return models.Window{}, false
	}
	title, ok := rec["title"].(string)
	if !ok || utf8.RuneCountInString(title) > c.limits.MaxTitleLength {
		return models.Window{}, false
	}
	frame, ok := parseFrame(rec["frame"])
	if !ok {
		return models.Window{}, false
	}
	display, ok := toInt(rec["display"])
	if !ok {
		return models.Window{}, false
	}
	space, ok := toInt(rec["space"])
	if !ok {
		return models.Window{}, false
	}

	return models.Window{
		ID:           id,
		PID:          pid,
		App:          app,
		Title:        title,
		Frame:        frame,
		DisplayIndex: display,
		SpaceIndex:   space,
	}, true
}

// FocusSpace focuses a space by its 1-based global yabai index
func (c *Client) FocusSpace(ctx context.Context, index int) error {
	if index <= 0 || index > c.limits.MaxSpaceIndex {
		return &InvalidInputError{Reason: fmt.Sprintf("space index %d outside 1..%d", index, c.limits.MaxSpaceIndex)}
	}
	_, err := c.Request(ctx, "space", "--focus", strconv.Itoa(index))
	return err
}

// parseFrame handles yabai's {x, y, w, h} and the long {x, y, width, height} form
func parseFrame(v interface{}) (models.Rect, bool) {
	obj, ok := v.(map[string]interface{})
	if !ok {
		return models.Rect{}, false
	}

	x, okX := toFloat64(obj["x"])
	y, okY := toFloat64(obj["y"])
	w, okW := toFloat64(obj["w"])
	if !okW {
		w, okW = toFloat64(obj["width"])
	}
	h, okH := toFloat64(obj["h"])
	if !okH {
		h, okH = toFloat64(obj["height"])
	}
	if !okX || !okY || !okW || !okH {
		return models.Rect{}, false
	}

	return models.Rect{X: x, Y: y, Width: w, Height: h}, true
}

// Type conversion helpers

func toFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

func toUint64(v interface{}) (uint64, bool) {
	switch n := v.(type) {
	case json.Number:
		u, err := strconv.ParseUint(n.String(), 10, 64)
		return u, err == nil
	case float64:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case int:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	default:
		return 0, false
	}
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := strconv.Atoi(n.String())
		return i, err == nil
	case float64:
		return int(n), true
	case int:
		return n, true
	default:
		return 0, false
	}
}
