// Package sysquery reads display and space topology straight from the OS,
// without going through yabai.
package sysquery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/lazywalker/YabaiIndicator/internal/models"
)

var (
	ErrConnectionFailed   = errors.New("connection to window server failed")
	ErrDisplayQueryFailed = errors.New("display query failed")
	ErrSpaceQueryFailed   = errors.New("space query failed")
	ErrInvalidDisplayData = errors.New("invalid display data")
	ErrInvalidSpaceData   = errors.New("invalid space data")
)

// DisplayInfo is what the platform reports for one display handle
type DisplayInfo struct {
	UUID     string
	Bounds   models.Rect
	IsMain   bool
	IsActive bool
}

// Platform is the OS collaborator. The managed display spaces tree has the
// window server shape: a list of display dicts, each with
// "Display Identifier", "Current Space" and "Spaces".
type Platform interface {
	DisplayIDs() ([]uint64, bool)
	DisplayInfo(id uint64) (DisplayInfo, bool)
	ActiveDisplayUUID() (string, bool)
	ManagedDisplaySpaces() (interface{}, bool)
}

// Raw window server space types
const (
	rawSpaceUser       = 0
	rawSpaceFullscreen = 4
)

// Client queries displays and spaces through a Platform
type Client struct {
	platform Platform
}

// NewClient creates a system query client
func NewClient(p Platform) *Client {
	return &Client{platform: p}
}

// QueryDisplays returns the main and active displays with a usable frame
func (c *Client) QueryDisplays(ctx context.Context) ([]models.Display, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ids, ok := c.platform.DisplayIDs()
	if !ok || len(ids) == 0 {
		return nil, ErrConnectionFailed
	}

	displays := make([]models.Display, 0, len(ids))
	for _, id := range ids {
		info, ok := c.platform.DisplayInfo(id)
		if !ok {
			continue
		}
		if !info.IsMain && !info.IsActive {
			continue
		}
		if !info.Bounds.HasArea() || info.UUID == "" {
			continue
		}
		displays = append(displays, models.Display{
			ID:    id,
			UUID:  info.UUID,
			Index: len(displays),
			Frame: info.Bounds,
		})
	}

	return displays, nil
}

// QuerySpaces returns every space in yabai's global order
func (c *Client) QuerySpaces(ctx context.Context) ([]models.Space, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	activeUUID, ok := c.platform.ActiveDisplayUUID()
	if !ok || activeUUID == "" {
		return nil, ErrConnectionFailed
	}

	raw, ok := c.platform.ManagedDisplaySpaces()
	if !ok || raw == nil {
		return nil, ErrDisplayQueryFailed
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return parseManagedSpaces(raw, activeUUID)
}

// parseManagedSpaces walks displays then spaces in OS order. The running
// yabaiIndex must match yabai's own numbering since focus commands use it.
// One malformed display aborts the whole batch.
func parseManagedSpaces(raw interface{}, activeUUID string) ([]models.Space, error) {
	displays, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: topology is %T, want list", ErrSpaceQueryFailed, raw)
	}

	var spaces []models.Space
	index := 0
	yabaiIndex := 0

	for d, entry := range displays {
		display, ok := entry.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: display %d is %T", ErrInvalidDisplayData, d, entry)
		}

		displayUUID, ok := display["Display Identifier"].(string)
		if !ok {
			return nil, fmt.Errorf("%w: display %d has no identifier", ErrInvalidDisplayData, d)
		}

		current, ok := display["Current Space"].(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: display %s has no current space", ErrInvalidDisplayData, displayUUID)
		}
		currentUUID, _ := current["uuid"].(string)

		rawSpaces, ok := display["Spaces"].([]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: display %s has no space list", ErrInvalidDisplayData, displayUUID)
		}

		activeDisplay := displayUUID == activeUUID

		for s, rs := range rawSpaces {
			space, ok := rs.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("%w: display %s space %d is %T", ErrInvalidSpaceData, displayUUID, s, rs)
			}

			spaceID, ok := toUint64(space["ManagedSpaceID"])
			if !ok || spaceID == 0 {
				return nil, fmt.Errorf("%w: display %s space %d has no id", ErrInvalidSpaceData, displayUUID, s)
			}
			spaceUUID, _ := space["uuid"].(string)

			rawType, ok := toUint64(space["type"])
			if !ok {
				return nil, fmt.Errorf("%w: space %d has no type", ErrInvalidSpaceData, spaceID)
			}

			var spaceType models.SpaceType
			switch rawType {
			case rawSpaceUser:
				spaceType = models.SpaceStandard
			case rawSpaceFullscreen:
				spaceType = models.SpaceFullscreen
			default:
				continue
			}

			yabaiIndex++
			spaceIndex := 0
			if spaceType == models.SpaceStandard {
				index++
				spaceIndex = index
			}

			visible := currentUUID != "" && spaceUUID == currentUUID
			spaces = append(spaces, models.Space{
				SpaceID:    spaceID,
				UUID:       spaceUUID,
				Visible:    visible,
				Active:     visible && activeDisplay,
				Display:    d + 1,
				Index:      spaceIndex,
				YabaiIndex: yabaiIndex,
				Type:       spaceType,
			})
		}
	}

	return spaces, nil
}

func toUint64(v interface{}) (uint64, bool) {
	switch n := v.(type) {
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
	case int64:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case uint64:
		return n, true
	case json.Number:
		u, err := strconv.ParseUint(n.String(), 10, 64)
		return u, err == nil
	default:
		return 0, false
	}
}
