package refresh

import (
	"context"
	"fmt"
	"time"
)

// Event is an external notification that the topology may have changed
type Event string

const (
	EventSpaceChanged          Event = "space_changed"
	EventDisplayChanged        Event = "display_changed"
	EventDisplayAdded          Event = "display_added"
	EventDisplayRemoved        Event = "display_removed"
	EventMissionControlExit    Event = "mission_control_exit"
	EventWindowCreated         Event = "window_created"
	EventWindowDestroyed       Event = "window_destroyed"
	EventWindowMoved           Event = "window_moved"
	EventWindowResized         Event = "window_resized"
	EventApplicationLaunched   Event = "application_launched"
	EventApplicationTerminated Event = "application_terminated"
	EventSystemWoke            Event = "system_woke"
)

// KindFor maps an event to the cheapest refresh that covers it
func KindFor(e Event) (Kind, error) {
	switch e {
	case EventSpaceChanged, EventDisplayChanged:
		return KindSpaces, nil
	case EventDisplayAdded, EventDisplayRemoved, EventMissionControlExit, EventSystemWoke:
		return KindFull, nil
	case EventWindowCreated, EventWindowDestroyed, EventWindowMoved, EventWindowResized,
		EventApplicationLaunched, EventApplicationTerminated:
		return KindWindows, nil
	default:
		return 0, fmt.Errorf("unknown event: %q", e)
	}
}

// Notify requests the refresh matching e
func (c *Coordinator) Notify(e Event) error {
	kind, err := KindFor(e)
	if err != nil {
		return err
	}
	c.logger.Debug().Str("event", string(e)).Str("kind", kind.String()).Msg("event received")
	c.submit(kind)
	return nil
}

// RunPeriodic requests a full refresh every interval until ctx is cancelled.
// A non-positive interval disables the ticker. A tick whose wall-clock gap
// is well past the interval means the machine slept, and is reported as a
// wake event.
func (c *Coordinator) RunPeriodic(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now().Round(0)
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			// Round(0) strips the monotonic reading, which stops during sleep
			wall := now.Round(0)
			slept := wall.Sub(last) > 2*interval
			last = wall

			if slept {
				c.Notify(EventSystemWoke)
				continue
			}
			c.RequestRefresh()
		}
	}
}
