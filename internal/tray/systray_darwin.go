//go:build darwin

package tray

import (
	"strconv"
	"sync"

	"github.com/getlantern/systray"

	"github.com/lazywalker/YabaiIndicator/internal/models"
)

type platformState struct {
	mu      sync.Mutex
	ready   bool
	slots   [MaxMenuSpaces]*systray.MenuItem
	indexes [MaxMenuSpaces]int // slot -> yabai index, 0 when unused
	pending *view
	dropped int

	refreshItem *systray.MenuItem
	quitItem    *systray.MenuItem
}

// Run shows the status item. It blocks and must be called on the main
// goroutine (Cocoa requirement).
func (t *Tray) Run(onReady, onExit func()) {
	systray.Run(func() {
		t.onReady()
		if onReady != nil {
			onReady()
		}
	}, func() {
		if onExit != nil {
			onExit()
		}
	})
}

func (t *Tray) quitPlatform() {
	systray.Quit()
}

func (t *Tray) onReady() {
	p := &t.platform

	systray.SetTitle(ErrorGlyph)
	systray.SetTooltip(DefaultTooltip)

	p.mu.Lock()
	for i := 0; i < MaxMenuSpaces; i++ {
		p.slots[i] = systray.AddMenuItem("", "")
		p.slots[i].Hide()
	}
	systray.AddSeparator()
	p.refreshItem = systray.AddMenuItem("Refresh", "Query spaces and windows again")
	p.quitItem = systray.AddMenuItem("Quit", "Quit YabaiIndicator")
	p.ready = true
	pending := p.pending
	p.pending = nil
	p.mu.Unlock()

	for i := 0; i < MaxMenuSpaces; i++ {
		go t.handleSlot(i)
	}
	go t.handleActions()

	if pending != nil {
		t.draw(*pending)
	}
}

func (t *Tray) handleSlot(i int) {
	p := &t.platform
	for range p.slots[i].ClickedCh {
		p.mu.Lock()
		index := p.indexes[i]
		p.mu.Unlock()

		if index > 0 {
			t.focus(index)
		}
	}
}

func (t *Tray) handleActions() {
	p := &t.platform
	for {
		select {
		case <-p.refreshItem.ClickedCh:
			t.actions.RequestRefresh()
		case <-p.quitItem.ClickedCh:
			t.Quit()
			return
		case <-t.quit:
			return
		}
	}
}

func (t *Tray) draw(v view) {
	p := &t.platform

	p.mu.Lock()
	defer p.mu.Unlock()

	// Frames that arrive before the menu exists are replayed by onReady
	if !p.ready {
		p.pending = &v
		return
	}

	systray.SetTitle(v.title)
	systray.SetTooltip(v.tooltip)

	spaces, dropped := menuSpaces(v.items)
	if dropped != p.dropped {
		if dropped > 0 {
			t.logger.Warn().Int("spaces", len(spaces)+dropped).Int("shown", len(spaces)).Msg("too many spaces for the menu, extra spaces hidden")
		}
		p.dropped = dropped
	}

	slot := 0
	for _, sp := range spaces {
		p.slots[slot].SetTitle(menuTitle(sp))
		if sp.Active {
			p.slots[slot].Check()
		} else {
			p.slots[slot].Uncheck()
		}
		p.slots[slot].Show()
		p.indexes[slot] = sp.YabaiIndex
		slot++
	}
	for ; slot < MaxMenuSpaces; slot++ {
		p.slots[slot].Hide()
		p.indexes[slot] = 0
	}
}

func menuTitle(sp models.Space) string {
	name := "Space " + strconv.Itoa(sp.Index)
	if sp.Type == models.SpaceFullscreen {
		name = "Fullscreen"
	}
	return name + " (display " + strconv.Itoa(sp.Display) + ")"
}
