//go:build !darwin

package tray

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/lazywalker/YabaiIndicator/internal/config"
)

func TestHeadless_RunUntilQuit(t *testing.T) {
	tr := New(&fakeActions{}, config.Settings{}, zerolog.Nop())

	ready := make(chan struct{})
	exited := make(chan struct{})
	go tr.Run(func() { close(ready) }, func() { close(exited) })

	<-ready
	select {
	case <-exited:
		t.Fatal("Run returned before Quit")
	case <-time.After(20 * time.Millisecond):
	}

	tr.Quit()
	tr.Quit() // idempotent

	select {
	case <-exited:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Quit")
	}
}
