//go:build !darwin

package tray

type platformState struct{}

// Run calls onReady, blocks until Quit, then calls onExit
func (t *Tray) Run(onReady, onExit func()) {
	if onReady != nil {
		onReady()
	}
	<-t.quit
	if onExit != nil {
		onExit()
	}
}

func (t *Tray) quitPlatform() {}

func (t *Tray) draw(v view) {}
