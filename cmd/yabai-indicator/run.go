package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lazywalker/YabaiIndicator/internal/config"
	"github.com/lazywalker/YabaiIndicator/internal/ipc"
	"github.com/lazywalker/YabaiIndicator/internal/logging"
	"github.com/lazywalker/YabaiIndicator/internal/refresh"
	"github.com/lazywalker/YabaiIndicator/internal/state"
	"github.com/lazywalker/YabaiIndicator/internal/sysquery"
	"github.com/lazywalker/YabaiIndicator/internal/tray"
)

// runCmd starts the indicator
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the status bar indicator",
	Long: `Starts the main loop, refresh coordinator, IPC server, periodic refresh,
config watcher and status bar item. Blocks until quit from the menu or
interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		return newDaemon(cfg).run()
	},
}

// daemon owns every long-lived component of a running indicator
type daemon struct {
	cfg     *config.Config
	ctx     context.Context
	cancel  context.CancelFunc
	loop    *refresh.Loop
	coord   *refresh.Coordinator
	server  *ipc.Server
	watcher *config.Watcher
	tray    *tray.Tray

	startErr error
}

func newDaemon(cfg *config.Config) *daemon {
	ctx, cancel := context.WithCancel(context.Background())

	loop := refresh.NewLoop()
	model := state.New()

	coord := refresh.NewCoordinator(
		sysquery.NewClient(sysquery.NativePlatform()),
		newYabaiClient(cfg),
		model,
		loop,
		refresh.Options{
			Debounce:     cfg.DebounceWindow(),
			NeedsWindows: cfg.Settings.ButtonStyle.NeedsWindows(),
			Logger:       logging.Component("refresh"),
		},
	)

	t := tray.New(coord, cfg.Settings, logging.Component("tray"))
	model.Observe(t.Update)

	if path := cfg.StatusFilePath(); path != "" {
		store := state.NewStore(path)
		model.Observe(store.Observer(logging.Component("state")))
	}

	server := ipc.NewServer(indicatorSocket(cfg), coord, ipc.Options{
		ReadTimeout: cfg.IPCReadTimeout(),
		Logger:      logging.Component("ipc"),
	})

	d := &daemon{
		cfg:    cfg,
		ctx:    ctx,
		cancel: cancel,
		loop:   loop,
		coord:  coord,
		server: server,
		tray:   t,
	}

	watcher, err := config.NewWatcher(config.ResolvePath(configPath), 0, logging.Component("config"), d.applyConfig)
	if err != nil {
		// Hot reload is optional
		logging.Warn().Err(err).Msg("config watcher unavailable")
	}
	d.watcher = watcher

	return d
}

// run blocks on the status bar until it quits
func (d *daemon) run() error {
	d.tray.Run(d.start, d.stop)
	return d.startErr
}

// start runs once the status bar is ready
func (d *daemon) start() {
	go d.loop.Run(d.ctx)

	if err := d.server.Start(); err != nil {
		d.startErr = fmt.Errorf("failed to start IPC server: %w", err)
		printError(d.startErr.Error())
		d.tray.Quit()
		return
	}

	if d.watcher != nil {
		if err := d.watcher.Start(); err != nil {
			logging.Warn().Err(err).Msg("config watcher failed to start")
		}
	}

	go d.coord.RunPeriodic(d.ctx, d.cfg.RefreshInterval())
	d.coord.RequestRefresh()

	// Quit the status bar on SIGINT/SIGTERM
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		select {
		case sig := <-sigCh:
			logging.Info().Str("signal", sig.String()).Msg("shutting down")
			d.tray.Quit()
		case <-d.ctx.Done():
		}
	}()

	logging.Info().
		Str("socket", d.server.Path()).
		Str("style", string(d.cfg.Settings.ButtonStyle)).
		Dur("interval", d.cfg.RefreshInterval()).
		Msg("indicator started")
	infoColor.Printf("Listening on %s\n", d.server.Path())
}

// stop tears everything down in reverse order
func (d *daemon) stop() {
	if d.watcher != nil {
		d.watcher.Stop()
	}
	if err := d.server.Stop(); err != nil {
		logging.Warn().Err(err).Msg("IPC server stop failed")
	}
	d.coord.Close()
	d.coord.Wait()
	d.cancel()
	<-d.loop.Done()

	logging.Info().Msg("indicator stopped")
}

// applyConfig takes a reloaded config. Socket and transport changes need a
// restart; presentation and refresh mode apply immediately.
func (d *daemon) applyConfig(cfg *config.Config) {
	d.tray.SetSettings(cfg.Settings)
	d.coord.SetNeedsWindows(cfg.Settings.ButtonStyle.NeedsWindows())
	d.coord.RequestRefresh()
}
