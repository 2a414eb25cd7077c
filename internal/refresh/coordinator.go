// Package refresh coordinates every refresh of the shared state model.
//
// Triggers (yabai signals via IPC, the periodic ticker, config reloads, the
// status bar's retry item) all funnel into one Coordinator. It debounces
// bursts, keeps at most one refresh in flight, runs the system and yabai
// queries concurrently off the main loop, and applies each result in a
// single batch on the main loop.
package refresh

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lazywalker/YabaiIndicator/internal/models"
	"github.com/lazywalker/YabaiIndicator/internal/state"
)

// DefaultDebounce absorbs notification bursts for one logical event
const DefaultDebounce = 100 * time.Millisecond

// SystemQuerier reads display topology from the OS
type SystemQuerier interface {
	QueryDisplays(ctx context.Context) ([]models.Display, error)
	QuerySpaces(ctx context.Context) ([]models.Space, error)
}

// WindowQuerier reads windows from, and sends focus commands to, yabai
type WindowQuerier interface {
	QueryWindows(ctx context.Context) ([]models.Window, error)
	FocusSpace(ctx context.Context, index int) error
}

// State is the coordinator state machine
type State int

const (
	Idle State = iota
	Refreshing
)

// String returns the string representation of a State
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Refreshing:
		return "refreshing"
	default:
		return "unknown"
	}
}

// Kind selects what a refresh queries. Kinds are bit sets, so two requests
// merge into one task covering both.
type Kind int

const (
	KindSpaces Kind = 1 << iota
	KindWindows

	KindFull = KindSpaces | KindWindows
)

// String returns the string representation of a Kind
func (k Kind) String() string {
	switch k {
	case KindFull:
		return "full"
	case KindSpaces:
		return "spaces"
	case KindWindows:
		return "windows"
	default:
		return "unknown"
	}
}

// Options configures a Coordinator
type Options struct {
	Debounce     time.Duration
	NeedsWindows bool
	Logger       zerolog.Logger
	Now          func() time.Time // Monotonic clock, overridable in tests
}

// Coordinator is the only writer of the state model
type Coordinator struct {
	sys    SystemQuerier
	wm     WindowQuerier
	model  *state.Model
	loop   *Loop
	logger zerolog.Logger

	debounce     time.Duration
	now          func() time.Time
	needsWindows atomic.Bool

	mu           sync.Mutex
	lastAccepted time.Time
	cancel       context.CancelFunc
	generation   uint64
	state        State
	inFlight     Kind        // kind of the running task, 0 when idle
	pending      Kind        // kinds debounced since the last accepted task
	flushTimer   *time.Timer // runs pending at the end of the debounce window
	closed       bool

	wg sync.WaitGroup

	// Last outcome per category, touched only on the loop
	spaceErr  error
	windowErr error
}

// NewCoordinator creates a coordinator writing to model through loop
func NewCoordinator(sys SystemQuerier, wm WindowQuerier, model *state.Model, loop *Loop, opts Options) *Coordinator {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	c := &Coordinator{
		sys:      sys,
		wm:       wm,
		model:    model,
		loop:     loop,
		logger:   opts.Logger,
		debounce: opts.Debounce,
		now:      opts.Now,
	}
	c.needsWindows.Store(opts.NeedsWindows)
	return c
}

// SetNeedsWindows switches window queries on or off for later refreshes
func (c *Coordinator) SetNeedsWindows(v bool) {
	c.needsWindows.Store(v)
}

// NeedsWindows reports whether the presentation mode uses window data
func (c *Coordinator) NeedsWindows() bool {
	return c.needsWindows.Load()
}

// State returns Refreshing while the latest accepted refresh runs
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Wait blocks until every started refresh task has returned
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// RequestRefresh queries everything
func (c *Coordinator) RequestRefresh() bool {
	return c.submit(KindFull)
}

// RequestSpaceRefresh queries displays and spaces only
func (c *Coordinator) RequestSpaceRefresh() bool {
	return c.submit(KindSpaces)
}

// RequestWindowRefresh queries windows only
func (c *Coordinator) RequestWindowRefresh() bool {
	return c.submit(KindWindows)
}

// Close cancels the in-flight refresh and any deferred one. Later requests
// are dropped. Call Wait afterwards to join the cancelled task.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.pending = 0
	c.stopFlushLocked()
	if c.cancel != nil {
		c.cancel()
	}
}

// submit passes the debounce gate, cancels the in-flight task and starts a
// new one covering both. A debounced request is not lost: its kind is
// folded into the next task, which starts at the end of the window if
// nothing else arrives first. Returns false if the request was not started
// immediately.
func (c *Coordinator) submit(kind Kind) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	now := c.now()
	if !c.lastAccepted.IsZero() && now.Sub(c.lastAccepted) < c.debounce {
		c.pending |= kind
		if c.flushTimer == nil {
			c.wg.Add(1)
			c.flushTimer = time.AfterFunc(c.debounce-now.Sub(c.lastAccepted), c.flush)
		}
		c.logger.Debug().Str("kind", kind.String()).Msg("refresh debounced")
		return false
	}
	c.lastAccepted = now

	c.startLocked(kind)
	return true
}

// flush starts the deferred kinds once the debounce window has passed. It
// does not move the gate.
func (c *Coordinator) flush() {
	defer c.wg.Done()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.flushTimer = nil
	if c.closed || c.pending == 0 {
		return
	}
	c.startLocked(0)
}

// startLocked cancels the running task and starts one covering kind, the
// cancelled task's kind and every deferred kind. Requires c.mu.
func (c *Coordinator) startLocked(kind Kind) {
	kind |= c.inFlight | c.pending
	c.pending = 0
	c.stopFlushLocked()

	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.generation++
	c.state = Refreshing
	c.inFlight = kind
	c.wg.Add(1)

	go c.run(ctx, cancel, c.generation, kind)
}

// stopFlushLocked disarms the deferred-request timer. Requires c.mu.
func (c *Coordinator) stopFlushLocked() {
	if c.flushTimer != nil && c.flushTimer.Stop() {
		c.wg.Done()
	}
	c.flushTimer = nil
}

func (c *Coordinator) run(ctx context.Context, cancel context.CancelFunc, gen uint64, kind Kind) {
	defer c.wg.Done()
	defer c.finish(gen, cancel)

	logger := c.logger.With().
		Str("refresh_id", uuid.NewString()).
		Str("kind", kind.String()).
		Logger()

	// Recover from panics so one bad reply can't take the indicator down
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("refresh panic recovered")
		}
	}()

	start := time.Now()
	var applied bool
	switch kind {
	case KindFull:
		applied = c.PerformFullRefresh(ctx)
	case KindSpaces:
		applied = c.PerformSpaceOnlyRefresh(ctx)
	case KindWindows:
		applied = c.PerformWindowRefresh(ctx)
	}

	if !applied {
		logger.Debug().Dur("elapsed", time.Since(start)).Msg("refresh discarded")
		return
	}
	logger.Debug().Dur("elapsed", time.Since(start)).Msg("refresh applied")
}

// finish restores Idle if no newer task has replaced this one
func (c *Coordinator) finish(gen uint64, cancel context.CancelFunc) {
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation == gen {
		c.state = Idle
		c.inFlight = 0
		c.cancel = nil
	}
}

type topologyResult struct {
	displays []models.Display
	spaces   []models.Space
	err      error
}

type windowResult struct {
	windows []models.Window
	err     error
}

func (c *Coordinator) queryTopology(ctx context.Context) (res topologyResult) {
	defer func() {
		if r := recover(); r != nil {
			res = topologyResult{err: fmt.Errorf("system query panic: %v", r)}
		}
	}()

	displays, err := c.sys.QueryDisplays(ctx)
	if err != nil {
		return topologyResult{err: fmt.Errorf("displays: %w", err)}
	}
	if err := ctx.Err(); err != nil {
		return topologyResult{err: err}
	}

	spaces, err := c.sys.QuerySpaces(ctx)
	if err != nil {
		return topologyResult{err: fmt.Errorf("spaces: %w", err)}
	}
	return topologyResult{displays: displays, spaces: spaces}
}

// queryWindows skips yabai entirely when the current mode shows no windows
func (c *Coordinator) queryWindows(ctx context.Context) (res windowResult) {
	defer func() {
		if r := recover(); r != nil {
			res = windowResult{err: fmt.Errorf("yabai query panic: %v", r)}
		}
	}()

	if !c.NeedsWindows() {
		return windowResult{windows: []models.Window{}}
	}

	windows, err := c.wm.QueryWindows(ctx)
	if err != nil {
		return windowResult{err: err}
	}
	return windowResult{windows: windows}
}

// PerformFullRefresh queries topology and windows concurrently and applies
// both in one batch. Returns false if the result was discarded.
func (c *Coordinator) PerformFullRefresh(ctx context.Context) bool {
	var (
		topo topologyResult
		wins windowResult
		wg   sync.WaitGroup
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		topo = c.queryTopology(ctx)
	}()
	go func() {
		defer wg.Done()
		wins = c.queryWindows(ctx)
	}()
	wg.Wait()

	return c.apply(ctx, &topo, &wins)
}

// PerformSpaceOnlyRefresh queries displays and spaces, leaving windows alone
func (c *Coordinator) PerformSpaceOnlyRefresh(ctx context.Context) bool {
	topo := c.queryTopology(ctx)
	return c.apply(ctx, &topo, nil)
}

// PerformWindowRefresh queries windows only, leaving displays and spaces alone
func (c *Coordinator) PerformWindowRefresh(ctx context.Context) bool {
	wins := c.queryWindows(ctx)
	return c.apply(ctx, nil, &wins)
}

// apply merges the results into the model on the main loop unless ctx was
// cancelled. A nil result leaves that category and its error untouched. The
// token is checked again on the loop since a newer request may have arrived
// while this one was queued.
func (c *Coordinator) apply(ctx context.Context, topo *topologyResult, wins *windowResult) bool {
	if ctx.Err() != nil {
		return false
	}
	if topo != nil && topo.err != nil {
		c.logger.Warn().Err(topo.err).Msg("space query failed")
	}
	if wins != nil && wins.err != nil {
		c.logger.Warn().Err(wins.err).Msg("window query failed")
	}

	applied := false
	c.loop.Sync(func() {
		if ctx.Err() != nil {
			return
		}

		u := state.Update{SetError: true}
		if topo != nil {
			c.spaceErr = topo.err
			if topo.err == nil {
				u.SetTopology = true
				u.Displays = topo.displays
				u.Spaces = topo.spaces
			}
		}
		if wins != nil {
			c.windowErr = wins.err
			if wins.err == nil {
				u.SetWindows = true
				u.Windows = wins.windows
			}
		}
		u.ErrorMessage = errorMessage(c.spaceErr, c.windowErr)

		c.model.Apply(u)
		applied = true
	})
	return applied
}

// errorMessage describes whichever categories are currently failing
func errorMessage(spaceErr, windowErr error) string {
	switch {
	case spaceErr != nil && windowErr != nil:
		return fmt.Sprintf("Spaces and windows unavailable: %v; %v", spaceErr, windowErr)
	case spaceErr != nil:
		return fmt.Sprintf("Spaces unavailable: %v", spaceErr)
	case windowErr != nil:
		return fmt.Sprintf("Windows unavailable: %v", windowErr)
	default:
		return ""
	}
}

// FocusSpace asks yabai to focus a space and then refreshes the topology
func (c *Coordinator) FocusSpace(ctx context.Context, yabaiIndex int) error {
	if err := c.wm.FocusSpace(ctx, yabaiIndex); err != nil {
		c.logger.Warn().Err(err).Int("index", yabaiIndex).Msg("focus space failed")
		return err
	}
	c.RequestSpaceRefresh()
	return nil
}
