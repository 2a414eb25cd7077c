package refresh

import (
	"context"
	"sync"
)

// Loop is the model-mutation context. Every closure posted to it runs on
// one goroutine, in order, so state touched only from here needs no lock.
type Loop struct {
	funcs    chan func()
	done     chan struct{}
	stopOnce sync.Once
}

// NewLoop creates a loop. Call Run to start draining it.
func NewLoop() *Loop {
	return &Loop{
		funcs: make(chan func(), 64),
		done:  make(chan struct{}),
	}
}

// Run executes posted closures until ctx is cancelled
func (l *Loop) Run(ctx context.Context) {
	defer l.stopOnce.Do(func() { close(l.done) })

	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-l.funcs:
			fn()
		}
	}
}

// Post enqueues fn. Returns false if the loop has stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}

	select {
	case <-l.done:
		return false
	case l.funcs <- fn:
		return true
	}
}

// Sync runs fn on the loop and waits for it. Returns false if the loop
// stopped before fn ran to completion.
func (l *Loop) Sync(fn func()) bool {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return false
	}

	select {
	case <-finished:
		return true
	case <-l.done:
		select {
		case <-finished:
			return true
		default:
			return false
		}
	}
}

// Done is closed once the loop has stopped
func (l *Loop) Done() <-chan struct{} {
	return l.done
}
