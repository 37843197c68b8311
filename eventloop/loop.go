package eventloop

import (
	"context"
	"errors"
	"log"
	"sync"
)

// ErrStopped is returned by Run when the loop has already been stopped
var ErrStopped = errors.New("event loop stopped")

// Loop runs posted functions one at a time on a single goroutine.
// Work that must not race (callbacks, state updates) goes through Post.
type Loop struct {
	queue    chan func()
	done     chan struct{}
	stopOnce sync.Once
}

// New creates a loop whose queue holds up to buffer pending functions
func New(buffer int) *Loop {
	if buffer <= 0 {
		buffer = 1
	}
	return &Loop{
		queue: make(chan func(), buffer),
		done:  make(chan struct{}),
	}
}

// Post queues fn for execution on the loop goroutine.
// It blocks while the queue is full and returns false once the loop has stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}

	select {
	case l.queue <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Run processes posted functions until ctx is canceled or Stop is called.
// Only one Run may be active at a time.
func (l *Loop) Run(ctx context.Context) error {
	select {
	case <-l.done:
		return ErrStopped
	default:
	}

	for {
		select {
		case fn := <-l.queue:
			l.exec(fn)
		case <-ctx.Done():
			l.Stop()
			return ctx.Err()
		case <-l.done:
			return nil
		}
	}
}

// Stop ends Run; functions still queued are dropped
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		close(l.done)
	})
}

// Done is closed when the loop stops
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

func (l *Loop) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("event loop: recovered from panic in posted function: %v", r)
		}
	}()
	fn()
}
