package dispatch

import (
	"sync"
	"sync/atomic"

	customlog "github.com/open-teleop/gamepad-bridge/pkg/log"
)

// DefaultMirrorBuffer is the number of results a mirror may lag behind
// dispatch before results are dropped.
const DefaultMirrorBuffer = 256

// AsyncObserver hands results to a wrapped Observer on its own goroutine.
// OnDispatch never blocks: when the buffer is full the result is dropped
// for this observer only. Results that are delivered keep command order.
type AsyncObserver struct {
	next    Observer
	logger  customlog.Logger
	results chan Result
	done    chan struct{}

	mu      sync.RWMutex
	closed  bool
	dropped atomic.Int64
}

// NewAsyncObserver starts a delivery goroutine for next. size <= 0 uses
// DefaultMirrorBuffer.
func NewAsyncObserver(next Observer, size int, logger customlog.Logger) *AsyncObserver {
	if size <= 0 {
		size = DefaultMirrorBuffer
	}
	a := &AsyncObserver{
		next:    next,
		logger:  logger,
		results: make(chan Result, size),
		done:    make(chan struct{}),
	}
	go a.run()
	return a
}

// OnDispatch implements Observer
func (a *AsyncObserver) OnDispatch(result Result) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return
	}

	select {
	case a.results <- result:
	default:
		if n := a.dropped.Add(1); n == 1 || n%100 == 0 {
			a.logger.Warnf("Mirror is falling behind, dropped %d results so far (last: %s seq=%d)",
				n, result.Command.Name, result.Command.Seq)
		}
	}
}

// Dropped returns how many results were discarded because the buffer was full
func (a *AsyncObserver) Dropped() int64 {
	return a.dropped.Load()
}

// Close stops accepting results and waits until the buffered ones have
// been delivered.
func (a *AsyncObserver) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		<-a.done
		return
	}
	a.closed = true
	close(a.results)
	a.mu.Unlock()

	<-a.done
}

func (a *AsyncObserver) run() {
	defer close(a.done)
	for r := range a.results {
		a.next.OnDispatch(r)
	}
}
