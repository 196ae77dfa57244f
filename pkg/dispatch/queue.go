package dispatch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/open-teleop/gamepad-bridge/domain/teleop"
	customlog "github.com/open-teleop/gamepad-bridge/pkg/log"
)

// ErrQueueStopped is returned by Enqueue once Stop has been called.
var ErrQueueStopped = errors.New("dispatch queue stopped")

// CommandHandler is invoked by the worker for every queued command
type CommandHandler func(cmd teleop.Command)

// CommandQueue is a bounded FIFO drained by a single worker goroutine,
// so commands are handled strictly in the order they were queued.
type CommandQueue struct {
	logger    customlog.Logger
	queue     chan teleop.Command
	queueSize int
	handler   CommandHandler
	running   bool
	wg        sync.WaitGroup
	mu        sync.RWMutex
	metrics   *QueueMetrics
}

// QueueMetrics tracks metrics for the queue
type QueueMetrics struct {
	QueuedCount     int64
	HandledCount    int64
	BlockedCount    int64
	LastHandledTime int64
	HandlingTimeAvg int64 // in microseconds
	HandlingTimeMax int64 // in microseconds
	mu              sync.Mutex
}

// NewCommandQueue creates a new command queue
func NewCommandQueue(queueSize int, handler CommandHandler, logger customlog.Logger) *CommandQueue {
	if queueSize < 1 {
		queueSize = 1
	}
	return &CommandQueue{
		logger:    logger,
		queue:     make(chan teleop.Command, queueSize),
		queueSize: queueSize,
		handler:   handler,
		metrics:   &QueueMetrics{},
	}
}

// Start starts the worker
func (q *CommandQueue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.running {
		return
	}

	q.running = true
	q.logger.Infof("Starting dispatch queue (capacity %d)", q.queueSize)

	q.wg.Add(1)
	go q.worker()
}

// Enqueue adds cmd to the queue. When the queue is full it blocks until
// the worker makes room or ctx is done; commands are never discarded.
func (q *CommandQueue) Enqueue(ctx context.Context, cmd teleop.Command) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if !q.running {
		return ErrQueueStopped
	}

	select {
	case q.queue <- cmd:
	default:
		q.metrics.mu.Lock()
		q.metrics.BlockedCount++
		q.metrics.mu.Unlock()
		q.logger.Debugf("Dispatch queue full, waiting to enqueue %s", cmd.Name)

		select {
		case q.queue <- cmd:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	q.metrics.mu.Lock()
	q.metrics.QueuedCount++
	q.metrics.mu.Unlock()
	return nil
}

// Stop refuses new commands, lets the worker drain what is already
// queued and waits for it to exit.
func (q *CommandQueue) Stop() {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return
	}
	q.running = false
	close(q.queue)
	q.mu.Unlock()

	q.logger.Infof("Stopping dispatch queue, %d commands pending", len(q.queue))
	q.wg.Wait()
	q.logMetrics()
}

func (q *CommandQueue) worker() {
	defer q.wg.Done()

	for cmd := range q.queue {
		start := time.Now()
		q.handler(cmd)
		elapsed := time.Since(start).Microseconds()

		q.metrics.mu.Lock()
		q.metrics.HandledCount++
		q.metrics.LastHandledTime = time.Now().UnixNano()
		if q.metrics.HandlingTimeAvg == 0 {
			q.metrics.HandlingTimeAvg = elapsed
		} else {
			q.metrics.HandlingTimeAvg = (q.metrics.HandlingTimeAvg + elapsed) / 2
		}
		if elapsed > q.metrics.HandlingTimeMax {
			q.metrics.HandlingTimeMax = elapsed
		}
		q.metrics.mu.Unlock()
	}

	q.logger.Debugf("Dispatch worker stopped")
}

// GetMetrics returns a copy of the current metrics
func (q *CommandQueue) GetMetrics() QueueMetrics {
	q.metrics.mu.Lock()
	defer q.metrics.mu.Unlock()

	return QueueMetrics{
		QueuedCount:     q.metrics.QueuedCount,
		HandledCount:    q.metrics.HandledCount,
		BlockedCount:    q.metrics.BlockedCount,
		LastHandledTime: q.metrics.LastHandledTime,
		HandlingTimeAvg: q.metrics.HandlingTimeAvg,
		HandlingTimeMax: q.metrics.HandlingTimeMax,
	}
}

func (q *CommandQueue) logMetrics() {
	m := q.GetMetrics()
	q.logger.Infof("Dispatch queue metrics: queued=%d, handled=%d, blocked=%d, avg_time=%dµs, max_time=%dµs",
		m.QueuedCount, m.HandledCount, m.BlockedCount, m.HandlingTimeAvg, m.HandlingTimeMax)
}

// Len returns the number of commands waiting
func (q *CommandQueue) Len() int {
	return len(q.queue)
}

// Cap returns the capacity of the queue
func (q *CommandQueue) Cap() int {
	return q.queueSize
}
