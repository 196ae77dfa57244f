package dispatch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/open-teleop/gamepad-bridge/domain/teleop"
	customlog "github.com/open-teleop/gamepad-bridge/pkg/log"
)

// gatedObserver blocks every delivery until release is closed.
type gatedObserver struct {
	release chan struct{}

	mu   sync.Mutex
	seqs []uint64
}

func (g *gatedObserver) OnDispatch(r Result) {
	<-g.release
	g.mu.Lock()
	g.seqs = append(g.seqs, r.Command.Seq)
	g.mu.Unlock()
}

func (g *gatedObserver) delivered() []uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]uint64(nil), g.seqs...)
}

func resultWithSeq(seq uint64) Result {
	cmd := teleop.SetSpeed(0.1)
	cmd.Seq = seq
	return Result{Command: cmd}
}

func TestAsyncObserverDoesNotBlockDispatch(t *testing.T) {
	slow := &gatedObserver{release: make(chan struct{})}
	obs := NewAsyncObserver(slow, 8, customlog.NewNopLogger())

	d, err := NewDispatcher(newFakeSink(), Options{Mode: ModeSync, Timeout: time.Second}, nil, customlog.NewNopLogger())
	if err != nil {
		t.Fatalf("NewDispatcher failed: %v", err)
	}
	d.AddObserver(obs)

	finished := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			d.Dispatch(context.Background(), teleop.SetSpeed(float64(i)/10))
		}
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Dispatch blocked on a stalled mirror")
	}

	close(slow.release)
	obs.Close()
	if got := len(slow.delivered()); got != 5 {
		t.Errorf("Expected 5 mirrored results after Close, got %d", got)
	}
}

func TestAsyncObserverKeepsOrderAndDropsOverflow(t *testing.T) {
	slow := &gatedObserver{release: make(chan struct{})}
	rec := customlog.NewRecorder()
	obs := NewAsyncObserver(slow, 4, rec)

	for seq := uint64(1); seq <= 20; seq++ {
		obs.OnDispatch(resultWithSeq(seq))
	}
	close(slow.release)
	obs.Close()

	got := slow.delivered()
	if int64(len(got))+obs.Dropped() != 20 {
		t.Errorf("Delivered %d and dropped %d, expected 20 in total", len(got), obs.Dropped())
	}
	if obs.Dropped() == 0 || rec.Count("warn") == 0 {
		t.Errorf("Expected dropped results to be reported, dropped=%d warnings=%d", obs.Dropped(), rec.Count("warn"))
	}
	for i := 1; i < len(got); i++ {
		if got[i] <= got[i-1] {
			t.Fatalf("Results out of order: %v", got)
		}
	}
}

func TestAsyncObserverIgnoresResultsAfterClose(t *testing.T) {
	slow := &gatedObserver{release: make(chan struct{})}
	close(slow.release)
	obs := NewAsyncObserver(slow, 0, customlog.NewNopLogger())

	obs.OnDispatch(resultWithSeq(1))
	obs.Close()
	obs.OnDispatch(resultWithSeq(2))
	obs.Close()

	if got := slow.delivered(); len(got) != 1 || got[0] != 1 {
		t.Errorf("Expected only the result sent before Close, got %v", got)
	}
}
