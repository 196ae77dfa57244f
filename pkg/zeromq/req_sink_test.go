package zeromq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/pebbe/zmq4"

	"github.com/open-teleop/gamepad-bridge/domain/teleop"
	customlog "github.com/open-teleop/gamepad-bridge/pkg/log"
)

// startReplier binds a REP socket on a free port and answers each request
// with reply(type). It returns the endpoint.
func startReplier(t *testing.T, reply func(msgType string) string) string {
	t.Helper()

	ctx, err := zmq4.NewContext()
	if err != nil {
		t.Fatalf("Failed to create ZMQ context: %v", err)
	}
	socket, err := ctx.NewSocket(zmq4.Type(zmq4.REP))
	if err != nil {
		t.Fatalf("Failed to create REP socket: %v", err)
	}
	socket.SetLinger(0)
	socket.SetRcvtimeo(50 * time.Millisecond)
	if err := socket.Bind("tcp://127.0.0.1:*"); err != nil {
		t.Fatalf("Failed to bind: %v", err)
	}
	endpoint, err := socket.GetLastEndpoint()
	if err != nil {
		t.Fatalf("Failed to read endpoint: %v", err)
	}

	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		for {
			select {
			case <-done:
				return
			default:
			}
			data, err := socket.RecvBytes(0)
			if err != nil {
				continue
			}
			var msg ZeroMQMessage
			_ = json.Unmarshal(data, &msg)
			socket.Send(reply(msg.Type), 0)
		}
	}()

	t.Cleanup(func() {
		close(done)
		<-stopped
		socket.Close()
		ctx.Term()
	})
	return endpoint
}

func TestReqSinkRoundTrip(t *testing.T) {
	endpoint := startReplier(t, func(msgType string) string {
		if msgType == "set_auto_steer" {
			return `{"type":"ERROR","data":{"message":"not available","code":503}}`
		}
		return `{"type":"ACK"}`
	})

	sink, err := NewReqSink(endpoint, customlog.NewNopLogger())
	if err != nil {
		t.Fatalf("NewReqSink failed: %v", err)
	}
	defer sink.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := sink.Send(ctx, teleop.SetSpeed(0.3)); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	err = sink.Send(ctx, teleop.SetAutoSteer(true))
	var re *ReplyError
	if !errors.As(err, &re) || re.Code != 503 {
		t.Fatalf("Expected ReplyError, got %v", err)
	}

	if err := sink.Send(ctx, teleop.SetSteer(0)); err != nil {
		t.Errorf("Sink should keep working after an ERROR reply: %v", err)
	}
}

func TestReqSinkTimeoutResetsSocket(t *testing.T) {
	sink, err := NewReqSink("127.0.0.1:1", customlog.NewNopLogger())
	if err != nil {
		t.Fatalf("NewReqSink failed: %v", err)
	}
	defer sink.Close()

	if sink.Endpoint() != "tcp://127.0.0.1:1" {
		t.Errorf("Unexpected endpoint %s", sink.Endpoint())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := sink.Send(ctx, teleop.SetSpeed(0)); err == nil {
		t.Fatal("Expected timeout with no peer")
	}
	if sink.socket != nil {
		t.Error("Socket should be discarded after a failed round trip")
	}
}

func TestReqSinkClosed(t *testing.T) {
	sink, err := NewReqSink("127.0.0.1:1", customlog.NewNopLogger())
	if err != nil {
		t.Fatalf("NewReqSink failed: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := sink.Send(context.Background(), teleop.SetSpeed(0)); !errors.Is(err, ErrServiceClosed) {
		t.Errorf("Expected ErrServiceClosed, got %v", err)
	}
}
