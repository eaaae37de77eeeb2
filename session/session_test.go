package session

import (
	"context"
	"testing"
	"time"
)

func connectTestMode(t *testing.T, responses ...[]byte) *Connection {
	t.Helper()
	c, err := Connect(context.Background(), "", ConnectOptions{TestMode: true})
	if err != nil {
		t.Fatalf("Connect(TestMode): %v", err)
	}
	c.conn = newTestConn(responses...)
	return c
}

func TestPingPong(t *testing.T) {
	c := connectTestMode(t, pongResp)

	latency, err := c.Ping(time.Second)
	if err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if latency < 0 {
		t.Fatalf("Ping latency negative: %v", latency)
	}
}

func TestAppAvailable(t *testing.T) {
	c := connectTestMode(t, appAvailResp)

	ok, err := c.AppAvailable("02834648", time.Second)
	if err != nil {
		t.Fatalf("AppAvailable: %v", err)
	}
	if !ok {
		t.Fatal("expected application to report available")
	}
}

func TestAppUnavailable(t *testing.T) {
	c := connectTestMode(t, appUnavailResp)

	ok, err := c.AppAvailable("02834648", time.Second)
	if err != nil {
		t.Fatalf("AppAvailable: %v", err)
	}
	if ok {
		t.Fatal("expected application to report unavailable")
	}
}

func TestAppAvailableSkipsMalformedFrame(t *testing.T) {
	corrupted := make([]byte, len(appAvailResp))
	copy(corrupted, appAvailResp)
	// Corrupt the destinationID field tag (offset 18) so the first frame
	// in the queue is rejected by the demultiplexer as malformed, and the
	// session must recover by reading on for the next well-formed frame
	// (see castproto's TestFrameErrorResilience for the same scenario at
	// the demultiplexer level).
	corrupted[18] = 0x02

	c := connectTestMode(t, corrupted, appAvailResp)

	ok, err := c.AppAvailable("02834648", time.Second)
	if err != nil {
		t.Fatalf("AppAvailable: %v", err)
	}
	if !ok {
		t.Fatal("expected application to report available after skipping the malformed frame")
	}
}

func TestRequestIDMonotonic(t *testing.T) {
	c := connectTestMode(t)

	seen := make(map[int32]bool)
	for i := 0; i < 10; i++ {
		id := c.nextRequestID()
		if seen[id] {
			t.Fatalf("request id %d reused", id)
		}
		seen[id] = true
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	c := connectTestMode(t)

	if err := c.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
