package telemetry

import (
	"net"
	"testing"
	"time"
)

func TestWebSocketSendNeverBlocksWhenFull(t *testing.T) {
	ws := &WebSocket{broadcast: make(chan []float64, 2)}

	for i := 0; i < 10; i++ {
		if err := ws.Send([]float64{float64(i)}); err != nil {
			t.Fatalf("Send: unexpected error %v", err)
		}
	}
	if len(ws.broadcast) != 2 {
		t.Fatalf("broadcast channel length = %d, want 2 (capacity, excess dropped)", len(ws.broadcast))
	}
}

func TestWebSocketListensOnConfiguredAddr(t *testing.T) {
	// A fixed high port, not 0: NewWebSocket does not expose the listener
	// it binds internally, so an ephemeral port (":0") would leave nothing
	// to dial back into.
	const addr = "127.0.0.1:18732"
	ws := NewWebSocket(addr)
	defer ws.Close()

	// ListenAndServe starts asynchronously; give it a moment to bind.
	deadline := time.Now().Add(time.Second)
	var conn net.Conn
	var err error
	for time.Now().Before(deadline) {
		conn, err = net.DialTimeout("tcp", addr, 50*time.Millisecond)
		if err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err != nil {
		t.Skipf("server did not become reachable in time (environment may block loopback listeners): %v", err)
	}
	conn.Close()
}
