package telemetry

import (
	"encoding/binary"
	"math"
	"net"
	"testing"
	"time"
)

// TestUDPSendsPacketLayout binds a loopback listener, points a UDP sink at
// it, and checks the wire layout sendPacket documents: sequence uint32,
// timestamp int64, count uint16, then count float32 values.
func TestUDPSendsPacketLayout(t *testing.T) {
	listener, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0})
	if err != nil {
		t.Fatalf("ListenUDP: %v", err)
	}
	defer listener.Close()

	sink, err := NewUDP(listener.LocalAddr().String(), 5*time.Millisecond)
	if err != nil {
		t.Fatalf("NewUDP: %v", err)
	}
	defer sink.Close()

	noisePower := []float64{0.5, 1.5, 2.5}
	if err := sink.Send(noisePower); err != nil {
		t.Fatalf("Send: %v", err)
	}

	listener.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
	buf := make([]byte, 1500)
	n, _, err := listener.ReadFromUDP(buf)
	if err != nil {
		t.Fatalf("ReadFromUDP: %v", err)
	}
	buf = buf[:n]

	wantLen := 4 + 8 + 2 + 4*len(noisePower)
	if len(buf) != wantLen {
		t.Fatalf("packet length = %d, want %d", len(buf), wantLen)
	}

	seq := binary.BigEndian.Uint32(buf[0:4])
	if seq != 1 {
		t.Errorf("sequence = %d, want 1", seq)
	}
	count := binary.BigEndian.Uint16(buf[12:14])
	if int(count) != len(noisePower) {
		t.Errorf("count = %d, want %d", count, len(noisePower))
	}
	for i, want := range noisePower {
		bits := binary.BigEndian.Uint32(buf[14+4*i : 18+4*i])
		got := float64(math.Float32frombits(bits))
		if got != want {
			t.Errorf("value[%d] = %v, want %v", i, got, want)
		}
	}
}
