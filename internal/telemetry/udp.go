package telemetry

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"net"
	"sync"
	"time"
)

// UDP packs (sequence, timestamp, noise_power[]) into a fixed binary layout
// and fires datagrams at a target address, on its own ticking goroutine.
// Grounded on the teacher's internal/transport/udp package: UDPPublisher's
// ticker-driven Start/Stop pairing and UDPSender's connected-socket Send,
// collapsed into one type since telemetry has no separate "which processor
// to poll" indirection to preserve — the manager pushes, this only packs
// and sends.
type UDP struct {
	conn *net.UDPConn

	interval time.Duration
	ticker   *time.Ticker
	latest   chan []float64
	done     chan struct{}
	wg       sync.WaitGroup

	sequence uint32
}

// NewUDP dials target ("host:port") and starts the send loop at interval
// (16ms if interval <= 0, matching the teacher's ~60Hz default).
func NewUDP(target string, interval time.Duration) (*UDP, error) {
	addr, err := net.ResolveUDPAddr("udp", target)
	if err != nil {
		return nil, fmt.Errorf("telemetry: resolve udp target %q: %w", target, err)
	}
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("telemetry: dial udp %q: %w", target, err)
	}
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}

	u := &UDP{
		conn:     conn,
		interval: interval,
		ticker:   time.NewTicker(interval),
		latest:   make(chan []float64, 1),
		done:     make(chan struct{}),
	}

	u.wg.Add(1)
	go u.run()
	return u, nil
}

func (u *UDP) run() {
	defer u.wg.Done()
	var pending []float64
	for {
		select {
		case np := <-u.latest:
			pending = np
		case <-u.ticker.C:
			if pending != nil {
				u.sendPacket(pending)
			}
		case <-u.done:
			return
		}
	}
}

// packet layout (BigEndian): sequence uint32, timestamp int64 (unix nanos),
// count uint16, then count float32 noise-power values.
func (u *UDP) sendPacket(noisePower []float64) {
	u.sequence++
	var buf bytes.Buffer
	err := binary.Write(&buf, binary.BigEndian, u.sequence)
	if err == nil {
		err = binary.Write(&buf, binary.BigEndian, time.Now().UnixNano())
	}
	if err == nil {
		err = binary.Write(&buf, binary.BigEndian, uint16(len(noisePower)))
	}
	for _, v := range noisePower {
		if err != nil {
			break
		}
		err = binary.Write(&buf, binary.BigEndian, float32(v))
	}
	if err != nil {
		telemetryLog.Errorf("udp pack: %v", err)
		return
	}
	if _, err := u.conn.Write(buf.Bytes()); err != nil {
		telemetryLog.Errorf("udp send: %v", err)
	}
}

// Send replaces the pending sample the next tick will publish. It never
// blocks: a burst of Send calls between ticks only sends the most recent
// one.
func (u *UDP) Send(noisePower []float64) error {
	cp := append([]float64(nil), noisePower...)
	select {
	case u.latest <- cp:
	default:
		select {
		case <-u.latest:
		default:
		}
		u.latest <- cp
	}
	return nil
}

// Close stops the send loop and closes the socket.
func (u *UDP) Close() error {
	u.ticker.Stop()
	close(u.done)
	u.wg.Wait()
	if err := u.conn.Close(); err != nil {
		return fmt.Errorf("telemetry: close udp connection: %w", err)
	}
	return nil
}

var _ Sink = (*UDP)(nil)
