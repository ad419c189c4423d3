// Package telemetry implements optional, best-effort observers of a
// denoise.Manager's per-frame noise-power trace: a WebSocket broadcaster
// for a monitoring UI and a UDP publisher for lightweight external
// consumers. Both are grounded on the teacher's internal/transport package
// and its Transport interface, narrowed here to the one payload shape the
// manager actually produces.
package telemetry

import "denoise/internal/log"

var telemetryLog = log.Component("telemetry")

// Sink receives the manager's noise-power vector after every processed
// frame. The manager reuses that slice, so an implementation that keeps it
// past Send must copy it. Implementations must not block: a slow or unreachable
// sink must never hold up the hot per-frame loop, matching spec.md §5's "no
// suspension points" guarantee.
type Sink interface {
	Send(noisePower []float64) error
	Close() error
}

// Multi fans a single noise-power vector out to every sink in order,
// collecting (not stopping on) the first error so one dead sink cannot mask
// another's.
type Multi struct {
	sinks []Sink
}

// NewMulti wraps zero or more sinks as one. A Multi with no sinks is a
// valid, silent no-op — the manager can always call Send without checking
// whether telemetry is configured.
func NewMulti(sinks ...Sink) *Multi {
	return &Multi{sinks: sinks}
}

func (m *Multi) Send(noisePower []float64) error {
	var firstErr error
	for _, s := range m.sinks {
		if err := s.Send(noisePower); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *Multi) Close() error {
	var firstErr error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
