package denoise

import (
	"errors"
	"fmt"
	"io"
)

// Host is the pulling boundary between a Manager and whatever owns the
// actual samples: a WAV file, a live capture stream, or a test harness.
// ReadBuffer fills dst and reports how many samples it actually placed
// there; end of stream is reported as io.EOF, which may accompany a final
// short read. WriteBuffer accepts exactly len(src) denoised samples.
type Host interface {
	ReadBuffer(dst []int16) (n int, err error)
	WriteBuffer(src []int16) error
}

// Run drives host through m until ReadBuffer returns io.EOF (or any other
// error, which is returned to the caller), one hop-sized buffer at a time.
// A short final read from host is zero-padded before being handed to
// ComputeFrame, and ResetFrame is called once at the end so a Host reused
// across sessions (a live microphone stream between takes) starts the next
// Run with clean estimator/streaming state.
func Run(host Host, m *Manager) error {
	buf := make([]int16, m.h)
	for {
		n, err := host.ReadBuffer(buf)
		if n > 0 {
			frame := buf
			if n < len(buf) {
				frame = append([]int16(nil), buf[:n]...)
				frame = append(frame, make([]int16, len(buf)-n)...)
			}
			if cerr := m.ComputeFrame(frame); cerr != nil {
				return fmt.Errorf("denoise: Run: %w", cerr)
			}
			if werr := host.WriteBuffer(frame); werr != nil {
				return fmt.Errorf("denoise: Run: %w", werr)
			}
		}
		if err != nil {
			m.ResetFrame()
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("denoise: Run: %w", err)
		}
	}
}
