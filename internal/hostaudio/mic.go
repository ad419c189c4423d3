package hostaudio

import (
	"fmt"
	"io"

	"github.com/gordonklaus/portaudio"
)

// Initialize sets up the PortAudio subsystem. It must be called before
// NewMicrophone or ListDevices, and paired with a deferred Terminate.
func Initialize() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("hostaudio: initialize portaudio: %w", err)
	}
	return nil
}

// Terminate shuts down the PortAudio subsystem.
func Terminate() error {
	if err := portaudio.Terminate(); err != nil {
		return fmt.Errorf("hostaudio: terminate portaudio: %w", err)
	}
	return nil
}

// DefaultDeviceID selects the system default input device in NewMicrophone.
const DefaultDeviceID = -1

// Microphone is a Host that pulls live samples from a PortAudio input
// stream. It owns no DSP state of its own: the callback only converts and
// buffers samples for ReadBuffer to hand off, mirroring the way the teacher
// separates capture (engine.go) from processing.
type Microphone struct {
	stream     *portaudio.Stream
	sampleRate int
	frames     int

	captured chan []int16
	stopped  chan struct{}
}

// NewMicrophone opens an input stream on deviceID (DefaultDeviceID for the
// system default) at sampleRate, delivering frames-sized hops.
func NewMicrophone(deviceID int, sampleRate float64, frames int) (*Microphone, error) {
	device, err := inputDevice(deviceID)
	if err != nil {
		return nil, err
	}

	m := &Microphone{
		sampleRate: int(sampleRate),
		frames:     frames,
		captured:   make(chan []int16, 8),
		stopped:    make(chan struct{}),
	}

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: 1,
			Device:   device,
			Latency:  device.DefaultLowInputLatency,
		},
		FramesPerBuffer: frames,
		SampleRate:      sampleRate,
	}

	stream, err := portaudio.OpenStream(params, m.onCapture)
	if err != nil {
		return nil, fmt.Errorf("hostaudio: open input stream: %w", err)
	}
	m.stream = stream

	if err := m.stream.Start(); err != nil {
		m.stream.Close()
		return nil, fmt.Errorf("hostaudio: start input stream: %w", err)
	}
	return m, nil
}

// onCapture is the PortAudio callback. It never blocks on a full channel:
// a hop dropped here reaches ReadBuffer as a gap, which is preferable to
// stalling the audio driver's real-time thread.
func (m *Microphone) onCapture(in []int16) {
	hop := make([]int16, len(in))
	copy(hop, in)
	select {
	case m.captured <- hop:
	default:
	}
}

// ReadBuffer blocks until a captured hop is available and copies it into
// dst. len(dst) must equal the frames size NewMicrophone was opened with.
func (m *Microphone) ReadBuffer(dst []int16) (int, error) {
	select {
	case hop := <-m.captured:
		n := copy(dst, hop)
		return n, nil
	case <-m.stopped:
		return 0, io.EOF
	}
}

// WriteBuffer is a no-op sink: live monitoring has nowhere to play denoised
// audio back to without an output stream, which is out of scope here. A
// caller that also wants an output file wraps Microphone in a Recorder,
// which tees WriteBuffer to a WAV file.
func (m *Microphone) WriteBuffer(src []int16) error { return nil }

// Close stops the stream and unblocks any pending ReadBuffer.
func (m *Microphone) Close() error {
	close(m.stopped)
	if err := m.stream.Stop(); err != nil {
		return fmt.Errorf("hostaudio: stop input stream: %w", err)
	}
	if err := m.stream.Close(); err != nil {
		return fmt.Errorf("hostaudio: close input stream: %w", err)
	}
	return nil
}
