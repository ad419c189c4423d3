package hostaudio

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Host mirrors denoise.Host's shape locally so this package does not need
// to import the denoise package just to embed the interface below.
type Host interface {
	ReadBuffer(dst []int16) (n int, err error)
	WriteBuffer(src []int16) error
}

// Recorder wraps a Host, forwarding ReadBuffer unchanged and additionally
// appending every WriteBuffer call to an output WAV file. It exists so
// "mic --record" can tee the denoised stream to disk without teaching
// Microphone itself about file encoding.
type Recorder struct {
	Host
	out        *os.File
	encoder    *wav.Encoder
	sampleRate int
	written    []int16
}

// NewRecorder wraps host, recording its denoised output to path at
// sampleRate.
func NewRecorder(host Host, path string, sampleRate int) (*Recorder, error) {
	out, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("hostaudio: create recording: %w", err)
	}
	return &Recorder{
		Host:       host,
		out:        out,
		encoder:    wav.NewEncoder(out, sampleRate, 16, 1, 1),
		sampleRate: sampleRate,
	}, nil
}

// WriteBuffer forwards to the wrapped Host and buffers a copy for the
// recording, encoded on Close.
func (r *Recorder) WriteBuffer(src []int16) error {
	r.written = append(r.written, src...)
	return r.Host.WriteBuffer(src)
}

// Close encodes the buffered recording, closes the output file, then closes
// the wrapped Host if it implements io.Closer.
func (r *Recorder) Close() error {
	data := make([]int, len(r.written))
	for i, s := range r.written {
		data[i] = int(s)
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: r.sampleRate},
		SourceBitDepth: 16,
		Data:           data,
	}
	if err := r.encoder.Write(buf); err != nil {
		return fmt.Errorf("hostaudio: encode recording: %w", err)
	}
	if err := r.encoder.Close(); err != nil {
		return fmt.Errorf("hostaudio: close recording encoder: %w", err)
	}
	if err := r.out.Close(); err != nil {
		return fmt.Errorf("hostaudio: close recording file: %w", err)
	}
	if closer, ok := r.Host.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
