// Package hostaudio implements the concrete Host adapters that pull samples
// into, and push denoised samples out of, a denoise.Manager: a WAV file pair
// for offline runs and a PortAudio stream for live capture.
//
// Grounded on the teacher's internal/audio package: WAVFile below plays the
// role of the teacher's recording.go encoder/decoder pairing, generalized
// from "record what the mic captures" to "stream a file through the
// pipeline"; Microphone below is the teacher's engine.go capture loop
// stripped of its own DSP (that now lives in denoise.Manager) and adapted
// to the Host interface's synchronous pull/push shape instead of a
// callback.
package hostaudio

import (
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WAVFile is a Host that reads mono 16-bit PCM from an input WAV file and
// writes the same shape to an output WAV file. The whole input is decoded
// up front with FullPCMBuffer, since the WAV container has no framing that
// would let a caller safely resume a partial PCMBuffer read mid-chunk; the
// Host contract's chunking happens on top of that in-memory buffer. It is
// not safe for concurrent use; denoise.Run drives it from a single
// goroutine.
type WAVFile struct {
	out *os.File

	encoder *wav.Encoder

	sampleRate int
	in         []int16
	pos        int
	written    []int16
}

// OpenWAVFile decodes inPath in full and creates outPath for encoding,
// carrying over the input file's sample rate. Both files are mono; a
// stereo input is rejected rather than silently mixed down, since the
// engine's core scope is single-channel.
func OpenWAVFile(inPath, outPath string) (*WAVFile, error) {
	inFile, err := os.Open(inPath)
	if err != nil {
		return nil, fmt.Errorf("hostaudio: open input: %w", err)
	}
	defer inFile.Close()

	decoder := wav.NewDecoder(inFile)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("hostaudio: %s is not a valid WAV file", inPath)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("hostaudio: decode %s: %w", inPath, err)
	}
	if buf.Format.NumChannels != 1 {
		return nil, fmt.Errorf("hostaudio: %s has %d channels, want mono", inPath, buf.Format.NumChannels)
	}

	samples := make([]int16, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = int16(v)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return nil, fmt.Errorf("hostaudio: create output: %w", err)
	}
	encoder := wav.NewEncoder(out, buf.Format.SampleRate, 16, 1, 1)

	return &WAVFile{
		out:        out,
		encoder:    encoder,
		sampleRate: buf.Format.SampleRate,
		in:         samples,
	}, nil
}

// SampleRate reports the input file's sample rate, for building a matching
// Config before Run.
func (f *WAVFile) SampleRate() int { return f.sampleRate }

// ReadBuffer copies up to len(dst) samples out of the decoded input,
// returning io.EOF once nothing remains.
func (f *WAVFile) ReadBuffer(dst []int16) (int, error) {
	if f.pos >= len(f.in) {
		return 0, io.EOF
	}
	n := copy(dst, f.in[f.pos:])
	f.pos += n
	if n < len(dst) {
		return n, io.EOF
	}
	return n, nil
}

// WriteBuffer appends src to the in-memory output accumulator; the WAV file
// itself is written on Close, matching the teacher's saveWavFile pattern of
// one encoder.Write call over a fully assembled buffer.
func (f *WAVFile) WriteBuffer(src []int16) error {
	f.written = append(f.written, src...)
	return nil
}

// Close encodes the accumulated output samples and closes the underlying
// file.
func (f *WAVFile) Close() error {
	data := make([]int, len(f.written))
	for i, s := range f.written {
		data[i] = int(s)
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: f.sampleRate},
		SourceBitDepth: 16,
		Data:           data,
	}
	if err := f.encoder.Write(buf); err != nil {
		f.out.Close()
		return fmt.Errorf("hostaudio: encode: %w", err)
	}
	if err := f.encoder.Close(); err != nil {
		f.out.Close()
		return fmt.Errorf("hostaudio: close encoder: %w", err)
	}
	if err := f.out.Close(); err != nil {
		return fmt.Errorf("hostaudio: close output: %w", err)
	}
	return nil
}
