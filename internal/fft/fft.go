// Package fft wraps gonum's real FFT with the scratch buffers and re-plan
// semantics the spectral-subtraction pipeline needs: forward transform of a
// length-N real frame into a length-N/2+1 complex spectrum, and the inverse.
//
// Grounded on the teacher's internal/analysis/fft.go and internal/fft/fft.go,
// both of which already wrap gonum.org/v1/gonum/dsp/fourier.FFT for real-time
// analysis; this package keeps that wrapping idiom but adds the inverse
// transform and re-plan-on-resize behaviour the denoise pipeline requires.
package fft

import (
	"fmt"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Engine performs forward and inverse real FFTs of a fixed size N, reusing
// scratch buffers across calls. Re-planning (discarding the gonum FFT plan
// and scratch buffers, then rebuilding them) happens only in Resize.
type Engine struct {
	n   int
	fft *fourier.FFT
}

// New constructs an Engine for transform size n, which must be a power of
// two. A failure during gonum's plan construction is not turned into an
// error: neither New nor denoise.Manager.Configure recovers a panic from
// fourier.NewFFT, so it propagates to Configure's caller.
func New(n int) (*Engine, error) {
	if n <= 0 || n&(n-1) != 0 {
		return nil, fmt.Errorf("fft: size %d is not a positive power of two", n)
	}
	e := &Engine{}
	e.replan(n)
	return e, nil
}

func (e *Engine) replan(n int) {
	e.n = n
	e.fft = fourier.NewFFT(n)
}

// Resize re-plans the engine for a new transform size, discarding all
// scratch state from the previous size. It is a fatal configuration error
// for the caller to retain a pointer into the old scratch buffer afterward;
// Forward/Inverse always operate on the buffers current at call time.
func (e *Engine) Resize(n int) error {
	if n <= 0 || n&(n-1) != 0 {
		return fmt.Errorf("fft: size %d is not a positive power of two", n)
	}
	if n == e.n {
		return nil
	}
	e.replan(n)
	return nil
}

// Size returns the current transform length N.
func (e *Engine) Size() int { return e.n }

// SpectrumSize returns N/2 + 1, the number of unique complex bins produced
// by Forward.
func (e *Engine) SpectrumSize() int { return e.n/2 + 1 }

// Forward computes the length-N/2+1 Hermitian-packed spectrum of the
// length-N real frame src, writing it into dst. dst must have length
// SpectrumSize(); src must have length Size().
func (e *Engine) Forward(dst []complex128, src []float64) {
	e.fft.Coefficients(dst, src)
}

// Inverse computes the length-N real signal corresponding to the
// length-N/2+1 spectrum src, writing it into dst. The transform is scaled so
// that Inverse(Forward(x)) reconstructs x: ifft(fft(x)) = x.
func (e *Engine) Inverse(dst []float64, src []complex128) {
	out := e.fft.Sequence(dst, src)
	n := float64(e.n)
	for i := range out {
		out[i] /= n
	}
}

// Freq returns the frequency, in cycles/sample, corresponding to bin i of a
// Forward output. Multiply by the sample rate to get Hz.
func (e *Engine) Freq(i int) float64 {
	return e.fft.Freq(i)
}
