// Package window builds the analysis/synthesis window pairs used around the
// forward and inverse FFT. The overlap-add that recombines successive frames
// into a continuous output stream is done by denoise.Manager, not here.
//
// Grounded on the teacher's internal/analysis/fft.go, which already selects
// among gonum.org/v1/gonum/dsp/window functions by an enum and pre-seeds the
// coefficient slice to 1.0 before applying one (the same trick this package
// uses for Rectangular, which gonum's window package does not provide since
// it is simply the identity).
package window

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/dsp/window"
)

// Kind enumerates the supported analysis/synthesis window shapes.
type Kind int

const (
	Hann Kind = iota
	Hamming
	Rectangular
)

func (k Kind) String() string {
	switch k {
	case Hann:
		return "hann"
	case Hamming:
		return "hamming"
	case Rectangular:
		return "rectangular"
	default:
		return "unknown"
	}
}

// ParseKind converts a case-insensitive name into a Kind.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(name) {
	case "hann", "hanning":
		return Hann, nil
	case "hamming":
		return Hamming, nil
	case "rectangular", "rect", "none":
		return Rectangular, nil
	default:
		return Hann, fmt.Errorf("window: unknown window kind %q", name)
	}
}

// Coefficients returns a fresh length-n array of window coefficients.
func Coefficients(n int, kind Kind) []float64 {
	coeffs := make([]float64, n)
	for i := range coeffs {
		coeffs[i] = 1.0
	}
	switch kind {
	case Hann:
		window.Hann(coeffs)
	case Hamming:
		window.Hamming(coeffs)
	case Rectangular:
		// identity: coefficients already seeded to 1.0.
	default:
		window.Hann(coeffs)
	}
	return coeffs
}

// Pair holds the analysis window applied before the forward FFT and the
// synthesis window applied after the inverse FFT, plus the hop H they were
// built for. For the default configuration (Hann analysis, H = N/2) the
// constant-overlap-add property holds with const = 1 after splitting the
// window's square root between analysis and synthesis, matching spec.md
// §4.3.
type Pair struct {
	Analysis  []float64
	Synthesis []float64
	Hop       int
}

// periodicHann returns the DFT-even ("periodic") Hann window: gonum's
// window.Hann is the symmetric variant (denominator N-1), which is the right
// choice for spectral analysis but only approximates constant-overlap-add at
// 50% hop. The periodic variant (denominator N) satisfies it exactly, which
// is the property NewPair's sqrt split depends on.
func periodicHann(n int) []float64 {
	coeffs := make([]float64, n)
	for i := range coeffs {
		coeffs[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n))
	}
	return coeffs
}

// NewPair builds the analysis/synthesis window pair for transform size n,
// hop h, and window shape kind. Hann analysis is paired with a sqrt-split
// synthesis window (each is the elementwise square root of the periodic Hann
// window) so that analysis*synthesis reproduces the Hann shape and satisfies
// constant-overlap-add at h = n/2. Hamming and Rectangular use a rectangular
// synthesis window, matching the teacher's convention of leaving the inverse
// path unwindowed unless the analysis window demands compensation.
func NewPair(n, h int, kind Kind) Pair {
	analysis := Coefficients(n, kind)
	synthesis := make([]float64, n)
	for i := range synthesis {
		synthesis[i] = 1.0
	}

	if kind == Hann {
		periodic := periodicHann(n)
		for i, a := range periodic {
			root := math.Sqrt(math.Max(a, 0))
			analysis[i] = root
			synthesis[i] = root
		}
	}

	return Pair{Analysis: analysis, Synthesis: synthesis, Hop: h}
}
