// Package subtraction implements the spectral-subtraction trait and its
// concrete rules: Standard power-domain subtraction, TwoStep (a conservative
// first pass followed by a sharper second pass), and Berouti (power-domain
// oversubtraction whose factor falls as the frame's SNR rises).
//
// Grounded on original_source/libnoisered/subtraction/subtraction_algorithm.h
// for the trait shape (apply / clone / onFFTSizeUpdate / onDataUpdate over a
// per-frame spectrum-in-place functor) and on the magnitude-domain
// subtract-and-floor idiom worked in other_examples/haivivi-giztoy__denoise.go
// for the concrete rules' gain computation.
package subtraction

import (
	"math"
	"math/cmplx"
)

// Subtractor is the per-frame spectral-subtraction trait. Apply modifies
// spectrum in place given the estimated per-bin noise power; phase is always
// preserved, only magnitude changes.
type Subtractor interface {
	Apply(spectrum []complex128, noisePower []float64)
	Clone() Subtractor
	OnFFTSizeUpdate(spectrumSize int)
	OnDataUpdate()
}

// applyGain rewrites spectrum[k] to have magnitude sqrt(cleanPower) while
// keeping its original phase, for every bin. cleanPower must already be
// clamped non-negative by the caller.
func applyGain(spectrum []complex128, cleanPower []float64) {
	for k, c := range spectrum {
		phase := cmplx.Phase(c)
		mag := math.Sqrt(math.Max(cleanPower[k], 0))
		spectrum[k] = cmplx.Rect(mag, phase)
	}
}
