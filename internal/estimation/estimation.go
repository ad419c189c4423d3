// Package estimation implements the noise-power estimator trait and its two
// concrete variants: a fast RMS-gated estimator and the Martin (2001)
// minimum-statistics estimator.
//
// Grounded on the closed tagged-variant dispatch the teacher uses for its
// window-function selection in internal/analysis/fft.go (a small interface
// plus a handful of concrete implementers, chosen at configuration time and
// held behind the interface value from then on) rather than a switch
// scattered through the per-frame loop.
package estimation

// Estimator is the per-frame noise-power estimator trait. Implementations
// consume the current frame's complex spectrum and update noisePower in
// place; the return value reports whether the estimate actually advanced
// this frame (a stale estimate from a rejected frame is still valid to use
// downstream).
type Estimator interface {
	// Apply updates noisePower (length spectrumSize) from spectrum (length
	// spectrumSize). It never allocates.
	Apply(spectrum []complex128, noisePower []float64) bool

	// Clone returns an independent copy of the estimator holding its own
	// internal state, for use when a session forks (e.g. A/B parameter
	// comparison) without disturbing the original's running estimate.
	Clone() Estimator

	// OnFFTSizeUpdate (re)allocates internal state for a new spectrum size
	// and frame-time increment tinc (hop / sample rate), and forces the next
	// Apply call to treat its input as the first frame.
	OnFFTSizeUpdate(spectrumSize int, tinc float64)

	// OnDataUpdate clears history without changing size, forcing the next
	// Apply call to treat its input as the first frame. Idempotent: calling
	// it twice in a row leaves the same state as calling it once.
	OnDataUpdate()
}
