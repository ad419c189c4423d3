package estimation

import (
	"math"

	"denoise/internal/mathutil"
)

// simpleInitialNoiseRMS is the value noise_rms resets to on data update. It
// must be larger than any RMS power the pipeline will actually see from a
// float64 sample stream normalised to [-1, 1] (the forward FFT is
// unnormalised, so by Parseval the per-frame value Apply computes is at most
// about sqrt(2N), under 130 even at N = 8192), so that the very first real frame
// always satisfies "cur < noise_rms" and is accepted unconditionally,
// exactly as the original's raw-int16-domain constant 100000 did against its
// own sample scale.
const simpleInitialNoiseRMS = 1e6

// Simple is the RMS-gated noise estimator: it tracks a running noise RMS and
// only accepts a frame's power spectrum as the new noise estimate while the
// input stays at or below (within a 2% hysteresis band of) that running
// value. A loud frame is rejected outright and the previous noise estimate
// is left untouched.
//
// Grounded on
// original_source/libnoisered/estimation/simple_estimation.cpp.
type Simple struct {
	nrf      int
	noiseRMS float64
	scratch  []float64 // power spectrum reused across calls
}

func NewSimple() *Simple {
	return &Simple{noiseRMS: simpleInitialNoiseRMS}
}

func (s *Simple) Clone() Estimator {
	clone := *s
	clone.scratch = append([]float64(nil), s.scratch...)
	return &clone
}

func (s *Simple) OnFFTSizeUpdate(spectrumSize int, tinc float64) {
	s.nrf = spectrumSize
	s.scratch = make([]float64, spectrumSize)
	s.noiseRMS = simpleInitialNoiseRMS
}

func (s *Simple) OnDataUpdate() {
	s.noiseRMS = simpleInitialNoiseRMS
}

func (s *Simple) Apply(spectrum []complex128, noisePower []float64) bool {
	sumPower := mathutil.PowerSum(spectrum, s.nrf)
	cur := math.Sqrt(sumPower / float64(s.nrf))

	accept := cur < s.noiseRMS || (cur >= s.noiseRMS && cur <= s.noiseRMS*1.02)
	if !accept {
		return false
	}

	s.noiseRMS = cur
	mathutil.ComputePowerSpectrum(spectrum, s.scratch, s.nrf)
	copy(noisePower, s.scratch[:s.nrf])
	return true
}
