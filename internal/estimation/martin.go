package estimation

import (
	"math"

	"denoise/internal/mathutil"
)

// Martin implements the minimum-statistics noise-power estimator described
// in Martin, "Noise Power Spectral Density Estimation Based on Optimal
// Smoothing and Minimum Statistics", IEEE Trans. Speech and Audio Proc.,
// 2001. It tracks, per frequency bin, a smoothed power estimate and the
// minimum of that estimate over a sliding window of sub-windows, corrected
// for the bias introduced by minimum-tracking via the M/H tables in
// martin_tables.go.
//
// Grounded on original_source/libnoisered/estimation/martin_estimation.cpp;
// this rewrite replaces the C++ function-static-variable state machine (a
// single translation unit's worth of statics reused across calls, torn down
// on a sentinel "lastcall" flag) with ordinary struct fields, since Go has
// no equivalent trick and does not need one.
type Martin struct {
	nrf  int
	tinc float64

	// derived constants, fixed for the lifetime of a given (nrf, tinc) pair.
	alphaMax   float64
	alphaMinh  float64
	betaMax    float64
	alphaCa    float64
	alphaCMax  float64
	snrExp     float64
	nu, nv, nd float64
	md, hd     float64 // unused beyond bmind; hd kept for symmetry with original tables
	mv, hv     float64
	nsms       [4]float64

	// running state, mutated every Apply call.
	pending bool // reinit due on next Apply

	ac    float64
	t     float64 // frame counter ("segment_number" in the original)
	subwc int
	ibuf  int

	yft       []float64
	p         []float64
	sn2       []float64
	pb        []float64
	pb2       []float64
	pminu     []float64
	ah        []float64
	b         []float64
	qeqi      []float64
	bmind     []float64
	bminv     []float64
	actmin    []float64
	actminsub []float64
	kmod      []bool
	lminflag  []bool
	actbuf    [][]float64 // [nu][nrf]
}

const (
	qeqiMax = 1.0 / 2.0  // 1/qeqmin
	qeqiMin = 1.0 / 14.0 // 1/qeqmax
	biasAv  = 2.12

	// powerEps floors every divisor derived from p/sn2/their sums. Exact
	// digital silence drives those to exactly zero; every update below is a
	// weighted average (x = a*x_old + (1-a)*new) or a math.Max/math.Min, and
	// Go propagates NaN unconditionally through both, so an unguarded 0/0
	// here poisons the estimate for the rest of the stream.
	powerEps = 1e-20
)

// floorDenom returns x, or powerEps if x is smaller, so it is always safe to
// divide by. Only used at division sites; the underlying state (p, sn2, ...)
// is left untouched so exact-zero bins still read back as exact zero.
func floorDenom(x float64) float64 {
	if x < powerEps {
		return powerEps
	}
	return x
}

var qiThresh = [4]float64{0.03, 0.05, 0.06, math.Inf(1)}
var nsmdb = [4]float64{47.0, 31.4, 15.7, 4.1}

// NewMartin constructs a Martin estimator with no allocated state; call
// OnFFTSizeUpdate before the first Apply.
func NewMartin() *Martin {
	return &Martin{}
}

func (m *Martin) Clone() Estimator {
	clone := *m
	clone.yft = append([]float64(nil), m.yft...)
	clone.p = append([]float64(nil), m.p...)
	clone.sn2 = append([]float64(nil), m.sn2...)
	clone.pb = append([]float64(nil), m.pb...)
	clone.pb2 = append([]float64(nil), m.pb2...)
	clone.pminu = append([]float64(nil), m.pminu...)
	clone.ah = append([]float64(nil), m.ah...)
	clone.b = append([]float64(nil), m.b...)
	clone.qeqi = append([]float64(nil), m.qeqi...)
	clone.bmind = append([]float64(nil), m.bmind...)
	clone.bminv = append([]float64(nil), m.bminv...)
	clone.actmin = append([]float64(nil), m.actmin...)
	clone.actminsub = append([]float64(nil), m.actminsub...)
	clone.kmod = append([]bool(nil), m.kmod...)
	clone.lminflag = append([]bool(nil), m.lminflag...)
	clone.actbuf = make([][]float64, len(m.actbuf))
	for i, row := range m.actbuf {
		clone.actbuf[i] = append([]float64(nil), row...)
	}
	return &clone
}

// OnFFTSizeUpdate (re)derives every tinc-dependent constant and reallocates
// the per-bin state slices for spectrumSize bins.
func (m *Martin) OnFFTSizeUpdate(spectrumSize int, tinc float64) {
	m.nrf = spectrumSize
	m.tinc = tinc

	m.alphaCa = math.Exp(-tinc / 0.0449)
	m.alphaCMax = m.alphaCa
	m.alphaMax = math.Exp(-tinc / 0.392)
	m.alphaMinh = math.Exp(-tinc / 0.0133)
	m.betaMax = math.Exp(-tinc / 0.0717)
	m.snrExp = -tinc / 0.064

	nv := math.Round(1.536 / (tinc * 8))
	nu := 8.0
	if nv < 4 {
		nv = 4
		nu = math.Max(math.Round(1.536/(tinc*nv)), 1)
	}
	m.nv = nv
	m.nu = nu
	m.nd = nu * nv

	m.md, m.hd = mhValues(m.nd)
	m.mv, m.hv = mhValues(m.nv)

	for i := range m.nsms {
		m.nsms[i] = math.Pow(10, nsmdb[i]*nv*tinc/10)
	}

	nu_ := int(m.nu)
	m.yft = make([]float64, spectrumSize)
	m.p = make([]float64, spectrumSize)
	m.sn2 = make([]float64, spectrumSize)
	m.pb = make([]float64, spectrumSize)
	m.pb2 = make([]float64, spectrumSize)
	m.pminu = make([]float64, spectrumSize)
	m.ah = make([]float64, spectrumSize)
	m.b = make([]float64, spectrumSize)
	m.qeqi = make([]float64, spectrumSize)
	m.bmind = make([]float64, spectrumSize)
	m.bminv = make([]float64, spectrumSize)
	m.actmin = make([]float64, spectrumSize)
	m.actminsub = make([]float64, spectrumSize)
	m.kmod = make([]bool, spectrumSize)
	m.lminflag = make([]bool, spectrumSize)
	m.actbuf = make([][]float64, nu_)
	for i := range m.actbuf {
		m.actbuf[i] = make([]float64, spectrumSize)
	}

	m.pending = true
}

func (m *Martin) OnDataUpdate() {
	m.pending = true
}

func (m *Martin) reinit(spectrum []complex128) {
	m.ac = 1
	m.t = 0
	m.subwc = int(m.nv)
	m.ibuf = 0

	mathutil.ComputePowerSpectrum(spectrum, m.yft, m.nrf)
	for k := 0; k < m.nrf; k++ {
		y := m.yft[k]
		m.p[k] = y
		m.sn2[k] = y
		m.pb[k] = y
		m.pminu[k] = y
		m.pb2[k] = y * y
		m.lminflag[k] = false
		m.actmin[k] = math.Inf(1)
		m.actminsub[k] = math.Inf(1)
	}
	for i := range m.actbuf {
		for k := range m.actbuf[i] {
			m.actbuf[i][k] = math.Inf(1)
		}
	}
	m.pending = false
}

// Apply runs one frame of the recurrence and writes the updated noise power
// estimate sn2[k] into noisePower. It always returns true: Martin has no
// notion of a rejected frame, unlike Simple.
func (m *Martin) Apply(spectrum []complex128, noisePower []float64) bool {
	if m.pending {
		m.reinit(spectrum)
	} else {
		mathutil.ComputePowerSpectrum(spectrum, m.yft, m.nrf)
		m.t++
	}

	nrf := m.nrf

	sumP := mathutil.Sum(m.p, nrf)
	sumY := mathutil.Sum(m.yft, nrf)
	acb := 1.0 / (1.0 + math.Pow(sumP/floorDenom(sumY)-1, 2))
	m.ac = m.alphaCa*m.ac + (1-m.alphaCa)*math.Max(acb, m.alphaCMax)

	for k := 0; k < nrf; k++ {
		m.ah[k] = m.alphaMax * m.ac / (1 + math.Pow(m.p[k]/floorDenom(m.sn2[k])-1, 2))
	}

	sumSn2 := mathutil.Sum(m.sn2, nrf)
	snr := sumP / floorDenom(sumSn2)
	localMin := math.Min(m.alphaMinh, math.Pow(snr, m.snrExp))

	for k := 0; k < nrf; k++ {
		m.ah[k] = math.Max(m.ah[k], localMin)
		m.p[k] = m.ah[k]*m.p[k] + (1-m.ah[k])*m.yft[k]

		m.b[k] = math.Min(m.ah[k]*m.ah[k], m.betaMax)
		m.pb[k] = m.b[k]*m.pb[k] + (1-m.b[k])*m.p[k]
		m.pb2[k] = m.b[k]*m.pb2[k] + (1-m.b[k])*m.p[k]*m.p[k]

		raw := (m.pb2[k] - m.pb[k]*m.pb[k]) / floorDenom(2*m.sn2[k]*m.sn2[k])
		m.qeqi[k] = clamp(raw, qeqiMin, qeqiMax/math.Max(m.t, 1))
	}

	qiav := mathutil.Sum(m.qeqi, nrf) / float64(nrf)
	bc := 1 + biasAv*math.Sqrt(qiav)

	for k := 0; k < nrf; k++ {
		m.bmind[k] = 1 + 2*(m.nd-1)*(1-m.md)/(1/m.qeqi[k]-2*m.md)
		m.bminv[k] = 1 + 2*(m.nv-1)*(1-m.mv)/(1/m.qeqi[k]-2*m.mv)

		candidate := bc * m.p[k] * m.bmind[k]
		m.kmod[k] = candidate < m.actmin[k]
		if m.kmod[k] {
			m.actmin[k] = candidate
			m.actminsub[k] = bc * m.p[k] * m.bminv[k]
		}
	}

	if m.subwc > 0 && m.subwc < int(m.nv) {
		for k := 0; k < nrf; k++ {
			m.lminflag[k] = m.lminflag[k] || m.kmod[k]
			m.pminu[k] = math.Min(m.actminsub[k], m.pminu[k])
			m.sn2[k] = m.pminu[k]
		}
	} else if m.subwc >= int(m.nv) {
		// End of a sub-window buffer cycle: refresh pminu from the full
		// actbuf history. sn2 is deliberately left untouched here — the
		// original only ever assigns sn2 in the "middle of buffer" branch
		// above; this frame's noise power carries over from the last such
		// assignment (or, on the very first frame, from reinit).
		m.ibuf = m.ibuf % int(m.nu)
		for k := 0; k < nrf; k++ {
			m.actbuf[m.ibuf][k] = m.actmin[k]
		}
		for k := 0; k < nrf; k++ {
			tmp := 1.0
			for j := range m.actbuf {
				tmp = math.Min(tmp, m.actbuf[j][k])
			}
			m.pminu[k] = tmp
		}

		idx := 3
		for i, th := range qiThresh {
			if qiav < th {
				idx = i
				break
			}
		}
		nsm := m.nsms[idx]

		for k := 0; k < nrf; k++ {
			lmin := m.lminflag[k] && !m.kmod[k] && m.actminsub[k] < nsm*m.pminu[k] && m.actminsub[k] > m.pminu[k]
			if lmin {
				m.pminu[k] = m.actminsub[k]
				for j := range m.actbuf {
					m.actbuf[j][k] = m.pminu[k]
				}
			}
			m.lminflag[k] = false
			m.actmin[k] = math.Inf(1)
		}
		m.subwc = 0
	}
	m.subwc++

	copy(noisePower, m.sn2[:nrf])
	return true
}

// clamp applies the upper bound before the lower bound, matching the
// original's max(min(x, hi), lo) order: when hi < lo (the qeqi upper bound
// can fall below the lower bound for large frame counts) the result is
// pinned to lo rather than hi, keeping Qeqi in [qeqiMin, qeqiMax].
func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(x, hi))
}
