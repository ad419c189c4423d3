// Package denoise implements the SubtractionManager orchestrator: it owns
// the session configuration, the FFT engine, the analysis/synthesis window
// pair, the active estimator and subtractor, and the overlap-add buffers
// that turn a stream of int16 samples into a denoised stream of the same
// shape.
//
// Grounded on the closed-tagged-variant dispatch and single-owner
// concurrency model the teacher uses for its analysis Engine
// (internal/analysis/fft.go), generalized here to hold a pluggable
// estimator/subtractor pair instead of a fixed pipeline.
package denoise

import (
	"fmt"
	"math"

	"denoise/internal/config"
	"denoise/internal/estimation"
	"denoise/internal/fft"
	"denoise/internal/log"
	"denoise/internal/mathutil"
	"denoise/internal/subtraction"
	"denoise/internal/window"
)

var managerLog = log.Component("manager")

// Manager is the single-owner orchestrator described in the package doc. A
// Manager must be touched by exactly one goroutine at a time; there is no
// internal locking (see the concurrency notes in internal/mathutil for the
// one place that fans out across goroutines and always joins before
// returning).
type Manager struct {
	cfg config.Config

	fftEngine  *fft.Engine
	win        window.Pair
	estimator  estimation.Estimator
	subtractor subtraction.Subtractor

	n, h, spectrumSize int

	// sliding analysis window over the raw sample stream.
	history []float64

	// input FIFO: raw samples handed to ReadBuffer, awaiting a full hop.
	pending []int16

	// overlap-add accumulator, length n; front h samples are always ready
	// to emit once at least one frame has been folded in.
	outAccum []float64

	// output FIFO: denoised samples awaiting WriteBuffer.
	ready []int16

	// per-frame scratch, reused across Execute calls.
	frame      []float64
	spectrum   []complex128
	noisePower []float64
	inverse    []float64

	// telemetry, if set, receives noisePower (the manager's own slice, not a
	// copy) after every stepFrame. A nil telemetry is a valid no-op.
	telemetry telemetrySink
}

// telemetrySink is the minimal shape the manager needs from a telemetry
// sink; declared locally rather than importing internal/telemetry, so the
// denoise package (the core DSP boundary) has no dependency on the
// ambient observability layer above it.
type telemetrySink interface {
	Send(noisePower []float64) error
}

// SetTelemetry attaches sink as the receiver of this Manager's per-frame
// noise-power trace. Pass nil to detach.
func (m *Manager) SetTelemetry(sink telemetrySink) {
	m.telemetry = sink
}

// New constructs a Manager and configures it with cfg. It returns an error
// (leaving no partially-constructed Manager behind) if cfg is invalid.
func New(cfg config.Config) (*Manager, error) {
	m := &Manager{}
	if err := m.Configure(cfg); err != nil {
		return nil, err
	}
	return m, nil
}

// Configure validates cfg, (re)allocates every buffer sized by N or
// spectrumSize, instantiates the estimator/subtractor named by cfg, and
// fires onFFTSizeUpdate on both. On validation failure the Manager is left
// exactly as it was before the call (strong exception guarantee); on a
// fresh *Manager obtained via a zero value, a failed first Configure leaves
// it unusable, which is why New is the preferred constructor.
func (m *Manager) Configure(cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("denoise: invalid configuration: %w", err)
	}

	fftEngine, err := fft.New(cfg.FFTSize)
	if err != nil {
		return fmt.Errorf("denoise: %w", err)
	}

	estimator, err := newEstimator(cfg.Estimator)
	if err != nil {
		return err
	}
	subtractor, err := newSubtractor(cfg.Subtractor, cfg.Alpha, cfg.Beta)
	if err != nil {
		return err
	}
	kind, err := windowKind(cfg.Window)
	if err != nil {
		return err
	}

	n := cfg.FFTSize
	h := cfg.HopSize
	spectrumSize := cfg.SpectrumSize()
	win := window.NewPair(n, h, kind)

	estimator.OnFFTSizeUpdate(spectrumSize, cfg.Tinc())
	subtractor.OnFFTSizeUpdate(spectrumSize)

	m.cfg = cfg
	m.fftEngine = fftEngine
	m.estimator = estimator
	m.subtractor = subtractor
	m.n = n
	m.h = h
	m.spectrumSize = spectrumSize
	m.win = win

	m.history = make([]float64, m.n)
	m.pending = m.pending[:0]
	m.outAccum = make([]float64, m.n)
	m.ready = m.ready[:0]
	m.frame = make([]float64, m.n)
	m.spectrum = make([]complex128, m.spectrumSize)
	m.noisePower = make([]float64, m.spectrumSize)
	m.inverse = make([]float64, m.n)

	managerLog.Infof("configured: fft_size=%d hop=%d estimator=%s subtractor=%s", m.n, m.h, cfg.Estimator, cfg.Subtractor)
	return nil
}

func newEstimator(kind config.EstimatorKind) (estimation.Estimator, error) {
	switch kind {
	case config.EstimatorSimple:
		return estimation.NewSimple(), nil
	case config.EstimatorMartin:
		return estimation.NewMartin(), nil
	default:
		return nil, fmt.Errorf("denoise: unknown estimator kind %q", kind)
	}
}

func newSubtractor(kind config.SubtractorKind, alpha, beta float64) (subtraction.Subtractor, error) {
	switch kind {
	case config.SubtractorStandard:
		return subtraction.NewStandard(alpha, beta), nil
	case config.SubtractorTwoStep:
		return subtraction.NewTwoStep(alpha/2, 0, alpha/2, beta), nil
	case config.SubtractorBerouti:
		return subtraction.NewBerouti(1.0, math.Max(alpha, 1.0), beta), nil
	default:
		return nil, fmt.Errorf("denoise: unknown subtractor kind %q", kind)
	}
}

func windowKind(k config.WindowKind) (window.Kind, error) {
	switch k {
	case config.WindowHann:
		return window.Hann, nil
	case config.WindowHamming:
		return window.Hamming, nil
	case config.WindowRectangular:
		return window.Rectangular, nil
	default:
		return 0, fmt.Errorf("denoise: unknown window kind %q", k)
	}
}

// ReadBuffer copies len(src) int16 samples into the manager's pending
// scratch, appending to whatever has not yet been consumed by Execute.
func (m *Manager) ReadBuffer(src []int16) {
	m.pending = append(m.pending, src...)
}

// Execute processes every whole hop currently buffered: window, FFT,
// estimator, subtractor, inverse FFT, overlap-add. Any samples short of a
// full hop remain buffered for the next call.
func (m *Manager) Execute() {
	for len(m.pending) >= m.h {
		m.stepFrame(m.pending[:m.h])
		m.pending = m.pending[m.h:]
	}
}

// stepFrame advances the sliding analysis window by one hop's worth of new
// samples and runs the full per-frame pipeline.
func (m *Manager) stepFrame(hop []int16) {
	copy(m.history, m.history[m.h:])
	base := m.n - m.h
	for i, s := range hop {
		m.history[base+i] = mathutil.ShortToDouble(s)
	}

	for i, v := range m.history {
		m.frame[i] = v * m.win.Analysis[i]
	}

	m.fftEngine.Forward(m.spectrum, m.frame)

	if !m.cfg.Bypass && m.gateOpen(hop) {
		m.estimator.Apply(m.spectrum, m.noisePower)
		m.subtractor.Apply(m.spectrum, m.noisePower)
	}

	m.fftEngine.Inverse(m.inverse, m.spectrum)

	for i, v := range m.inverse {
		m.outAccum[i] += v * m.win.Synthesis[i]
	}

	for i := 0; i < m.h; i++ {
		m.ready = append(m.ready, mathutil.DoubleToShort(m.outAccum[i]))
	}

	copy(m.outAccum, m.outAccum[m.h:])
	for i := m.n - m.h; i < m.n; i++ {
		m.outAccum[i] = 0
	}

	if m.telemetry != nil {
		if err := m.telemetry.Send(m.noisePower); err != nil {
			managerLog.Warnf("telemetry send: %v", err)
		}
	}
}

// gateOpen reports whether the current hop's RMS clears the configured
// amplitude gate. A disabled gate is always open.
func (m *Manager) gateOpen(hop []int16) bool {
	if !m.cfg.Gate.Enabled {
		return true
	}
	sum := 0.0
	for _, s := range hop {
		v := mathutil.ShortToDouble(s)
		sum += v * v
	}
	rms := math.Sqrt(sum / float64(len(hop)))
	return rms >= m.cfg.Gate.Threshold
}

// WriteBuffer extracts len(dst) processed samples into dst. If fewer than
// len(dst) samples are ready (only possible before the pipeline has
// produced its first full hop), the shortfall is zero-filled, which is
// exactly the algorithmic latency (N-H) silence the overlap-add identity
// predicts at stream start.
func (m *Manager) WriteBuffer(dst []int16) error {
	if dst == nil {
		return fmt.Errorf("denoise: WriteBuffer: nil destination")
	}
	n := copy(dst, m.ready)
	m.ready = m.ready[n:]
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
	return nil
}

// ComputeFrame is the C-ABI-style entry point: denoise len(buf) samples in
// place, equivalent to ReadBuffer(buf); Execute(); WriteBuffer(buf).
func (m *Manager) ComputeFrame(buf []int16) error {
	if buf == nil {
		return fmt.Errorf("denoise: ComputeFrame: nil buffer")
	}
	m.ReadBuffer(buf)
	m.Execute()
	return m.WriteBuffer(buf)
}

// ResetFrame invokes onDataUpdate: estimator and subtractor history is
// cleared and the streaming buffers (sliding window, overlap-add
// accumulator, pending/ready queues) are reset to zero, exactly as if the
// Manager had just been configured. The FFT engine and window pair are
// untouched since the transform size has not changed.
func (m *Manager) ResetFrame() {
	m.estimator.OnDataUpdate()
	m.subtractor.OnDataUpdate()

	for i := range m.history {
		m.history[i] = 0
	}
	for i := range m.outAccum {
		m.outAccum[i] = 0
	}
	m.pending = m.pending[:0]
	m.ready = m.ready[:0]

	managerLog.Infof("reset (onDataUpdate)")
}

// NoisePower returns the current per-bin noise power estimate, for
// telemetry sinks. Callers must not retain the returned slice past the next
// Execute call.
func (m *Manager) NoisePower() []float64 {
	return m.noisePower
}
