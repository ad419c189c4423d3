// Package config holds the session configuration for the denoise engine:
// sample rate, transform size, window shape, and the estimator/subtractor
// variant selection plus their parameters. A Config is validated once,
// before any samples flow, and is otherwise immutable for the life of a
// Manager.
package config

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"denoise/pkg/bitint"
)

const (
	MinFFTSize = 128
	MaxFFTSize = 8192

	DefaultSampleRate = 16000
	DefaultFFTSize    = 512
	DefaultAlpha      = 1.0
	DefaultBeta       = 0.02
	DefaultGateThresh = 0.0 // gate disabled by default
)

// WindowKind names an analysis/synthesis window shape.
type WindowKind string

const (
	WindowHann        WindowKind = "hann"
	WindowHamming     WindowKind = "hamming"
	WindowRectangular WindowKind = "rectangular"

	DefaultWindow = WindowHann
)

// EstimatorKind names a noise-power estimator variant.
type EstimatorKind string

const (
	EstimatorSimple EstimatorKind = "simple"
	EstimatorMartin EstimatorKind = "martin"

	DefaultEstimator = EstimatorMartin
)

// SubtractorKind names a spectral-subtraction rule variant.
type SubtractorKind string

const (
	SubtractorStandard SubtractorKind = "standard"
	SubtractorTwoStep  SubtractorKind = "two-step"
	SubtractorBerouti  SubtractorKind = "berouti"

	DefaultSubtractor = SubtractorStandard
)

// GateConfig configures an optional pre-FFT amplitude gate: frames whose RMS
// falls below Threshold are passed through the pipeline unchanged (skipping
// estimation/subtraction) to avoid spending cycles denoising silence.
type GateConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Threshold float64 `yaml:"threshold"`
}

// TelemetryConfig configures the optional observers of the manager's
// per-frame noise-power trace.
type TelemetryConfig struct {
	WebSocketPort int    `yaml:"websocket_port"`
	UDPTarget     string `yaml:"udp_target"`
	UDPIntervalMS int    `yaml:"udp_interval_ms"`
}

// Config is the full session configuration for a Manager.
type Config struct {
	SampleRate int            `yaml:"sample_rate"`
	FFTSize    int            `yaml:"fft_size"`
	HopSize    int            `yaml:"hop_size"`
	Window     WindowKind     `yaml:"window"`
	Estimator  EstimatorKind  `yaml:"estimator"`
	Subtractor SubtractorKind `yaml:"subtractor"`
	Alpha      float64        `yaml:"alpha"`
	Beta       float64        `yaml:"beta"`

	Gate      GateConfig      `yaml:"gate"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Bypass disables the estimator/subtractor stages entirely, leaving the
	// spectrum untouched between the forward and inverse FFT. It exists to
	// exercise the overlap-add path in isolation; production configuration
	// leaves it false.
	Bypass bool `yaml:"bypass"`
}

// Default returns a Config with the engine's default parameters.
func Default() *Config {
	return &Config{
		SampleRate: DefaultSampleRate,
		FFTSize:    DefaultFFTSize,
		HopSize:    DefaultFFTSize / 2,
		Window:     DefaultWindow,
		Estimator:  DefaultEstimator,
		Subtractor: DefaultSubtractor,
		Alpha:      DefaultAlpha,
		Beta:       DefaultBeta,
		Gate:       GateConfig{Enabled: false, Threshold: DefaultGateThresh},
	}
}

// SpectrumSize returns N/2 + 1, the number of complex bins per frame.
func (c *Config) SpectrumSize() int {
	return c.FFTSize/2 + 1
}

// Tinc returns the frame-time increment (hop / sample rate) the Martin
// estimator's time constants are derived from.
func (c *Config) Tinc() float64 {
	return float64(c.HopSize) / float64(c.SampleRate)
}

// Validate checks every field and returns a *multierror.Error listing all
// violations at once, rather than stopping at the first one, so a caller
// fixing a bad config file sees every problem in a single pass.
func (c *Config) Validate() error {
	var errs *multierror.Error

	if c.SampleRate <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("sample_rate must be positive, got %d", c.SampleRate))
	}
	if !bitint.IsValidFFTSize(c.FFTSize, MinFFTSize, MaxFFTSize) {
		errs = multierror.Append(errs, fmt.Errorf("fft_size must be a power of two in [%d, %d], got %d", MinFFTSize, MaxFFTSize, c.FFTSize))
	}
	if c.HopSize <= 0 || c.HopSize > c.FFTSize {
		errs = multierror.Append(errs, fmt.Errorf("hop_size must be in (0, fft_size], got %d (fft_size=%d)", c.HopSize, c.FFTSize))
	}
	switch c.Window {
	case WindowHann, WindowHamming, WindowRectangular:
	default:
		errs = multierror.Append(errs, fmt.Errorf("unknown window kind %q", c.Window))
	}
	switch c.Estimator {
	case EstimatorSimple, EstimatorMartin:
	default:
		errs = multierror.Append(errs, fmt.Errorf("unknown estimator kind %q", c.Estimator))
	}
	switch c.Subtractor {
	case SubtractorStandard, SubtractorTwoStep, SubtractorBerouti:
	default:
		errs = multierror.Append(errs, fmt.Errorf("unknown subtractor kind %q", c.Subtractor))
	}
	if c.Alpha < 0 {
		errs = multierror.Append(errs, fmt.Errorf("alpha must be >= 0, got %v", c.Alpha))
	}
	if c.Beta < 0 || c.Beta > 1 {
		errs = multierror.Append(errs, fmt.Errorf("beta must be in [0, 1], got %v", c.Beta))
	}
	if c.Gate.Threshold < 0 {
		errs = multierror.Append(errs, fmt.Errorf("gate.threshold must be >= 0, got %v", c.Gate.Threshold))
	}

	return errs.ErrorOrNil()
}
