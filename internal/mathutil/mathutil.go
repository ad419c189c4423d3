// Package mathutil implements the pure numeric helpers shared by every stage
// of the spectral-subtraction pipeline: complex-to-power/phase conversions,
// a parallel map-reduce over spectrum-sized arrays, and int16<->float64
// sample conversion.
//
// Grounded on the original libnoisered/mathutils/math_util.h: CplxToPower,
// CplxToPhase, mapReduce_n, ShortToDouble, DoubleToShort.
package mathutil

import (
	"math"
	"math/cmplx"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ComplexToPower returns re(c)^2 + im(c)^2.
func ComplexToPower(c complex128) float64 {
	re, im := real(c), imag(c)
	return re*re + im*im
}

// ComplexToPhase returns atan2(im(c), re(c)).
func ComplexToPhase(c complex128) float64 {
	return cmplx.Phase(c)
}

// ComputePowerSpectrum writes power(spectrum[k]) into out[k] for k in
// [0, n). out must have length >= n.
func ComputePowerSpectrum(spectrum []complex128, out []float64, n int) {
	for k := 0; k < n; k++ {
		out[k] = ComplexToPower(spectrum[k])
	}
}

// ShortToDouble maps a 16-bit PCM sample into [-1, 1).
func ShortToDouble(x int16) float64 {
	return float64(x) / 32768.0
}

// DoubleToShort maps a float64 in roughly [-1, 1] back to a 16-bit PCM
// sample, rounding to nearest and clamping to the int16 range.
func DoubleToShort(x float64) int16 {
	v := math.Round(x * 32768.0)
	switch {
	case v > 32767:
		return 32767
	case v < -32768:
		return -32768
	default:
		return int16(v)
	}
}

// minParallelWork is the smallest input size for which MapReduce bothers
// spinning up worker goroutines; below it the sequential path wins. Set well
// above the largest spectrumSize (8192/2+1 = 4097, the ceiling on the FFT
// size range spec.md §3 allows) so the Martin per-frame sums over
// spectrum-sized arrays — the hot path, several per frame — never pay
// goroutine/errgroup fan-out for a fold that finishes before the workers
// would even be scheduled.
const minParallelWork = 1 << 15

// MapReduce performs a tree reduction over in[0:n]: shard the range across
// GOMAXPROCS workers, map+fold each shard sequentially, then fold the
// per-shard partials together with reduce. All worker goroutines are joined
// (via errgroup.Wait) before MapReduce returns, so a caller sees a
// single-threaded call even though the work below was parallel — the
// concurrency model required of every MathUtil reduction.
//
// reduce must be associative for the result to be well defined; for
// non-associative reductions (naive floating-point sums included) the
// result is deterministic for a fixed shard partitioning but may differ by
// up to a few ULPs from a strictly sequential left-to-right fold. plus over
// float64 is tolerated to within 1 ULP * n for this reason.
func MapReduce(in []float64, n int, init float64, mapFn func(float64) float64, reduce func(a, b float64) float64) float64 {
	if n <= 0 {
		return init
	}
	in = in[:n]

	workers := runtime.GOMAXPROCS(0)
	if workers > n {
		workers = n
	}
	if workers <= 1 || n < minParallelWork {
		acc := init
		for i := 0; i < n; i++ {
			acc = reduce(acc, mapFn(in[i]))
		}
		return acc
	}

	partials := make([]float64, workers)
	chunk := (n + workers - 1) / workers

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		start := w * chunk
		if start >= n {
			break
		}
		end := start + chunk
		if end > n {
			end = n
		}
		w := w
		g.Go(func() error {
			acc := init
			for i := start; i < end; i++ {
				acc = reduce(acc, mapFn(in[i]))
			}
			partials[w] = acc
			return nil
		})
	}
	_ = g.Wait() // worker functions never return an error; join point only.

	acc := init
	for w := 0; w < workers; w++ {
		start := w * chunk
		if start >= n {
			break
		}
		acc = reduce(acc, partials[w])
	}
	return acc
}

// Sum reduces in[0:n] with plus, the common case for RMS/energy calculations.
func Sum(in []float64, n int) float64 {
	return MapReduce(in, n, 0, func(x float64) float64 { return x }, func(a, b float64) float64 { return a + b })
}

// PowerSum sums ComplexToPower(spectrum[k]) for k in [0, n) — used by the
// Simple estimator's RMS gate.
func PowerSum(spectrum []complex128, n int) float64 {
	total := 0.0
	for k := 0; k < n; k++ {
		total += ComplexToPower(spectrum[k])
	}
	return total
}
