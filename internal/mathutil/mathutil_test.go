package mathutil

import (
	"math"
	"testing"
)

func TestComplexToPower(t *testing.T) {
	tests := []struct {
		c        complex128
		expected float64
	}{
		{complex(3, 4), 25},
		{complex(0, 0), 0},
		{complex(1, 0), 1},
	}
	for _, tt := range tests {
		if got := ComplexToPower(tt.c); math.Abs(got-tt.expected) > 1e-12 {
			t.Errorf("ComplexToPower(%v) = %v, want %v", tt.c, got, tt.expected)
		}
	}
}

func TestComplexToPhase(t *testing.T) {
	got := ComplexToPhase(complex(1, 1))
	want := math.Pi / 4
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("ComplexToPhase(1+1i) = %v, want %v", got, want)
	}
}

func TestShortDoubleRoundTrip(t *testing.T) {
	for _, s := range []int16{-32768, -1, 0, 1, 12345, 32767} {
		d := ShortToDouble(s)
		if d < -1.0001 || d > 1.0001 {
			t.Fatalf("ShortToDouble(%d) = %v out of range", s, d)
		}
	}

	if got := DoubleToShort(2.0); got != 32767 {
		t.Errorf("DoubleToShort(2.0) = %d, want clamp to 32767", got)
	}
	if got := DoubleToShort(-2.0); got != -32768 {
		t.Errorf("DoubleToShort(-2.0) = %d, want clamp to -32768", got)
	}
	if got := DoubleToShort(0.5); math.Abs(float64(got)-16384) > 1 {
		t.Errorf("DoubleToShort(0.5) = %d, want ~16384", got)
	}
}

func TestMapReduceMatchesSequential(t *testing.T) {
	n := 10000
	in := make([]float64, n)
	for i := range in {
		in[i] = float64(i%17) - 8
	}

	seqSum := 0.0
	for i := 0; i < n; i++ {
		seqSum += in[i]
	}

	parSum := MapReduce(in, n, 0, func(x float64) float64 { return x }, func(a, b float64) float64 { return a + b })

	// plus<float64> is tolerated to within 1 ULP * n, per the reduction's contract.
	tol := math.Nextafter(1, 2) - 1
	if math.Abs(parSum-seqSum) > tol*float64(n)*math.Max(1, math.Abs(seqSum)) {
		t.Errorf("MapReduce sum = %v, sequential sum = %v (diff exceeds tolerance)", parSum, seqSum)
	}
}

func TestMapReduceDeterministic(t *testing.T) {
	n := 5000
	in := make([]float64, n)
	for i := range in {
		in[i] = float64(i) * 0.5
	}

	first := MapReduce(in, n, 0, func(x float64) float64 { return x * x }, func(a, b float64) float64 { return a + b })
	for i := 0; i < 5; i++ {
		got := MapReduce(in, n, 0, func(x float64) float64 { return x * x }, func(a, b float64) float64 { return a + b })
		if got != first {
			t.Fatalf("MapReduce not deterministic across repeated calls: %v != %v", got, first)
		}
	}
}

func TestMapReduceSmallInput(t *testing.T) {
	in := []float64{1, 2, 3}
	got := MapReduce(in, 3, 0, func(x float64) float64 { return x }, func(a, b float64) float64 { return a + b })
	if got != 6 {
		t.Errorf("MapReduce small input = %v, want 6", got)
	}
}

func TestPowerSum(t *testing.T) {
	spectrum := []complex128{complex(1, 0), complex(0, 2), complex(3, 4)}
	got := PowerSum(spectrum, 3)
	want := 1.0 + 4.0 + 25.0
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("PowerSum = %v, want %v", got, want)
	}
}
