package fft

import (
	"math"
	"math/rand"
	"testing"
)

// TestRoundTrip verifies property 1 from spec.md §8: for random real x of
// length N, ifft(fft(x)) = x within 1e-10*N.
func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, n := range []int{128, 256, 512, 1024, 2048} {
		e, err := New(n)
		if err != nil {
			t.Fatalf("New(%d): %v", n, err)
		}

		x := make([]float64, n)
		for i := range x {
			x[i] = rng.Float64()*2 - 1
		}

		spectrum := make([]complex128, e.SpectrumSize())
		e.Forward(spectrum, x)

		got := make([]float64, n)
		e.Inverse(got, spectrum)

		tol := 1e-10 * float64(n)
		for i := range x {
			if math.Abs(got[i]-x[i]) > tol {
				t.Fatalf("N=%d: round-trip mismatch at %d: got %v want %v (tol %v)", n, i, got[i], x[i], tol)
			}
		}
	}
}

func TestResizeDiscardsOldPlan(t *testing.T) {
	e, err := New(256)
	if err != nil {
		t.Fatal(err)
	}
	if e.Size() != 256 || e.SpectrumSize() != 129 {
		t.Fatalf("unexpected initial size: %d/%d", e.Size(), e.SpectrumSize())
	}

	if err := e.Resize(512); err != nil {
		t.Fatal(err)
	}
	if e.Size() != 512 || e.SpectrumSize() != 257 {
		t.Fatalf("unexpected resized size: %d/%d", e.Size(), e.SpectrumSize())
	}

	x := make([]float64, 512)
	spectrum := make([]complex128, e.SpectrumSize())
	e.Forward(spectrum, x) // must not panic against stale N=256 plan
}

func TestNewRejectsNonPowerOfTwo(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Error("New(0) should fail")
	}
	if _, err := New(100); err == nil {
		t.Error("New(100) should fail")
	}
}
