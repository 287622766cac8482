package ecg

import (
	"fmt"
	"math"
	"time"

	"github.com/hashicorp/golang-lru/v2"
)

// DefaultFilterLength is the default span of FIR taps used when filtering.
const DefaultFilterLength = 10 * time.Second

type kernelKey struct {
	sfreq float64
	low   float64
	high  float64
	taps  int
}

// kernels caches designed band-pass kernels. Detection filters the same
// band over every segment, so the design work is shared across calls.
var kernels = mustKernelCache(16)

func mustKernelCache(size int) *lru.Cache[kernelKey, []float64] {
	cache, err := lru.New[kernelKey, []float64](size)
	if err != nil {
		panic(err)
	}
	return cache
}

// FilterBandPass applies a zero-phase FIR band-pass filter between low and
// high Hz. The kernel is a Hann-windowed sinc applied forward and backward,
// so peak positions in the input are preserved.
func FilterBandPass(x []float64, sfreq, low, high float64, length time.Duration) ([]float64, error) {
	if sfreq <= 0 {
		return nil, fmt.Errorf("sampling rate must be positive, got %g", sfreq)
	}
	if low <= 0 || high <= low {
		return nil, fmt.Errorf("invalid band [%g, %g] Hz", low, high)
	}
	if high >= sfreq/2 {
		return nil, fmt.Errorf("high cutoff %g Hz at or above Nyquist (%g Hz)", high, sfreq/2)
	}
	if length <= 0 {
		length = DefaultFilterLength
	}

	taps := filterTaps(length, sfreq, len(x))
	kernel := bandPassKernel(sfreq, low, high, taps)

	y := convolveSame(x, kernel)
	reverse(y)
	y = convolveSame(y, kernel)
	reverse(y)
	return y, nil
}

// filterTaps converts a filter length to an odd tap count bounded by the
// signal length.
func filterTaps(length time.Duration, sfreq float64, n int) int {
	taps := int(length.Seconds() * sfreq)
	if taps > n {
		taps = n
	}
	if taps%2 == 0 {
		taps--
	}
	if taps < 3 {
		taps = 3
	}
	return taps
}

func bandPassKernel(sfreq, low, high float64, taps int) []float64 {
	key := kernelKey{sfreq: sfreq, low: low, high: high, taps: taps}
	if kernel, ok := kernels.Get(key); ok {
		return kernel
	}

	hp := lowPassKernel(high/sfreq, taps)
	lp := lowPassKernel(low/sfreq, taps)
	kernel := make([]float64, taps)
	for i := range kernel {
		kernel[i] = hp[i] - lp[i]
	}

	kernels.Add(key, kernel)
	return kernel
}

// lowPassKernel designs a Hann-windowed sinc low-pass with unit DC gain.
// fc is the cutoff in cycles per sample.
func lowPassKernel(fc float64, taps int) []float64 {
	center := float64(taps-1) / 2
	h := make([]float64, taps)
	var sum float64
	for n := range h {
		k := float64(n) - center
		if k == 0 {
			h[n] = 2 * fc
		} else {
			h[n] = math.Sin(2*math.Pi*fc*k) / (math.Pi * k)
		}
		h[n] *= hann(n, taps)
		sum += h[n]
	}
	for n := range h {
		h[n] /= sum
	}
	return h
}

func hann(n, taps int) float64 {
	return 0.5 * (1 - math.Cos(2*math.Pi*float64(n)/float64(taps-1)))
}

// convolveSame convolves x with a centered kernel, zero-padded at the edges.
func convolveSame(x, kernel []float64) []float64 {
	center := len(kernel) / 2
	out := make([]float64, len(x))
	for i := range x {
		var acc float64
		for j, k := range kernel {
			idx := i + j - center
			if idx < 0 || idx >= len(x) {
				continue
			}
			acc += k * x[idx]
		}
		out[i] = acc
	}
	return out
}

func reverse(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}
