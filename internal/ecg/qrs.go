// Package ecg detects heartbeat (QRS) artifacts in sampled ECG signals.
package ecg

import (
	"fmt"
	"math"
	"time"
)

const (
	// DefaultLowFreq and DefaultHighFreq bound the band-pass applied
	// before detection.
	DefaultLowFreq  = 5.0
	DefaultHighFreq = 35.0

	// DefaultLevels is the number of standard deviations from the mean
	// window RMS above which a window is rejected.
	DefaultLevels = 2.5

	// DefaultMaxCrossings is the maximum number of threshold crossings
	// tolerated inside a detection window.
	DefaultMaxCrossings = 3
)

// DetectOptions controls QRS detection.
type DetectOptions struct {
	// Threshold scales the initial peak estimate into the detection
	// threshold. Zero selects an automatic sweep over 0.30..1.05.
	Threshold float64

	Levels       float64
	MaxCrossings int

	// LowFreq and HighFreq define the detection band-pass in Hz.
	LowFreq  float64
	HighFreq float64

	// TStart skips this many seconds at the start of the signal.
	TStart float64

	FilterLength time.Duration

	// Prefiltered marks the signal as already band-passed, skipping the
	// internal filter stage.
	Prefiltered bool
}

func (o DetectOptions) withDefaults() DetectOptions {
	if o.Levels == 0 {
		o.Levels = DefaultLevels
	}
	if o.MaxCrossings == 0 {
		o.MaxCrossings = DefaultMaxCrossings
	}
	if o.LowFreq == 0 {
		o.LowFreq = DefaultLowFreq
	}
	if o.HighFreq == 0 {
		o.HighFreq = DefaultHighFreq
	}
	if o.FilterLength == 0 {
		o.FilterLength = DefaultFilterLength
	}
	return o
}

// DetectRPeaks locates R wave peaks in a single-channel ECG signal and
// returns their sample indices. The detector rectifies the band-passed
// signal, estimates an amplitude threshold from the first three seconds,
// then walks fixed half-heartbeat windows collecting peak candidates. When
// the threshold is automatic, a sweep of thresholds is tried and the
// candidate set whose implied heart rate is most plausible wins.
func DetectRPeaks(sfreq float64, signal []float64, opts DetectOptions) ([]int, error) {
	opts = opts.withDefaults()

	if sfreq <= 0 {
		return nil, fmt.Errorf("sampling rate must be positive, got %g", sfreq)
	}
	init := int(sfreq)
	if len(signal) < 3*init {
		return nil, fmt.Errorf("signal too short: need at least 3 s (%d samples), got %d", 3*init, len(signal))
	}

	winSize := int(math.Round(60.0 * sfreq / 120.0))
	if winSize < 1 {
		winSize = 1
	}

	filtered := signal
	if !opts.Prefiltered {
		var err error
		filtered, err = FilterBandPass(signal, sfreq, opts.LowFreq, opts.HighFreq, opts.FilterLength)
		if err != nil {
			return nil, err
		}
	}

	rectified := make([]float64, len(filtered))
	for i, v := range filtered {
		rectified[i] = math.Abs(v)
	}

	nStart := int(sfreq * opts.TStart)
	if nStart >= len(rectified) {
		return nil, fmt.Errorf("tstart %.2fs is beyond the end of the signal", opts.TStart)
	}
	rectified = rectified[nStart:]
	if len(rectified) < 3*init {
		return nil, fmt.Errorf("signal too short after tstart: %d samples", len(rectified))
	}

	// Amplitude scale from the per-second maxima of the first 3 seconds.
	initMax := (maxOf(rectified[:init]) + maxOf(rectified[init:2*init]) + maxOf(rectified[2*init:3*init])) / 3

	thresholds := []float64{opts.Threshold}
	if opts.Threshold == 0 {
		thresholds = autoThresholds()
	}

	candidates := make([][]int, 0, len(thresholds))
	for _, tv := range thresholds {
		candidates = append(candidates, detectAtThreshold(rectified, initMax*tv, winSize, nStart, opts))
	}

	return pickCandidate(candidates, float64(len(filtered))/sfreq), nil
}

// autoThresholds is the automatic sweep 0.30, 0.35, ..., 1.05.
func autoThresholds() []float64 {
	ts := make([]float64, 0, 16)
	for v := 0.30; v < 1.075; v += 0.05 {
		ts = append(ts, v)
	}
	return ts
}

// detectAtThreshold runs one detection pass and filters the collected
// windows by RMS level and threshold-crossing count.
func detectAtThreshold(rectified []float64, thresh float64, winSize, offset int, opts DetectOptions) []int {
	var times, crosses []int
	var rmsVals []float64

	nPoints := len(rectified)
	ii := 0
	for ii < nPoints-winSize {
		window := rectified[ii : ii+winSize]
		if window[0] > thresh {
			times = append(times, ii+argmax(window))
			crosses = append(crosses, countCrossings(window, thresh))
			rmsVals = append(rmsVals, math.Sqrt(sumSquared(window)/float64(len(window))))
			ii += winSize
		} else {
			ii++
		}
	}

	if len(times) == 0 {
		return nil
	}

	rmsThresh := mean(rmsVals) + stddev(rmsVals)*opts.Levels

	var peaks []int
	for i, t := range times {
		if rmsVals[i] < rmsThresh && crosses[i] < opts.MaxCrossings {
			peaks = append(peaks, t+offset)
		}
	}
	return peaks
}

// pickCandidate chooses the sweep candidate whose heart rate is closest to
// the median of the plausible rates (40-160 bpm, infant through athlete),
// falling back to 80 bpm when none land in range.
func pickCandidate(candidates [][]int, durationSec float64) []int {
	rates := make([]float64, len(candidates))
	for i, c := range candidates {
		rates[i] = 60 * float64(len(c)) / durationSec
	}

	var plausible []float64
	for _, r := range rates {
		if r >= 40 && r <= 160 {
			plausible = append(plausible, r)
		}
	}
	ideal := 80.0
	if len(plausible) > 0 {
		ideal = median(plausible)
	}

	best := 0
	bestDist := math.Inf(1)
	for i, r := range rates {
		if d := math.Abs(r - ideal); d < bestDist {
			bestDist = d
			best = i
		}
	}
	return candidates[best]
}

// countCrossings counts transitions across the threshold inside a window.
func countCrossings(window []float64, thresh float64) int {
	count := 0
	above := window[0] > thresh
	for _, v := range window[1:] {
		if (v > thresh) != above {
			above = !above
			count++
		}
	}
	return count
}
