package ecg

import (
	"math"
	"testing"
)

// syntheticECG builds a flat signal with a gaussian R-like spike at each
// beat time, plus a slow drift the detection band-pass should remove.
func syntheticECG(sfreq, durationSec float64, beatTimes []float64) []float64 {
	n := int(durationSec * sfreq)
	x := make([]float64, n)
	for i := range x {
		t := float64(i) / sfreq
		x[i] = 0.05 * math.Sin(2*math.Pi*0.2*t) // baseline drift
		for _, bt := range beatTimes {
			d := (t - bt) / 0.02
			x[i] += math.Exp(-d * d)
		}
	}
	return x
}

func beatsEvery(start, interval, until float64) []float64 {
	var beats []float64
	for t := start; t < until; t += interval {
		beats = append(beats, t)
	}
	return beats
}

func TestDetectRPeaksFindsBeats(t *testing.T) {
	beats := beatsEvery(0.5, 1.0, 10) // 10 beats, 60 bpm
	signal := syntheticECG(testSfreq, 10, beats)

	peaks, err := DetectRPeaks(testSfreq, signal, DetectOptions{})
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(peaks) < 8 || len(peaks) > 12 {
		t.Fatalf("detected %d peaks, want ~10", len(peaks))
	}

	// Every detected peak must land near a true beat.
	for _, p := range peaks {
		tp := float64(p) / testSfreq
		nearest := math.Inf(1)
		for _, bt := range beats {
			if d := math.Abs(tp - bt); d < nearest {
				nearest = d
			}
		}
		if nearest > 0.05 {
			t.Fatalf("peak at %.3fs is %.3fs from any beat", tp, nearest)
		}
	}
}

func TestDetectRPeaksFixedThreshold(t *testing.T) {
	beats := beatsEvery(0.5, 1.0, 10)
	signal := syntheticECG(testSfreq, 10, beats)

	peaks, err := DetectRPeaks(testSfreq, signal, DetectOptions{Threshold: 0.6})
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(peaks) < 8 || len(peaks) > 12 {
		t.Fatalf("detected %d peaks with fixed threshold, want ~10", len(peaks))
	}
}

func TestDetectRPeaksTStartSkipsEarlyBeats(t *testing.T) {
	beats := beatsEvery(0.5, 1.0, 10)
	signal := syntheticECG(testSfreq, 10, beats)

	peaks, err := DetectRPeaks(testSfreq, signal, DetectOptions{TStart: 4})
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	for _, p := range peaks {
		if float64(p)/testSfreq < 4 {
			t.Fatalf("peak at sample %d precedes tstart", p)
		}
	}
}

func TestDetectRPeaksErrors(t *testing.T) {
	tests := []struct {
		name   string
		sfreq  float64
		signal []float64
		opts   DetectOptions
	}{
		{"zero sfreq", 0, make([]float64, 1000), DetectOptions{}},
		{"short signal", testSfreq, make([]float64, 100), DetectOptions{}},
		{"tstart beyond end", testSfreq, make([]float64, 2000), DetectOptions{TStart: 60}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DetectRPeaks(tt.sfreq, tt.signal, tt.opts); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestFindEventsAveragePulse(t *testing.T) {
	beats := beatsEvery(0.5, 1.0, 20) // 60 bpm over 20 s
	signal := syntheticECG(testSfreq, 20, beats)

	events, err := FindEvents(testSfreq, signal, DetectOptions{})
	if err != nil {
		t.Fatalf("find events: %v", err)
	}
	if events.AveragePulse < 45 || events.AveragePulse > 75 {
		t.Fatalf("average pulse = %.1f bpm, want ~60", events.AveragePulse)
	}
	if len(events.Peaks) < 15 || len(events.Peaks) > 25 {
		t.Fatalf("found %d peaks, want ~20", len(events.Peaks))
	}
}

func TestCountCrossings(t *testing.T) {
	tests := []struct {
		name   string
		window []float64
		thresh float64
		want   int
	}{
		{"rise and fall", []float64{1, 2, 3, 2, 1}, 1.5, 2},
		{"always above", []float64{2, 3, 2}, 1, 0},
		{"chatter", []float64{2, 0, 2, 0, 2}, 1, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := countCrossings(tt.window, tt.thresh); got != tt.want {
				t.Fatalf("crossings = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPickCandidatePrefersPlausibleRate(t *testing.T) {
	// 10 s of signal: 10 peaks = 60 bpm, 200 peaks = 1200 bpm (noise).
	plausible := make([]int, 10)
	noisy := make([]int, 200)
	got := pickCandidate([][]int{noisy, plausible}, 10)
	if len(got) != 10 {
		t.Fatalf("picked candidate with %d peaks, want the 60 bpm one", len(got))
	}
}

func TestAutoThresholdSweepRange(t *testing.T) {
	ts := autoThresholds()
	if len(ts) != 16 {
		t.Fatalf("sweep has %d thresholds, want 16", len(ts))
	}
	if math.Abs(ts[0]-0.30) > 1e-9 || math.Abs(ts[len(ts)-1]-1.05) > 1e-9 {
		t.Fatalf("sweep bounds = %g..%g, want 0.30..1.05", ts[0], ts[len(ts)-1])
	}
}
