package ecg

import (
	"math"
	"strings"
	"testing"
)

func TestSegmentWindow(t *testing.T) {
	tests := []struct {
		name      string
		heartRate float64
		wantStart float64
		wantEnd   float64
	}{
		{"resting 60 bpm", 60, -0.35, 0.5},
		{"elevated 120 bpm", 120, -0.275, 0.35},
		{"boundary 80 bpm", 80, -0.3625, 0.475},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := SegmentWindow(tt.heartRate)
			if math.Abs(start-tt.wantStart) > 1e-9 || math.Abs(end-tt.wantEnd) > 1e-9 {
				t.Fatalf("window = (%g, %g), want (%g, %g)", start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestAnnotateRPeaks(t *testing.T) {
	beats := beatsEvery(0.5, 1.0, 10)
	signal := syntheticECG(testSfreq, 10, beats)

	annotations, err := Annotate(testSfreq, signal, WhatRPeaks, DetectOptions{})
	if err != nil {
		t.Fatalf("annotate: %v", err)
	}
	if len(annotations) < 8 {
		t.Fatalf("got %d annotations, want ~10", len(annotations))
	}
	for _, a := range annotations {
		if a.Duration != 0 {
			t.Fatalf("r-peak annotation has duration %g, want 0", a.Duration)
		}
		if a.Description != DescRPeak {
			t.Fatalf("description = %q, want %q", a.Description, DescRPeak)
		}
	}
}

func TestAnnotateHeartbeats(t *testing.T) {
	// First beat close to the start so the window onset needs clamping.
	beats := beatsEvery(0.1, 1.0, 10)
	signal := syntheticECG(testSfreq, 10, beats)

	annotations, err := Annotate(testSfreq, signal, WhatHeartbeats, DetectOptions{})
	if err != nil {
		t.Fatalf("annotate: %v", err)
	}
	if len(annotations) < 8 {
		t.Fatalf("got %d annotations, want ~10", len(annotations))
	}

	if annotations[0].Onset != 0 {
		t.Errorf("first onset = %g, want clamped to 0", annotations[0].Onset)
	}

	duration := annotations[0].Duration
	if duration <= 0 {
		t.Fatalf("heartbeat duration = %g, want > 0", duration)
	}
	for _, a := range annotations {
		if a.Duration != duration {
			t.Errorf("heartbeat durations differ: %g vs %g", a.Duration, duration)
		}
		if a.Description != DescHeartbeat {
			t.Errorf("description = %q, want %q", a.Description, DescHeartbeat)
		}
		if a.Onset < 0 {
			t.Errorf("negative onset %g", a.Onset)
		}
	}
}

func TestAnnotateNoActivity(t *testing.T) {
	signal := make([]float64, 2000) // silence

	annotations, err := Annotate(testSfreq, signal, WhatHeartbeats, DetectOptions{})
	if err != nil {
		t.Fatalf("annotate: %v", err)
	}
	if annotations == nil || len(annotations) != 0 {
		t.Fatalf("annotations = %v, want empty non-nil set", annotations)
	}
}

func TestAnnotateInvalidKind(t *testing.T) {
	signal := make([]float64, 2000)
	if _, err := Annotate(testSfreq, signal, What("spikes"), DetectOptions{}); err == nil {
		t.Fatalf("expected error for invalid kind")
	}
}

func TestReadSignal(t *testing.T) {
	input := `# ECG channel, 200 Hz
0.5
-0.25

1e-3
`
	samples, err := ReadSignal(strings.NewReader(input))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := []float64{0.5, -0.25, 0.001}
	if len(samples) != len(want) {
		t.Fatalf("got %d samples, want %d", len(samples), len(want))
	}
	for i := range want {
		if samples[i] != want[i] {
			t.Fatalf("sample %d = %g, want %g", i, samples[i], want[i])
		}
	}
}

func TestReadSignalBadLine(t *testing.T) {
	if _, err := ReadSignal(strings.NewReader("1.0\nnot-a-number\n")); err == nil {
		t.Fatalf("expected parse error")
	}
}
