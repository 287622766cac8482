package ecg

import "fmt"

// Annotation descriptions.
const (
	DescRPeak     = "ECG/R peak"
	DescHeartbeat = "ECG/Heartbeat"
)

// What selects the annotation flavor.
type What string

const (
	// WhatHeartbeats annotates a window around each R peak sized from the
	// average heart rate, approximating the whole heartbeat.
	WhatHeartbeats What = "heartbeats"
	// WhatRPeaks annotates only the R wave peaks, with zero duration.
	WhatRPeaks What = "r-peaks"
)

// Annotation marks a span of the signal, in seconds from its start.
type Annotation struct {
	Onset       float64 `json:"onset"`
	Duration    float64 `json:"duration"`
	Description string  `json:"description"`
}

// SegmentWindow returns the start and end of a heartbeat window relative to
// the R peak, in seconds, scaled by the average heart rate. High heart
// rates get an extra 100 ms of padding on both sides.
func SegmentWindow(heartRate float64) (start, end float64) {
	m := heartRate / 60

	start = -0.35 / m
	end = 0.5 / m

	if heartRate >= 80 {
		start -= 0.1
		end += 0.1
	}
	return start, end
}

// Annotate detects heartbeats and returns annotations for either whole
// heartbeats or bare R peaks. No detected activity yields an empty set.
func Annotate(sfreq float64, signal []float64, what What, opts DetectOptions) ([]Annotation, error) {
	switch what {
	case WhatHeartbeats, WhatRPeaks:
	default:
		return nil, fmt.Errorf("invalid annotation kind %q (want %q or %q)", what, WhatHeartbeats, WhatRPeaks)
	}

	events, err := FindEvents(sfreq, signal, opts)
	if err != nil {
		return nil, err
	}
	if len(events.Peaks) == 0 {
		return []Annotation{}, nil
	}

	annotations := make([]Annotation, len(events.Peaks))
	for i, peak := range events.Peaks {
		annotations[i] = Annotation{
			Onset:       float64(peak) / sfreq,
			Description: DescRPeak,
		}
	}

	if what == WhatRPeaks {
		return annotations, nil
	}

	start, end := SegmentWindow(events.AveragePulse)
	duration := end - start
	for i := range annotations {
		onset := annotations[i].Onset + start
		if onset < 0 {
			onset = 0
		}
		annotations[i].Onset = onset
		annotations[i].Duration = duration
		annotations[i].Description = DescHeartbeat
	}
	return annotations, nil
}
