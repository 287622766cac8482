package ecg

import "fmt"

// Events summarizes the heartbeats detected in a single-channel recording.
type Events struct {
	// Peaks holds the sample indices of the detected R wave peaks.
	Peaks []int
	// AveragePulse is the implied heart rate in beats per minute over the
	// analyzed span.
	AveragePulse float64
}

// FindEvents band-passes the signal once, detects R wave peaks, and derives
// the average pulse.
func FindEvents(sfreq float64, signal []float64, opts DetectOptions) (Events, error) {
	opts = opts.withDefaults()

	filtered := signal
	if !opts.Prefiltered {
		var err error
		filtered, err = FilterBandPass(signal, sfreq, opts.LowFreq, opts.HighFreq, opts.FilterLength)
		if err != nil {
			return Events{}, err
		}
	}

	peakOpts := opts
	peakOpts.Prefiltered = true
	peaks, err := DetectRPeaks(sfreq, filtered, peakOpts)
	if err != nil {
		return Events{}, err
	}

	durationMin := (float64(len(signal))/sfreq - opts.TStart) / 60
	if durationMin <= 0 {
		return Events{}, fmt.Errorf("no signal remains after tstart %.2fs", opts.TStart)
	}

	return Events{
		Peaks:        peaks,
		AveragePulse: float64(len(peaks)) / durationMin,
	}, nil
}
