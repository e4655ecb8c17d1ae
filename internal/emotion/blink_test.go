package emotion

import (
	"sync"
	"testing"
	"time"

	"moodlens-backend/internal/models"
)

func openEye() []models.Point {
	return []models.Point{
		{X: 0, Y: 0},
		{X: 1, Y: 1},
		{X: 2, Y: 1},
		{X: 3, Y: 0},
		{X: 2, Y: -1},
		{X: 1, Y: -1},
	}
}

func closedEye() []models.Point {
	return []models.Point{
		{X: 0, Y: 0},
		{X: 1, Y: 0.1},
		{X: 2, Y: 0.1},
		{X: 3, Y: 0},
		{X: 2, Y: -0.1},
		{X: 1, Y: -0.1},
	}
}

func openSample() models.EyeLandmarkSample {
	return models.EyeLandmarkSample{LeftEye: openEye(), RightEye: openEye()}
}

func closedSample() models.EyeLandmarkSample {
	return models.EyeLandmarkSample{LeftEye: closedEye(), RightEye: closedEye()}
}

func TestEAR(t *testing.T) {
	open := EAR(openSample())
	if open <= DefaultEARThreshold {
		t.Errorf("open-eye EAR %v should exceed threshold %v", open, DefaultEARThreshold)
	}

	closed := EAR(closedSample())
	if closed >= DefaultEARThreshold {
		t.Errorf("closed-eye EAR %v should be below threshold %v", closed, DefaultEARThreshold)
	}
}

func TestEARMalformedLandmarks(t *testing.T) {
	// Too few points
	short := models.EyeLandmarkSample{
		LeftEye:  []models.Point{{X: 0, Y: 0}, {X: 1, Y: 1}},
		RightEye: []models.Point{{X: 0, Y: 0}, {X: 1, Y: 1}},
	}
	if got := EAR(short); got != 0 {
		t.Errorf("EAR with too few points = %v, want 0", got)
	}

	// Degenerate geometry: all points coincide, horizontal span is zero
	p := models.Point{X: 1, Y: 1}
	degenerate := models.EyeLandmarkSample{
		LeftEye:  []models.Point{p, p, p, p, p, p},
		RightEye: []models.Point{p, p, p, p, p, p},
	}
	if got := EAR(degenerate); got != 0 {
		t.Errorf("EAR with zero horizontal span = %v, want 0", got)
	}

	if got := EAR(models.EyeLandmarkSample{}); got != 0 {
		t.Errorf("EAR with empty sample = %v, want 0", got)
	}
}

func TestBlinkDetectionScenario(t *testing.T) {
	d := NewBlinkDetector()

	current := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	d.SetClock(func() time.Time { return current })

	// 20 frames at ~30fps, eyes dip closed on frames 5 and 6
	for frame := 1; frame <= 20; frame++ {
		current = current.Add(33 * time.Millisecond)

		sample := openSample()
		if frame == 5 || frame == 6 {
			sample = closedSample()
		}

		result := d.Detect(sample)

		switch {
		case frame < 7:
			if frame >= 5 && !result.IsBlinking {
				t.Errorf("frame %d: expected IsBlinking during closure", frame)
			}
		default:
			if result.BlinkCount != 1 {
				t.Errorf("frame %d: BlinkCount = %d, want 1", frame, result.BlinkCount)
			}
			if result.IsBlinking {
				t.Errorf("frame %d: expected IsBlinking false after reopening", frame)
			}
		}
	}

	if d.BlinkCount() != 1 {
		t.Errorf("final BlinkCount = %d, want 1", d.BlinkCount())
	}
}

func TestBlinkDebounce(t *testing.T) {
	tests := []struct {
		name     string
		gap      time.Duration
		expected int
	}{
		{"closures closer than debounce count once", 100 * time.Millisecond, 1},
		{"closures at debounce distance count twice", 150 * time.Millisecond, 2},
		{"well separated closures count twice", 400 * time.Millisecond, 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := NewBlinkDetector()

			current := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
			d.SetClock(func() time.Time { return current })

			// First blink
			d.Detect(closedSample())
			d.Detect(openSample())

			// Second closure reopens after the configured gap
			d.Detect(closedSample())
			current = current.Add(tc.gap)
			result := d.Detect(openSample())

			if result.BlinkCount != tc.expected {
				t.Errorf("BlinkCount = %d, want %d", result.BlinkCount, tc.expected)
			}
		})
	}
}

func TestBlinkDetectorConcurrent(t *testing.T) {
	d := NewBlinkDetector()

	const workers = 4
	const cycles = 50

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < cycles; i++ {
				d.Detect(closedSample())
				d.Detect(openSample())
				d.BlinkCount()
				d.ObservedRate()
			}
		}()
	}
	wg.Wait()

	if got := d.BlinkCount(); got < 0 || got > workers*cycles {
		t.Errorf("BlinkCount = %d, want within [0, %d]", got, workers*cycles)
	}
}

func TestObservedRate(t *testing.T) {
	d := NewBlinkDetector()
	current := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	d.SetClock(func() time.Time { return current })

	if got := d.ObservedRate(); got != 0 {
		t.Errorf("ObservedRate before any frame = %v, want 0", got)
	}

	// One blink, observed over a 30 second window
	d.Detect(closedSample())
	current = current.Add(200 * time.Millisecond)
	d.Detect(openSample())

	current = current.Add(30*time.Second - 200*time.Millisecond)
	if got := d.ObservedRate(); got != 2 {
		t.Errorf("ObservedRate after 1 blink in 30s = %v, want 2", got)
	}

	d.Reset()
	if got := d.ObservedRate(); got != 0 {
		t.Errorf("ObservedRate after Reset = %v, want 0", got)
	}
}

func TestBlinkReset(t *testing.T) {
	d := NewBlinkDetector()
	current := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	d.SetClock(func() time.Time { return current })

	d.Detect(closedSample())
	d.Detect(openSample())
	if d.BlinkCount() != 1 {
		t.Fatalf("BlinkCount = %d, want 1", d.BlinkCount())
	}

	d.Reset()
	if d.BlinkCount() != 0 {
		t.Errorf("BlinkCount after Reset = %d, want 0", d.BlinkCount())
	}
}

func TestBlinkRate(t *testing.T) {
	d := NewBlinkDetector()
	current := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	d.SetClock(func() time.Time { return current })

	if got := d.BlinkRate(0); got != 0 {
		t.Errorf("BlinkRate(0) = %v, want 0", got)
	}
	if got := d.BlinkRate(-time.Second); got != 0 {
		t.Errorf("BlinkRate(negative) = %v, want 0", got)
	}

	// Two blinks over one minute
	for i := 0; i < 2; i++ {
		d.Detect(closedSample())
		current = current.Add(200 * time.Millisecond)
		d.Detect(openSample())
		current = current.Add(200 * time.Millisecond)
	}

	if got := d.BlinkRate(time.Minute); got != 2 {
		t.Errorf("BlinkRate(1m) = %v, want 2", got)
	}
	if got := d.BlinkRate(30 * time.Second); got != 4 {
		t.Errorf("BlinkRate(30s) = %v, want 4", got)
	}
}
