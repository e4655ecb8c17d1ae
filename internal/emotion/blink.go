package emotion

import (
	"math"
	"sync"
	"time"

	"moodlens-backend/internal/models"
)

const (
	// DefaultEARThreshold is the eye-aspect-ratio under which an eye is
	// considered closed.
	DefaultEARThreshold = 0.23

	// DefaultConsecutiveFrames is how many below-threshold frames must
	// precede a reopening for it to count as a blink.
	DefaultConsecutiveFrames = 1

	// blinkDebounce prevents one eye-closure from being counted twice
	// across adjacent frames.
	blinkDebounce = 150 * time.Millisecond
)

// BlinkResult is the per-frame output of the detector.
type BlinkResult struct {
	EAR        float64 `json:"ear"`
	IsBlinking bool    `json:"is_blinking"`
	BlinkCount int     `json:"blink_count"`
}

// BlinkDetector tracks eye closures across a stream of per-frame
// landmark samples. One detector per detection session; it holds no
// cross-session state. Safe for concurrent use: frames arriving from
// parallel requests are serialized by the detector's own lock.
type BlinkDetector struct {
	earThreshold      float64
	consecutiveFrames int

	mu            sync.Mutex
	counter       int
	blinkCount    int
	firstFrame    time.Time
	lastBlinkTime time.Time
	isBlinking    bool

	now func() time.Time
}

func NewBlinkDetector() *BlinkDetector {
	return NewBlinkDetectorWithOptions(DefaultEARThreshold, DefaultConsecutiveFrames)
}

func NewBlinkDetectorWithOptions(earThreshold float64, consecutiveFrames int) *BlinkDetector {
	return &BlinkDetector{
		earThreshold:      earThreshold,
		consecutiveFrames: consecutiveFrames,
		now:               time.Now,
	}
}

// SetClock overrides the time source. Tests use this to advance
// logical time deterministically.
func (d *BlinkDetector) SetClock(now func() time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.now = now
}

// Detect processes one frame. A blink is registered on the first frame
// where the EAR rises back above the threshold after having been below
// it for at least the configured number of consecutive frames.
func (d *BlinkDetector) Detect(sample models.EyeLandmarkSample) BlinkResult {
	ear := EAR(sample)

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.firstFrame.IsZero() {
		d.firstFrame = d.now()
	}

	if ear < d.earThreshold {
		d.counter++
		d.isBlinking = true
	} else {
		if d.isBlinking && d.counter >= d.consecutiveFrames {
			now := d.now()
			if now.Sub(d.lastBlinkTime) >= blinkDebounce {
				d.blinkCount++
				d.lastBlinkTime = now
			}
		}
		d.counter = 0
		d.isBlinking = false
	}

	return BlinkResult{
		EAR:        ear,
		IsBlinking: d.isBlinking,
		BlinkCount: d.blinkCount,
	}
}

// Reset zeroes all detector state.
func (d *BlinkDetector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.counter = 0
	d.blinkCount = 0
	d.firstFrame = time.Time{}
	d.lastBlinkTime = time.Time{}
	d.isBlinking = false
}

// BlinkCount returns the cumulative number of registered blinks.
func (d *BlinkDetector) BlinkCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.blinkCount
}

// BlinkRate converts the cumulative count into blinks per minute over
// the given observation window. A zero or negative duration reports 0.
func (d *BlinkDetector) BlinkRate(duration time.Duration) float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rateLocked(duration)
}

// ObservedRate reports blinks per minute over the window from the
// first processed frame to now. 0 before any frame has been seen.
func (d *BlinkDetector) ObservedRate() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.firstFrame.IsZero() {
		return 0
	}
	return d.rateLocked(d.now().Sub(d.firstFrame))
}

func (d *BlinkDetector) rateLocked(duration time.Duration) float64 {
	if duration <= 0 {
		return 0
	}
	return float64(d.blinkCount) / float64(duration.Milliseconds()) * 60000
}

// EAR computes the averaged eye aspect ratio of both eyes:
// (v1 + v2) / (2h) per eye. Malformed samples (fewer than 6 points per
// eye) yield 0, which reads as "eyes closed".
func EAR(sample models.EyeLandmarkSample) float64 {
	left := eyeAspectRatio(sample.LeftEye)
	right := eyeAspectRatio(sample.RightEye)
	return (left + right) / 2
}

func eyeAspectRatio(eye []models.Point) float64 {
	if len(eye) < 6 {
		return 0
	}

	v1 := dist(eye[1], eye[5])
	v2 := dist(eye[2], eye[4])
	h := dist(eye[0], eye[3])
	if h == 0 {
		return 0
	}

	return (v1 + v2) / (2.0 * h)
}

func dist(p1, p2 models.Point) float64 {
	return math.Sqrt(math.Pow(p1.X-p2.X, 2) + math.Pow(p1.Y-p2.Y, 2))
}
