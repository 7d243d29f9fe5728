package mapengine

import "time"

// FrameDriver paces redraws and coalesces update requests, and tracks an
// FPS estimate, independent of any particular render loop. The estimate is
// measured over consecutive fixed windows of fpsWindow and replaced at the
// end of each one; it is not a sliding window.
type FrameDriver struct {
	maxFPS float64

	lastTick   time.Time
	frameCount int
	fpsWindow  time.Duration
	fpsTimer   time.Duration
	fps        float64

	dirty bool

	// animatingCount is a reference count of active animations; while it is
	// greater than zero a frame is continuously requested regardless of
	// MarkDirty, per begin_animation/end_animation.
	animatingCount int
}

// NewFrameDriver returns a driver capped at maxFPS (0 means uncapped) that
// reports its measured FPS every fpsWindow of wall time (default 0.5s).
func NewFrameDriver(maxFPS float64) *FrameDriver {
	return &FrameDriver{maxFPS: maxFPS, fpsWindow: 500 * time.Millisecond}
}

// MarkDirty requests a redraw on the next eligible tick; repeated calls
// within the same frame coalesce into one.
func (d *FrameDriver) MarkDirty() {
	d.dirty = true
}

// BeginAnimation registers one active animation, incrementing the
// reference count; while the count is above zero ShouldTick continuously
// requests a frame even without an explicit MarkDirty call.
func (d *FrameDriver) BeginAnimation() {
	d.animatingCount++
}

// EndAnimation releases one active animation. It is a no-op once the count
// reaches zero, so unbalanced calls cannot drive it negative.
func (d *FrameDriver) EndAnimation() {
	if d.animatingCount > 0 {
		d.animatingCount--
	}
}

// Animating reports whether any animation is still holding the reference
// count above zero.
func (d *FrameDriver) Animating() bool {
	return d.animatingCount > 0
}

// ShouldTick reports whether enough wall time has passed since the last
// tick to honor maxFPS, and either a dirty redraw has been requested or an
// animation is in progress.
func (d *FrameDriver) ShouldTick(now time.Time) bool {
	if !d.dirty && d.animatingCount <= 0 {
		return false
	}
	if d.maxFPS <= 0 {
		return true
	}
	minInterval := time.Duration(float64(time.Second) / d.maxFPS)
	return now.Sub(d.lastTick) >= minInterval
}

// Tick records a frame having been produced at now, updating the FPS
// estimate and clearing the dirty flag.
func (d *FrameDriver) Tick(now time.Time) {
	if !d.lastTick.IsZero() {
		elapsed := now.Sub(d.lastTick)
		d.fpsTimer += elapsed
		d.frameCount++
		if d.fpsTimer >= d.fpsWindow {
			d.fps = float64(d.frameCount) / d.fpsTimer.Seconds()
			d.frameCount = 0
			d.fpsTimer = 0
		}
	}
	d.lastTick = now
	d.dirty = false
}

// FPS returns the most recently measured frames-per-second, updated once
// per fpsWindow.
func (d *FrameDriver) FPS() float64 {
	return d.fps
}
