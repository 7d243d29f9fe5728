package mapengine

import "time"

// CameraPose is the subset of camera state the movement detector compares
// frame to frame: world position, zoom level, and yaw-equivalent rotation.
type CameraPose struct {
	X, Y     float64
	Zoom     float64
	Rotation float64
}

// Equal reports whether two poses are identical. Tile-grid-relevant motion
// is exact equality here; callers wanting epsilon tolerance should round
// pose fields before calling Update.
func (p CameraPose) Equal(o CameraPose) bool {
	return p == o
}

// CameraMovementDetector debounces continuous camera motion into discrete
// movement-started/movement-finished transitions. It sits beside (not
// inside) a Camera, comparing poses frame to frame against an explicit
// settle deadline rather than an implicit per-frame dirty flag.
type CameraMovementDetector struct {
	settleDelay time.Duration

	havePose   bool
	lastPose   CameraPose
	moving     bool
	settleTime time.Time
}

// NewCameraMovementDetector returns a detector that considers the camera
// settled once settleDelay has elapsed with no pose change.
func NewCameraMovementDetector(settleDelay time.Duration) *CameraMovementDetector {
	return &CameraMovementDetector{settleDelay: settleDelay}
}

// Update compares pose against the previously observed pose and advances
// the settle-deadline timer. It returns the events produced this call (at
// most one of EventMovementStarted or EventMovementFinished); callers
// forward these into the engine's EventSink.
func (d *CameraMovementDetector) Update(pose CameraPose, now time.Time) []EventType {
	var events []EventType

	if !d.havePose {
		d.havePose = true
		d.lastPose = pose
		d.settleTime = now.Add(d.settleDelay)
		return nil
	}

	if !pose.Equal(d.lastPose) {
		d.lastPose = pose
		d.settleTime = now.Add(d.settleDelay)
		if !d.moving {
			d.moving = true
			events = append(events, EventMovementStarted)
		}
		return events
	}

	if d.moving && !now.Before(d.settleTime) {
		d.moving = false
		events = append(events, EventMovementFinished)
	}
	return events
}

// Moving reports whether the camera is currently considered in motion.
func (d *CameraMovementDetector) Moving() bool {
	return d.moving
}

// Clear resynchronizes the saved pose to the detector's initial state
// without emitting movement-started or movement-finished events. Used when
// an embedder wants to silently rebase comparison (e.g. after restoring a
// saved camera) rather than trigger a redraw.
func (d *CameraMovementDetector) Clear() {
	d.havePose = false
	d.moving = false
	d.lastPose = CameraPose{}
	d.settleTime = time.Time{}
}

// ForceMoved poisons the saved pose so the next Update call always reports
// motion, regardless of whether the incoming pose actually differs. Used
// after a programmatic pose change that must trigger a redraw even if the
// camera ends up back where it started. It has no effect before the first
// Update has recorded a pose.
func (d *CameraMovementDetector) ForceMoved() {
	if !d.havePose {
		return
	}
	d.lastPose = CameraPose{
		X: d.lastPose.X + 1, Y: d.lastPose.Y, Zoom: d.lastPose.Zoom, Rotation: d.lastPose.Rotation,
	}
}
