package solar

import (
	"log/slog"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// CameraDirector owns the camera mode: a free overview under manual control, a
// timed zoom toward a picked body, and a lock that follows that body. No request
// can fail; requests that do not apply in the current state are ignored.
type CameraDirector struct {
	camera   *Camera
	controls *OrbitControls
	log      *slog.Logger

	mode     CameraMode
	target   *CelestialBody // not owned
	zoomFrom mgl64.Vec3
	zoomTo   mgl64.Vec3
	progress float64
	manual   bool
}

// NewCameraDirector starts in FREE mode in the overview pose
func NewCameraDirector(cam *Camera, controls *OrbitControls) *CameraDirector {
	return &CameraDirector{
		camera:   cam,
		controls: controls,
		log:      slog.With("component", "camera_director"),
		mode:     ModeFree,
	}
}

func (d *CameraDirector) Mode() CameraMode { return d.mode }
func (d *CameraDirector) Target() *CelestialBody { return d.target }
func (d *CameraDirector) Progress() float64 { return d.progress }
func (d *CameraDirector) Manual() bool { return d.manual }
func (d *CameraDirector) Camera() *Camera { return d.camera }
func (d *CameraDirector) Controls() *OrbitControls { return d.controls }

// ZoomGoal is where a zoom toward b ends: on the line from the origin through b,
// at b's close-up distance from the origin. A body sitting on the origin is
// approached from the overview direction.
func ZoomGoal(b *CelestialBody) mgl64.Vec3 {
	dir := b.Position
	if dir.Len() < 1e-9 {
		dir = DefaultCameraPosition
	}
	return dir.Normalize().Mul(b.CloseUpDistance())
}

// FollowOffset is the camera offset kept from a locked body
func FollowOffset(b *CelestialBody) mgl64.Vec3 {
	dist := b.CloseUpDistance()
	return mgl64.Vec3{dist, dist / 2, dist}
}

// Select starts a zoom toward b. It is ignored while a zoom is running and when b
// is already the locked target. Returns whether a zoom started.
func (d *CameraDirector) Select(b *CelestialBody) bool {
	if b == nil {
		return false
	}
	if d.mode == ModeZooming {
		d.log.Debug("Select ignored, zoom in progress", "body", b.ID)
		return false
	}
	if d.mode == ModeLocked && d.target == b {
		d.log.Debug("Select ignored, already locked", "body", b.ID)
		return false
	}

	d.target = b
	d.zoomFrom = d.camera.Position
	d.zoomTo = ZoomGoal(b)
	d.progress = 0
	d.mode = ModeZooming
	d.controls.Target = b.Position
	d.log.Debug("Zoom started", "body", b.ID, "goal", d.zoomTo)
	return true
}

// SelectEmpty handles a pick that hit nothing: from LOCKED it returns to the
// overview, otherwise it does nothing. Returns whether the camera was reset.
func (d *CameraDirector) SelectEmpty() bool {
	if d.mode != ModeLocked {
		return false
	}
	d.Reset()
	return true
}

// Reset clears the target and restores the overview pose
func (d *CameraDirector) Reset() {
	d.camera.Reset()
	d.controls.Reset()
	d.mode = ModeFree
	d.target = nil
	d.progress = 0
	d.manual = false
	d.log.Debug("Camera reset to overview")
}

// BeginManual marks the start of a user drag
func (d *CameraDirector) BeginManual() {
	d.manual = true
}

// EndManual marks the end of a user drag
func (d *CameraDirector) EndManual() {
	d.manual = false
}

// ControlsActive reports whether the orbit rig may move the camera this frame
func (d *CameraDirector) ControlsActive() bool {
	switch d.mode {
	case ModeFree:
		return true
	case ModeLocked:
		return d.manual
	}
	return false
}

// Tick advances the zoom or follow by the measured frame time
func (d *CameraDirector) Tick(elapsed time.Duration) {
	switch d.mode {
	case ModeZooming:
		d.progress += float64(elapsed) / float64(ZoomDuration)
		if d.progress >= 1 {
			d.progress = 1
		}
		d.camera.Position = lerp(d.zoomFrom, d.zoomTo, d.progress)
		d.camera.LookAt(d.target.Position)
		d.controls.Target = d.target.Position
		if d.progress >= 1 {
			d.mode = ModeLocked
			d.log.Debug("Zoom complete, locked", "body", d.target.ID)
		}

	case ModeLocked:
		d.controls.Target = d.target.Position
		if !d.manual {
			desired := d.target.Position.Add(FollowOffset(d.target))
			frames := float64(elapsed) / float64(ReferenceFrame)
			frac := 1 - math.Pow(1-FollowFactor, frames)
			d.camera.Position = lerp(d.camera.Position, desired, frac)
		}
		d.camera.LookAt(d.target.Position)
	}
}

func lerp(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}
