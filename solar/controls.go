package solar

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// polar angle is kept this far from the poles so the view never flips
const polarEpsilon = 1e-6

// OrbitControls is a damped orbit rig: the user rotates and dollies the camera
// around Target. Pending motion is released gradually on each Update.
type OrbitControls struct {
	Target        mgl64.Vec3
	MinDistance   float64
	MaxDistance   float64
	DampingFactor float64

	deltaTheta float64
	deltaPhi   float64
	scale      float64

	hasRequest bool
	request    float64
}

// NewOrbitControls returns a rig aimed at the origin with the scene zoom limits
func NewOrbitControls() *OrbitControls {
	return &OrbitControls{
		Target:        DefaultCameraTarget,
		MinDistance:   MinZoomDistance,
		MaxDistance:   MaxZoomDistance,
		DampingFactor: DampingFactor,
		scale:         1,
	}
}

// ClampDistance bounds a requested camera distance to the rig limits
func (o *OrbitControls) ClampDistance(d float64) float64 {
	return mgl64.Clamp(d, o.MinDistance, o.MaxDistance)
}

// Rotate queues an azimuth/polar rotation in radians
func (o *OrbitControls) Rotate(dTheta, dPhi float64) {
	o.deltaTheta += dTheta
	o.deltaPhi += dPhi
}

// Drag converts a pointer drag in pixels to a rotation. A drag across the full
// viewport height turns the camera once around the target.
func (o *OrbitControls) Drag(dx, dy float64, viewportHeight int) {
	if viewportHeight <= 0 {
		return
	}
	h := float64(viewportHeight)
	o.Rotate(-twoPi*dx/h, -twoPi*dy/h)
}

// Dolly queues a wheel step; positive moves away from the target
func (o *OrbitControls) Dolly(delta float64) {
	switch {
	case delta > 0:
		o.scale /= 0.95
	case delta < 0:
		o.scale *= 0.95
	}
}

// RequestDistance asks for an absolute camera distance; it is clamped when applied
func (o *OrbitControls) RequestDistance(d float64) {
	o.hasRequest = true
	o.request = d
}

// Idle reports whether the rig has no pending motion
func (o *OrbitControls) Idle() bool {
	return o.deltaTheta == 0 && o.deltaPhi == 0 && o.scale == 1 && !o.hasRequest
}

// Reset drops pending motion and re-aims the rig at the origin
func (o *OrbitControls) Reset() {
	o.Target = DefaultCameraTarget
	o.deltaTheta, o.deltaPhi = 0, 0
	o.scale = 1
	o.hasRequest = false
}

// Update applies pending motion to the camera and reports whether it moved it.
// An idle rig leaves the camera untouched.
func (o *OrbitControls) Update(cam *Camera, elapsed time.Duration) bool {
	if o.Idle() {
		return false
	}

	offset := cam.Position.Sub(o.Target)
	radius := offset.Len()
	theta := math.Atan2(offset.X(), offset.Z())
	phi := 0.0
	if radius > 0 {
		phi = math.Acos(mgl64.Clamp(offset.Y()/radius, -1, 1))
	}

	frames := float64(elapsed) / float64(ReferenceFrame)
	frac := 1 - math.Pow(1-o.DampingFactor, frames)
	if frac <= 0 {
		frac = o.DampingFactor
	}
	theta += o.deltaTheta * frac
	phi += o.deltaPhi * frac
	o.deltaTheta *= 1 - frac
	o.deltaPhi *= 1 - frac
	if math.Abs(o.deltaTheta) < 1e-6 {
		o.deltaTheta = 0
	}
	if math.Abs(o.deltaPhi) < 1e-6 {
		o.deltaPhi = 0
	}

	radius *= o.scale
	o.scale = 1
	if o.hasRequest {
		radius = o.request
		o.hasRequest = false
	}
	radius = o.ClampDistance(radius)
	phi = mgl64.Clamp(phi, polarEpsilon, math.Pi-polarEpsilon)

	sinPhi := math.Sin(phi)
	cam.Position = o.Target.Add(mgl64.Vec3{
		radius * sinPhi * math.Sin(theta),
		radius * math.Cos(phi),
		radius * sinPhi * math.Cos(theta),
	})
	cam.LookAt(o.Target)
	return true
}
