package solar

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Camera is a perspective camera described by its eye position and look-at point
type Camera struct {
	Position mgl64.Vec3
	Target   mgl64.Vec3
	Up       mgl64.Vec3
	Fov      float64 // vertical, degrees
	Aspect   float64
	Near     float64
	Far      float64
}

// NewCamera returns a camera in the default overview pose
func NewCamera(aspect float64) *Camera {
	if aspect <= 0 {
		aspect = 1
	}
	return &Camera{
		Position: DefaultCameraPosition,
		Target:   DefaultCameraTarget,
		Up:       WorldUp,
		Fov:      CameraFov,
		Aspect:   aspect,
		Near:     CameraNear,
		Far:      CameraFar,
	}
}

// LookAt re-aims the camera without moving it
func (c *Camera) LookAt(p mgl64.Vec3) {
	c.Target = p
}

// Reset restores the overview pose
func (c *Camera) Reset() {
	c.Position = DefaultCameraPosition
	c.Target = DefaultCameraTarget
	c.Up = WorldUp
}

// Resize recomputes the aspect ratio for a new viewport
func (c *Camera) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.Aspect = float64(width) / float64(height)
}

// View returns the world-to-camera matrix
func (c *Camera) View() mgl64.Mat4 {
	return mgl64.LookAtV(c.Position, c.Target, c.Up)
}

// Projection returns the camera-to-clip matrix
func (c *Camera) Projection() mgl64.Mat4 {
	return mgl64.Perspective(mgl64.DegToRad(c.Fov), c.Aspect, c.Near, c.Far)
}

// ViewProjection returns Projection * View
func (c *Camera) ViewProjection() mgl64.Mat4 {
	return c.Projection().Mul4(c.View())
}

// Project maps a world point to normalized device coordinates. ok is false for
// points behind the camera.
func (c *Camera) Project(p mgl64.Vec3) (ndc mgl64.Vec2, ok bool) {
	clip := c.ViewProjection().Mul4x1(p.Vec4(1))
	w := clip.W()
	if w <= 0 {
		return mgl64.Vec2{}, false
	}
	return mgl64.Vec2{clip.X() / w, clip.Y() / w}, true
}

// Distance from the camera to its look-at point
func (c *Camera) Distance() float64 {
	return c.Position.Sub(c.Target).Len()
}
