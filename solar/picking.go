package solar

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Ray is a half-line in world space. Dir is unit length.
type Ray struct {
	Origin mgl64.Vec3
	Dir    mgl64.Vec3
}

// NDCFromPixels normalizes a pointer position (mouse or first touch) within a
// width x height viewport into [-1,1]x[-1,1] with y pointing up.
func NDCFromPixels(x, y float64, width, height int) mgl64.Vec2 {
	if width <= 0 || height <= 0 {
		return mgl64.Vec2{}
	}
	return mgl64.Vec2{
		x/float64(width)*2 - 1,
		-(y/float64(height))*2 + 1,
	}
}

// RayFromNDC casts a ray from the camera through a normalized device coordinate
func (c *Camera) RayFromNDC(ndc mgl64.Vec2) Ray {
	inv := c.ViewProjection().Inv()
	far := inv.Mul4x1(mgl64.Vec4{ndc.X(), ndc.Y(), 1, 1})
	var farPoint mgl64.Vec3
	if far.W() != 0 {
		farPoint = far.Vec3().Mul(1 / far.W())
	} else {
		farPoint = far.Vec3()
	}
	dir := farPoint.Sub(c.Position)
	if dir.Len() == 0 {
		dir = c.Target.Sub(c.Position)
	}
	return Ray{Origin: c.Position, Dir: dir.Normalize()}
}

// IntersectSphere returns the distance along the ray to the nearest point where
// it enters (or, from inside, leaves) the sphere.
func (r Ray) IntersectSphere(center mgl64.Vec3, radius float64) (float64, bool) {
	oc := r.Origin.Sub(center)
	b := oc.Dot(r.Dir)
	c := oc.Dot(oc) - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	t := -b - sq
	if t < 0 {
		t = -b + sq
	}
	if t < 0 {
		return 0, false
	}
	return t, true
}

// Pick returns the nearest body hit by the ray through ndc, if any. Callers must
// drop pointer events that land on UI overlays before calling Pick.
func Pick(ndc mgl64.Vec2, cam *Camera, bodies []*CelestialBody) (*CelestialBody, bool) {
	ray := cam.RayFromNDC(ndc)

	var nearest *CelestialBody
	best := math.Inf(1)
	for _, b := range bodies {
		t, hit := ray.IntersectSphere(b.Position, b.Radius)
		if !hit || t < cam.Near || t > cam.Far {
			continue
		}
		if t < best {
			best = t
			nearest = b
		}
	}
	return nearest, nearest != nil
}
