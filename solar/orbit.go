package solar

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const twoPi = 2 * math.Pi

// WrapAngle maps an angle into [0, 2π)
func WrapAngle(a float64) float64 {
	if math.IsNaN(a) || math.IsInf(a, 0) {
		return 0
	}
	a = math.Mod(a, twoPi)
	if a < 0 {
		a += twoPi
	}
	// math.Mod can hand back a value that rounds up to 2π after the correction
	if a >= twoPi {
		a = 0
	}
	return a
}

// Advance moves a body along its orbit by speed*dtScaled radians. dtScaled is the
// number of reference frames elapsed already multiplied by the time scale, so it is
// zero while paused and negative when time runs backwards.
func Advance(b *CelestialBody, dtScaled float64) {
	if b.Speed == 0 || dtScaled == 0 {
		return
	}
	b.Angle = WrapAngle(b.Angle + b.Speed*dtScaled)
}

// EllipseFactor scales the minor axis for an eccentricity e
func EllipseFactor(e float64) float64 {
	if e <= 0 {
		return 1
	}
	if e >= 1 {
		return 0
	}
	return math.Sqrt(1 - e*e)
}

// OrbitPoint is the offset from the orbit centre at angle a for the given orbit shape
func OrbitPoint(radius, eccentricity, inclination, a float64) mgl64.Vec3 {
	local := mgl64.Vec3{
		radius * math.Cos(a),
		0,
		radius * math.Sin(a) * EllipseFactor(eccentricity),
	}
	if inclination == 0 {
		return local
	}
	return mgl64.Rotate3DX(mgl64.DegToRad(inclination)).Mul3x1(local)
}

// Position is the world position of a body given its parent's current position
func Position(b *CelestialBody) mgl64.Vec3 {
	if b.OrbitRadius == 0 {
		return b.ParentPosition()
	}
	return b.ParentPosition().Add(OrbitPoint(b.OrbitRadius, b.Eccentricity, b.Inclination, b.Angle))
}

// Reposition recomputes every body position. Bodies must be in parent-first order.
func Reposition(bodies []*CelestialBody) {
	for _, b := range bodies {
		b.Position = Position(b)
	}
}
