package solar

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"
)

// Label is the screen-facing name tag of one body
type Label struct {
	Body     *CelestialBody
	Text     string
	Position mgl64.Vec3
}

func newLabel(b *CelestialBody) *Label {
	l := &Label{Body: b, Text: b.Name}
	l.Update()
	return l
}

// Update places the label above its body
func (l *Label) Update() {
	l.Position = l.Body.Position.Add(mgl64.Vec3{0, LabelOffset, 0})
}

// OrbitVisual is a decorative ring traced by a body's orbit. Points are offsets
// from the centre, which is the origin or the parent body's current position.
type OrbitVisual struct {
	BodyID   string
	CenterID string
	Color    colorful.Color
	Points   []mgl64.Vec3
}

func newOrbitVisual(b *CelestialBody) *OrbitVisual {
	o := &OrbitVisual{
		BodyID: b.ID,
		Color:  b.OrbitColor,
		Points: make([]mgl64.Vec3, 0, OrbitSegments+1),
	}
	if b.Parent != nil {
		o.CenterID = b.Parent.ID
	}
	for i := 0; i <= OrbitSegments; i++ {
		a := twoPi * float64(i) / OrbitSegments
		o.Points = append(o.Points, OrbitPoint(b.OrbitRadius, b.Eccentricity, b.Inclination, a))
	}
	return o
}

// Asteroid belt bounds, between the orbits of Ceres/Mars and Jupiter
const (
	BeltCount       = 300
	BeltInnerRadius = 35.0
	BeltOuterRadius = 39.0
	BeltRockRadius  = 0.1
)

// AsteroidBelt generates static decorative rocks. The same seed always gives the same belt.
func AsteroidBelt(seed int64) []mgl64.Vec3 {
	rng := rand.New(rand.NewSource(seed))
	rocks := make([]mgl64.Vec3, 0, BeltCount)
	for i := 0; i < BeltCount; i++ {
		angle := rng.Float64() * twoPi
		radius := BeltInnerRadius + rng.Float64()*(BeltOuterRadius-BeltInnerRadius)
		rocks = append(rocks, mgl64.Vec3{
			math.Cos(angle) * radius,
			rng.Float64()*2 - 1,
			math.Sin(angle) * radius,
		})
	}
	return rocks
}

// PaletteColor spreads generated bodies (comets) around the hue circle
func PaletteColor(i, n int) colorful.Color {
	if n <= 0 {
		n = 1
	}
	hue := math.Remainder(float64(i)*360/float64(n), 360)
	if hue < 0 {
		hue += 360
	}
	return colorful.Hcl(hue, 0.5, 0.8).Clamped()
}
