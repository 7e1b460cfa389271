package solar

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"
)

// BodySpec is one row of the static body table
type BodySpec struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Radius       float64   `json:"radius"`      // visual radius
	OrbitRadius  float64   `json:"orbitRadius"` // semi-major axis of the orbit
	Speed        float64   `json:"speed"`       // radians per reference frame
	Eccentricity float64   `json:"eccentricity"`
	Inclination  float64   `json:"inclination"` // degrees
	Parent       string    `json:"parent,omitempty"`
	ZoomDistance float64   `json:"zoomDistance,omitempty"`
	SpinSpeed    float64   `json:"spinSpeed,omitempty"`
	Texture      string    `json:"texture"`
	OrbitColor   string    `json:"orbitColor,omitempty"` // hex, empty for no ring
	Ring         *RingSpec `json:"ring,omitempty"`
}

// RingSpec describes a planetary ring (Saturn)
type RingSpec struct {
	Inner   float64 `json:"inner"`
	Outer   float64 `json:"outer"`
	Texture string  `json:"texture"`
}

// CelestialBody is a body in the scene. Angle is the only state that accumulates;
// Position is recomputed from the parent, the orbit and Angle every frame.
type CelestialBody struct {
	ID           string
	Name         string
	Radius       float64
	OrbitRadius  float64
	Speed        float64
	Eccentricity float64
	Inclination  float64
	ZoomDistance float64
	SpinSpeed    float64
	Texture      string
	Ring         *RingSpec

	Angle    float64
	Spin     float64
	Position mgl64.Vec3
	Parent   *CelestialBody

	OrbitColor colorful.Color
	HasOrbit   bool
}

// newBody builds a body from its spec; parent linking is done by the registry
func newBody(spec BodySpec) *CelestialBody {
	b := &CelestialBody{
		ID:           spec.ID,
		Name:         spec.Name,
		Radius:       spec.Radius,
		OrbitRadius:  spec.OrbitRadius,
		Speed:        spec.Speed,
		Eccentricity: spec.Eccentricity,
		Inclination:  spec.Inclination,
		ZoomDistance: spec.ZoomDistance,
		SpinSpeed:    spec.SpinSpeed,
		Texture:      spec.Texture,
		Ring:         spec.Ring,
	}
	if spec.OrbitColor != "" {
		if c, err := colorful.Hex(spec.OrbitColor); err == nil {
			b.OrbitColor = c
			b.HasOrbit = true
		}
	}
	return b
}

// CloseUpDistance returns the zoom distance for this body, clamped to the zoom limits
func (b *CelestialBody) CloseUpDistance() float64 {
	d := b.ZoomDistance
	if d <= 0 {
		d = DefaultZoomDistance
	}
	return mgl64.Clamp(d, MinZoomDistance, MaxZoomDistance)
}

// ParentPosition is the centre of this body's orbit
func (b *CelestialBody) ParentPosition() mgl64.Vec3 {
	if b.Parent == nil {
		return mgl64.Vec3{}
	}
	return b.Parent.Position
}

// DefaultBodies is the solar system as shown by the viewer. Parents precede their
// satellites so a single in-order pass can position every body.
var DefaultBodies = []BodySpec{
	{ID: "sun", Name: "Sun", Radius: 5, SpinSpeed: SunSpinSpeed, Texture: "sun.jpg"},
	{ID: "mercury", Name: "Mercury", Radius: 0.5, OrbitRadius: 8, Speed: 0.01, Texture: "mercury.jpg", OrbitColor: "#aaaaaa"},
	{ID: "venus", Name: "Venus", Radius: 0.9, OrbitRadius: 15, Speed: 0.008, Texture: "venus.jpg", OrbitColor: "#0000ff"},
	{ID: "earth", Name: "Earth", Radius: 1, OrbitRadius: 20, Speed: 0.007, Texture: "earth.jpg", OrbitColor: "#00ff00"},
	{ID: "moon", Name: "Moon", Radius: 0.27, OrbitRadius: 2, Speed: 0.05, Parent: "earth", ZoomDistance: MinZoomDistance, Texture: "moon.jpg", OrbitColor: "#ffffff"},
	{ID: "mars", Name: "Mars", Radius: 0.8, OrbitRadius: 30, Speed: 0.006, Texture: "mars.jpg", OrbitColor: "#ff0000"},
	{ID: "jupiter", Name: "Jupiter", Radius: 2, OrbitRadius: 40, Speed: 0.004, Texture: "jupiter.jpg", OrbitColor: "#ffa500"},
	{ID: "saturn", Name: "Saturn", Radius: 1.8, OrbitRadius: 50, Speed: 0.003, Texture: "saturn.jpg", OrbitColor: "#ffff00",
		Ring: &RingSpec{Inner: 2.5, Outer: 3.5, Texture: "rings.png"}},
	{ID: "uranus", Name: "Uranus", Radius: 1.2, OrbitRadius: 60, Speed: 0.002, Texture: "uranus.jpg", OrbitColor: "#00ffff"},
	{ID: "neptune", Name: "Neptune", Radius: 1.3, OrbitRadius: 70, Speed: 0.001, Texture: "neptune.jpg", OrbitColor: "#0000ff"},
	{ID: "pluto", Name: "Pluto", Radius: 0.18, OrbitRadius: 80, Speed: 0.0008, Texture: "pluto.jpg", OrbitColor: "#aaaaaa"},
	{ID: "ceres", Name: "Ceres", Radius: 0.15, OrbitRadius: 35, Speed: 0.0015, Texture: "ceres.jpg", OrbitColor: "#aaaaaa"},
	{ID: "eris", Name: "Eris", Radius: 0.2, OrbitRadius: 90, Speed: 0.0006, Texture: "eris.jpg", OrbitColor: "#aaaaaa"},
}
