package solar

import (
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"
)

// BeltSeed fixes the layout of the decorative asteroid belt
const BeltSeed = 1

// Scene is the per-viewer world: bodies, their labels and rings, the belt, the
// visibility toggles and the time scale.
type Scene struct {
	Registry      *Registry
	Belt          []mgl64.Vec3
	TimeScale     float64
	LabelsVisible bool
	OrbitsVisible bool

	pending []BodySpec
	version int
	log     *slog.Logger
}

// NewScene builds a scene from a body table
func NewScene(specs []BodySpec) (*Scene, error) {
	reg, err := NewRegistry(specs)
	if err != nil {
		return nil, err
	}
	return &Scene{
		Registry:      reg,
		Belt:          AsteroidBelt(BeltSeed),
		TimeScale:     1,
		LabelsVisible: true,
		OrbitsVisible: true,
		version:       1,
		log:           slog.With("component", "scene"),
	}, nil
}

// Enqueue schedules bodies to join the scene at the next frame boundary
func (s *Scene) Enqueue(specs ...BodySpec) {
	s.pending = append(s.pending, specs...)
}

// Pending returns how many bodies wait for the next frame
func (s *Scene) Pending() int {
	return len(s.pending)
}

// Version changes whenever bodies are added, so render surfaces know to reload
// the static layout.
func (s *Scene) Version() int {
	return s.version
}

// mergePending moves queued bodies into the registry. Bad specs are logged and skipped.
func (s *Scene) mergePending() []*CelestialBody {
	if len(s.pending) == 0 {
		return nil
	}
	added := make([]*CelestialBody, 0, len(s.pending))
	for _, spec := range s.pending {
		b, err := s.Registry.Add(spec)
		if err != nil {
			s.log.Warn("Skipping body", "body", spec.ID, "error", err)
			continue
		}
		added = append(added, b)
	}
	s.pending = s.pending[:0]
	if len(added) > 0 {
		s.version++
		s.log.Debug("Bodies merged", "count", len(added), "version", s.version)
	}
	return added
}

// BodyLayout is the static description of a body for a render surface
type BodyLayout struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Radius  float64   `json:"radius"`
	Texture string    `json:"texture"`
	Parent  string    `json:"parent,omitempty"`
	Ring    *RingSpec `json:"ring,omitempty"`
}

// OrbitLayout is a ring polyline relative to its centre body (empty = origin)
type OrbitLayout struct {
	BodyID   string `json:"bodyId"`
	CenterID string `json:"centerId,omitempty"`
	Color    string `json:"color"`
	Points   []Vec  `json:"points"`
}

// Layout is everything a render surface builds once per scene version
type Layout struct {
	Version   int           `json:"version"`
	Bodies    []BodyLayout  `json:"bodies"`
	Orbits    []OrbitLayout `json:"orbits"`
	Belt      []Vec         `json:"belt"`
	RockSize  float64       `json:"rockSize"`
	LabelLift float64       `json:"labelLift"`
}

// Layout snapshots the static geometry
func (s *Scene) Layout() Layout {
	l := Layout{
		Version:   s.version,
		Bodies:    make([]BodyLayout, 0, s.Registry.Len()),
		Orbits:    make([]OrbitLayout, 0, len(s.Registry.Orbits())),
		Belt:      make([]Vec, 0, len(s.Belt)),
		RockSize:  BeltRockRadius,
		LabelLift: LabelOffset,
	}
	for _, b := range s.Registry.Bodies() {
		bl := BodyLayout{ID: b.ID, Name: b.Name, Radius: b.Radius, Texture: b.Texture, Ring: b.Ring}
		if b.Parent != nil {
			bl.Parent = b.Parent.ID
		}
		l.Bodies = append(l.Bodies, bl)
	}
	for _, o := range s.Registry.Orbits() {
		ol := OrbitLayout{BodyID: o.BodyID, CenterID: o.CenterID, Color: o.Color.Hex(), Points: make([]Vec, len(o.Points))}
		for i, p := range o.Points {
			ol.Points[i] = ToVec(p)
		}
		l.Orbits = append(l.Orbits, ol)
	}
	for _, r := range s.Belt {
		l.Belt = append(l.Belt, ToVec(r))
	}
	return l
}
