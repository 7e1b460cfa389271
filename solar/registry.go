package solar

import (
	"github.com/lab1702/solar-web/apperr"
)

// Registry holds every body of a scene in iteration order together with the
// label and orbit ring materialised for each of them.
type Registry struct {
	bodies []*CelestialBody
	byID   map[string]*CelestialBody
	labels []*Label
	orbits []*OrbitVisual
}

// NewRegistry builds one body per spec, in order
func NewRegistry(specs []BodySpec) (*Registry, error) {
	r := &Registry{
		bodies: make([]*CelestialBody, 0, len(specs)),
		byID:   make(map[string]*CelestialBody, len(specs)),
	}
	for _, spec := range specs {
		if _, err := r.Add(spec); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// MustRegistry is NewRegistry for static tables known to be valid
func MustRegistry(specs []BodySpec) *Registry {
	r, err := NewRegistry(specs)
	if err != nil {
		panic(err)
	}
	return r
}

// Add appends a body. The parent, if any, must already be registered.
func (r *Registry) Add(spec BodySpec) (*CelestialBody, error) {
	if spec.ID == "" {
		return nil, apperr.Validationf("body has no id")
	}
	if _, exists := r.byID[spec.ID]; exists {
		return nil, apperr.Validationf("body %q already registered", spec.ID)
	}

	b := newBody(spec)
	if spec.Parent != "" {
		parent, ok := r.byID[spec.Parent]
		if !ok {
			return nil, apperr.Validationf("body %q names unknown parent %q", spec.ID, spec.Parent)
		}
		b.Parent = parent
	}
	b.Position = Position(b)

	r.bodies = append(r.bodies, b)
	r.byID[b.ID] = b
	r.labels = append(r.labels, newLabel(b))
	if b.HasOrbit {
		r.orbits = append(r.orbits, newOrbitVisual(b))
	}
	return b, nil
}

// Bodies returns the bodies in registration order. Parents always come before
// their satellites.
func (r *Registry) Bodies() []*CelestialBody {
	return r.bodies
}

// Lookup finds a body by id
func (r *Registry) Lookup(id string) (*CelestialBody, bool) {
	b, ok := r.byID[id]
	return b, ok
}

// Labels returns one label per body, in body order
func (r *Registry) Labels() []*Label {
	return r.labels
}

// Orbits returns the orbit rings
func (r *Registry) Orbits() []*OrbitVisual {
	return r.orbits
}

// Len returns the number of bodies
func (r *Registry) Len() int {
	return len(r.bodies)
}
