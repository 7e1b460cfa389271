package solar

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// Default viewport until the render surface reports its size
const (
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720
)

// SelectOutcome describes what a select gesture did
type SelectOutcome int

const (
	SelectIgnored SelectOutcome = iota // double select or zoom running
	SelectMissed                       // hit nothing while not locked
	SelectPicked                       // hit a body
	SelectReset                        // hit nothing while locked, camera back to overview
)

func (o SelectOutcome) String() string {
	switch o {
	case SelectIgnored:
		return "ignored"
	case SelectMissed:
		return "missed"
	case SelectPicked:
		return "picked"
	case SelectReset:
		return "reset"
	}
	return "unknown"
}

// SelectResult reports the outcome of a select gesture
type SelectResult struct {
	Outcome SelectOutcome
	Body    *CelestialBody
	Zoomed  bool // a zoom transition started
	Info    bool // the info panel was filled
}

// Session is one viewer's scene together with its camera, director, info panel
// and frame driver. All methods must be called from a single goroutine.
type Session struct {
	Scene    *Scene
	Camera   *Camera
	Controls *OrbitControls
	Director *CameraDirector
	Panel    *InfoPanel
	Driver   *FrameDriver

	width, height int
	lastSelect    time.Time
}

// NewSession builds a session over scene; renderer may be nil
func NewSession(scene *Scene, renderer Renderer) *Session {
	cam := NewCamera(float64(DefaultViewportWidth) / float64(DefaultViewportHeight))
	controls := NewOrbitControls()
	director := NewCameraDirector(cam, controls)
	panel := NewInfoPanel(InfoCatalog)
	return &Session{
		Scene:    scene,
		Camera:   cam,
		Controls: controls,
		Director: director,
		Panel:    panel,
		Driver:   NewFrameDriver(scene, director, panel, renderer),
		width:    DefaultViewportWidth,
		height:   DefaultViewportHeight,
	}
}

// Viewport returns the last reported render surface size
func (s *Session) Viewport() (int, int) {
	return s.width, s.height
}

// Resize records a new viewport and recomputes the projection
func (s *Session) Resize(width, height int) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	s.width, s.height = width, height
	s.Camera.Resize(width, height)
	return true
}

// Select handles a click or touch at a normalized device coordinate. A select
// arriving within DoubleSelectThreshold of the previous one is ignored, as is any
// select during a zoom.
func (s *Session) Select(ndc mgl64.Vec2, now time.Time) SelectResult {
	last := s.lastSelect
	s.lastSelect = now
	if !last.IsZero() && now.Sub(last) < DoubleSelectThreshold {
		return SelectResult{Outcome: SelectIgnored}
	}
	if s.Director.Mode() == ModeZooming {
		return SelectResult{Outcome: SelectIgnored}
	}

	body, ok := Pick(ndc, s.Camera, s.Scene.Registry.Bodies())
	if ok {
		info := s.Panel.Show(body.ID)
		zoomed := s.Director.Select(body)
		return SelectResult{Outcome: SelectPicked, Body: body, Zoomed: zoomed, Info: info}
	}

	if s.Director.SelectEmpty() {
		s.Panel.Hide()
		return SelectResult{Outcome: SelectReset}
	}
	return SelectResult{Outcome: SelectMissed}
}

// SelectPixels is Select for a pointer position in viewport pixels
func (s *Session) SelectPixels(x, y float64, now time.Time) SelectResult {
	return s.Select(NDCFromPixels(x, y, s.width, s.height), now)
}

// SetTimeScale changes the orbit speed multiplier. Zero pauses, negative reverses.
func (s *Session) SetTimeScale(v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	s.Scene.TimeScale = v
	return true
}

// ToggleLabels flips label visibility and returns the new value
func (s *Session) ToggleLabels() bool {
	s.Scene.LabelsVisible = !s.Scene.LabelsVisible
	return s.Scene.LabelsVisible
}

// ToggleOrbits flips orbit ring visibility and returns the new value
func (s *Session) ToggleOrbits() bool {
	s.Scene.OrbitsVisible = !s.Scene.OrbitsVisible
	return s.Scene.OrbitsVisible
}

// BeginDrag starts manual camera control
func (s *Session) BeginDrag() {
	s.Director.BeginManual()
}

// Drag queues a rotation for a pointer move in pixels. Rig input is dropped
// while the director owns the camera so it cannot pile up for the next drag.
func (s *Session) Drag(dx, dy float64) bool {
	if !s.Director.ControlsActive() {
		return false
	}
	s.Controls.Drag(dx, dy, s.height)
	return true
}

// EndDrag ends manual camera control
func (s *Session) EndDrag() {
	s.Director.EndManual()
}

// Zoom queues a wheel step. It reports false when the rig is not accepting input.
func (s *Session) Zoom(delta float64) bool {
	if !s.Director.ControlsActive() {
		return false
	}
	s.Controls.Dolly(delta)
	return true
}

// RequestDistance asks the orbit rig for an absolute camera distance
func (s *Session) RequestDistance(d float64) bool {
	if !s.Director.ControlsActive() {
		return false
	}
	s.Controls.RequestDistance(d)
	return true
}

// Weight runs the weight calculator for the displayed body
func (s *Session) Weight(earthWeight float64) (float64, bool) {
	return s.Panel.Weight(earthWeight)
}

// Tick drives one frame
func (s *Session) Tick(elapsed time.Duration) *Frame {
	return s.Driver.Tick(elapsed)
}
