package solar

import (
	"time"
)

// BodyState is a body's per-frame pose
type BodyState struct {
	ID       string  `json:"id"`
	Position Vec     `json:"position"`
	Spin     float64 `json:"spin"`
}

// LabelState is a label's per-frame anchor
type LabelState struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Position Vec    `json:"position"`
}

// CameraState is the camera pose and director state of a frame
type CameraState struct {
	Position Vec        `json:"position"`
	Target   Vec        `json:"target"`
	Fov      float64    `json:"fov"`
	Mode     CameraMode `json:"mode"`
	TargetID string     `json:"targetId,omitempty"`
	Progress float64    `json:"progress"`
	Manual   bool       `json:"manual"`
}

// Frame is what a render surface needs to draw one refresh
type Frame struct {
	Number        int64        `json:"frame"`
	SceneVersion  int          `json:"sceneVersion"`
	TimeScale     float64      `json:"timeScale"`
	LabelsVisible bool         `json:"labelsVisible"`
	OrbitsVisible bool         `json:"orbitsVisible"`
	Bodies        []BodyState  `json:"bodies"`
	Labels        []LabelState `json:"labels"`
	Camera        CameraState  `json:"camera"`
	Panel         Panel        `json:"panel"`
}

// Renderer draws frames. Each frame is freshly allocated and may be retained.
type Renderer interface {
	Render(f *Frame)
}

// RendererFunc adapts a function to Renderer
type RendererFunc func(f *Frame)

func (fn RendererFunc) Render(f *Frame) { fn(f) }

// FrameDriver runs one display refresh of a session
type FrameDriver struct {
	scene    *Scene
	director *CameraDirector
	controls *OrbitControls
	panel    *InfoPanel
	renderer Renderer
	number   int64
}

// NewFrameDriver wires a driver; renderer may be nil
func NewFrameDriver(scene *Scene, director *CameraDirector, panel *InfoPanel, renderer Renderer) *FrameDriver {
	return &FrameDriver{
		scene:    scene,
		director: director,
		controls: director.Controls(),
		panel:    panel,
		renderer: renderer,
	}
}

// Number is the count of frames driven so far
func (f *FrameDriver) Number() int64 {
	return f.number
}

// Tick advances the scene by the measured frame time and renders it. The order is
// fixed: orbits, positions and labels, self-rotation, camera, render, orbit rig.
func (f *FrameDriver) Tick(elapsed time.Duration) *Frame {
	if elapsed < 0 {
		elapsed = 0
	}
	f.number++
	f.scene.mergePending()

	frames := float64(elapsed) / float64(ReferenceFrame)
	bodies := f.scene.Registry.Bodies()

	// 1. orbital angles, scaled by the time scale read once for the frame
	dtScaled := f.scene.TimeScale * frames
	for _, b := range bodies {
		Advance(b, dtScaled)
	}

	// 2. positions, then labels
	Reposition(bodies)
	for _, l := range f.scene.Registry.Labels() {
		l.Update()
	}

	// 3. self-rotation
	for _, b := range bodies {
		if b.SpinSpeed != 0 {
			b.Spin = WrapAngle(b.Spin + b.SpinSpeed*frames)
		}
	}

	// 4. camera
	f.director.Tick(elapsed)

	// 5. render
	frame := f.snapshot()
	if f.renderer != nil {
		f.renderer.Render(frame)
	}

	// 6. orbit rig
	if f.director.ControlsActive() {
		f.controls.Update(f.director.Camera(), elapsed)
	}
	return frame
}

func (f *FrameDriver) snapshot() *Frame {
	bodies := f.scene.Registry.Bodies()
	labels := f.scene.Registry.Labels()
	cam := f.director.Camera()

	frame := &Frame{
		Number:        f.number,
		SceneVersion:  f.scene.Version(),
		TimeScale:     f.scene.TimeScale,
		LabelsVisible: f.scene.LabelsVisible,
		OrbitsVisible: f.scene.OrbitsVisible,
		Bodies:        make([]BodyState, len(bodies)),
		Labels:        make([]LabelState, len(labels)),
		Camera: CameraState{
			Position: ToVec(cam.Position),
			Target:   ToVec(cam.Target),
			Fov:      cam.Fov,
			Mode:     f.director.Mode(),
			Progress: f.director.Progress(),
			Manual:   f.director.Manual(),
		},
		Panel: f.panel.Panel(),
	}
	if t := f.director.Target(); t != nil {
		frame.Camera.TargetID = t.ID
	}
	for i, b := range bodies {
		frame.Bodies[i] = BodyState{ID: b.ID, Position: ToVec(b.Position), Spin: b.Spin}
	}
	for i, l := range labels {
		frame.Labels[i] = LabelState{ID: l.Body.ID, Text: l.Text, Position: ToVec(l.Position)}
	}
	return frame
}
