package solar

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// Scene constants
const (
	// Camera zoom limits shared by the director and the orbit rig
	MinZoomDistance = 5.0
	MaxZoomDistance = 100.0

	// Close-up distance from the origin used when a body has no override
	DefaultZoomDistance = 10.0

	// Vertical offset of a label above its body
	LabelOffset = 6.0

	// Segments used to build orbit ring polylines
	OrbitSegments = 100

	// Camera projection
	CameraFov  = 75.0 // degrees, vertical
	CameraNear = 0.1
	CameraFar  = 1000.0

	// Orbit rig damping (fraction of pending motion applied per reference frame)
	DampingFactor = 0.1

	// Fraction of the remaining follow offset closed per reference frame while locked
	FollowFactor = 0.1

	// Self-rotation of the Sun per reference frame, independent of time scale
	SunSpinSpeed = 0.01
)

// Timing
const (
	// Speeds in the body table are radians per reference frame (a 60 Hz display refresh)
	ReferenceFrame = time.Second / 60

	// Duration of a zoom transition
	ZoomDuration = 800 * time.Millisecond

	// Two selects closer than this are treated as a double click and the second is ignored
	DoubleSelectThreshold = 300 * time.Millisecond

	// Server frame loop
	FPS            = 30
	UpdateInterval = time.Second / FPS
)

// Default overview pose
var (
	DefaultCameraPosition = mgl64.Vec3{0, 50, 100}
	DefaultCameraTarget   = mgl64.Vec3{0, 0, 0}
	WorldUp               = mgl64.Vec3{0, 1, 0}
)

// CameraMode is the Camera Director state
type CameraMode int

const (
	ModeFree CameraMode = iota
	ModeZooming
	ModeLocked
)

func (m CameraMode) String() string {
	switch m {
	case ModeFree:
		return "free"
	case ModeZooming:
		return "zooming"
	case ModeLocked:
		return "locked"
	}
	return "unknown"
}

// MarshalText lets modes travel as strings in frame snapshots
func (m CameraMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Vec is a JSON-friendly 3D vector used in snapshots sent to render surfaces
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// ToVec converts an mgl64 vector for the wire
func ToVec(v mgl64.Vec3) Vec {
	return Vec{X: v.X(), Y: v.Y(), Z: v.Z()}
}
