package server

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Handler data structures

// SelectData is a click or tap. X/Y are normalized device coordinates; PX/PY
// are viewport pixels and take precedence when present.
type SelectData struct {
	X  *float64 `json:"x,omitempty"`
	Y  *float64 `json:"y,omitempty"`
	PX *float64 `json:"px,omitempty"`
	PY *float64 `json:"py,omitempty"`
}

// SpeedData sets the orbit time scale
type SpeedData struct {
	Value float64 `json:"value"`
}

// ToggleData flips "labels" or "orbits"
type ToggleData struct {
	What string `json:"what"`
}

// DragData is a pointer move while dragging, in pixels
type DragData struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// ZoomData is a wheel step (sign of Delta) or an absolute camera distance
type ZoomData struct {
	Delta    float64  `json:"delta"`
	Distance *float64 `json:"distance,omitempty"`
}

// ResizeData reports the render surface size
type ResizeData struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// WeightData asks the weight calculator for the displayed body
type WeightData struct {
	EarthWeight float64 `json:"earthWeight"`
}

// WeightReply answers a weight request
type WeightReply struct {
	BodyID      string  `json:"bodyId"`
	EarthWeight float64 `json:"earthWeight"`
	Weight      float64 `json:"weight"`
}

// ErrorData is sent with MsgTypeError
type ErrorData struct {
	Message string `json:"message"`
	Request string `json:"request,omitempty"`
}

// Utility functions

const (
	maxTimeScale   = 100.0
	maxDragPixels  = 10000.0
	maxViewport    = 16384
	maxEarthWeight = 1e6
)

func finite(v ...float64) bool {
	for _, f := range v {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// validateNDC accepts a point inside the [-1, 1] square
func validateNDC(x, y float64) (mgl64.Vec2, bool) {
	if !finite(x, y) || x < -1 || x > 1 || y < -1 || y > 1 {
		return mgl64.Vec2{}, false
	}
	return mgl64.Vec2{x, y}, true
}

// validatePixels accepts a pointer position inside a w x h viewport
func validatePixels(px, py float64, w, h int) bool {
	return finite(px, py) && px >= 0 && py >= 0 && px <= float64(w) && py <= float64(h)
}

// validateTimeScale bounds the speed slider; zero pauses, negative reverses
func validateTimeScale(v float64) bool {
	return finite(v) && math.Abs(v) <= maxTimeScale
}

// clampDrag limits a single pointer move
func clampDrag(d DragData) (DragData, bool) {
	if !finite(d.DX, d.DY) {
		return DragData{}, false
	}
	d.DX = math.Max(-maxDragPixels, math.Min(maxDragPixels, d.DX))
	d.DY = math.Max(-maxDragPixels, math.Min(maxDragPixels, d.DY))
	return d, true
}

func validateViewport(w, h int) bool {
	return w > 0 && h > 0 && w <= maxViewport && h <= maxViewport
}

func validateEarthWeight(w float64) bool {
	return finite(w) && w >= 0 && w <= maxEarthWeight
}
