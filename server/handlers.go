package server

import (
	"encoding/json"
	"time"

	"github.com/lab1702/solar-web/solar"
)

// Handler results reported to metrics and the input debug log
const (
	resultOK        = "ok"
	resultInvalid   = "invalid"
	resultIgnored   = "ignored"
	resultThrottled = "throttled"
	resultUnknown   = "unknown"
)

// metricType bounds a client supplied message type to the known set so metric
// labels cannot grow with whatever a viewer sends.
func metricType(msgType string) string {
	switch msgType {
	case MsgTypeSelect, MsgTypeSpeed, MsgTypeToggle, MsgTypeDragStart, MsgTypeDrag,
		MsgTypeDragEnd, MsgTypeZoom, MsgTypeResize, MsgTypeWeight:
		return msgType
	}
	return resultUnknown
}

// handleMessage applies one viewer message to the client's session. It runs on
// the frame loop goroutine.
func (c *Client) handleMessage(msg ClientMessage, at time.Time) {
	// Recover from any panic to keep the frame loop alive
	defer func() {
		if r := recover(); r != nil {
			c.server.log.Error("Panic in handleMessage", "client", c.ID, "type", msg.Type, "panic", r)
		}
	}()

	var result string
	switch msg.Type {
	case MsgTypeSelect:
		result = c.handleSelect(msg.Data, at)
	case MsgTypeSpeed:
		result = c.handleSpeed(msg.Data)
	case MsgTypeToggle:
		result = c.handleToggle(msg.Data)
	case MsgTypeDragStart:
		c.session.BeginDrag()
		result = resultOK
	case MsgTypeDrag:
		result = c.handleDrag(msg.Data)
	case MsgTypeDragEnd:
		c.session.EndDrag()
		result = resultOK
	case MsgTypeZoom:
		result = c.handleZoom(msg.Data)
	case MsgTypeResize:
		result = c.handleResize(msg.Data)
	case MsgTypeWeight:
		result = c.handleWeight(msg.Data)
	default:
		c.sendError(msg.Type, "unknown message type")
		result = resultUnknown
	}

	label := metricType(msg.Type)
	c.server.metrics.RecordInput(label, result)
	logInputDecision(c.ID, label, result)
}

func (c *Client) handleSelect(data json.RawMessage, at time.Time) string {
	var selectData SelectData
	if err := json.Unmarshal(data, &selectData); err != nil {
		c.sendError(MsgTypeSelect, "invalid select payload")
		return resultInvalid
	}

	var res solar.SelectResult
	switch {
	case selectData.PX != nil && selectData.PY != nil:
		w, h := c.session.Viewport()
		if !validatePixels(*selectData.PX, *selectData.PY, w, h) {
			c.sendError(MsgTypeSelect, "pointer outside the viewport")
			return resultInvalid
		}
		res = c.session.SelectPixels(*selectData.PX, *selectData.PY, at)
	case selectData.X != nil && selectData.Y != nil:
		ndc, ok := validateNDC(*selectData.X, *selectData.Y)
		if !ok {
			c.sendError(MsgTypeSelect, "coordinates must lie in [-1, 1]")
			return resultInvalid
		}
		res = c.session.Select(ndc, at)
	default:
		c.sendError(MsgTypeSelect, "select needs x/y or px/py")
		return resultInvalid
	}

	c.server.metrics.RecordSelect(res.Outcome.String())
	if res.Body != nil {
		c.server.log.Debug("Body selected", "client", c.ID, "body", res.Body.ID, "zoomed", res.Zoomed)
	}
	return res.Outcome.String()
}

func (c *Client) handleSpeed(data json.RawMessage) string {
	var speedData SpeedData
	if err := json.Unmarshal(data, &speedData); err != nil || !validateTimeScale(speedData.Value) {
		c.sendError(MsgTypeSpeed, "time scale must be a finite number within ±100")
		return resultInvalid
	}
	c.session.SetTimeScale(speedData.Value)
	return resultOK
}

func (c *Client) handleToggle(data json.RawMessage) string {
	var toggleData ToggleData
	if err := json.Unmarshal(data, &toggleData); err != nil {
		c.sendError(MsgTypeToggle, "invalid toggle payload")
		return resultInvalid
	}
	switch toggleData.What {
	case "labels":
		c.session.ToggleLabels()
	case "orbits":
		c.session.ToggleOrbits()
	default:
		c.sendError(MsgTypeToggle, "toggle must be labels or orbits")
		return resultInvalid
	}
	return resultOK
}

func (c *Client) handleDrag(data json.RawMessage) string {
	var dragData DragData
	if err := json.Unmarshal(data, &dragData); err != nil {
		return resultInvalid
	}
	dragData, ok := clampDrag(dragData)
	if !ok {
		return resultInvalid
	}
	if !c.session.Drag(dragData.DX, dragData.DY) {
		return resultIgnored
	}
	return resultOK
}

func (c *Client) handleZoom(data json.RawMessage) string {
	var zoomData ZoomData
	if err := json.Unmarshal(data, &zoomData); err != nil {
		return resultInvalid
	}
	if zoomData.Distance != nil {
		if !finite(*zoomData.Distance) {
			return resultInvalid
		}
		if !c.session.RequestDistance(*zoomData.Distance) {
			return resultIgnored
		}
		return resultOK
	}
	if !finite(zoomData.Delta) {
		return resultInvalid
	}
	if zoomData.Delta == 0 {
		return resultIgnored
	}
	if !c.session.Zoom(zoomData.Delta) {
		return resultIgnored
	}
	return resultOK
}

func (c *Client) handleResize(data json.RawMessage) string {
	var resizeData ResizeData
	if err := json.Unmarshal(data, &resizeData); err != nil || !validateViewport(resizeData.Width, resizeData.Height) {
		c.sendError(MsgTypeResize, "invalid viewport size")
		return resultInvalid
	}
	c.session.Resize(resizeData.Width, resizeData.Height)
	return resultOK
}

func (c *Client) handleWeight(data json.RawMessage) string {
	var weightData WeightData
	if err := json.Unmarshal(data, &weightData); err != nil || !validateEarthWeight(weightData.EarthWeight) {
		c.sendError(MsgTypeWeight, "earth weight must be a non-negative number")
		return resultInvalid
	}
	weight, ok := c.session.Weight(weightData.EarthWeight)
	if !ok {
		c.sendError(MsgTypeWeight, "weight calculator is not shown")
		return resultIgnored
	}
	c.trySend(ServerMessage{
		Type: MsgTypeWeight,
		Data: WeightReply{
			BodyID:      c.session.Panel.Panel().BodyID,
			EarthWeight: weightData.EarthWeight,
			Weight:      weight,
		},
	})
	return resultOK
}
