package server

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lab1702/solar-web/config"
	"github.com/lab1702/solar-web/solar"
)

func newTestServer() *Server {
	return NewServer(Options{FrameRate: 30}, nil)
}

// --- Connect ---

func TestAddClientSendsSceneLayout(t *testing.T) {
	s := newTestServer()
	c := newTestClient(s, 1)

	msgs := drain(c)
	if len(msgs) != 1 || msgs[0].Type != MsgTypeScene {
		t.Fatalf("Expected one scene message, got %v", msgs)
	}
	layout, ok := msgs[0].Data.(solar.Layout)
	if !ok {
		t.Fatalf("Expected a layout, got %T", msgs[0].Data)
	}
	if len(layout.Bodies) != len(solar.DefaultBodies) {
		t.Errorf("Expected %d bodies, got %d", len(solar.DefaultBodies), len(layout.Bodies))
	}
	if s.Viewers() != 1 {
		t.Errorf("Expected 1 viewer, got %d", s.Viewers())
	}
}

func TestRemoveClientClosesSend(t *testing.T) {
	s := newTestServer()
	c := newTestClient(s, 1)
	s.removeClient(c)
	s.removeClient(c)

	drain(c)
	if _, ok := <-c.send; ok {
		t.Error("Expected the send channel closed")
	}
	if s.Viewers() != 0 {
		t.Errorf("Expected no viewers, got %d", s.Viewers())
	}
}

// --- Select ---

func TestHandleSelectEarthZoomsAndShowsInfo(t *testing.T) {
	s := newTestServer()
	c := newTestClient(s, 1)

	send(t, c, MsgTypeSelect, ndcData(bodyNDC(t, c, "earth")), time.Now())

	if c.session.Director.Mode() != solar.ModeZooming {
		t.Errorf("Expected zooming, got %v", c.session.Director.Mode())
	}
	if c.session.Director.Target().ID != "earth" {
		t.Errorf("Expected target earth, got %s", c.session.Director.Target().ID)
	}
	panel := c.session.Panel.Panel()
	if panel.Fields.Name != "Earth" || panel.WeightCalculator {
		t.Errorf("Expected earth's panel without the calculator, got %+v", panel)
	}
}

func TestHandleSelectPixels(t *testing.T) {
	s := newTestServer()
	c := newTestClient(s, 1)
	send(t, c, MsgTypeResize, ResizeData{Width: 800, Height: 450}, time.Now())

	ndc := bodyNDC(t, c, "mars")
	px := (ndc.X() + 1) / 2 * 800
	py := (1 - ndc.Y()) / 2 * 450
	send(t, c, MsgTypeSelect, SelectData{PX: &px, PY: &py}, time.Now())

	if got := c.session.Panel.Panel().Fields.Gravity; got != "3.71" {
		t.Errorf("Expected mars gravity 3.71, got %q", got)
	}
}

func TestHandleSelectRejectsBadInput(t *testing.T) {
	outside := 1.5
	zero := 0.0
	big := 5000.0
	tests := []struct {
		name string
		data interface{}
	}{
		{"outside ndc", SelectData{X: &outside, Y: &zero}},
		{"missing y", SelectData{X: &zero}},
		{"pixels outside viewport", SelectData{PX: &big, PY: &zero}},
		{"wrong shape", []int{1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer()
			c := newTestClient(s, 1)
			drain(c)

			send(t, c, MsgTypeSelect, tt.data, time.Now())
			if errs := ofType(drain(c), MsgTypeError); len(errs) != 1 {
				t.Errorf("Expected one error reply, got %d", len(errs))
			}
			if c.session.Director.Mode() != solar.ModeFree {
				t.Errorf("Expected the camera untouched, got %v", c.session.Director.Mode())
			}
		})
	}
}

func TestEmptySelectWhileLockedResetsCamera(t *testing.T) {
	s := newTestServer()
	c := newTestClient(s, 1)
	send(t, c, MsgTypeSpeed, SpeedData{Value: 0}, time.Now())
	start := time.Now()

	send(t, c, MsgTypeSelect, ndcData(bodyNDC(t, c, "jupiter")), start)
	for i := 0; i < 100 && c.session.Director.Mode() != solar.ModeLocked; i++ {
		s.tick(16 * time.Millisecond)
	}
	if c.session.Director.Mode() != solar.ModeLocked {
		t.Fatalf("Expected lock on jupiter, got %v", c.session.Director.Mode())
	}

	send(t, c, MsgTypeSelect, ndcData(emptyNDC(t, c)), start.Add(time.Second))
	if c.session.Director.Mode() != solar.ModeFree {
		t.Errorf("Expected free mode, got %v", c.session.Director.Mode())
	}
	if c.session.Camera.Position != solar.DefaultCameraPosition {
		t.Errorf("Expected overview pose, got %v", c.session.Camera.Position)
	}
}

// emptyNDC finds a point on screen that hits no body
func emptyNDC(t *testing.T, c *Client) mgl64.Vec2 {
	t.Helper()
	for x := -0.95; x <= 0.95; x += 0.1 {
		for y := -0.95; y <= 0.95; y += 0.1 {
			p := mgl64.Vec2{x, y}
			if _, hit := solar.Pick(p, c.session.Camera, c.session.Scene.Registry.Bodies()); !hit {
				return p
			}
		}
	}
	t.Fatal("Expected some empty space on screen")
	return mgl64.Vec2{}
}

// --- Speed, toggles, drag, zoom ---

func TestHandleSpeed(t *testing.T) {
	tests := []struct {
		value  float64
		ok     bool
		expect float64
	}{
		{0, true, 0},
		{-2, true, -2},
		{10, true, 10},
		{1000, false, 1},
	}
	for _, tt := range tests {
		s := newTestServer()
		c := newTestClient(s, 1)
		drain(c)
		send(t, c, MsgTypeSpeed, SpeedData{Value: tt.value}, time.Now())

		if c.session.Scene.TimeScale != tt.expect {
			t.Errorf("Expected time scale %v, got %v", tt.expect, c.session.Scene.TimeScale)
		}
		if got := len(ofType(drain(c), MsgTypeError)) == 0; got != tt.ok {
			t.Errorf("Expected accepted=%v for %v", tt.ok, tt.value)
		}
	}
}

func TestHandleToggle(t *testing.T) {
	s := newTestServer()
	c := newTestClient(s, 1)
	drain(c)

	send(t, c, MsgTypeToggle, ToggleData{What: "labels"}, time.Now())
	send(t, c, MsgTypeToggle, ToggleData{What: "orbits"}, time.Now())
	send(t, c, MsgTypeToggle, ToggleData{What: "belt"}, time.Now())

	if c.session.Scene.LabelsVisible || c.session.Scene.OrbitsVisible {
		t.Error("Expected labels and orbits hidden")
	}
	if errs := ofType(drain(c), MsgTypeError); len(errs) != 1 {
		t.Errorf("Expected one error for an unknown toggle, got %d", len(errs))
	}
}

func TestHandleDragRotatesCamera(t *testing.T) {
	s := newTestServer()
	c := newTestClient(s, 1)
	before := c.session.Camera.Position

	send(t, c, MsgTypeDragStart, nil, time.Now())
	send(t, c, MsgTypeDrag, DragData{DX: 200, DY: 0}, time.Now())
	s.tick(16 * time.Millisecond)
	send(t, c, MsgTypeDragEnd, nil, time.Now())

	if c.session.Camera.Position == before {
		t.Error("Expected the drag to move the camera")
	}
	if c.session.Director.Manual() {
		t.Error("Expected manual control released")
	}
}

func TestHandleZoomDistanceIsClamped(t *testing.T) {
	s := newTestServer()
	c := newTestClient(s, 1)

	far := 1000.0
	send(t, c, MsgTypeZoom, ZoomData{Distance: &far}, time.Now())
	s.tick(16 * time.Millisecond)
	if d := c.session.Camera.Distance(); math.Abs(d-solar.MaxZoomDistance) > 1e-9 {
		t.Errorf("Expected distance %v, got %v", solar.MaxZoomDistance, d)
	}

	for i := 0; i < 300; i++ {
		send(t, c, MsgTypeZoom, ZoomData{Delta: -1}, time.Now())
		s.tick(16 * time.Millisecond)
	}
	if d := c.session.Camera.Distance(); d < solar.MinZoomDistance-1e-9 {
		t.Errorf("Expected distance >= %v, got %v", solar.MinZoomDistance, d)
	}
}

func TestHandleResize(t *testing.T) {
	s := newTestServer()
	c := newTestClient(s, 1)
	drain(c)

	send(t, c, MsgTypeResize, ResizeData{Width: 1024, Height: 512}, time.Now())
	if w, h := c.session.Viewport(); w != 1024 || h != 512 {
		t.Errorf("Expected 1024x512, got %dx%d", w, h)
	}
	send(t, c, MsgTypeResize, ResizeData{Width: -1, Height: 512}, time.Now())
	if errs := ofType(drain(c), MsgTypeError); len(errs) != 1 {
		t.Errorf("Expected one error for a bad size, got %d", len(errs))
	}
}

// --- Weight ---

func TestHandleWeight(t *testing.T) {
	s := newTestServer()
	c := newTestClient(s, 1)
	drain(c)

	send(t, c, MsgTypeWeight, WeightData{EarthWeight: 70}, time.Now())
	if errs := ofType(drain(c), MsgTypeError); len(errs) != 1 {
		t.Fatalf("Expected an error with the panel hidden, got %d", len(errs))
	}

	send(t, c, MsgTypeSelect, ndcData(bodyNDC(t, c, "mars")), time.Now())
	send(t, c, MsgTypeWeight, WeightData{EarthWeight: 70}, time.Now())
	replies := ofType(drain(c), MsgTypeWeight)
	if len(replies) != 1 {
		t.Fatalf("Expected one weight reply, got %d", len(replies))
	}
	reply := replies[0].Data.(WeightReply)
	if reply.BodyID != "mars" || math.Abs(reply.Weight-70*3.71/9.81) > 1e-9 {
		t.Errorf("Unexpected reply %+v", reply)
	}

	send(t, c, MsgTypeWeight, WeightData{EarthWeight: -5}, time.Now())
	if errs := ofType(drain(c), MsgTypeError); len(errs) != 1 {
		t.Errorf("Expected an error for a negative weight, got %d", len(errs))
	}
}

func TestUnknownMessageType(t *testing.T) {
	s := newTestServer()
	c := newTestClient(s, 1)
	drain(c)

	send(t, c, "warp", nil, time.Now())
	errs := ofType(drain(c), MsgTypeError)
	if len(errs) != 1 || errs[0].Data.(ErrorData).Request != "warp" {
		t.Errorf("Expected an error naming the request, got %v", errs)
	}
}

// --- Frame loop ---

func TestTickAppliesQueuedInputsThenRenders(t *testing.T) {
	s := newTestServer()
	c := newTestClient(s, 1)
	drain(c)

	s.inputs <- input{client: c, msg: ClientMessage{Type: MsgTypeSpeed, Data: rawJSON(t, SpeedData{Value: 0})}, at: time.Now()}
	s.inputs <- input{client: c, err: errors.New("bad json")}
	s.tick(16 * time.Millisecond)

	msgs := drain(c)
	frames := ofType(msgs, MsgTypeFrame)
	if len(frames) != 1 {
		t.Fatalf("Expected one frame, got %d", len(frames))
	}
	if f := frames[0].Data.(*solar.Frame); f.TimeScale != 0 {
		t.Errorf("Expected the queued speed change in the same frame, got %v", f.TimeScale)
	}
	if len(ofType(msgs, MsgTypeError)) != 1 {
		t.Error("Expected an error for the malformed message")
	}
	if s.Frame() != 1 {
		t.Errorf("Expected frame counter 1, got %d", s.Frame())
	}
}

func TestInputsFromDepartedClientsAreDropped(t *testing.T) {
	s := newTestServer()
	c := newTestClient(s, 1)
	s.removeClient(c)

	s.inputs <- input{client: c, msg: ClientMessage{Type: MsgTypeSpeed, Data: rawJSON(t, SpeedData{Value: 0})}}
	s.tick(16 * time.Millisecond)

	if c.session.Scene.TimeScale != 1 {
		t.Errorf("Expected the input ignored, got time scale %v", c.session.Scene.TimeScale)
	}
}

func TestCometsJoinExistingAndFutureViewers(t *testing.T) {
	s := newTestServer()
	c := newTestClient(s, 1)
	drain(c)

	comet := solar.BodySpec{ID: "p-2004-r1-mcnaught", Name: "P/2004 R1 (McNaught)", Radius: 0.3, OrbitRadius: 60, Speed: 0.001, Eccentricity: 0.68, Texture: "moon.jpg", OrbitColor: "#88aaff"}
	s.addComets([]solar.BodySpec{comet})
	s.tick(16 * time.Millisecond)

	msgs := drain(c)
	scenes := ofType(msgs, MsgTypeScene)
	if len(scenes) != 1 {
		t.Fatalf("Expected a new scene layout, got %d", len(scenes))
	}
	layout := scenes[0].Data.(solar.Layout)
	if layout.Version != 2 || len(layout.Bodies) != len(solar.DefaultBodies)+1 {
		t.Errorf("Expected version 2 with the comet, got version %d with %d bodies", layout.Version, len(layout.Bodies))
	}
	if msgs[0].Type != MsgTypeScene {
		t.Error("Expected the layout before the frame that uses it")
	}

	late := newTestClient(s, 2)
	if _, ok := late.session.Scene.Registry.Lookup(comet.ID); !ok {
		t.Error("Expected a later viewer to start with the comet")
	}
}

type stubComets struct {
	specs []solar.BodySpec
	err   error
}

func (s stubComets) Load(context.Context) ([]solar.BodySpec, error) {
	return s.specs, s.err
}

func TestLoadComets(t *testing.T) {
	s := newTestServer()
	s.LoadComets(context.Background(), stubComets{specs: []solar.BodySpec{{ID: "c-2013-a1"}}})
	select {
	case specs := <-s.cometFeed:
		if len(specs) != 1 {
			t.Errorf("Expected 1 comet, got %d", len(specs))
		}
	default:
		t.Fatal("Expected comets delivered to the frame loop")
	}

	s.LoadComets(context.Background(), stubComets{err: errors.New("feed down")})
	select {
	case <-s.cometFeed:
		t.Error("Expected nothing delivered on failure")
	default:
	}
}

// --- Throttling and origins ---

func TestInputLimiter(t *testing.T) {
	s := NewServer(Options{Input: config.InputConfig{Enabled: true, EventsPerSecond: 1, BurstSize: 2}}, nil)
	c := &Client{ID: 1, server: s}
	c.limiter = newLimiter(s.input)

	if !c.allow(MsgTypeDrag) || !c.allow(MsgTypeDrag) {
		t.Fatal("Expected the burst to pass")
	}
	if c.allow(MsgTypeDrag) {
		t.Error("Expected the third drag throttled")
	}
	if !c.allow(MsgTypeDragEnd) || !c.allow(MsgTypeResize) {
		t.Error("Expected drag end and resize never throttled")
	}
}

func TestThrottledTypesKeepMetricsBounded(t *testing.T) {
	s := NewServer(Options{Input: config.InputConfig{Enabled: true, EventsPerSecond: 0.001, BurstSize: 1}}, nil)
	c := &Client{ID: 1, server: s}
	c.limiter = newLimiter(s.input)

	if !c.admit("bogus-0") {
		t.Fatal("Expected the burst to pass")
	}
	for i := 1; i < 50; i++ {
		if c.admit(fmt.Sprintf("bogus-%d", i)) {
			t.Fatalf("Expected message %d throttled", i)
		}
	}
	if c.admit(MsgTypeDrag) {
		t.Error("Expected the drag throttled")
	}

	c.handleMessage(ClientMessage{Type: "bogus-handled"}, time.Now())

	rec := get(t, newTestRoutes(s), "/metrics", nil)
	body := rec.Body.String()
	if strings.Contains(body, "bogus") {
		t.Errorf("Expected no client supplied types in the metrics, got:\n%s", body)
	}
	for _, series := range []string{
		`solar_inputs_total{result="throttled",type="unknown"} 49`,
		`solar_inputs_total{result="throttled",type="drag"} 1`,
		`solar_inputs_total{result="unknown",type="unknown"} 1`,
	} {
		if !strings.Contains(body, series) {
			t.Errorf("Expected %s in the metrics", series)
		}
	}
}

func TestIsValidOrigin(t *testing.T) {
	s := NewServer(Options{AllowedOrigins: []string{"https://viewer.example.com"}}, nil)
	tests := []struct {
		origin string
		want   bool
	}{
		{"", true},
		{"http://example.test", true},
		{"http://localhost:3000", true},
		{"http://127.0.0.1", true},
		{"https://viewer.example.com", true},
		{"https://evil.example.com", false},
		{"://bad", false},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", "http://example.test/ws", nil)
		if tt.origin != "" {
			r.Header.Set("Origin", tt.origin)
		}
		if got := s.isValidOrigin(r); got != tt.want {
			t.Errorf("Expected origin %q allowed=%v, got %v", tt.origin, tt.want, got)
		}
	}
}
