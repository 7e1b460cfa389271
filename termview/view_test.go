package termview

import (
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lab1702/solar-web/solar"
)

func newTestView(t *testing.T) (*View, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("Failed to init screen: %v", err)
	}
	screen.SetSize(120, 40)
	t.Cleanup(screen.Fini)

	v, err := New(screen, solar.DefaultBodies)
	if err != nil {
		t.Fatalf("Failed to build view: %v", err)
	}
	return v, screen
}

// screenText joins the simulated screen into lines
func screenText(screen tcell.SimulationScreen) string {
	cells, w, h := screen.GetContents()
	var sb strings.Builder
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			runes := cells[y*w+x].Runes
			if len(runes) == 0 {
				sb.WriteRune(' ')
				continue
			}
			sb.WriteRune(runes[0])
		}
		sb.WriteRune('\n')
	}
	return sb.String()
}

// glyphOf returns the cell a body was drawn in
func glyphOf(t *testing.T, v *View, id string) (int, int) {
	t.Helper()
	for cell, drawn := range v.glyphs {
		if drawn == id {
			return cell[0], cell[1]
		}
	}
	t.Fatalf("Expected %s drawn on screen", id)
	return 0, 0
}

func TestViewportFollowsScreen(t *testing.T) {
	v, screen := newTestView(t)
	if w, h := v.Session().Viewport(); w != 120 || h != 40*cellAspect {
		t.Errorf("Expected 120x80, got %dx%d", w, h)
	}

	screen.SetSize(100, 30)
	v.HandleEvent(tcell.NewEventResize(100, 30), time.Now())
	if w, h := v.Session().Viewport(); w != 100 || h != 30*cellAspect {
		t.Errorf("Expected 100x60, got %dx%d", w, h)
	}
}

func TestDrawShowsSceneAndStatus(t *testing.T) {
	v, screen := newTestView(t)
	v.Session().Tick(0)

	glyphOf(t, v, "sun")
	text := screenText(screen)
	if !strings.Contains(text, "Eris") {
		t.Error("Expected body labels drawn")
	}
	if !strings.Contains(text, "speed 1.0x | free") {
		t.Errorf("Expected the status line, got:\n%s", text)
	}
	if v.Frame() == nil || v.Frame().Number != 1 {
		t.Error("Expected the first frame kept")
	}
}

func TestLabelToggleHidesNames(t *testing.T) {
	v, screen := newTestView(t)
	v.Key(tcell.KeyRune, 'l')
	v.Session().Tick(0)

	if strings.Contains(screenText(screen), "Eris") {
		t.Error("Expected labels hidden")
	}

	v.Key(tcell.KeyRune, 'o')
	if v.Session().Scene.OrbitsVisible {
		t.Error("Expected orbits hidden")
	}
}

func TestSpeedKeys(t *testing.T) {
	v, _ := newTestView(t)
	scene := v.Session().Scene

	steps := []struct {
		key    rune
		expect float64
	}{
		{'+', 1.5},
		{'-', 1},
		{'-', 0.5},
		{' ', 0},
		{' ', 0.5},
		{'0', 1},
	}
	for _, step := range steps {
		v.Key(tcell.KeyRune, step.key)
		if scene.TimeScale != step.expect {
			t.Errorf("After %q expected time scale %v, got %v", step.key, step.expect, scene.TimeScale)
		}
	}

	for i := 0; i < 500; i++ {
		v.Key(tcell.KeyRune, '+')
	}
	if scene.TimeScale != maxSpeed {
		t.Errorf("Expected speed capped at %v, got %v", maxSpeed, scene.TimeScale)
	}
}

func TestQuitKeys(t *testing.T) {
	v, _ := newTestView(t)
	if v.Key(tcell.KeyEscape, 0) || v.Key(tcell.KeyCtrlC, 0) || v.Key(tcell.KeyRune, 'q') {
		t.Error("Expected quit keys to stop the view")
	}
	if !v.HandleEvent(tcell.NewEventKey(tcell.KeyRune, 'l', tcell.ModNone), time.Now()) {
		t.Error("Expected other keys to keep running")
	}
}

func TestClickSelectsBody(t *testing.T) {
	v, screen := newTestView(t)
	v.Key(tcell.KeyRune, ' ')
	v.Session().Tick(0)

	x, y := glyphOf(t, v, "mars")
	res := v.Click(x, y, time.Now())
	if res.Outcome != solar.SelectPicked || res.Body.ID != "mars" {
		t.Fatalf("Expected mars picked, got %v", res.Outcome)
	}
	if v.Session().Director.Mode() != solar.ModeZooming {
		t.Errorf("Expected zooming, got %v", v.Session().Director.Mode())
	}

	v.Session().Tick(0)
	text := screenText(screen)
	if !strings.Contains(text, "Gravity: 3.71") {
		t.Errorf("Expected the info panel, got:\n%s", text)
	}
	if !strings.Contains(text, "70 kg on Earth weighs 26.5 kg here") {
		t.Error("Expected the weight calculator line")
	}
}

// missCell finds an undrawn cell whose pick ray hits nothing
func missCell(t *testing.T, v *View) (int, int) {
	t.Helper()
	s := v.Session()
	w, h := s.Viewport()
	for y := 0; y < 39; y++ {
		for x := 0; x < 120; x++ {
			if _, drawn := v.glyphs[[2]int{x, y}]; drawn {
				continue
			}
			ndc := solar.NDCFromPixels(float64(x)+0.5, (float64(y)+0.5)*cellAspect, w, h)
			if _, hit := solar.Pick(ndc, s.Camera, s.Scene.Registry.Bodies()); !hit {
				return x, y
			}
		}
	}
	t.Fatal("Expected an empty cell on screen")
	return 0, 0
}

func TestMouseSelectsOnPressOnly(t *testing.T) {
	v, _ := newTestView(t)
	v.Key(tcell.KeyRune, ' ')
	v.Session().Tick(0)

	mx, my := glyphOf(t, v, "mars")
	ex, ey := missCell(t, v)
	start := time.Now()

	v.HandleEvent(tcell.NewEventMouse(ex, ey, tcell.Button1, tcell.ModNone), start)
	v.HandleEvent(tcell.NewEventMouse(mx, my, tcell.Button1, tcell.ModNone), start.Add(time.Second))
	if mode := v.Session().Director.Mode(); mode != solar.ModeFree {
		t.Fatalf("Expected a held button dragged over mars to select nothing, got %v", mode)
	}

	v.HandleEvent(tcell.NewEventMouse(mx, my, tcell.ButtonNone, tcell.ModNone), start.Add(1100*time.Millisecond))
	v.HandleEvent(tcell.NewEventMouse(mx, my, tcell.Button1, tcell.ModNone), start.Add(2*time.Second))
	s := v.Session()
	if s.Director.Mode() != solar.ModeZooming || s.Director.Target() == nil || s.Director.Target().ID != "mars" {
		t.Errorf("Expected a fresh press to zoom to mars, got %v", s.Director.Mode())
	}
}

func TestClickEmptySpaceWhileFree(t *testing.T) {
	v, _ := newTestView(t)
	v.Session().Tick(0)

	for y := 0; y < 5; y++ {
		for x := 110; x < 120; x++ {
			if _, drawn := v.glyphs[[2]int{x, y}]; drawn {
				continue
			}
			res := v.Click(x, y, time.Now().Add(time.Duration(y*10+x)*time.Second))
			if res.Outcome != solar.SelectMissed {
				continue
			}
			if v.Session().Director.Mode() != solar.ModeFree {
				t.Errorf("Expected free mode after a miss, got %v", v.Session().Director.Mode())
			}
			return
		}
	}
	t.Error("Expected a miss somewhere in the top right corner")
}

func TestResetKeyRestoresOverview(t *testing.T) {
	v, _ := newTestView(t)
	v.Key(tcell.KeyRune, ' ')
	v.Session().Tick(0)

	x, y := glyphOf(t, v, "jupiter")
	v.Click(x, y, time.Now())
	for i := 0; i < 60; i++ {
		v.Session().Tick(20 * time.Millisecond)
	}

	v.Key(tcell.KeyRune, 'r')
	s := v.Session()
	if s.Director.Mode() != solar.ModeFree || s.Camera.Position != solar.DefaultCameraPosition {
		t.Errorf("Expected the overview pose, got %v at %v", s.Director.Mode(), s.Camera.Position)
	}
	if s.Panel.Panel().Visible {
		t.Error("Expected the panel hidden")
	}
}

func TestAddCometsQueuesOneBatch(t *testing.T) {
	v, _ := newTestView(t)
	comet := solar.BodySpec{ID: "c-2020-f3-neowise", Name: "C/2020 F3 (NEOWISE)", Radius: 0.3, OrbitRadius: 55}

	v.AddComets([]solar.BodySpec{comet})
	v.AddComets([]solar.BodySpec{comet})
	if len(v.comets) != 1 {
		t.Fatalf("Expected one pending batch, got %d", len(v.comets))
	}

	v.Session().Scene.Enqueue(<-v.comets...)
	v.Session().Tick(0)
	if _, ok := v.Session().Scene.Registry.Lookup(comet.ID); !ok {
		t.Error("Expected the comet in the scene")
	}
}
