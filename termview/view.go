// Package termview draws a local solar system session in a terminal
package termview

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/lab1702/solar-web/solar"
	"github.com/lucasb-eyer/go-colorful"
)

// Terminal cells are roughly twice as tall as they are wide; the session sees a
// viewport of cols x rows*cellAspect so the projection is not squashed.
const cellAspect = 2

const (
	speedStep     = 0.5
	maxSpeed      = 100.0
	defaultWeight = 70.0
	sunGlyph      = '@'
	rockGlyph     = '.'
	orbitGlyph    = '·'
)

var (
	statusStyle = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorSilver)
	panelStyle  = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy)
	labelStyle  = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	rockStyle   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	sunStyle    = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
)

// View owns a session and renders it onto a tcell screen. All methods except
// AddComets run on the goroutine that calls Run.
type View struct {
	screen  tcell.Screen
	session *solar.Session
	comets  chan []solar.BodySpec
	log     *slog.Logger

	frame       *solar.Frame
	glyphs      map[[2]int]string
	resumeSpeed float64
	// buttons held at the last mouse event; tcell repeats them on motion
	buttons tcell.ButtonMask
	// EarthWeight feeds the weight calculator line of the info panel
	EarthWeight float64
}

// New builds a view over an initialised screen
func New(screen tcell.Screen, specs []solar.BodySpec) (*View, error) {
	scene, err := solar.NewScene(specs)
	if err != nil {
		return nil, err
	}
	v := &View{
		screen:      screen,
		glyphs:      make(map[[2]int]string),
		comets:      make(chan []solar.BodySpec, 1),
		log:         slog.With("component", "termview"),
		resumeSpeed: 1,
		EarthWeight: defaultWeight,
	}
	v.session = solar.NewSession(scene, solar.RendererFunc(v.draw))
	v.resize()
	return v, nil
}

// Session exposes the underlying session
func (v *View) Session() *solar.Session {
	return v.session
}

// Frame returns the last frame drawn
func (v *View) Frame() *solar.Frame {
	return v.frame
}

// AddComets hands comets to the view; they join at the next frame. Safe from any goroutine.
func (v *View) AddComets(specs []solar.BodySpec) {
	select {
	case v.comets <- specs:
	default:
		v.log.Warn("Comets already pending, dropping batch", "count", len(specs))
	}
}

// Run drives frames and input until ctx ends or the user quits
func (v *View) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(solar.UpdateInterval)
	defer ticker.Stop()
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-events:
			if !v.HandleEvent(ev, time.Now()) {
				return nil
			}

		case specs := <-v.comets:
			v.session.Scene.Enqueue(specs...)

		case now := <-ticker.C:
			v.session.Tick(now.Sub(last))
			last = now
		}
	}
}

// HandleEvent applies one terminal event. It returns false when the user quits.
func (v *View) HandleEvent(ev tcell.Event, now time.Time) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return v.Key(ev.Key(), ev.Rune())

	case *tcell.EventMouse:
		x, y := ev.Position()
		buttons := ev.Buttons()
		pressed := buttons &^ v.buttons
		v.buttons = buttons
		switch {
		case pressed&tcell.Button1 != 0:
			v.Click(x, y, now)
		case buttons&tcell.WheelUp != 0:
			v.session.Zoom(-1)
		case buttons&tcell.WheelDown != 0:
			v.session.Zoom(1)
		}

	case *tcell.EventResize:
		v.resize()
		v.screen.Sync()
	}
	return true
}

// Key handles a key press. It returns false on quit.
func (v *View) Key(key tcell.Key, r rune) bool {
	switch key {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyLeft:
		v.session.Drag(-20, 0)
	case tcell.KeyRight:
		v.session.Drag(20, 0)
	case tcell.KeyUp:
		v.session.Drag(0, -10)
	case tcell.KeyDown:
		v.session.Drag(0, 10)
	case tcell.KeyPgUp:
		v.session.Zoom(-1)
	case tcell.KeyPgDn:
		v.session.Zoom(1)
	case tcell.KeyRune:
		return v.handleRune(r)
	}
	return true
}

func (v *View) handleRune(r rune) bool {
	scene := v.session.Scene
	switch r {
	case 'q', 'Q':
		return false
	case '+', '=':
		v.setSpeed(scene.TimeScale + speedStep)
	case '-', '_':
		v.setSpeed(scene.TimeScale - speedStep)
	case '0':
		v.setSpeed(1)
	case ' ':
		if scene.TimeScale == 0 {
			v.setSpeed(v.resumeSpeed)
		} else {
			v.resumeSpeed = scene.TimeScale
			v.setSpeed(0)
		}
	case 'l', 'L':
		v.session.ToggleLabels()
	case 'o', 'O':
		v.session.ToggleOrbits()
	case 'r', 'R':
		v.session.Director.Reset()
		v.session.Panel.Hide()
	}
	return true
}

func (v *View) setSpeed(s float64) {
	v.session.SetTimeScale(math.Max(-maxSpeed, math.Min(maxSpeed, s)))
}

// Click selects whatever is drawn in the cell at x, y. A body glyph is picked
// through its centre since most bodies are far smaller than a cell.
func (v *View) Click(x, y int, now time.Time) solar.SelectResult {
	var res solar.SelectResult
	if b, ok := v.session.Scene.Registry.Lookup(v.glyphs[[2]int{x, y}]); ok {
		ndc, _ := v.session.Camera.Project(b.Position)
		res = v.session.Select(ndc, now)
	} else {
		res = v.session.SelectPixels(float64(x)+0.5, (float64(y)+0.5)*cellAspect, now)
	}
	if res.Body != nil {
		v.log.Debug("Body selected", "body", res.Body.ID, "outcome", res.Outcome.String())
	}
	return res
}

func (v *View) resize() {
	w, h := v.screen.Size()
	if w <= 0 || h <= 0 {
		return
	}
	v.session.Resize(w, h*cellAspect)
}

// cell maps a world point to a terminal cell
func (v *View) cell(p mgl64.Vec3) (int, int, bool) {
	ndc, ok := v.session.Camera.Project(p)
	if !ok || ndc.X() < -1 || ndc.X() > 1 || ndc.Y() < -1 || ndc.Y() > 1 {
		return 0, 0, false
	}
	w, h := v.screen.Size()
	x := int((ndc.X() + 1) / 2 * float64(w))
	y := int((1 - ndc.Y()) / 2 * float64(h))
	if x >= w {
		x = w - 1
	}
	if y >= h {
		y = h - 1
	}
	return x, y, true
}

func glyphFor(name string) rune {
	for _, r := range strings.ToUpper(name) {
		return r
	}
	return '*'
}

func styleFor(c colorful.Color) tcell.Style {
	r, g, b := c.RGB255()
	return tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(r), int32(g), int32(b)))
}

// draw is the session's render surface
func (v *View) draw(f *solar.Frame) {
	v.frame = f
	clear(v.glyphs)
	v.screen.Clear()
	reg := v.session.Scene.Registry

	for _, rock := range v.session.Scene.Belt {
		if x, y, ok := v.cell(rock); ok {
			v.screen.SetContent(x, y, rockGlyph, nil, rockStyle)
		}
	}

	if f.OrbitsVisible {
		for _, o := range reg.Orbits() {
			center := mgl64.Vec3{}
			if parent, ok := reg.Lookup(o.CenterID); ok {
				center = parent.Position
			}
			style := styleFor(o.Color)
			for _, p := range o.Points {
				if x, y, ok := v.cell(center.Add(p)); ok {
					v.screen.SetContent(x, y, orbitGlyph, nil, style)
				}
			}
		}
	}

	for _, bs := range f.Bodies {
		b, ok := reg.Lookup(bs.ID)
		if !ok {
			continue
		}
		x, y, ok := v.cell(b.Position)
		if !ok {
			continue
		}
		v.glyphs[[2]int{x, y}] = b.ID
		if b.Parent == nil && !b.HasOrbit {
			v.screen.SetContent(x, y, sunGlyph, nil, sunStyle)
			continue
		}
		v.screen.SetContent(x, y, glyphFor(b.Name), nil, styleFor(b.OrbitColor).Bold(true))
	}

	if f.LabelsVisible {
		for _, l := range f.Labels {
			p := mgl64.Vec3{l.Position.X, l.Position.Y, l.Position.Z}
			if x, y, ok := v.cell(p); ok {
				v.text(x-len(l.Text)/2, y, l.Text, labelStyle)
			}
		}
	}

	v.drawPanel(f.Panel)
	v.drawStatus(f)
	v.screen.Show()
}

func (v *View) drawPanel(p solar.Panel) {
	if !p.Visible {
		return
	}
	lines := []string{
		p.Fields.Name,
		"Gravity: " + p.Fields.Gravity + " m/s²",
		"Atmosphere: " + p.Fields.Atmosphere,
		"Type: " + p.Fields.Type,
		"Discovered by: " + p.Fields.Discoverer,
		"Supports life: " + p.Fields.Life,
		"Survivability: " + p.Fields.Survivability,
		p.Fields.Trivia,
	}
	if weight, ok := v.session.Weight(v.EarthWeight); ok {
		lines = append(lines, fmt.Sprintf("%.0f kg on Earth weighs %.1f kg here", v.EarthWeight, weight))
	}
	for i, line := range lines {
		v.text(0, i, " "+line+" ", panelStyle)
	}
}

func (v *View) drawStatus(f *solar.Frame) {
	w, h := v.screen.Size()
	status := fmt.Sprintf(" speed %.1fx | %s | +/- speed  space pause  l labels  o orbits  r reset  q quit", f.TimeScale, f.Camera.Mode)
	if f.Camera.TargetID != "" {
		status = fmt.Sprintf(" speed %.1fx | %s %s | +/- speed  space pause  l labels  o orbits  r reset  q quit", f.TimeScale, f.Camera.Mode, f.Camera.TargetID)
	}
	for x := 0; x < w; x++ {
		v.screen.SetContent(x, h-1, ' ', nil, statusStyle)
	}
	v.text(0, h-1, status, statusStyle)
}

func (v *View) text(x, y int, s string, style tcell.Style) {
	w, _ := v.screen.Size()
	for _, r := range s {
		if x >= w {
			return
		}
		if x >= 0 {
			v.screen.SetContent(x, y, r, nil, style)
		}
		x++
	}
}
