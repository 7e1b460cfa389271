package solar

import (
	"log/slog"
	"strconv"
)

// EarthGravity is the baseline the weight calculator compares against (m/s²)
const EarthGravity = 9.81

// InfoRecord is the reference sheet shown for a body
type InfoRecord struct {
	Name          string  `json:"name"`
	Gravity       float64 `json:"gravity"` // m/s²
	Atmosphere    string  `json:"atmosphere"`
	Type          string  `json:"type"`
	Discoverer    string  `json:"discoverer"`
	SupportsLife  bool    `json:"supportsLife"`
	Survivability string  `json:"survivability"`
	Trivia        string  `json:"trivia"`
}

// InfoCatalog is the read-only reference data, keyed by body id
var InfoCatalog = map[string]InfoRecord{
	"sun": {
		Name: "Sun", Gravity: 273.0, Atmosphere: "Hydrogen, Helium", Type: "Star", Discoverer: "N/A",
		Survivability: "You would burn instantly.",
		Trivia:        "The Sun contains 99.86% of the mass in the Solar System.",
	},
	"mercury": {
		Name: "Mercury", Gravity: 3.7, Atmosphere: "None", Type: "Rocky", Discoverer: "Unknown",
		Survivability: "Your weight would be much lighter.",
		Trivia:        "Mercury is the closest planet to the Sun but not the hottest.",
	},
	"venus": {
		Name: "Venus", Gravity: 8.87, Atmosphere: "Carbon Dioxide", Type: "Rocky", Discoverer: "Unknown",
		Survivability: "Your body would experience crushing pressure.",
		Trivia:        "Venus has temperatures over 450°C.",
	},
	"earth": {
		Name: "Earth", Gravity: 9.81, Atmosphere: "Nitrogen and Oxygen", Type: "Rocky", Discoverer: "Unknown",
		SupportsLife:  true,
		Survivability: "Your body would function normally.",
		Trivia:        "Earth is the only known planet to harbor life.",
	},
	"moon": {
		Name: "Moon", Gravity: 1.62, Atmosphere: "None", Type: "Natural Satellite", Discoverer: "Unknown",
		Survivability: "You would feel much lighter.",
		Trivia:        "The Moon always shows the same face to the Earth due to synchronous rotation.",
	},
	"mars": {
		Name: "Mars", Gravity: 3.71, Atmosphere: "Carbon Dioxide", Type: "Rocky", Discoverer: "Galileo Galilei",
		Survivability: "Your weight would be much lighter.",
		Trivia:        "Mars is home to the tallest mountain in the solar system.",
	},
	"jupiter": {
		Name: "Jupiter", Gravity: 24.79, Atmosphere: "Hydrogen and Helium", Type: "Gas Giant", Discoverer: "Galileo Galilei",
		Survivability: "Your weight would be more than double.",
		Trivia:        "Jupiter is so large it could fit over 1,300 Earths inside it.",
	},
	"saturn": {
		Name: "Saturn", Gravity: 10.44, Atmosphere: "Hydrogen and Helium", Type: "Gas Giant", Discoverer: "Galileo Galilei",
		Survivability: "Your weight would be heavier.",
		Trivia:        "Saturn is known for its stunning ring system.",
	},
	"uranus": {
		Name: "Uranus", Gravity: 8.69, Atmosphere: "Hydrogen and Helium", Type: "Gas Giant", Discoverer: "William Herschel",
		Survivability: "Your weight would be slightly less.",
		Trivia:        "Uranus rotates on its side.",
	},
	"neptune": {
		Name: "Neptune", Gravity: 11.15, Atmosphere: "Hydrogen, Helium, and Methane", Type: "Gas Giant", Discoverer: "Johann Galle",
		Survivability: "Your weight would be heavier.",
		Trivia:        "Neptune has supersonic winds.",
	},
	"pluto": {
		Name: "Pluto", Gravity: 0.62, Atmosphere: "Nitrogen, Methane, and Carbon Monoxide", Type: "Dwarf Planet", Discoverer: "Clyde Tombaugh",
		Survivability: "Your weight would be negligible.",
		Trivia:        "Pluto is no longer classified as a planet.",
	},
	"ceres": {
		Name: "Ceres", Gravity: 0.27, Atmosphere: "None", Type: "Dwarf Planet", Discoverer: "Giuseppe Piazzi",
		Survivability: "Your weight would be even less.",
		Trivia:        "Ceres is the largest object in the asteroid belt.",
	},
	"eris": {
		Name: "Eris", Gravity: 0.43, Atmosphere: "None", Type: "Dwarf Planet", Discoverer: "Mike Brown",
		Survivability: "Your weight would be extremely light.",
		Trivia:        "Eris is one of the most massive dwarf planets.",
	},
}

// PanelFields are the display-ready strings of the info overlay
type PanelFields struct {
	Name          string `json:"name"`
	Gravity       string `json:"gravity"`
	Atmosphere    string `json:"atmosphere"`
	Type          string `json:"type"`
	Discoverer    string `json:"discoverer"`
	Life          string `json:"life"`
	Survivability string `json:"survivability"`
	Trivia        string `json:"trivia"`
}

// Panel is the state of the info overlay as the render surface should show it
type Panel struct {
	Visible          bool        `json:"visible"`
	BodyID           string      `json:"bodyId,omitempty"`
	Fields           PanelFields `json:"fields"`
	WeightCalculator bool        `json:"weightCalculator"`
}

// InfoPanel translates a selected body into panel contents
type InfoPanel struct {
	catalog map[string]InfoRecord
	panel   Panel
	gravity float64
	log     *slog.Logger
}

// NewInfoPanel returns a hidden panel backed by catalog
func NewInfoPanel(catalog map[string]InfoRecord) *InfoPanel {
	return &InfoPanel{
		catalog: catalog,
		log:     slog.With("component", "info_panel"),
	}
}

// Lookup returns the record for a body id
func (p *InfoPanel) Lookup(id string) (InfoRecord, bool) {
	rec, ok := p.catalog[id]
	return rec, ok
}

// FormatGravity renders a gravity value without trailing zeros (3.71, 273)
func FormatGravity(g float64) string {
	return strconv.FormatFloat(g, 'f', -1, 64)
}

// FieldsFor builds display strings for a record
func FieldsFor(rec InfoRecord) PanelFields {
	life := "No"
	if rec.SupportsLife {
		life = "Yes"
	}
	return PanelFields{
		Name:          rec.Name,
		Gravity:       FormatGravity(rec.Gravity),
		Atmosphere:    rec.Atmosphere,
		Type:          rec.Type,
		Discoverer:    rec.Discoverer,
		Life:          life,
		Survivability: rec.Survivability,
		Trivia:        rec.Trivia,
	}
}

// Show fills the panel for a body. Earth hides the weight calculator since it
// is the reference; every other body shows it. A miss is logged and leaves the
// panel as it was.
func (p *InfoPanel) Show(id string) bool {
	rec, ok := p.catalog[id]
	if !ok {
		p.log.Debug("Info record not found", "body", id)
		return false
	}
	p.panel = Panel{
		Visible:          true,
		BodyID:           id,
		Fields:           FieldsFor(rec),
		WeightCalculator: id != "earth",
	}
	p.gravity = rec.Gravity
	return true
}

// Hide clears the panel
func (p *InfoPanel) Hide() {
	p.panel = Panel{}
	p.gravity = 0
}

// Panel returns the current panel state
func (p *InfoPanel) Panel() Panel {
	return p.panel
}

// Weight converts an Earth weight to the weight on the displayed body. ok is
// false when the calculator is not shown.
func (p *InfoPanel) Weight(earthWeight float64) (float64, bool) {
	if !p.panel.Visible || !p.panel.WeightCalculator {
		return 0, false
	}
	return earthWeight * p.gravity / EarthGravity, true
}
