package feed

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/lab1702/solar-web/apperr"
	"github.com/lab1702/solar-web/solar"
)

// Scene mapping for comet orbits
const (
	CometRadius       = 0.3
	CometTexture      = "moon.jpg"
	CometDefaultSpeed = 0.005
	CometDefaultEcc   = 0.5
	CometMaxEcc       = 0.95
	CometInnerRadius  = 30.0 // scene units at a = 0
	CometRadiusPerAU  = 10.0
	CometMaxAU        = 5.0
	CometDefaultAU    = 2.5

	earthSpeed = 0.007 // radians per reference frame for a one-year period

	maxPayload = 8 << 20
)

// Record is one row of the near-earth comet dataset. Numbers arrive as strings.
type Record struct {
	Object string `json:"object"`
	E      string `json:"e"`
	QAU    string `json:"q_au_1"`
	IDeg   string `json:"i_deg"`
	PYr    string `json:"p_yr"`
}

// IsComet reports whether the designation names a comet (C/ or P/)
func (r Record) IsComet() bool {
	return strings.HasPrefix(r.Object, "C/") || strings.HasPrefix(r.Object, "P/")
}

// Client fetches the remote comet dataset
type Client struct {
	url  string
	http *http.Client
	log  *slog.Logger
}

func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url:  url,
		http: &http.Client{Timeout: timeout},
		log:  slog.With("component", "comet_feed"),
	}
}

// Fetch downloads and decodes the dataset. Transport failures and non-2xx
// statuses are external errors; an undecodable body is a validation error.
func (c *Client) Fetch(ctx context.Context) ([]Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, apperr.WrapInternal("failed to build comet feed request", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperr.WrapExternal("comet feed request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperr.Externalf("comet feed returned status %d", resp.StatusCode)
	}

	var records []Record
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxPayload)).Decode(&records); err != nil {
		return nil, apperr.WrapValidation("malformed comet feed payload", err)
	}

	c.log.Debug("Comet feed fetched",
		"records", len(records),
		"duration", time.Since(start),
	)
	return records, nil
}

// Specs maps comet records to bodies, skipping non-comets and duplicates.
// max <= 0 keeps every comet.
func Specs(records []Record, max int) []solar.BodySpec {
	comets := make([]Record, 0, len(records))
	seen := make(map[string]bool)
	for _, r := range records {
		if !r.IsComet() {
			continue
		}
		id := CometID(r.Object)
		if seen[id] {
			continue
		}
		seen[id] = true
		comets = append(comets, r)
		if max > 0 && len(comets) == max {
			break
		}
	}

	specs := make([]solar.BodySpec, len(comets))
	for i, r := range comets {
		specs[i] = ToSpec(r, i, len(comets))
	}
	return specs
}

// ToSpec maps one comet record; i and n pick its orbit color
func ToSpec(r Record, i, n int) solar.BodySpec {
	e := parseFloat(r.E, CometDefaultEcc)
	if e < 0 {
		e = 0
	}

	a := CometDefaultAU
	if q := parseFloat(r.QAU, 0); q > 0 && e < 1 {
		a = q / (1 - e)
	}
	e = math.Min(e, CometMaxEcc)

	speed := CometDefaultSpeed
	if p := parseFloat(r.PYr, 0); p > 0 {
		speed = earthSpeed / p
	}

	return solar.BodySpec{
		ID:           CometID(r.Object),
		Name:         r.Object,
		Radius:       CometRadius,
		OrbitRadius:  CometInnerRadius + math.Min(a, CometMaxAU)*CometRadiusPerAU,
		Speed:        speed,
		Eccentricity: e,
		Inclination:  parseFloat(r.IDeg, 0),
		Texture:      CometTexture,
		OrbitColor:   solar.PaletteColor(i, n).Hex(),
	}
}

// CometID turns a designation such as "P/2004 R1 (McNaught)" into "p-2004-r1-mcnaught"
func CometID(object string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(object) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func parseFloat(s string, def float64) float64 {
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}
