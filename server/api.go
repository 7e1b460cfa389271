package server

import (
	"net/http"
	"strings"

	"github.com/lab1702/solar-web/apperr"
	"github.com/lab1702/solar-web/solar"
)

// BodySummary is a row of /api/bodies
type BodySummary struct {
	solar.BodySpec
	HasInfo bool `json:"hasInfo"`
}

// InfoResponse is the body of /api/info/{id}
type InfoResponse struct {
	ID     string            `json:"id"`
	Record solar.InfoRecord  `json:"record"`
	Fields solar.PanelFields `json:"fields"`
	// WeightCalculator mirrors the panel: hidden for the reference body
	WeightCalculator bool `json:"weightCalculator"`
}

// StatsResponse is the body of /api/stats
type StatsResponse struct {
	Viewers int   `json:"viewers"`
	Bodies  int   `json:"bodies"`
	Frame   int64 `json:"frame"`
}

// HandleBodies lists every body a new viewer would see
func (s *Server) HandleBodies(w http.ResponseWriter, r *http.Request) {
	table := s.bodyTable()
	out := make([]BodySummary, len(table))
	for i, spec := range table {
		_, ok := solar.InfoCatalog[spec.ID]
		out[i] = BodySummary{BodySpec: spec, HasInfo: ok}
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleInfo returns the reference sheet for one body
func (s *Server) HandleInfo(w http.ResponseWriter, r *http.Request) {
	id := strings.ToLower(strings.TrimSpace(r.PathValue("id")))
	if id == "" {
		writeError(w, r, s.log, apperr.Validationf("body id is required"))
		return
	}
	rec, ok := solar.InfoCatalog[id]
	if !ok {
		writeError(w, r, s.log, apperr.NotFoundf("no info record for body %q", id))
		return
	}
	writeJSON(w, http.StatusOK, InfoResponse{
		ID:               id,
		Record:           rec,
		Fields:           solar.FieldsFor(rec),
		WeightCalculator: id != "earth",
	})
}

// HandleStats returns live server counters
func (s *Server) HandleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatsResponse{
		Viewers: s.Viewers(),
		Bodies:  len(s.bodyTable()),
		Frame:   s.Frame(),
	})
}
