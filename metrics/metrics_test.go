package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func scrape(t *testing.T, m *Collector) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 200 {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	return string(body)
}

func TestCollectorExposesRecordedValues(t *testing.T) {
	m := NewCollector()
	m.RecordTick(2 * time.Millisecond)
	m.RecordTick(3 * time.Millisecond)
	m.SetViewers(4)
	m.RecordSelect("picked")
	m.RecordSelect("picked")
	m.RecordSelect("ignored")
	m.RecordInput("drag", "ok")
	m.RecordInput("drag", "throttled")
	m.RecordFeed("remote", 7, nil)
	m.RecordFeed("cache", 0, errors.New("miss"))
	m.RecordDroppedFrame()

	out := scrape(t, m)
	for _, want := range []string{
		"solar_frames_total 2",
		"solar_tick_duration_seconds_count 2",
		"solar_viewers 4",
		`solar_selects_total{outcome="picked"} 2`,
		`solar_selects_total{outcome="ignored"} 1`,
		`solar_inputs_total{result="throttled",type="drag"} 1`,
		`solar_comet_feed_results_total{result="ok",source="remote"} 1`,
		`solar_comet_feed_results_total{result="error",source="cache"} 1`,
		"solar_comets_loaded 7",
		"solar_dropped_frames_total 1",
		"go_goroutines",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in scrape output", want)
		}
	}
}

func TestCollectorsAreIndependent(t *testing.T) {
	a := NewCollector()
	b := NewCollector()
	a.SetViewers(3)

	if !strings.Contains(scrape(t, b), "solar_viewers 0") {
		t.Error("Expected a fresh collector to start at zero viewers")
	}
}
