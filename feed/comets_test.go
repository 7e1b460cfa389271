package feed

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lab1702/solar-web/apperr"
)

const samplePayload = `[
  {"object": "P/2004 R1 (McNaught)", "e": "0.682", "q_au_1": "0.986", "i_deg": "4.89", "p_yr": "5.48"},
  {"object": "433 Eros", "e": "0.223", "q_au_1": "1.133", "i_deg": "10.83", "p_yr": "1.76"},
  {"object": "C/2020 F3 (NEOWISE)", "e": "0.999", "q_au_1": "0.295", "i_deg": "128.9"},
  {"object": "P/2004 R1 (McNaught)", "e": "0.682", "q_au_1": "0.986", "i_deg": "4.89", "p_yr": "5.48"},
  {"object": "C/2001 Q4 (NEAT)"}
]`

func newFeedServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchDecodesRecords(t *testing.T) {
	srv := newFeedServer(t, http.StatusOK, samplePayload)

	records, err := NewClient(srv.URL, time.Second).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Expected fetch to succeed, got %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("Expected 5 records, got %d", len(records))
	}
	if records[0].QAU != "0.986" || records[0].PYr != "5.48" {
		t.Errorf("Unexpected first record: %+v", records[0])
	}
}

func TestFetchErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   apperr.ErrorType
	}{
		{"server error", http.StatusInternalServerError, `{"error":"down"}`, apperr.TypeExternal},
		{"not found", http.StatusNotFound, ``, apperr.TypeExternal},
		{"malformed", http.StatusOK, `{"object":`, apperr.TypeValidation},
		{"wrong shape", http.StatusOK, `{"object":"C/1"}`, apperr.TypeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newFeedServer(t, tt.status, tt.body)
			_, err := NewClient(srv.URL, time.Second).Fetch(context.Background())
			if err == nil {
				t.Fatal("Expected an error")
			}
			if got := apperr.GetType(err); got != tt.want {
				t.Errorf("Expected %s error, got %s (%v)", tt.want, got, err)
			}
		})
	}
}

func TestFetchUnreachable(t *testing.T) {
	srv := newFeedServer(t, http.StatusOK, "[]")
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, time.Second).Fetch(context.Background())
	if !apperr.Is(err, apperr.TypeExternal) {
		t.Errorf("Expected an external error, got %v", err)
	}
}

func TestSpecsKeepsOnlyComets(t *testing.T) {
	records := []Record{
		{Object: "P/2004 R1 (McNaught)", E: "0.682", QAU: "0.986", IDeg: "4.89", PYr: "5.48"},
		{Object: "433 Eros", E: "0.223", QAU: "1.133"},
		{Object: "C/2020 F3 (NEOWISE)", E: "0.999", QAU: "0.295", IDeg: "128.9"},
		{Object: "P/2004 R1 (McNaught)"},
		{Object: "C/2001 Q4 (NEAT)"},
	}

	specs := Specs(records, 0)
	if len(specs) != 3 {
		t.Fatalf("Expected 3 comets, got %d", len(specs))
	}
	wantIDs := []string{"p-2004-r1-mcnaught", "c-2020-f3-neowise", "c-2001-q4-neat"}
	for i, id := range wantIDs {
		if specs[i].ID != id {
			t.Errorf("Expected id %s, got %s", id, specs[i].ID)
		}
		if specs[i].Texture != CometTexture || specs[i].Radius != CometRadius {
			t.Errorf("Expected comet visuals for %s, got %+v", id, specs[i])
		}
		if len(specs[i].OrbitColor) != 7 {
			t.Errorf("Expected a hex orbit color, got %q", specs[i].OrbitColor)
		}
	}

	if got := Specs(records, 2); len(got) != 2 {
		t.Errorf("Expected the limit to apply, got %d", len(got))
	}
}

func TestToSpecMapping(t *testing.T) {
	mcnaught := ToSpec(Record{Object: "P/2004 R1 (McNaught)", E: "0.682", QAU: "0.986", IDeg: "4.89", PYr: "5.48"}, 0, 1)
	a := 0.986 / (1 - 0.682)
	if want := CometInnerRadius + a*CometRadiusPerAU; math.Abs(mcnaught.OrbitRadius-want) > 1e-9 {
		t.Errorf("Expected orbit radius %v, got %v", want, mcnaught.OrbitRadius)
	}
	if want := 0.007 / 5.48; math.Abs(mcnaught.Speed-want) > 1e-12 {
		t.Errorf("Expected speed %v, got %v", want, mcnaught.Speed)
	}
	if mcnaught.Eccentricity != 0.682 || mcnaught.Inclination != 4.89 {
		t.Errorf("Expected orbit elements kept, got e=%v i=%v", mcnaught.Eccentricity, mcnaught.Inclination)
	}

	neowise := ToSpec(Record{Object: "C/2020 F3 (NEOWISE)", E: "0.999", QAU: "0.295"}, 0, 1)
	if neowise.OrbitRadius != CometInnerRadius+CometMaxAU*CometRadiusPerAU {
		t.Errorf("Expected a far orbit capped at %v, got %v", CometInnerRadius+CometMaxAU*CometRadiusPerAU, neowise.OrbitRadius)
	}
	if neowise.Eccentricity != CometMaxEcc {
		t.Errorf("Expected eccentricity capped at %v, got %v", CometMaxEcc, neowise.Eccentricity)
	}
	if neowise.Speed != CometDefaultSpeed {
		t.Errorf("Expected default speed without a period, got %v", neowise.Speed)
	}

	bare := ToSpec(Record{Object: "C/2001 Q4 (NEAT)", E: "n/a"}, 0, 1)
	if bare.Eccentricity != CometDefaultEcc {
		t.Errorf("Expected default eccentricity, got %v", bare.Eccentricity)
	}
	if bare.OrbitRadius != CometInnerRadius+CometDefaultAU*CometRadiusPerAU {
		t.Errorf("Expected default orbit radius, got %v", bare.OrbitRadius)
	}
}

func TestCometID(t *testing.T) {
	tests := map[string]string{
		"P/2004 R1 (McNaught)": "p-2004-r1-mcnaught",
		"C/2020 F3 (NEOWISE)":  "c-2020-f3-neowise",
		"C/2013 A1":            "c-2013-a1",
		"  P/1P  ":             "p-1p",
	}
	for in, want := range tests {
		if got := CometID(in); got != want {
			t.Errorf("Expected CometID(%q) = %q, got %q", in, want, got)
		}
	}
}
