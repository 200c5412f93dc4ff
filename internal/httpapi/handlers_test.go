package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/matchforge/jip-backend/internal/discovery"
	"github.com/matchforge/jip-backend/internal/engine"
	"github.com/matchforge/jip-backend/internal/hub"
	"github.com/matchforge/jip-backend/internal/session"
)

func testServer(t *testing.T) (*httptest.Server, *discovery.Memory) {
	t.Helper()
	pub := discovery.NewMemory()
	h := hub.NewHub(context.Background(), session.Deps{Discovery: pub})
	defaults := engine.DefaultConfig()
	defaults.AllowedPhases = []engine.GamePhase{
		engine.PhaseLobby, engine.PhaseWarmup, engine.PhaseInProgress,
	}
	srv := httptest.NewServer(SetupRoutes(h, defaults, zap.NewNop()))
	t.Cleanup(srv.Close)
	return srv, pub
}

func post(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	resp, err := http.Post(url, "application/json", &buf)
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func createMatch(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	resp := post(t, srv.URL+"/matches", map[string]any{"max_players": 4, "game_mode": "ctf"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	out := decode[struct {
		Code string `json:"code"`
	}](t, resp)
	if len(out.Code) != 6 {
		t.Fatalf("bad code %q", out.Code)
	}
	return out.Code
}

func TestCreateJoinAndState(t *testing.T) {
	srv, pub := testServer(t)
	code := createMatch(t, srv)

	if _, ok := pub.Listing(code); !ok {
		t.Fatalf("create did not announce a discovery listing")
	}

	resp := post(t, srv.URL+"/matches/"+code+"/join",
		map[string]any{"candidate_id": "p1", "display_name": "Alice"})
	res := decode[session.Result](t, resp)
	if !res.OK || !res.Decision.Allowed {
		t.Fatalf("join refused: %+v", res)
	}
	if res.Record == nil || res.Record.CandidateID != "p1" {
		t.Fatalf("missing join record: %+v", res)
	}

	resp, err := http.Get(srv.URL + "/matches/" + code)
	if err != nil {
		t.Fatalf("GET state: %v", err)
	}
	state := decode[struct {
		Version int              `json:"version"`
		State   engine.StateView `json:"state"`
	}](t, resp)
	if state.State.Occupancy != 1 || state.State.Capacity != 4 {
		t.Fatalf("unexpected state %+v", state.State)
	}
}

func TestJoinDenialIsNotAnHTTPError(t *testing.T) {
	srv, _ := testServer(t)
	code := createMatch(t, srv)

	resp := post(t, srv.URL+"/matches/"+code+"/lock", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("lock status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = post(t, srv.URL+"/matches/"+code+"/join", map[string]any{"candidate_id": "p2"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("denied join should still be 200, got %d", resp.StatusCode)
	}
	res := decode[session.Result](t, resp)
	if res.OK || res.Decision.Allowed {
		t.Fatalf("join should have been denied: %+v", res)
	}
	if res.Decision.Reason != engine.DeniedLocked {
		t.Fatalf("reason = %q, want %q", res.Decision.Reason, engine.DeniedLocked)
	}
}

func TestBackfillOverHTTP(t *testing.T) {
	srv, pub := testServer(t)
	code := createMatch(t, srv)

	resp := post(t, srv.URL+"/matches/"+code+"/backfill", map[string]any{"slots": 2})
	res := decode[session.Result](t, resp)
	if !res.OK || res.Request == nil {
		t.Fatalf("backfill not opened: %+v", res)
	}
	if res.Request.SlotsNeeded != 2 || res.Request.Status != engine.BackfillRequesting {
		t.Fatalf("unexpected request %+v", res.Request)
	}

	l, _ := pub.Listing(code)
	if !l.NeedsBackfill || l.OpenSlots != 2 {
		t.Fatalf("listing not flagged for backfill: %+v", l)
	}

	resp = post(t, srv.URL+"/matches/"+code+"/join", map[string]any{
		"candidate_id":        "b1",
		"is_backfill":         true,
		"backfill_request_id": res.Request.ID,
	})
	joinRes := decode[session.Result](t, resp)
	if !joinRes.OK {
		t.Fatalf("backfill join refused: %+v", joinRes)
	}
	if joinRes.Record.BackfillRequestID != res.Request.ID {
		t.Fatalf("record not tied to request: %+v", joinRes.Record)
	}

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/matches/"+code+"/backfill", nil)
	if err != nil {
		t.Fatalf("build delete: %v", err)
	}
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE backfill: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("cancel status = %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestUnknownMatchIs404(t *testing.T) {
	srv, _ := testServer(t)

	resp := post(t, srv.URL+"/matches/NOSUCH/join", map[string]any{"candidate_id": "p1"})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestHealthz(t *testing.T) {
	srv, _ := testServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	resp.Body.Close()
}
