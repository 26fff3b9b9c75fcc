package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"hacksim/internal/engine"
	sqlitestore "hacksim/internal/store/sqlite"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store, err := sqlitestore.Open(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	defaults := engine.Config{Runs: 1, ConversationRounds: 2, Seed: 42}
	return NewServer(store, nil, defaults, nil)
}

func TestHealthEndpoint(t *testing.T) {
	e := newTestServer(t).Router()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ok") {
		t.Fatalf("unexpected health body: %s", rec.Body.String())
	}
}

func TestSimulateRejectsInvertedTeamSize(t *testing.T) {
	e := newTestServer(t).Router()
	body := `{"options": {"min_team_size": 4, "max_team_size": 2}}`
	req := httptest.NewRequest(http.MethodPost, "/simulate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSimulateRejectsParticipantWithoutIdea(t *testing.T) {
	e := newTestServer(t).Router()
	body := `{"participants": [{"name": "Quiet Person", "role": "Engineer"}]}`
	req := httptest.NewRequest(http.MethodPost, "/simulate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSimulateAcceptsCommentsAsIdea(t *testing.T) {
	e := newTestServer(t).Router()
	body := `{
		"participants": [
			{"name": "A", "role": "Engineer", "comments": "Realtime dashboard for founders."},
			{"name": "B", "role": "Designer", "idea": "Interview simulator."}
		],
		"options": {"runs": 1, "conversation_rounds": 1, "seed": 7}
	}`
	req := httptest.NewRequest(http.MethodPost, "/simulate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp simulateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID == "" {
		t.Fatalf("missing simulation id")
	}
	if len(resp.Summary.Runs) != 1 {
		t.Fatalf("expected one run, got %d", len(resp.Summary.Runs))
	}
	if len(resp.Progress) == 0 {
		t.Fatalf("expected progress events in response")
	}
}

func TestSimulationIsPersistedAndListed(t *testing.T) {
	srv := newTestServer(t)
	e := srv.Router()

	body := `{"options": {"runs": 1, "conversation_rounds": 1, "seed": 11}}`
	req := httptest.NewRequest(http.MethodPost, "/simulate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("simulate failed: %d %s", rec.Code, rec.Body.String())
	}
	var resp simulateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	listReq := httptest.NewRequest(http.MethodGet, "/simulations", nil)
	listRec := httptest.NewRecorder()
	e.ServeHTTP(listRec, listReq)
	if listRec.Code != http.StatusOK {
		t.Fatalf("list failed: %d", listRec.Code)
	}
	if !strings.Contains(listRec.Body.String(), resp.ID) {
		t.Fatalf("list does not contain %s: %s", resp.ID, listRec.Body.String())
	}

	getReq := httptest.NewRequest(http.MethodGet, "/simulations/"+resp.ID, nil)
	getRec := httptest.NewRecorder()
	e.ServeHTTP(getRec, getReq)
	if getRec.Code != http.StatusOK {
		t.Fatalf("get failed: %d %s", getRec.Code, getRec.Body.String())
	}

	missingReq := httptest.NewRequest(http.MethodGet, "/simulations/nope", nil)
	missingRec := httptest.NewRecorder()
	e.ServeHTTP(missingRec, missingReq)
	if missingRec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown id, got %d", missingRec.Code)
	}
}
