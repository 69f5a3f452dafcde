package adapthttp_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	adapthttp "bodylog/internal/adapter/http"
	"bodylog/internal/adapter/memory"
	"bodylog/internal/app"
)

// ---------------------------------------------------------------------------
// Test-server helper
// ---------------------------------------------------------------------------

type testEnv struct {
	ts *httptest.Server
	db *memory.DB
}

func newTestServer(t *testing.T, passwordHash string) *testEnv {
	t.Helper()

	db := memory.New()
	svc := adapthttp.Services{
		Profiles: app.NewProfileService(db),
		Entries:  app.NewEntryService(db),
		Stats:    app.NewStatsService(db),
		Backup:   app.NewBackupService(db),
		Auth:     app.NewAuthService(passwordHash, db.NewSessionRepo()),
	}

	webDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(webDir, "index.html"), []byte("<html></html>"), 0o600); err != nil {
		t.Fatal(err)
	}

	srv := adapthttp.New(svc, webDir).WithMetrics(adapthttp.NewTestMetrics(), "/metrics")
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return &testEnv{ts: ts, db: db}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, e.ts.URL+path, r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return m
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected %d, got %d; body: %s", want, resp.StatusCode, b)
	}
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestHealthEndpoint(t *testing.T) {
	env := newTestServer(t, "")

	resp := env.do(t, http.MethodGet, "/api/health", nil)
	expectStatus(t, resp, http.StatusOK)
	if body := decodeBody(t, resp); body["ok"] != true {
		t.Fatalf("expected ok=true, got %v", body["ok"])
	}
	if cc := resp.Header.Get("Cache-Control"); cc != "no-store" {
		t.Errorf("expected no-store, got %q", cc)
	}
}

func TestProfilesCRUD(t *testing.T) {
	env := newTestServer(t, "")

	resp := env.do(t, http.MethodGet, "/api/profiles", nil)
	expectStatus(t, resp, http.StatusOK)
	items := decodeBody(t, resp)["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("expected the default profile only, got %v", items)
	}

	resp = env.do(t, http.MethodPost, "/api/profiles", map[string]any{"name": "Ana", "sex": "F", "age": 34, "height_cm": 165})
	expectStatus(t, resp, http.StatusCreated)
	id, _ := decodeBody(t, resp)["id"].(string)
	if id == "" {
		t.Fatal("expected generated id")
	}

	resp = env.do(t, http.MethodPut, "/api/profiles/"+id, map[string]any{"name": "Ana Maria", "activity": 1.2})
	expectStatus(t, resp, http.StatusOK)
	if name := decodeBody(t, resp)["name"]; name != "Ana Maria" {
		t.Errorf("expected updated name, got %v", name)
	}

	resp = env.do(t, http.MethodGet, "/api/profiles/"+id, nil)
	expectStatus(t, resp, http.StatusOK)

	resp = env.do(t, http.MethodDelete, "/api/profiles/"+id, nil)
	expectStatus(t, resp, http.StatusOK)

	resp = env.do(t, http.MethodGet, "/api/profiles/"+id, nil)
	expectStatus(t, resp, http.StatusNotFound)

	resp = env.do(t, http.MethodDelete, "/api/profiles/default", nil)
	expectStatus(t, resp, http.StatusBadRequest)
}

func TestProfileCreate_Invalid(t *testing.T) {
	env := newTestServer(t, "")

	tests := []struct {
		name    string
		payload any
	}{
		{"missing name", map[string]any{"age": 30}},
		{"height out of range", map[string]any{"name": "X", "height_cm": 20}},
		{"unknown field", map[string]any{"name": "X", "shoe_size": 42}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := env.do(t, http.MethodPost, "/api/profiles", tc.payload)
			expectStatus(t, resp, http.StatusBadRequest)
			if _, ok := decodeBody(t, resp)["error"]; !ok {
				t.Fatal("response missing 'error' field")
			}
		})
	}
}

func TestEntriesPut(t *testing.T) {
	tests := []struct {
		name       string
		payload    map[string]any
		wantStatus int
	}{
		{"valid kg", map[string]any{"date": "2026-02-08", "weight": 85.5, "unit": "kg"}, http.StatusOK},
		{"valid lb", map[string]any{"date": "2026-02-08", "weight": 190.0, "unit": "lb"}, http.StatusOK},
		{"default unit", map[string]any{"date": "2026-02-08", "weight": 80}, http.StatusOK},
		{"weight zero", map[string]any{"date": "2026-02-08", "weight": 0}, http.StatusBadRequest},
		{"weight negative", map[string]any{"date": "2026-02-08", "weight": -5.0}, http.StatusBadRequest},
		{"invalid unit", map[string]any{"date": "2026-02-08", "weight": 80.0, "unit": "stone"}, http.StatusBadRequest},
		{"bad date", map[string]any{"date": "08/02/2026", "weight": 80.0}, http.StatusBadRequest},
	}

	env := newTestServer(t, "")
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := env.do(t, http.MethodPut, "/api/entries?profile=default", tc.payload)
			expectStatus(t, resp, tc.wantStatus)
			if tc.wantStatus == http.StatusOK {
				if _, ok := decodeBody(t, resp)["entry"]; !ok {
					t.Fatal("response missing 'entry' field")
				}
			}
		})
	}

	resp := env.do(t, http.MethodPut, "/api/entries?profile=ghost", map[string]any{"date": "2026-02-08", "weight": 80})
	expectStatus(t, resp, http.StatusNotFound)
}

func TestEntriesListAndDelete(t *testing.T) {
	env := newTestServer(t, "")
	for _, d := range []string{"2026-02-06", "2026-02-08", "2026-02-07"} {
		expectStatus(t, env.do(t, http.MethodPut, "/api/entries", map[string]any{"date": d, "weight": 80}), http.StatusOK)
	}

	resp := env.do(t, http.MethodGet, "/api/entries?profile=default&limit=2", nil)
	expectStatus(t, resp, http.StatusOK)
	items := decodeBody(t, resp)["items"].([]any)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if first := items[0].(map[string]any)["date"]; first != "2026-02-08" {
		t.Errorf("expected most recent first, got %v", first)
	}

	expectStatus(t, env.do(t, http.MethodDelete, "/api/entries/default/2026-02-08", nil), http.StatusOK)
	resp = env.do(t, http.MethodGet, "/api/entries", nil)
	items = decodeBody(t, resp)["items"].([]any)
	if len(items) != 2 {
		t.Errorf("expected 2 items after delete, got %d", len(items))
	}
}

func TestStatsEndpoint(t *testing.T) {
	env := newTestServer(t, "")
	expectStatus(t, env.do(t, http.MethodPut, "/api/profiles/default", map[string]any{"name": "Perfil", "height_cm": 175}), http.StatusOK)
	expectStatus(t, env.do(t, http.MethodPut, "/api/entries", map[string]any{"date": "2026-02-08", "weight": 70}), http.StatusOK)

	resp := env.do(t, http.MethodGet, "/api/stats?profile=default", nil)
	expectStatus(t, resp, http.StatusOK)
	body := decodeBody(t, resp)
	bmi, ok := body["bmi"].(float64)
	if !ok || bmi < 22.8 || bmi > 22.9 {
		t.Errorf("unexpected bmi %v", body["bmi"])
	}
	if body["trend7"] != nil {
		t.Errorf("expected no trend with one entry, got %v", body["trend7"])
	}

	expectStatus(t, env.do(t, http.MethodGet, "/api/stats?profile=ghost", nil), http.StatusNotFound)
}

func TestExportImportAndWipe(t *testing.T) {
	env := newTestServer(t, "")
	expectStatus(t, env.do(t, http.MethodPut, "/api/entries", map[string]any{"date": "2026-02-08", "weight": 70, "note": "a, b"}), http.StatusOK)

	resp := env.do(t, http.MethodGet, "/api/export.json", nil)
	expectStatus(t, resp, http.StatusOK)
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("expected attachment, got %q", cd)
	}
	backup, _ := io.ReadAll(resp.Body)

	resp = env.do(t, http.MethodGet, "/api/export.csv?profile=default", nil)
	expectStatus(t, resp, http.StatusOK)
	csvBody, _ := io.ReadAll(resp.Body)
	if !strings.HasPrefix(string(csvBody), "date,weight_kg,") || !strings.Contains(string(csvBody), `"a, b"`) {
		t.Errorf("unexpected csv: %s", csvBody)
	}

	expectStatus(t, env.do(t, http.MethodPost, "/api/wipe", nil), http.StatusOK)
	resp = env.do(t, http.MethodGet, "/api/entries", nil)
	if items := decodeBody(t, resp)["items"].([]any); len(items) != 0 {
		t.Fatalf("expected no entries after wipe, got %d", len(items))
	}

	req, _ := http.NewRequest(http.MethodPost, env.ts.URL+"/api/import", bytes.NewReader(backup))
	importResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer importResp.Body.Close() //nolint:errcheck
	expectStatus(t, importResp, http.StatusOK)
	if n := decodeBody(t, importResp)["entries"]; n != 1.0 {
		t.Errorf("expected 1 imported entry, got %v", n)
	}

	req, _ = http.NewRequest(http.MethodPost, env.ts.URL+"/api/import", strings.NewReader("garbage"))
	bad, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer bad.Body.Close() //nolint:errcheck
	expectStatus(t, bad, http.StatusBadRequest)
}

func TestMethodNotAllowed(t *testing.T) {
	env := newTestServer(t, "")
	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/stats"},
		{http.MethodGet, "/api/wipe"},
		{http.MethodPatch, "/api/entries"},
		{http.MethodGet, "/api/entries/default/2026-01-01"},
	} {
		resp := env.do(t, tc.method, tc.path, nil)
		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Errorf("%s %s: expected 405, got %d", tc.method, tc.path, resp.StatusCode)
		}
	}
}

func TestPasswordLock(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	env := newTestServer(t, string(hash))

	expectStatus(t, env.do(t, http.MethodGet, "/api/health", nil), http.StatusOK)
	expectStatus(t, env.do(t, http.MethodGet, "/api/profiles", nil), http.StatusUnauthorized)
	expectStatus(t, env.do(t, http.MethodPost, "/api/login", map[string]any{"password": "nope"}), http.StatusUnauthorized)

	resp := env.do(t, http.MethodPost, "/api/login", map[string]any{"password": "s3cret"})
	expectStatus(t, resp, http.StatusOK)
	var session *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "session" {
			session = c
		}
	}
	if session == nil || session.Value == "" {
		t.Fatal("expected session cookie")
	}

	req, _ := http.NewRequest(http.MethodGet, env.ts.URL+"/api/profiles", nil)
	req.AddCookie(session)
	ok, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer ok.Body.Close() //nolint:errcheck
	expectStatus(t, ok, http.StatusOK)

	req, _ = http.NewRequest(http.MethodGet, env.ts.URL+"/api/profiles", nil)
	req.AddCookie(session)
	req.Header.Set("User-Agent", "someone-else")
	stolen, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer stolen.Body.Close() //nolint:errcheck
	expectStatus(t, stolen, http.StatusUnauthorized)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestServer(t, "")
	expectStatus(t, env.do(t, http.MethodGet, "/api/health", nil), http.StatusOK)

	resp := env.do(t, http.MethodGet, "/metrics", nil)
	expectStatus(t, resp, http.StatusOK)
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "bodylog_http_requests_total") {
		t.Errorf("metrics output missing request counter:\n%s", body)
	}
}

func TestSPAFallback(t *testing.T) {
	env := newTestServer(t, "")
	resp := env.do(t, http.MethodGet, "/some/client/route", nil)
	expectStatus(t, resp, http.StatusOK)
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "<html>") {
		t.Errorf("expected index.html, got %s", body)
	}
}
