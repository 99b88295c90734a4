package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestDecide_PostsYAMLSnapshotAsWireJSON(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/decide" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"action":{"type":"item","parameters":{"item":"White Potion"},"reason":"hp critical","confidence":0.95},"tier_used":"reflex","latency_ms":0.4,"request_id":"r-1","session_id":"s-1"}`))
	}))
	defer srv.Close()

	snap := writeFile(t, "snap.yaml", `
character:
  name: Alice
  level: 12
  hp: 10
  max_hp: 100
  sp: 50
  max_sp: 50
  position: {map: prontera, x: 100, y: 120}
monsters:
  - {id: m1, name: Poring, hp: 50, max_hp: 50, distance: 3, is_aggressive: true}
inventory:
  - {id: i1, name: White Potion, amount: 2, type: healing}
`)
	out, err := runCLI(t, "--addr", srv.URL, "decide", snap, "--session", "s-1", "--request-id", "r-1")
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if got["session_id"] != "s-1" || got["request_id"] != "r-1" {
		t.Fatalf("ids not forwarded: %#v", got)
	}
	state, _ := got["game_state"].(map[string]any)
	char, _ := state["character"].(map[string]any)
	if char["name"] != "Alice" || char["max_hp"] != float64(100) {
		t.Fatalf("character not converted: %#v", char)
	}
	monsters, _ := state["monsters"].([]any)
	if len(monsters) != 1 {
		t.Fatalf("expected one monster, got %#v", state["monsters"])
	}
	if !strings.Contains(out, `"tier_used": "reflex"`) {
		t.Fatalf("expected indented reply, got %s", out)
	}
}

func TestDecide_RejectsMissingFileAndNonMapping(t *testing.T) {
	if _, err := runCLI(t, "--addr", "http://127.0.0.1:1", "decide", filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	list := writeFile(t, "list.yaml", "- 1\n- 2\n")
	if _, err := runCLI(t, "--addr", "http://127.0.0.1:1", "decide", list); err == nil {
		t.Fatalf("expected error for non-mapping snapshot")
	}
}

func TestHealthAndMetrics_PrintServerBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/health":
			_, _ = w.Write([]byte(`{"status":"healthy"}`))
		case "/api/v1/metrics":
			_, _ = w.Write([]byte(`{"requests_total":3}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	out, err := runCLI(t, "--addr", srv.URL, "health")
	if err != nil || !strings.Contains(out, `"status": "healthy"`) {
		t.Fatalf("health: out=%q err=%v", out, err)
	}
	out, err = runCLI(t, "--addr", srv.URL, "metrics")
	if err != nil || !strings.Contains(out, `"requests_total": 3`) {
		t.Fatalf("metrics: out=%q err=%v", out, err)
	}
}

func TestDecisions_SendsQueryAndSurfacesServerError(t *testing.T) {
	var rawQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"bad_request","message":"limit too large"}}`))
	}))
	defer srv.Close()

	_, err := runCLI(t, "--addr", srv.URL, "decisions", "alice", "--limit", "7")
	if !errors.Is(err, errServer) {
		t.Fatalf("expected errServer, got %v", err)
	}
	if !strings.Contains(err.Error(), "bad_request: limit too large") {
		t.Fatalf("expected server message in error, got %v", err)
	}
	if !strings.Contains(rawQuery, "session_id=alice") || !strings.Contains(rawQuery, "limit=7") {
		t.Fatalf("unexpected query %q", rawQuery)
	}
}

func TestHealth_UnreachableServer(t *testing.T) {
	_, err := runCLI(t, "--addr", "http://127.0.0.1:1", "--timeout", (200 * time.Millisecond).String(), "health")
	if err == nil {
		t.Fatalf("expected error for unreachable server")
	}
}

func TestTuning_ShowDefaultsAndValidate(t *testing.T) {
	out, err := runCLI(t, "tuning", "show")
	if err != nil {
		t.Fatalf("tuning show: %v", err)
	}
	if !strings.Contains(out, "hp_critical: 0.25") || !strings.Contains(out, "stuck_threshold: 5") {
		t.Fatalf("unexpected default tuning output:\n%s", out)
	}

	good := writeFile(t, "good.yaml", "reflex:\n  hp_critical: 0.2\n")
	out, err = runCLI(t, "tuning", "validate", good)
	if err != nil || !strings.Contains(out, ": ok") {
		t.Fatalf("validate good: out=%q err=%v", out, err)
	}

	bad := writeFile(t, "bad.yaml", "reflex:\n  hp_critical: 1.5\n")
	if _, err := runCLI(t, "tuning", "validate", bad); err == nil {
		t.Fatalf("expected validation error")
	}
	unknown := writeFile(t, "unknown.yaml", "reflex:\n  hp_crit: 0.2\n")
	if _, err := runCLI(t, "tuning", "validate", unknown); err == nil {
		t.Fatalf("expected unknown field error")
	}
}
