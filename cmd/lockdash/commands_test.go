package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"github.com/five82/lockdash/internal/lockapi"
	"github.com/five82/lockdash/internal/state"
)

func writeTestConfig(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	body := "[log]\nfile = \"" + filepath.ToSlash(filepath.Join(dir, "lockdash.log")) + "\"\n"
	if err := os.WriteFile(cfgPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return cfgPath, filepath.Join(dir, "prefs.toml")
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestDoorCommand(t *testing.T) {
	var gotDoor string
	r := mux.NewRouter()
	r.HandleFunc("/api/state/door", func(w http.ResponseWriter, req *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(req.Body).Decode(&body)
		gotDoor = body["status"]
		_ = json.NewEncoder(w).Encode(lockapi.Result{Success: true})
	}).Methods(http.MethodPost)
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	cfgPath, prefsPath := writeTestConfig(t)
	out, err := runRoot(t, "--config", cfgPath, "--prefs", prefsPath, "--api", server.URL, "door", "unlock")
	if err != nil {
		t.Fatalf("door unlock: %v", err)
	}
	if gotDoor != "unlocked" {
		t.Fatalf("backend saw %q, want unlocked", gotDoor)
	}
	if !strings.Contains(out, "door unlocked") {
		t.Fatalf("output = %q", out)
	}

	if _, err := runRoot(t, "--config", cfgPath, "--prefs", prefsPath, "--api", server.URL, "door", "open"); err == nil {
		t.Fatalf("door open accepted")
	}
}

func TestEndpointSetPersists(t *testing.T) {
	cfgPath, prefsPath := writeTestConfig(t)

	if _, err := runRoot(t, "--config", cfgPath, "--prefs", prefsPath, "endpoint", "set", "door.local:9000"); err != nil {
		t.Fatalf("endpoint set: %v", err)
	}
	out, err := runRoot(t, "--config", cfgPath, "--prefs", prefsPath, "endpoint")
	if err != nil {
		t.Fatalf("endpoint: %v", err)
	}
	if strings.TrimSpace(out) != "http://door.local:9000" {
		t.Fatalf("endpoint = %q, want http://door.local:9000", out)
	}
}

func TestConfigSetRequiresAField(t *testing.T) {
	cfgPath, prefsPath := writeTestConfig(t)
	_, err := runRoot(t, "--config", cfgPath, "--prefs", prefsPath, "config", "set")
	if err == nil || !strings.Contains(err.Error(), "nothing to update") {
		t.Fatalf("err = %v, want nothing to update", err)
	}
}

func TestWriteStatus(t *testing.T) {
	snap := state.Snapshot{
		Mode:       lockapi.ModeRegistration,
		DoorStatus: lockapi.DoorUnlocked,
		Config:     &lockapi.RuntimeConfig{UARTPort: "/dev/ttyUSB0", UARTBaudrate: 115200, FaceSimilarityThreshold: 0.5},
		Stats:      &lockapi.AccessStats{TotalAccesses: 4, SuccessfulAccesses: 3, FailedAccesses: 1},
	}
	var out bytes.Buffer
	writeStatus(&out, "http://door.local:8000", snap, lockapi.Health{Status: "healthy", UARTConnected: true}, nil)

	text := out.String()
	for _, want := range []string{"unlocked", "registration", "healthy", "connected", "/dev/ttyUSB0 @ 115200", "4 total, 3 granted, 1 denied (75%)"} {
		if !strings.Contains(text, want) {
			t.Errorf("status output missing %q:\n%s", want, text)
		}
	}

	out.Reset()
	writeStatus(&out, "http://door.local:8000", state.Initial(), lockapi.Health{}, errors.New("connection refused"))
	if !strings.Contains(out.String(), "unreachable") {
		t.Errorf("status output missing unreachable:\n%s", out.String())
	}
}

func TestWriteLogs(t *testing.T) {
	page := lockapi.LogPage{
		Total: 10,
		Logs: []lockapi.AccessLog{
			{ID: 7, AccessMethod: "rfid", AccessType: "entry", Success: true, UserName: "Minh", Timestamp: "2026-10-17T08:30:00"},
			{ID: 8, AccessMethod: "keypad", AccessType: "entry", Success: false, Timestamp: "garbage"},
		},
	}
	var out bytes.Buffer
	writeLogs(&out, page)

	text := out.String()
	for _, want := range []string{"2026-10-17 08:30:00", "granted", "denied", "Minh", "garbage", "2 of 10 entries"} {
		if !strings.Contains(text, want) {
			t.Errorf("logs output missing %q:\n%s", want, text)
		}
	}
}

func TestCredentialCommands(t *testing.T) {
	var registered map[string]string
	r := mux.NewRouter()
	r.HandleFunc("/api/state/status", func(w http.ResponseWriter, req *http.Request) {
		_ = json.NewEncoder(w).Encode(lockapi.DetailedStatus{Mode: lockapi.ModeRegistration, DoorStatus: lockapi.DoorLocked})
	}).Methods(http.MethodGet)
	r.HandleFunc("/api/users/all", func(w http.ResponseWriter, req *http.Request) {
		_ = json.NewEncoder(w).Encode([]lockapi.User{{ID: 3, Name: "Lan", FingerprintsCount: 2}})
	}).Methods(http.MethodGet)
	r.HandleFunc("/api/rfid/register", func(w http.ResponseWriter, req *http.Request) {
		_ = json.NewDecoder(req.Body).Decode(&registered)
		_ = json.NewEncoder(w).Encode(lockapi.RFIDCard{ID: 8, CardUID: registered["card_uid"], UserName: registered["user_name"]})
	}).Methods(http.MethodPost)
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	cfgPath, prefsPath := writeTestConfig(t)
	base := []string{"--config", cfgPath, "--prefs", prefsPath, "--api", server.URL}

	out, err := runRoot(t, append(base, "mode")...)
	if err != nil {
		t.Fatalf("mode: %v", err)
	}
	if strings.TrimSpace(out) != "registration (door locked)" {
		t.Fatalf("mode output = %q", out)
	}

	out, err = runRoot(t, append(base, "users")...)
	if err != nil {
		t.Fatalf("users: %v", err)
	}
	if !strings.Contains(out, "Lan") || !strings.Contains(out, "FINGERPRINTS") {
		t.Fatalf("users output = %q", out)
	}

	out, err = runRoot(t, append(base, "cards", "add", "04A1B2", "Lan")...)
	if err != nil {
		t.Fatalf("cards add: %v", err)
	}
	if registered["card_uid"] != "04A1B2" || registered["user_name"] != "Lan" {
		t.Fatalf("backend saw %v", registered)
	}
	if !strings.Contains(out, "id 8") {
		t.Fatalf("cards add output = %q", out)
	}

	if _, err := runRoot(t, append(base, "users", "rm", "abc")...); err == nil {
		t.Fatalf("users rm accepted a non-numeric id")
	}
}

func TestLogsClearNeedsConfirmation(t *testing.T) {
	cleared := false
	r := mux.NewRouter()
	r.HandleFunc("/api/logs/clear-all", func(w http.ResponseWriter, req *http.Request) {
		cleared = true
	}).Methods(http.MethodDelete)
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	cfgPath, prefsPath := writeTestConfig(t)
	base := []string{"--config", cfgPath, "--prefs", prefsPath, "--api", server.URL, "logs", "clear"}

	if _, err := runRoot(t, base...); err == nil || cleared {
		t.Fatalf("logs clear ran without --yes (err=%v, cleared=%v)", err, cleared)
	}
	if _, err := runRoot(t, append(base, "--yes")...); err != nil {
		t.Fatalf("logs clear --yes: %v", err)
	}
	if !cleared {
		t.Fatalf("backend never received clear-all")
	}
}

func TestWriteVerify(t *testing.T) {
	var out bytes.Buffer
	writeVerify(&out, lockapi.VerifyResult{Success: true, UserName: "Chi", Similarity: 0.82})
	writeVerify(&out, lockapi.VerifyResult{Message: "unknown card"})
	want := "granted Chi (similarity 0.82)\ndenied: unknown card\n"
	if out.String() != want {
		t.Fatalf("writeVerify output = %q, want %q", out.String(), want)
	}
}
