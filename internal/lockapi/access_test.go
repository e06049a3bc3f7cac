package lockapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
)

type recordedCall struct {
	route string
	body  map[string]any
}

// accessBackend answers every credential endpoint with a canned payload and
// records what it was sent.
type accessBackend struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (b *accessBackend) last() recordedCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.calls) == 0 {
		return recordedCall{}
	}
	return b.calls[len(b.calls)-1]
}

func newAccessBackend(t *testing.T) (*accessBackend, *Client) {
	t.Helper()
	b := &accessBackend{}
	r := mux.NewRouter()

	handle := func(method, path string, reply any) {
		r.HandleFunc(path, func(w http.ResponseWriter, req *http.Request) {
			var body map[string]any
			_ = json.NewDecoder(req.Body).Decode(&body)
			b.mu.Lock()
			b.calls = append(b.calls, recordedCall{route: req.Method + " " + req.URL.Path, body: body})
			b.mu.Unlock()
			w.Header().Set("Content-Type", "application/json")
			if reply != nil {
				_ = json.NewEncoder(w).Encode(reply)
			}
		}).Methods(method)
	}

	handle(http.MethodGet, "/api/state/status", DetailedStatus{Mode: ModeRegistration, DoorStatus: DoorLocked, IsRegistrationMode: true})
	handle(http.MethodPost, "/api/fingerprint/enroll", Fingerprint{ID: 1, FingerprintID: 3, UserName: "An"})
	handle(http.MethodPost, "/api/fingerprint/verify", VerifyResult{Success: true, UserName: "An"})
	handle(http.MethodGet, "/api/fingerprint/prints", []Fingerprint{{ID: 1, FingerprintID: 3}})
	handle(http.MethodGet, "/api/fingerprint/sensor-prints", SensorPrints{Success: true, Fingerprints: []int{3, 4}, Count: 2})
	handle(http.MethodDelete, "/api/fingerprint/clear-all", Result{Success: true, Message: "cleared"})
	handle(http.MethodDelete, "/api/fingerprint/{id}", nil)
	handle(http.MethodPost, "/api/rfid/register", RFIDCard{ID: 5, CardUID: "04A1B2", UserName: "Binh"})
	handle(http.MethodPost, "/api/rfid/verify", VerifyResult{Success: false, Message: "unknown card"})
	handle(http.MethodGet, "/api/rfid/cards", []RFIDCard{{ID: 5, CardUID: "04A1B2"}})
	handle(http.MethodDelete, "/api/rfid/{id}", nil)
	handle(http.MethodPost, "/api/keypad/set-password", Result{Success: true})
	handle(http.MethodPost, "/api/keypad/verify", VerifyResult{Success: true})
	handle(http.MethodGet, "/api/keypad/has-password", map[string]bool{"has_password": true})
	handle(http.MethodPost, "/api/face/verify-from-stream", VerifyResult{Success: true, UserName: "Chi", Similarity: 0.82})
	handle(http.MethodGet, "/api/face/users", []FaceUser{{ID: 2, Name: "Chi", HasFace: true}})
	handle(http.MethodDelete, "/api/face/{id}", nil)
	handle(http.MethodGet, "/api/users/all", []User{{ID: 2, Name: "Chi", FacesCount: 1}})
	handle(http.MethodDelete, "/api/users/{id}", nil)
	handle(http.MethodDelete, "/api/logs/clear-all", nil)
	handle(http.MethodDelete, "/api/logs/{id}", nil)

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return b, c
}

func TestClient_CredentialEndpoints(t *testing.T) {
	t.Parallel()

	b, c := newAccessBackend(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	tests := []struct {
		name  string
		call  func() error
		route string
		body  map[string]any
	}{
		{
			name: "detailed status",
			call: func() error {
				st, err := c.GetDetailedStatus(ctx)
				if err == nil && !st.IsRegistrationMode {
					t.Errorf("GetDetailedStatus = %#v", st)
				}
				return err
			},
			route: "GET /api/state/status",
		},
		{
			name: "enroll fingerprint",
			call: func() error {
				fp, err := c.EnrollFingerprint(ctx, EnrollRequest{FingerprintID: 3, UserName: "An", FingerPosition: 1})
				if err == nil && fp.FingerprintID != 3 {
					t.Errorf("EnrollFingerprint = %#v", fp)
				}
				return err
			},
			route: "POST /api/fingerprint/enroll",
			body:  map[string]any{"fingerprint_id": float64(3), "user_name": "An", "finger_position": float64(1)},
		},
		{
			name: "verify fingerprint",
			call: func() error {
				_, err := c.VerifyFingerprint(ctx, 3)
				return err
			},
			route: "POST /api/fingerprint/verify",
			body:  map[string]any{"fingerprint_id": float64(3)},
		},
		{
			name: "list fingerprints",
			call: func() error {
				prints, err := c.ListFingerprints(ctx)
				if err == nil && len(prints) != 1 {
					t.Errorf("ListFingerprints = %#v", prints)
				}
				return err
			},
			route: "GET /api/fingerprint/prints",
		},
		{
			name: "sensor fingerprints",
			call: func() error {
				sp, err := c.SensorFingerprints(ctx)
				if err == nil && sp.Count != 2 {
					t.Errorf("SensorFingerprints = %#v", sp)
				}
				return err
			},
			route: "GET /api/fingerprint/sensor-prints",
		},
		{
			name: "clear fingerprints",
			call: func() error {
				res, err := c.ClearFingerprints(ctx)
				if err == nil && res.Message != "cleared" {
					t.Errorf("ClearFingerprints = %#v", res)
				}
				return err
			},
			route: "DELETE /api/fingerprint/clear-all",
		},
		{
			name:  "delete fingerprint",
			call:  func() error { return c.DeleteFingerprint(ctx, 12) },
			route: "DELETE /api/fingerprint/12",
		},
		{
			name: "register card",
			call: func() error {
				_, err := c.RegisterCard(ctx, "04A1B2", "Binh")
				return err
			},
			route: "POST /api/rfid/register",
			body:  map[string]any{"card_uid": "04A1B2", "user_name": "Binh"},
		},
		{
			name: "verify card",
			call: func() error {
				res, err := c.VerifyCard(ctx, "FFFF")
				if err == nil && res.Success {
					t.Errorf("VerifyCard = %#v, want failure payload", res)
				}
				return err
			},
			route: "POST /api/rfid/verify",
			body:  map[string]any{"card_uid": "FFFF"},
		},
		{
			name: "list cards",
			call: func() error {
				_, err := c.ListCards(ctx)
				return err
			},
			route: "GET /api/rfid/cards",
		},
		{
			name:  "delete card",
			call:  func() error { return c.DeleteCard(ctx, 5) },
			route: "DELETE /api/rfid/5",
		},
		{
			name: "set keypad password",
			call: func() error {
				_, err := c.SetKeypadPassword(ctx, "2468")
				return err
			},
			route: "POST /api/keypad/set-password",
			body:  map[string]any{"password": "2468"},
		},
		{
			name: "verify keypad",
			call: func() error {
				_, err := c.VerifyKeypad(ctx, "2468")
				return err
			},
			route: "POST /api/keypad/verify",
			body:  map[string]any{"password": "2468"},
		},
		{
			name: "has keypad password",
			call: func() error {
				has, err := c.HasKeypadPassword(ctx)
				if err == nil && !has {
					t.Errorf("HasKeypadPassword = false, want true")
				}
				return err
			},
			route: "GET /api/keypad/has-password",
		},
		{
			name: "verify face",
			call: func() error {
				res, err := c.VerifyFaceFromStream(ctx)
				if err == nil && res.UserName != "Chi" {
					t.Errorf("VerifyFaceFromStream = %#v", res)
				}
				return err
			},
			route: "POST /api/face/verify-from-stream",
		},
		{
			name: "list face users",
			call: func() error {
				_, err := c.ListFaceUsers(ctx)
				return err
			},
			route: "GET /api/face/users",
		},
		{
			name:  "delete face",
			call:  func() error { return c.DeleteFace(ctx, 2) },
			route: "DELETE /api/face/2",
		},
		{
			name: "list users",
			call: func() error {
				users, err := c.ListUsers(ctx)
				if err == nil && (len(users) != 1 || users[0].FacesCount != 1) {
					t.Errorf("ListUsers = %#v", users)
				}
				return err
			},
			route: "GET /api/users/all",
		},
		{
			name:  "delete user",
			call:  func() error { return c.DeleteUser(ctx, 2) },
			route: "DELETE /api/users/2",
		},
		{
			name:  "delete log",
			call:  func() error { return c.DeleteLog(ctx, 99) },
			route: "DELETE /api/logs/99",
		},
		{
			name:  "clear logs",
			call:  func() error { return c.ClearLogs(ctx) },
			route: "DELETE /api/logs/clear-all",
		},
	}

	for _, tc := range tests {
		if err := tc.call(); err != nil {
			t.Fatalf("%s returned error: %v", tc.name, err)
		}
		got := b.last()
		if got.route != tc.route {
			t.Fatalf("%s hit %q, want %q", tc.name, got.route, tc.route)
		}
		for k, want := range tc.body {
			if got.body[k] != want {
				t.Fatalf("%s body[%s] = %#v, want %#v", tc.name, k, got.body[k], want)
			}
		}
	}
}

func TestClient_CredentialArgumentChecks(t *testing.T) {
	c, err := NewClient("127.0.0.1:1")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if _, err := c.EnrollFingerprint(context.Background(), EnrollRequest{FingerprintID: 1}); err == nil {
		t.Fatalf("EnrollFingerprint accepted an empty user name")
	}
	if _, err := c.RegisterCard(context.Background(), " ", "Binh"); err == nil {
		t.Fatalf("RegisterCard accepted an empty card uid")
	}
}
