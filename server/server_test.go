package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/onnwee/chat-celebrator/celebrate"
)

type fakeEngine struct {
	snap     celebrate.Snapshot
	queued   []string
	rejected bool
}

func (f *fakeEngine) Celebrate(message string) bool {
	if f.rejected {
		return false
	}
	f.queued = append(f.queued, message)
	return true
}

func (f *fakeEngine) Snapshot() celebrate.Snapshot { return f.snap }

type fakeStore struct {
	pingErr error
	recent  []celebrate.Celebration
}

func (f *fakeStore) Ping(ctx context.Context) error { return f.pingErr }

func (f *fakeStore) Recent(ctx context.Context, n int) ([]celebrate.Celebration, error) {
	return f.recent, nil
}

func newTestMux(eng Engine, store Store, adminToken string) (http.Handler, *Hub) {
	hub := NewHub()
	mux := NewMux(Options{
		AdminToken: adminToken,
		Engine:     eng,
		Store:      store,
		Hub:        hub,
		Channel:    "somechannel",
	})
	return mux, hub
}

func TestHealthzWithoutStore(t *testing.T) {
	mux, _ := newTestMux(&fakeEngine{}, nil, "")

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("healthz = %d, want 200", rr.Code)
	}
	if rr.Body.String() != "ok" {
		t.Errorf("healthz body = %q, want ok", rr.Body.String())
	}
	if rr.Header().Get("X-Correlation-ID") == "" {
		t.Error("missing X-Correlation-ID header")
	}
}

func TestHealthzStorePingFailure(t *testing.T) {
	mux, _ := newTestMux(&fakeEngine{}, &fakeStore{pingErr: errors.New("connection refused")}, "")

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("healthz with failing store = %d, want 503", rr.Code)
	}
}

func TestStatusReportsSnapshotAndHistory(t *testing.T) {
	eng := &fakeEngine{snap: celebrate.Snapshot{
		Keywords:             []string{"gg", "pog"},
		CelebratedMilestones: []int{100},
		LastViewerCount:      123,
		PendingVisuals:       2,
	}}
	store := &fakeStore{recent: []celebrate.Celebration{
		{ID: "abc", Message: "🎉 100 viewers! 🎉", EventType: celebrate.EventViewerMilestone, At: time.Now().UTC()},
	}}
	mux, _ := newTestMux(eng, store, "")

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/status", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var resp statusResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if resp.Channel != "somechannel" {
		t.Errorf("channel = %q", resp.Channel)
	}
	if len(resp.Keywords) != 2 || resp.Keywords[0] != "gg" {
		t.Errorf("keywords = %v", resp.Keywords)
	}
	if resp.LastViewerCount != 123 {
		t.Errorf("last_viewer_count = %d", resp.LastViewerCount)
	}
	if len(resp.Recent) != 1 || resp.Recent[0].ID != "abc" {
		t.Errorf("recent = %+v", resp.Recent)
	}
	if resp.OverlayClients != 0 {
		t.Errorf("overlay_clients = %d, want 0", resp.OverlayClients)
	}
}

func TestCelebrateRequiresPost(t *testing.T) {
	mux, _ := newTestMux(&fakeEngine{}, nil, "")

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/celebrate", nil))

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET /celebrate = %d, want 405", rr.Code)
	}
}

func TestCelebrateAuth(t *testing.T) {
	eng := &fakeEngine{}
	mux, _ := newTestMux(eng, nil, "s3cret")

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/celebrate", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("no token = %d, want 401", rr.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/celebrate", strings.NewReader(`{"message":"party time"}`))
	req.Header.Set("X-Admin-Token", "wrong")
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("wrong token = %d, want 401", rr.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/celebrate", strings.NewReader(`{"message":"party time"}`))
	req.Header.Set("X-Admin-Token", "s3cret")
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusAccepted {
		t.Fatalf("valid token = %d, want 202", rr.Code)
	}
	if len(eng.queued) != 1 || eng.queued[0] != "party time" {
		t.Errorf("queued = %v", eng.queued)
	}
}

func TestCelebrateDefaultsMessage(t *testing.T) {
	eng := &fakeEngine{}
	mux, _ := newTestMux(eng, nil, "")

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/celebrate", nil))

	if rr.Code != http.StatusAccepted {
		t.Fatalf("empty body = %d, want 202", rr.Code)
	}
	if len(eng.queued) != 1 || eng.queued[0] != "Manual celebration! 🎉" {
		t.Errorf("queued = %v, want default message", eng.queued)
	}
}

func TestCelebrateQueueFull(t *testing.T) {
	mux, _ := newTestMux(&fakeEngine{rejected: true}, nil, "")

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/celebrate", nil))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("full queue = %d, want 503", rr.Code)
	}
}

func TestCelebrateRejectsMalformedBody(t *testing.T) {
	mux, _ := newTestMux(&fakeEngine{}, nil, "")

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/celebrate", strings.NewReader("{not json")))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("malformed body = %d, want 400", rr.Code)
	}
}

func TestWebsocketReceivesBroadcast(t *testing.T) {
	mux, hub := newTestMux(&fakeEngine{}, nil, "")
	ts := httptest.NewServer(mux)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial ws: %v", err)
	}
	defer conn.Close()

	// Registration happens in the server handler; wait for it.
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	want := celebrate.Celebration{
		ID:        "id-1",
		Message:   "alice said GG!!",
		EventType: celebrate.EventKeyword,
		At:        time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	hub.Broadcast(context.Background(), want)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read broadcast: %v", err)
	}
	var got celebrate.Celebration
	if err := json.Unmarshal(payload, &got); err != nil {
		t.Fatalf("decode broadcast: %v", err)
	}
	if got.ID != want.ID || got.Message != want.Message || got.EventType != want.EventType {
		t.Errorf("broadcast = %+v, want %+v", got, want)
	}
}

func TestWebsocketDisconnectRemovesClient(t *testing.T) {
	mux, hub := newTestMux(&fakeEngine{}, nil, "")
	ts := httptest.NewServer(mux)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial ws: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	conn.Close()
	deadline = time.Now().Add(2 * time.Second)
	for hub.ClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never removed after close")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
