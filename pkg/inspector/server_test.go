package inspector

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cameron-webmatter/buddystate/pkg/binding"
	"github.com/cameron-webmatter/buddystate/pkg/store"
)

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("WebSocket dial failed: %v", err)
	}
	return ws
}

func readMessage(t *testing.T, ws *websocket.Conn) Message {
	t.Helper()
	ws.SetReadDeadline(time.Now().Add(time.Second))
	var msg Message
	if err := ws.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON failed: %v", err)
	}
	return msg
}

func TestNewServer(t *testing.T) {
	srv := NewServer(store.NewEventBus(nil))
	if srv == nil {
		t.Fatal("NewServer returned nil")
	}
	if srv.clients == nil {
		t.Error("clients map not initialized")
	}
	if srv.broadcast == nil {
		t.Error("broadcast channel not initialized")
	}
}

func TestServerSnapshotOnConnect(t *testing.T) {
	bus := store.NewEventBus(map[string]any{"count": 1, "name": "Alice"})
	srv := NewServer(bus)
	srv.Start()
	defer srv.Stop()

	server := httptest.NewServer(http.HandlerFunc(srv.HandleWebSocket))
	defer server.Close()

	ws := dial(t, server)
	defer ws.Close()

	msg := readMessage(t, ws)
	if msg.Type != MsgTypeSnapshot {
		t.Fatalf("expected MsgTypeSnapshot, got %v", msg.Type)
	}
	if msg.State["count"] != float64(1) {
		t.Errorf("snapshot count = %v, want 1", msg.State["count"])
	}
	if msg.State["name"] != "Alice" {
		t.Errorf("snapshot name = %v, want Alice", msg.State["name"])
	}
	if got := srv.ClientCount(); got != 1 {
		t.Errorf("expected 1 client, got %d", got)
	}
}

func TestServerBroadcastChange(t *testing.T) {
	bus := store.NewEventBus(map[string]any{"count": 0})
	tracker := binding.NewTracker()
	tracker.Track("count", "b1", "Counter")

	srv := NewServer(bus, WithTracker(tracker))
	srv.Start()
	defer srv.Stop()

	server := httptest.NewServer(http.HandlerFunc(srv.HandleWebSocket))
	defer server.Close()

	ws := dial(t, server)
	defer ws.Close()
	readMessage(t, ws)

	bus.Update("count", 0)

	msg := readMessage(t, ws)
	if msg.Type != MsgTypeChange {
		t.Fatalf("expected MsgTypeChange, got %v", msg.Type)
	}
	if msg.Key != "count" {
		t.Errorf("expected key count, got %s", msg.Key)
	}
	if msg.Value != float64(0) {
		t.Errorf("expected value 0, got %v", msg.Value)
	}
	if len(msg.Components) != 1 || msg.Components[0] != "Counter" {
		t.Errorf("expected components [Counter], got %v", msg.Components)
	}
}

func TestServerBroadcastNewKey(t *testing.T) {
	bus := store.NewEventBus(nil)
	srv := NewServer(bus)
	srv.Start()
	defer srv.Stop()

	server := httptest.NewServer(http.HandlerFunc(srv.HandleWebSocket))
	defer server.Close()

	ws := dial(t, server)
	defer ws.Close()
	readMessage(t, ws)

	bus.Update("theme", "dark")

	msg := readMessage(t, ws)
	if msg.Key != "theme" || msg.Value != "dark" {
		t.Errorf("expected theme=dark, got %s=%v", msg.Key, msg.Value)
	}
}

func TestServerMultipleClients(t *testing.T) {
	bus := store.NewEventBus(map[string]any{"count": 0})
	srv := NewServer(bus)
	srv.Start()
	defer srv.Stop()

	server := httptest.NewServer(http.HandlerFunc(srv.HandleWebSocket))
	defer server.Close()

	ws1 := dial(t, server)
	defer ws1.Close()
	ws2 := dial(t, server)
	defer ws2.Close()

	readMessage(t, ws1)
	readMessage(t, ws2)

	if got := srv.ClientCount(); got != 2 {
		t.Errorf("expected 2 clients, got %d", got)
	}

	bus.Update("count", 2)

	for i, ws := range []*websocket.Conn{ws1, ws2} {
		msg := readMessage(t, ws)
		if msg.Type != MsgTypeChange || msg.Value != float64(2) {
			t.Errorf("client %d got %+v, want change count=2", i+1, msg)
		}
	}
}

func TestServerClientDisconnect(t *testing.T) {
	srv := NewServer(store.NewEventBus(nil))
	srv.Start()
	defer srv.Stop()

	server := httptest.NewServer(http.HandlerFunc(srv.HandleWebSocket))
	defer server.Close()

	ws := dial(t, server)
	readMessage(t, ws)

	if got := srv.ClientCount(); got != 1 {
		t.Errorf("expected 1 client, got %d", got)
	}

	ws.Close()
	time.Sleep(100 * time.Millisecond)

	if got := srv.ClientCount(); got != 0 {
		t.Errorf("expected 0 clients after disconnect, got %d", got)
	}
}

func TestServerStopDetachesFromBus(t *testing.T) {
	bus := store.NewEventBus(map[string]any{"count": 0})
	srv := NewServer(bus)
	srv.Start()
	srv.Stop()
	srv.Stop()

	for i := 0; i < 300; i++ {
		bus.Update("count", i)
	}

	if got := len(srv.broadcast); got != 0 {
		t.Errorf("stopped server queued %d changes, want 0", got)
	}
}

func TestHandleState(t *testing.T) {
	bus := store.NewEventBus(map[string]any{"count": 3})
	srv := NewServer(bus)

	server := httptest.NewServer(srv.Handler("/__buddystate"))
	defer server.Close()

	resp, err := http.Get(server.URL + "/__buddystate/state")
	if err != nil {
		t.Fatalf("GET state failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var state map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if state["count"] != float64(3) {
		t.Errorf("count = %v, want 3", state["count"])
	}
}

func TestHandleStateMethodNotAllowed(t *testing.T) {
	srv := NewServer(store.NewEventBus(nil))

	req := httptest.NewRequest(http.MethodPost, "/state", nil)
	rec := httptest.NewRecorder()
	srv.HandleState(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestMessageChangeKeepsZeroValue(t *testing.T) {
	data, err := json.Marshal(Message{Type: MsgTypeChange, Key: "flag", Value: false})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	if !strings.Contains(string(data), `"value":false`) {
		t.Errorf("encoded change %s dropped the zero value", data)
	}
}
