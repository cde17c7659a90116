package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gws "github.com/gorilla/websocket"
)

// startHub runs the server loop against an httptest listener, without
// the real port binding or mDNS announcement.
func startHub(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	s := NewServer(":0")
	go s.run()
	ts := httptest.NewServer(http.HandlerFunc(s.handleWebSocket))
	t.Cleanup(ts.Close)
	return s, ts
}

func dialDisplay(t *testing.T, ts *httptest.Server) *gws.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "?type=display"
	conn, _, err := gws.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial display: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, s *Server, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(s.GetConnectedClients()) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("connected clients = %d, want %d", len(s.GetConnectedClients()), want)
}

func readMessage(t *testing.T, conn *gws.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read message: %v", err)
	}
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("parse message: %v", err)
	}
	return msg
}

func TestPublishReachesDisplay(t *testing.T) {
	s, ts := startHub(t)
	conn := dialDisplay(t, ts)
	waitForClients(t, s, 1)

	if msg := readMessage(t, conn); msg.Type != TypeAuthResponse {
		t.Fatalf("first message type = %q, want %q", msg.Type, TypeAuthResponse)
	}

	s.Publish(TypeCartState, map[string]interface{}{"items": 1})
	if msg := readMessage(t, conn); msg.Type != TypeCartState {
		t.Errorf("broadcast type = %q, want %q", msg.Type, TypeCartState)
	}
}

func TestLateJoinerGetsLastState(t *testing.T) {
	s, ts := startHub(t)

	s.Publish(TypeSaleComplete, map[string]interface{}{"change_due": 6.4})

	conn := dialDisplay(t, ts)
	waitForClients(t, s, 1)

	if msg := readMessage(t, conn); msg.Type != TypeAuthResponse {
		t.Fatalf("first message type = %q, want %q", msg.Type, TypeAuthResponse)
	}
	if msg := readMessage(t, conn); msg.Type != TypeSaleComplete {
		t.Errorf("replayed type = %q, want %q", msg.Type, TypeSaleComplete)
	}
}

func TestStopDrainsClients(t *testing.T) {
	s, ts := startHub(t)
	dialDisplay(t, ts)
	dialDisplay(t, ts)
	waitForClients(t, s, 2)

	s.Stop()

	if got := len(s.GetConnectedClients()); got != 0 {
		t.Fatalf("connected clients after Stop = %d, want 0", got)
	}

	// A publish racing shutdown must not make the server loop send on
	// a closed channel
	s.Publish(TypeIdle, map[string]interface{}{})
	s.Publish(TypeCartState, map[string]interface{}{"items": 0})
	time.Sleep(50 * time.Millisecond)
}
