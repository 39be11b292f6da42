package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

func dialTestConn(t *testing.T) (*websocket.Conn, *websocket.Conn) {
	t.Helper()

	upgrader := websocket.Upgrader{}
	serverSide := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		serverSide <- conn
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	clientConn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = clientConn.Close() })

	select {
	case conn := <-serverSide:
		return conn, clientConn
	case <-time.After(2 * time.Second):
		t.Fatal("server side connection not established")
		return nil, nil
	}
}

func TestHubRegisterUnregister(t *testing.T) {
	hub := NewHub(nil)
	userID := uuid.New()
	serverConn, _ := dialTestConn(t)

	hub.Register(userID, serverConn)
	hub.Register(userID, serverConn)
	if got := hub.ConnCount(userID); got != 1 {
		t.Fatalf("expected 1 conn, got %d", got)
	}

	hub.Unregister(userID, serverConn)
	hub.Unregister(userID, serverConn)
	if got := hub.ConnCount(userID); got != 0 {
		t.Fatalf("expected 0 conns, got %d", got)
	}
}

func TestHubSendDeliversToUser(t *testing.T) {
	hub := NewHub(nil)
	userID := uuid.New()
	serverConn, clientConn := dialTestConn(t)
	hub.Register(userID, serverConn)

	hub.Send(context.Background(), userID, Message{
		Event: EventUnreadCount,
		Data:  map[string]int{"count": 4},
	})

	_ = clientConn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := clientConn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var msg struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.Event != EventUnreadCount {
		t.Fatalf("unexpected event %q", msg.Event)
	}
}

func TestHubSendEvictsDeadConn(t *testing.T) {
	hub := NewHub(nil)
	userID := uuid.New()
	serverConn, clientConn := dialTestConn(t)
	hub.Register(userID, serverConn)

	_ = clientConn.Close()
	_ = serverConn.Close()

	hub.Send(context.Background(), userID, Message{Event: EventNotification, Data: "x"})
	if got := hub.ConnCount(userID); got != 0 {
		t.Fatalf("expected dead conn evicted, got %d", got)
	}
}

func TestHubSendUnknownUserIsNoop(t *testing.T) {
	hub := NewHub(nil)
	hub.Send(context.Background(), uuid.New(), Message{Event: EventNotification, Data: "x"})
}
