package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestJoinDeliversBroadcastsAfterInitial(t *testing.T) {
	hub := NewSnapshotHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	upgrader := websocket.Upgrader{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		// A broadcast issued while the initial message is being built must
		// still reach this client, after the initial message.
		err = hub.Join(conn, func() interface{} {
			hub.Broadcast("update")
			return "initial"
		})
		if err != nil {
			_ = conn.Close()
			return
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				hub.Remove(conn)
				_ = conn.Close()
				return
			}
		}
	}))
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	for _, want := range []string{"initial", "update"} {
		var got string
		if err := conn.ReadJSON(&got); err != nil {
			t.Fatalf("read %q: %v", want, err)
		}
		if got != want {
			t.Fatalf("got %q, want %q", got, want)
		}
	}
	if hub.Count() != 1 {
		t.Fatalf("clients = %d", hub.Count())
	}
}

func TestBroadcastNeverBlocks(t *testing.T) {
	hub := NewSnapshotHub()
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			hub.Broadcast(i)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast blocked without a running hub")
	}
	if got := len(hub.ch); got != cap(hub.ch) {
		t.Fatalf("queued = %d, want %d", got, cap(hub.ch))
	}
}
