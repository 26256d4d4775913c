package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kf-pos/dashboard/internal/enum"
	"github.com/kf-pos/dashboard/internal/model"
	"github.com/kf-pos/dashboard/internal/service"
)

// mockClient creates a client for testing without a real WebSocket connection
func mockClient(hub *Hub, view string) *Client {
	return &Client{
		hub:  hub,
		view: view,
		send: make(chan []byte, 16),
	}
}

func startHub(t *testing.T, opts ...HubOption) *Hub {
	t.Helper()
	hub := NewHub(opts...)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub
}

func testSnapshot(version uint64) service.Snapshot {
	orders := []model.Order{
		{OrderID: "o1", Status: enum.OrderStatusIncoming},
		{OrderID: "o2", Status: enum.OrderStatusIncoming},
		{OrderID: "o3", Status: enum.OrderStatusDelivered},
	}
	b := service.Classify(orders)
	return service.Snapshot{
		Orders:  orders,
		Buckets: b,
		Stats:   service.ComputeStats(orders, b),
		Version: version,
	}
}

func receive(t *testing.T, client *Client) service.DashboardView {
	t.Helper()
	select {
	case msg := <-client.send:
		var ev Event
		if err := json.Unmarshal(msg, &ev); err != nil {
			t.Fatalf("failed to unmarshal event: %v", err)
		}
		if ev.Type != EventSnapshot {
			t.Fatalf("expected type %q, got %q", EventSnapshot, ev.Type)
		}
		var view service.DashboardView
		if err := json.Unmarshal(ev.Payload, &view); err != nil {
			t.Fatalf("failed to unmarshal view: %v", err)
		}
		return view
	case <-time.After(time.Second):
		t.Fatal("client did not receive message")
	}
	return service.DashboardView{}
}

func TestHubRegistration(t *testing.T) {
	var count atomic.Int32
	hub := startHub(t, WithClientGauge(func(n int) { count.Store(int32(n)) }))

	client := mockClient(hub, enum.BucketAll)
	hub.register <- client
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	registered := hub.rooms[enum.BucketAll][client]
	hub.mu.RUnlock()
	if !registered {
		t.Fatal("client not registered in view room")
	}
	if count.Load() != 1 {
		t.Errorf("client gauge = %d, want 1", count.Load())
	}

	hub.unregister <- client
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	defer hub.mu.RUnlock()
	if hub.rooms[enum.BucketAll] != nil {
		t.Fatal("view room not cleaned up after last client unregistered")
	}
	if count.Load() != 0 {
		t.Errorf("client gauge = %d, want 0", count.Load())
	}
}

func TestPublishNarrowsPerRoom(t *testing.T) {
	hub := startHub(t)

	incoming := mockClient(hub, enum.OrderStatusIncoming)
	all := mockClient(hub, enum.BucketAll)
	hub.register <- incoming
	hub.register <- all
	time.Sleep(10 * time.Millisecond)

	hub.Publish(testSnapshot(7))

	got := receive(t, incoming)
	if got.View != enum.OrderStatusIncoming || len(got.Orders) != 2 || got.Version != 7 {
		t.Errorf("INCOMING client got %+v", got)
	}
	if got.Counts[enum.BucketAll] != 3 {
		t.Errorf("counts = %v", got.Counts)
	}

	got = receive(t, all)
	if got.View != enum.BucketAll || len(got.Orders) != 3 {
		t.Errorf("ALL client got %+v", got)
	}
}

func TestNewClientGetsLatestSnapshot(t *testing.T) {
	hub := startHub(t)
	hub.Publish(testSnapshot(3))
	time.Sleep(10 * time.Millisecond)

	client := mockClient(hub, enum.OrderStatusDelivered)
	hub.register <- client

	got := receive(t, client)
	if got.Version != 3 || len(got.Orders) != 1 {
		t.Errorf("late joiner got %+v", got)
	}
}

func TestPublishKeepsNewestSnapshot(t *testing.T) {
	hub := startHub(t)

	newer := testSnapshot(5)
	older := testSnapshot(4)
	older.Loading = true
	hub.Publish(newer)
	hub.Publish(older)
	time.Sleep(10 * time.Millisecond)

	client := mockClient(hub, enum.BucketAll)
	hub.register <- client

	got := receive(t, client)
	if got.Version != 5 || got.Loading {
		t.Errorf("late joiner got version=%d loading=%v, want version=5 loading=false", got.Version, got.Loading)
	}
}

func TestSlowClientIsDropped(t *testing.T) {
	hub := startHub(t)

	slow := &Client{hub: hub, view: enum.BucketAll, send: make(chan []byte, 1)}
	hub.register <- slow
	time.Sleep(10 * time.Millisecond)

	for v := uint64(1); v <= 3; v++ {
		hub.Publish(testSnapshot(v))
		time.Sleep(10 * time.Millisecond)
	}

	if n := hub.ClientCount(); n != 0 {
		t.Errorf("slow client still registered (%d clients)", n)
	}
}

func TestRunStopsAndClosesClients(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	client := mockClient(hub, enum.BucketAll)
	hub.register <- client
	time.Sleep(10 * time.Millisecond)

	cancel()
	<-stopped

	if _, ok := <-client.send; ok {
		t.Error("send channel not closed on shutdown")
	}
	if hub.join(mockClient(hub, enum.BucketAll)) {
		t.Error("join succeeded after the hub stopped")
	}
}

func TestServeWS(t *testing.T) {
	hub := startHub(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWS(hub, w, r)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/dashboard?view=INCOMING"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(time.Second)
	for hub.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	hub.Publish(testSnapshot(1))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var ev Event
	if err := json.Unmarshal(msg, &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	var view service.DashboardView
	if err := json.Unmarshal(ev.Payload, &view); err != nil {
		t.Fatalf("unmarshal view: %v", err)
	}
	if view.View != enum.OrderStatusIncoming || len(view.Orders) != 2 {
		t.Errorf("view = %+v", view)
	}
}

func TestServeWSRejectsUnknownView(t *testing.T) {
	hub := startHub(t)
	rr := httptest.NewRecorder()
	ServeWS(hub, rr, httptest.NewRequest("GET", "/ws/dashboard?view=PENDING", nil))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}
