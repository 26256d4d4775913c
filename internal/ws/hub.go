package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/kf-pos/dashboard/internal/service"
)

// EventSnapshot carries a service.DashboardView.
const EventSnapshot = "dashboard.snapshot"

// Event represents a WebSocket message to be broadcast
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub pushes board snapshots to connected dashboards. Clients join the room
// of the tab they display; every room gets its own narrowed view.
//
// Snapshots supersede each other, so the hub only keeps the latest one and
// a publish never blocks the board.
type Hub struct {
	// Registered clients by view
	rooms map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client

	// wake is signalled when latest changes
	wake   chan struct{}
	latest *service.Snapshot

	onCount func(n int)
	logger  *slog.Logger

	// done is closed when Run returns
	done chan struct{}

	mu sync.RWMutex
}

type HubOption func(*Hub)

// WithClientGauge reports the number of connected clients after each change.
func WithClientGauge(fn func(n int)) HubOption {
	return func(h *Hub) { h.onCount = fn }
}

func WithLogger(l *slog.Logger) HubOption {
	return func(h *Hub) { h.logger = l }
}

func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		wake:       make(chan struct{}, 1),
		done:       make(chan struct{}),
		onCount:    func(int) {},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run starts the hub's main loop and returns when ctx is done.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return nil

		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.view] == nil {
				h.rooms[client.view] = make(map[*Client]bool)
			}
			h.rooms[client.view][client] = true
			latest := h.latest
			h.mu.Unlock()
			h.onCount(h.ClientCount())

			// A new client starts from the current state.
			if latest != nil {
				if msg, err := encode(*latest, client.view); err == nil {
					h.send(client, msg)
				}
			}

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()
			h.onCount(h.ClientCount())

		case <-h.wake:
			h.mu.RLock()
			latest := h.latest
			h.mu.RUnlock()
			if latest != nil {
				h.fanOut(*latest)
			}
		}
	}
}

// Publish records snap as the latest state and wakes the hub. It has the
// signature of a service.Board change subscriber. Subscribers run outside the
// board lock, so a snapshot no newer than the latest one is dropped.
func (h *Hub) Publish(snap service.Snapshot) {
	h.mu.Lock()
	if h.latest != nil && snap.Version <= h.latest.Version {
		h.mu.Unlock()
		return
	}
	h.latest = &snap
	h.mu.Unlock()
	select {
	case h.wake <- struct{}{}:
	default:
	}
}

// join registers client unless the hub has stopped.
func (h *Hub) join(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// ClientCount returns the number of registered clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, clients := range h.rooms {
		n += len(clients)
	}
	return n
}

func (h *Hub) fanOut(snap service.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for view, clients := range h.rooms {
		// Marshal once per room
		msg, err := encode(snap, view)
		if err != nil {
			h.logger.Error("encode snapshot", "view", view, "error", err)
			continue
		}
		for client := range clients {
			select {
			case client.send <- msg:
			default:
				// Client's send buffer is full, close and unregister
				h.logger.Warn("dropping slow websocket client", "view", view)
				h.remove(client)
			}
		}
	}
}

func (h *Hub) send(client *Client, msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.rooms[client.view][client] {
		return
	}
	select {
	case client.send <- msg:
	default:
		h.remove(client)
	}
}

// remove must be called with mu held.
func (h *Hub) remove(client *Client) {
	clients, ok := h.rooms[client.view]
	if !ok {
		return
	}
	if _, exists := clients[client]; !exists {
		return
	}
	delete(clients, client)
	close(client.send)
	// Clean up empty rooms
	if len(clients) == 0 {
		delete(h.rooms, client.view)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	for _, clients := range h.rooms {
		for client := range clients {
			h.remove(client)
		}
	}
	h.mu.Unlock()
	h.onCount(0)
}

func encode(snap service.Snapshot, view string) ([]byte, error) {
	payload, err := json.Marshal(snap.ForView(view))
	if err != nil {
		return nil, err
	}
	return json.Marshal(Event{Type: EventSnapshot, Payload: payload})
}
