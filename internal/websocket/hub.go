package websocket

import (
	"context"
	"encoding/json"
	"log/slog"

	"school-admin/internal/event"
	"school-admin/internal/model"
)

// Gauge is the slice of the metrics registry the hub reports to.
type Gauge interface {
	FeedClientConnected()
	FeedClientDisconnected()
}

type noopGauge struct{}

func (noopGauge) FeedClientConnected()    {}
func (noopGauge) FeedClientDisconnected() {}

// Hub fans task activity out to connected feed clients. Leaders only
// receive events from their own dimension.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	bus        event.Bus
	gauge      Gauge
}

func NewHub(bus event.Bus, gauge Gauge) *Hub {
	if gauge == nil {
		gauge = noopGauge{}
	}
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		done:       make(chan struct{}),
		bus:        bus,
		gauge:      gauge,
	}
}

// Run serves registrations and bus events until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	events, unsubscribe := h.bus.Subscribe()
	defer unsubscribe()
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.drop(client)
			}
			return
		case client := <-h.register:
			h.clients[client] = true
			h.gauge.FeedClientConnected()
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
			}
		case e, ok := <-events:
			if !ok {
				return
			}
			h.broadcast(e)
		}
	}
}

func (h *Hub) broadcast(e event.Event) {
	message, err := json.Marshal(e)
	if err != nil {
		slog.Error("failed to marshal event", "event_id", e.ID, "error", err)
		return
	}

	for client := range h.clients {
		if !visibleTo(client.identity, e) {
			continue
		}
		select {
		case client.send <- message:
		default:
			slog.Warn("activity feed client too slow, disconnecting", "admin_id", client.identity.AdminID)
			h.drop(client)
		}
	}
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.send)
	h.gauge.FeedClientDisconnected()
}

func visibleTo(id model.Identity, e event.Event) bool {
	if id.Role.OrgWide() {
		return true
	}
	return id.DimensionID != nil && *id.DimensionID == e.Entry.DimensionID
}
