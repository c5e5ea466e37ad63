// Package feed fans enforcement events out to connected admin dashboards.
// Events arrive over redis pub/sub, so every instance of the service sees
// suspensions and appeals regardless of which instance produced them.
package feed

import (
	"encoding/json"
	"log"

	"weddinggo/backend/internal/models"
	"weddinggo/backend/internal/storage"
)

// Hub dispatches enforcement events to registered feed clients.
type Hub struct {
	Clients map[string]Client

	RegisterCh   chan Client
	UnregisterCh chan Client

	// Events carries decoded enforcement events into the run loop. The
	// pub/sub listener feeds it; tests may feed it directly.
	Events chan models.EnforcementEvent

	Storage *storage.Service
}

// NewHub creates a feed hub.
func NewHub(s *storage.Service) *Hub {
	return &Hub{
		Clients:      make(map[string]Client),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		Events:       make(chan models.EnforcementEvent, 64),
		Storage:      s,
	}
}

// startPubSubListener subscribes to the enforcement channel and forwards
// decoded events into the run loop.
func (h *Hub) startPubSubListener() {
	go func() {
		pubsub := h.Storage.SubscribeEvents()
		defer pubsub.Close()

		for msg := range pubsub.Channel() {
			var event models.EnforcementEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Printf("ERROR: Failed to decode enforcement event: %v", err)
				continue
			}
			h.Events <- event
		}
	}()
}

// Run is the hub's main dispatch loop.
func (h *Hub) Run() {
	if h.Storage != nil {
		h.startPubSubListener()
	}

	for {
		select {
		case client := <-h.RegisterCh:
			h.Clients[client.GetAdminID()] = client
			log.Printf("Feed client registered: %s", client.GetAdminID())

		case client := <-h.UnregisterCh:
			if _, ok := h.Clients[client.GetAdminID()]; ok {
				delete(h.Clients, client.GetAdminID())
				client.Close()
				log.Printf("Feed client unregistered: %s", client.GetAdminID())
			}

		case event := <-h.Events:
			h.broadcast(event)
		}
	}
}

// broadcast pushes the event to every connected client, evicting clients
// whose send buffer is full rather than blocking the whole feed.
func (h *Hub) broadcast(event models.EnforcementEvent) {
	for id, client := range h.Clients {
		select {
		case client.GetSendChannel() <- event:
		default:
			log.Printf("Feed client %s too slow, evicting", id)
			delete(h.Clients, id)
			client.Close()
		}
	}
}
