package feed

import "weddinggo/backend/internal/models"

// Client is the interface for any consumer of the enforcement event feed.
// It abstracts the underlying transport so the hub can manage websocket
// dashboards and future consumers uniformly.
type Client interface {
	// GetAdminID returns the identifier of the admin behind this connection.
	GetAdminID() string

	// GetSendChannel returns the channel the hub pushes events into. It is
	// a send-only channel from the hub's perspective.
	GetSendChannel() chan<- models.EnforcementEvent

	// Run starts the client's pumps.
	Run()
	// Close shuts down the client's connection and channels.
	Close()
}
