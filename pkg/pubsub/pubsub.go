package pubsub

import (
	"context"
	"encoding/json"
)

// Event represents a pub/sub event
type Event struct {
	Topic   string          `json:"topic"`   // Subscription topic (e.g., "workspace_status", "findings")
	Type    string          `json:"type"`    // Event type (e.g., "initializing", "parsing", "merging", "complete")
	Data    json.RawMessage `json:"data"`    // Event payload
	Version int             `json:"version"` // Version number for ordering
}

// Subscription represents a client subscription to a topic
type Subscription interface {
	// Topic returns the subscription topic
	Topic() string

	// Events returns a channel for receiving events
	Events() <-chan Event

	// Close closes the subscription
	Close() error
}

// Publisher manages pub/sub subscriptions and event publishing
type Publisher interface {
	// Subscribe creates a new subscription to a topic
	// Context cancellation will close the subscription
	Subscribe(ctx context.Context, topic string) (Subscription, error)

	// Publish sends an event to all subscribers of a topic
	Publish(topic string, eventType string, data interface{}) error

	// Close shuts down the publisher and all subscriptions
	Close() error
}

// WorkspaceStatus represents the state of one analysis pass
type WorkspaceStatus struct {
	State   string `json:"state"`   // initializing, loading, parsing, merging, analyzing, ready, error
	Message string `json:"message"` // Human-readable status message
	Step    int    `json:"step"`    // Current step number (1-based)
	Total   int    `json:"total"`   // Total number of steps
}

// FindingsData summarizes the findings of one analysis pass
type FindingsData struct {
	RunID        string  `json:"run_id"`
	Count        int     `json:"count"`
	Fragments    int     `json:"fragments"`
	Completeness float64 `json:"completeness"`
	Complete     bool    `json:"complete"` // True when the pass has finished
}
