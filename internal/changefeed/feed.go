// Package changefeed streams row-level change notifications for trips.
package changefeed

import "context"

// Op is the kind of change carried by an Event.
type Op string

const (
	OpInsert Op = "INSERT"
	OpUpdate Op = "UPDATE"
	OpDelete Op = "DELETE"

	// OpResync is emitted after the feed reconnects; changes may have been missed.
	OpResync Op = "RESYNC"

	// OpUnknown is emitted for payloads that could not be decoded.
	OpUnknown Op = "UNKNOWN"
)

// Event is a single change notification. TripID is empty for resync events.
type Event struct {
	Op     Op
	TripID string
}

// Feed delivers change events until ctx is cancelled, after which the
// returned channel is closed.
type Feed interface {
	Subscribe(ctx context.Context) (<-chan Event, error)
}
