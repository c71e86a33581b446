package changefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/lib/pq"
)

const (
	// TripsChannel is the LISTEN channel the trips trigger notifies on.
	TripsChannel = "trips_changes"

	minReconnectInterval = 10 * time.Second
	maxReconnectInterval = time.Minute
	pingInterval         = 90 * time.Second
)

// listener is the subset of *pq.Listener the feed uses.
type listener interface {
	Listen(channel string) error
	NotificationChannel() <-chan *pq.Notification
	Ping() error
	Close() error
}

// PostgresFeed listens for NOTIFY messages sent by the trips trigger.
type PostgresFeed struct {
	channel     string
	newListener func() listener
}

// NewPostgresFeed creates a feed that opens its own connection using dsn.
func NewPostgresFeed(dsn string) *PostgresFeed {
	return &PostgresFeed{
		channel: TripsChannel,
		newListener: func() listener {
			return pq.NewListener(dsn, minReconnectInterval, maxReconnectInterval, reportListenerEvent)
		},
	}
}

func reportListenerEvent(ev pq.ListenerEventType, err error) {
	switch ev {
	case pq.ListenerEventConnected:
		log.Println("changefeed: connected")
	case pq.ListenerEventDisconnected:
		log.Printf("changefeed: disconnected: %v", err)
	case pq.ListenerEventReconnected:
		log.Println("changefeed: reconnected")
	case pq.ListenerEventConnectionAttemptFailed:
		log.Printf("changefeed: connection attempt failed: %v", err)
	}
}

// Subscribe starts listening and returns the event stream.
func (f *PostgresFeed) Subscribe(ctx context.Context) (<-chan Event, error) {
	l := f.newListener()
	if err := l.Listen(f.channel); err != nil {
		_ = l.Close()
		return nil, fmt.Errorf("listen %s: %w", f.channel, err)
	}

	events := make(chan Event, 16)
	go f.pump(ctx, l, events)

	return events, nil
}

func (f *PostgresFeed) pump(ctx context.Context, l listener, events chan<- Event) {
	defer close(events)
	defer l.Close()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	notifications := l.NotificationChannel()
	for {
		select {
		case <-ctx.Done():
			return

		case n, ok := <-notifications:
			if !ok {
				return
			}

			// pq sends nil after a reconnect.
			ev := Event{Op: OpResync}
			if n != nil {
				ev = decodePayload(n.Extra)
			}

			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}

		case <-ticker.C:
			if err := l.Ping(); err != nil {
				log.Printf("changefeed: ping failed: %v", err)
			}
		}
	}
}

type payload struct {
	Op string `json:"op"`
	ID string `json:"id"`
}

func decodePayload(extra string) Event {
	var p payload
	if err := json.Unmarshal([]byte(extra), &p); err != nil {
		log.Printf("changefeed: malformed payload %q: %v", extra, err)
		return Event{Op: OpUnknown}
	}

	switch op := Op(p.Op); op {
	case OpInsert, OpUpdate, OpDelete:
		return Event{Op: op, TripID: p.ID}
	default:
		return Event{Op: OpUnknown, TripID: p.ID}
	}
}

// Ensure PostgresFeed implements Feed.
var _ Feed = (*PostgresFeed)(nil)
