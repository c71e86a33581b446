// Package push delivers notifications to registered devices.
package push

import (
	"context"
	"log"
)

// MulticastMessage is one notification fanned out to many device tokens.
type MulticastMessage struct {
	Tokens []string
	Title  string
	Body   string
	Data   map[string]string
}

// SendResponse is the delivery outcome for a single token.
type SendResponse struct {
	Token     string `json:"token"`
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`

	// Unregistered is set when the push service reports the token as no longer valid.
	Unregistered bool `json:"unregistered,omitempty"`
}

// BatchResponse aggregates the per-token outcomes of one multicast.
type BatchResponse struct {
	SuccessCount int            `json:"successCount"`
	FailureCount int            `json:"failureCount"`
	Responses    []SendResponse `json:"responses"`
}

func (b *BatchResponse) add(r SendResponse) {
	if r.Success {
		b.SuccessCount++
	} else {
		b.FailureCount++
	}
	b.Responses = append(b.Responses, r)
}

// Sender delivers multicast messages.
type Sender interface {
	// SendMulticast sends msg to every token. Per-token failures are reported
	// in the BatchResponse; a returned error means the send could not be
	// attempted at all.
	SendMulticast(ctx context.Context, msg MulticastMessage) (*BatchResponse, error)

	// Enabled reports whether messages are actually delivered.
	Enabled() bool
}

// NoopSender is used when push credentials are not configured.
type NoopSender struct{}

// NewNoopSender creates a new NoopSender.
func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

// SendMulticast logs and drops the message.
func (s *NoopSender) SendMulticast(ctx context.Context, msg MulticastMessage) (*BatchResponse, error) {
	log.Printf("push disabled, dropping %q for %d tokens", msg.Title, len(msg.Tokens))
	return &BatchResponse{}, nil
}

// Enabled always returns false.
func (s *NoopSender) Enabled() bool {
	return false
}

// Ensure senders implement Sender.
var (
	_ Sender = (*NoopSender)(nil)
	_ Sender = (*FCMSender)(nil)
)
