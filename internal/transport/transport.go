// Package transport abstracts the delivery providers behind a single Send
// surface so the dispatch orchestrator never touches an AWS SDK type.
package transport

import (
	"context"

	"card-dispatch/internal/guests"
)

// Message is one fully composed artifact addressed to a single contact.
// HTML is set for email only.
type Message struct {
	Channel guests.Channel
	To      string
	Subject string
	Body    string
	HTML    string
}

// Transport delivers one message and returns the provider's message ID.
type Transport interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// Registry maps channels to their transport. Registration happens once at
// startup; lookups are read-only after that.
type Registry struct {
	transports map[guests.Channel]Transport
}

func NewRegistry() *Registry {
	return &Registry{transports: make(map[guests.Channel]Transport)}
}

func (r *Registry) Register(channel guests.Channel, t Transport) {
	r.transports[channel] = t
}

// For returns the transport registered for channel.
func (r *Registry) For(channel guests.Channel) (Transport, bool) {
	t, ok := r.transports[channel]
	return t, ok
}
