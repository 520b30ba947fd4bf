package testutil

import (
	"context"
	"sync"

	"github.com/ofsd-io/ofsd/internal/streamdeck"
)

// FakeSender records everything sent to the deck.
type FakeSender struct {
	mu   sync.Mutex
	sent []streamdeck.Outbound

	// Err, when set, is returned from every Send.
	Err error
	// Notify, when set, receives every sent event.
	Notify chan streamdeck.Outbound
	// OnSend, when set, runs after an event is recorded and before Send returns.
	OnSend func(msg streamdeck.Outbound)
}

// NewFakeSender creates an empty fake sender.
func NewFakeSender() *FakeSender {
	return &FakeSender{}
}

// Send implements forwarder.Sender.
func (f *FakeSender) Send(ctx context.Context, msg streamdeck.Outbound) error {
	f.mu.Lock()
	f.sent = append(f.sent, msg)
	notify := f.Notify
	err := f.Err
	onSend := f.OnSend
	f.mu.Unlock()
	if onSend != nil {
		onSend(msg)
	}
	if notify != nil {
		notify <- msg
	}
	return err
}

// Sent returns a copy of everything sent so far.
func (f *FakeSender) Sent() []streamdeck.Outbound {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]streamdeck.Outbound, len(f.sent))
	copy(out, f.sent)
	return out
}

// For returns the events sent to one context, optionally filtered by event name.
func (f *FakeSender) For(context string, events ...string) []streamdeck.Outbound {
	var out []streamdeck.Outbound
	for _, m := range f.Sent() {
		if m.Context != context {
			continue
		}
		if len(events) > 0 && !contains(events, m.Event) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Events returns the events with the given name.
func (f *FakeSender) Events(event string) []streamdeck.Outbound {
	var out []streamdeck.Outbound
	for _, m := range f.Sent() {
		if m.Event == event {
			out = append(out, m)
		}
	}
	return out
}

// Reset forgets everything sent.
func (f *FakeSender) Reset() {
	f.mu.Lock()
	f.sent = nil
	f.mu.Unlock()
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
