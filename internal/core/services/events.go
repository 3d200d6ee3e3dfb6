package services

import (
	"sync"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure sinks implement the interface.
var (
	_ driven.EventSink = (*ChannelSink)(nil)
	_ driven.EventSink = DiscardSink{}
)

// ChannelSink delivers events to a buffered channel without blocking.
// Events that do not fit in the buffer are dropped. Safe for concurrent use.
type ChannelSink struct {
	mu     sync.Mutex
	ch     chan domain.Event
	closed bool
}

// NewChannelSink creates a sink with the given buffer size.
func NewChannelSink(buffer int) *ChannelSink {
	if buffer < 0 {
		buffer = 0
	}
	return &ChannelSink{ch: make(chan domain.Event, buffer)}
}

// Events returns the receive side of the sink.
func (s *ChannelSink) Events() <-chan domain.Event {
	return s.ch
}

// Emit sends an event if there is room. Emitting after Close is a no-op.
func (s *ChannelSink) Emit(ev domain.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- ev:
	default:
	}
}

// Close closes the channel. Safe to call more than once.
func (s *ChannelSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}

// DiscardSink drops every event.
type DiscardSink struct{}

// Emit does nothing.
func (DiscardSink) Emit(domain.Event) {}

// FuncSink adapts a function to an EventSink. The function must not block.
type FuncSink func(domain.Event)

// Emit calls f.
func (f FuncSink) Emit(ev domain.Event) {
	f(ev)
}
