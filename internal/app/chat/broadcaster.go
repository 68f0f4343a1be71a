package chat

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"chatrelay/internal/pkg/logx"
)

// Broadcaster owns the set of active connection handles and is the only
// component that mutates it. Delivery is best-effort: a recipient whose send
// buffer is full or already closed is skipped without aborting delivery to
// the others, and a connection not attached at broadcast time never sees the
// event.
type Broadcaster struct {
	mu     sync.RWMutex
	conns  map[string]chan []byte
	logger zerolog.Logger
}

// NewBroadcaster creates an empty Broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		conns:  make(map[string]chan []byte),
		logger: logx.Logger().With().Str("component", "broadcaster").Logger(),
	}
}

// Attach registers a connection's send channel. This happens at connect time,
// before any join: broadcast delivery is independent of the identity registry.
func (b *Broadcaster) Attach(connID string, send chan []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.conns[connID] = send
}

// Detach removes a connection's send channel. Safe to call for an unknown id.
func (b *Broadcaster) Detach(connID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.conns, connID)
}

// BroadcastAll delivers the event to every currently attached connection,
// including the sender.
func (b *Broadcaster) BroadcastAll(ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		b.logger.Error().Err(err).Str("event_type", string(ev.Type)).Msg("Error marshaling event for broadcast")
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for connID, send := range b.conns {
		b.deliver(connID, send, payload)
	}
}

// SendTo delivers the event to exactly one connection. Used for
// connection-scoped errors only.
func (b *Broadcaster) SendTo(connID string, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		b.logger.Error().Err(err).Str("event_type", string(ev.Type)).Msg("Error marshaling event for unicast")
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	send, ok := b.conns[connID]
	if !ok {
		b.logger.Warn().Str("conn_id", connID).Msg("Unicast target not attached, dropping event")
		return
	}

	b.deliver(connID, send, payload)
}

// deliver performs a non-blocking send so one slow client cannot stall the
// fan-out. Writing to a closed channel is a terminal bug elsewhere; the
// recover keeps a racing disconnect from taking down the broadcast.
func (b *Broadcaster) deliver(connID string, send chan []byte, payload []byte) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Warn().Str("conn_id", connID).Msg("Recovered delivering to closed send channel")
		}
	}()

	select {
	case send <- payload:
	default:
		b.logger.Warn().Str("conn_id", connID).Msg("Client send channel full, dropping event")
	}
}

// Len returns the number of attached connections.
func (b *Broadcaster) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.conns)
}

// CloseAll closes every attached send channel and clears the set. Used during
// server shutdown to terminate all write pumps.
func (b *Broadcaster) CloseAll() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for connID, send := range b.conns {
		close(send)
		delete(b.conns, connID)
	}
}
