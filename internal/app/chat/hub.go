package chat

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"chatrelay/internal/app/store"
	"chatrelay/internal/pkg/errs"
	"chatrelay/internal/pkg/logx"
)

// MaxContentBytes is the maximum allowed size of a chat message's content.
const MaxContentBytes = 5000

// Hub is the presence/message gateway: the protocol-facing entry point that
// accepts inbound events, enriches them via the external datastore, and
// drives the resolver, registry, and broadcaster.
//
// Every connection's inbound events are processed one at a time (the read
// pump calls these methods serially), but events from different connections
// run concurrently against the datastore.
type Hub struct {
	store       store.Store
	registry    *Registry
	broadcaster *Broadcaster
	resolver    *Resolver

	// room is the single channel all traffic flows through, modeled
	// explicitly so the delivery contract survives a later move to
	// multiple rooms.
	room store.ChatRoom

	// joinMu serializes the resolve-then-bind section of HandleJoin across
	// connections so that at most one live binding exists per username.
	joinMu sync.Mutex

	logger zerolog.Logger
}

// NewHub assembles the gateway and its three collaborating components around
// the given datastore and room.
func NewHub(st store.Store, room store.ChatRoom) *Hub {
	registry := NewRegistry()

	return &Hub{
		store:       st,
		registry:    registry,
		broadcaster: NewBroadcaster(),
		resolver:    NewResolver(st, registry),
		room:        room,
		logger:      logx.Logger().With().Str("component", "hub").Str("room", room.Name).Logger(),
	}
}

// Registry exposes the connection registry, mainly for handlers and tests.
func (h *Hub) Registry() *Registry {
	return h.registry
}

// Broadcaster exposes the event broadcaster.
func (h *Hub) Broadcaster() *Broadcaster {
	return h.broadcaster
}

// Connect attaches a new connection's send channel so it starts receiving
// broadcasts immediately, before any join completes.
func (h *Hub) Connect(connID string, send chan []byte) {
	h.broadcaster.Attach(connID, send)
	h.logger.Info().Str("conn_id", connID).Int("connections", h.broadcaster.Len()).Msg("Connection attached")
}

// HandleJoin drives the Connected -> Joined transition: resolve the requested
// name, bind the connection to the resolved identity, and announce the join
// to everyone. On failure the connection stays unjoined and receives a
// connection-scoped error event.
func (h *Hub) HandleJoin(ctx context.Context, connID, requestedName string) {
	requestedName = strings.TrimSpace(requestedName)
	if requestedName == "" {
		h.broadcaster.SendTo(connID, NewErrorEvent(errs.NewError(errs.ErrInvalidParams).Message))
		return
	}

	h.joinMu.Lock()
	user, cerr := h.resolver.Resolve(ctx, requestedName)
	if cerr != nil {
		h.joinMu.Unlock()
		h.broadcaster.SendTo(connID, NewErrorEvent(cerr.Message))
		return
	}

	h.registry.Bind(connID, user.ID, user.Username)
	h.joinMu.Unlock()

	h.logger.Info().
		Str("conn_id", connID).
		Str("user_id", user.ID).
		Str("username", user.Username).
		Msg("Connection joined")

	h.broadcaster.BroadcastAll(NewUserJoinedEvent(user))
}

// HandleChatMessage persists an inbound message and broadcasts the enriched
// record. A message from a connection that never joined is stored with no
// author and still broadcast rather than rejected.
func (h *Hub) HandleChatMessage(ctx context.Context, connID, content string) {
	if len(content) > MaxContentBytes {
		h.broadcaster.SendTo(connID, NewErrorEvent(errs.NewError(errs.ErrMessageContentTooLong).Message))
		return
	}

	var userID *string
	if ident, ok := h.registry.Lookup(connID); ok {
		userID = &ident.UserID
	}

	msg, err := h.store.CreateMessage(ctx, h.room.ID, userID, content)
	if err != nil {
		h.logger.Error().Err(err).Str("conn_id", connID).Msg("Failed to persist chat message")
		h.broadcaster.SendTo(connID, NewErrorEvent(err.Error()))
		return
	}

	h.broadcaster.BroadcastAll(NewMessageEvent(msg))
}

// HandleDisconnect drives the terminal transition. The connection is always
// detached from the broadcaster; if it was bound, the user's last-seen
// timestamp is updated and the departure announced. A failing last-seen
// update is logged only - there is no one left to surface it to - and never
// blocks teardown.
func (h *Hub) HandleDisconnect(ctx context.Context, connID string) {
	h.broadcaster.Detach(connID)

	ident, ok := h.registry.Unbind(connID)
	if !ok {
		h.logger.Info().Str("conn_id", connID).Msg("Unjoined connection disconnected")
		return
	}

	if err := h.store.TouchLastSeen(ctx, ident.UserID); err != nil {
		h.logger.Error().Err(err).Str("user_id", ident.UserID).Msg("Failed to update last_seen on disconnect")
	}

	h.logger.Info().
		Str("conn_id", connID).
		Str("user_id", ident.UserID).
		Str("username", ident.Username).
		Msg("Connection disconnected")

	h.broadcaster.BroadcastAll(NewUserLeftEvent(ident.UserID))
}

// Shutdown closes every attached connection's send channel, terminating all
// write pumps. Called once during server shutdown.
func (h *Hub) Shutdown() {
	h.logger.Info().Int("connections", h.broadcaster.Len()).Msg("Shutting down hub")
	h.broadcaster.CloseAll()
}
