/*
Package chat contains the real-time fan-out and presence-coordination core.

It models the four cooperating components of the relay: the identity resolver
(claiming display names against the datastore), the connection registry
(mapping live connections to resolved identities), the broadcaster (delivering
events to every connected client), and the hub (the gateway driving the other
three from inbound websocket events).

This file defines the typed events flowing in both directions over the
websocket channel.
*/
package chat

import "chatrelay/internal/app/store"

// EventType tags every frame exchanged over the realtime channel.
type EventType string

// Outbound event types.
const (
	// EventUserJoined announces a resolved identity to all connections.
	EventUserJoined EventType = "user_joined"

	// EventNewMessage carries a persisted message with its author fields.
	EventNewMessage EventType = "new_message"

	// EventUserLeft announces that a bound connection disconnected.
	EventUserLeft EventType = "user_left"

	// EventError is unicast to the originating connection only.
	EventError EventType = "error"
)

// Inbound event types.
const (
	// TypeJoin asks the relay to claim a display name for this connection.
	TypeJoin EventType = "join"

	// TypeChatMessage submits a chat message for persistence and broadcast.
	TypeChatMessage EventType = "chat_message"
)

// Event is the envelope serialized onto the websocket. Payload shapes depend
// on Type; events are immutable and fire-and-forget.
type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload"`
}

// JoinPayload is the inbound payload of a TypeJoin event.
type JoinPayload struct {
	Username string `json:"username"`
}

// ChatMessagePayload is the inbound payload of a TypeChatMessage event.
type ChatMessagePayload struct {
	Content string `json:"content"`
}

// UserLeftPayload is the outbound payload of an EventUserLeft event.
type UserLeftPayload struct {
	UserID string `json:"userId"`
}

// ErrorPayload is the outbound payload of an EventError event.
type ErrorPayload struct {
	Message string `json:"message"`
}

// NewUserJoinedEvent wraps a resolved user record for broadcast.
func NewUserJoinedEvent(user store.ChatUser) Event {
	return Event{Type: EventUserJoined, Payload: user}
}

// NewMessageEvent wraps a persisted message for broadcast.
func NewMessageEvent(msg store.Message) Event {
	return Event{Type: EventNewMessage, Payload: msg}
}

// NewUserLeftEvent wraps a departing user's id for broadcast.
func NewUserLeftEvent(userID string) Event {
	return Event{Type: EventUserLeft, Payload: UserLeftPayload{UserID: userID}}
}

// NewErrorEvent wraps an error message for unicast delivery.
func NewErrorEvent(message string) Event {
	return Event{Type: EventError, Payload: ErrorPayload{Message: message}}
}
