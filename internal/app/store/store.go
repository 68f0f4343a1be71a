/*
Package store defines the relay's view of the external relational datastore.

The Store interface is what the core and the REST handlers program against;
the pgx-backed implementation lives in postgres.go. Record structs carry the
JSON field names the datastore rows are known by on the wire.
*/
package store

import (
	"context"
	"errors"
	"time"
)

// ErrUsernameTaken is returned when an insert loses to the unique constraint
// on chat_users.username.
var ErrUsernameTaken = errors.New("username already taken")

// ChatRoom is one row of the chat_rooms table.
type ChatRoom struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatUser is one row of the chat_users table.
type ChatUser struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	AvatarURL *string   `json:"avatar_url"`
	LastSeen  time.Time `json:"last_seen"`
	CreatedAt time.Time `json:"created_at"`
}

// MessageAuthor is the author projection joined onto a message.
type MessageAuthor struct {
	Username  string  `json:"username"`
	AvatarURL *string `json:"avatar_url"`
}

// Reaction is one row of message_reactions joined with the reactor's username.
type Reaction struct {
	ID              string `json:"id"`
	Emoji           string `json:"emoji"`
	UserID          string `json:"user_id"`
	ReactorUsername string `json:"reactor_username"`
}

// Message is one row of the messages table joined with its author and
// reactions. User is nil when the message was sent by an unjoined connection.
type Message struct {
	ID        string         `json:"id"`
	Content   string         `json:"content"`
	UserID    *string        `json:"user_id"`
	RoomID    string         `json:"room_id"`
	CreatedAt time.Time      `json:"created_at"`
	User      *MessageAuthor `json:"user"`
	Reactions []Reaction     `json:"message_reactions"`
}

// Store is the set of datastore operations the relay performs. Every call may
// fail or be slow; callers decide how failures surface.
type Store interface {
	// UpsertUser registers username as a canonical identity, refreshing
	// last_seen when the record already exists, and returns the backing row.
	UpsertUser(ctx context.Context, username string) (ChatUser, error)

	// CreateUser inserts a brand-new identity. Returns ErrUsernameTaken when
	// the name is already registered.
	CreateUser(ctx context.Context, username string) (ChatUser, error)

	// TouchLastSeen updates the user's last_seen timestamp to now.
	TouchLastSeen(ctx context.Context, userID string) error

	// RoomByName fetches a room record by its unique name.
	RoomByName(ctx context.Context, name string) (ChatRoom, error)

	// CreateMessage inserts a message and re-reads it joined with its author.
	// userID may be nil for messages sent before a successful join.
	CreateMessage(ctx context.Context, roomID string, userID *string, content string) (Message, error)

	// ListRooms returns all rooms ordered by creation time ascending.
	ListRooms(ctx context.Context) ([]ChatRoom, error)

	// ListMessages returns all messages with author and reactions, ordered by
	// creation time ascending.
	ListMessages(ctx context.Context) ([]Message, error)

	// ListUsers returns all users ordered by last_seen descending.
	ListUsers(ctx context.Context) ([]ChatUser, error)
}
