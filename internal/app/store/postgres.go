package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"chatrelay/internal/app/db"
)

// Postgres implements Store on top of a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps an established connection pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) UpsertUser(ctx context.Context, username string) (ChatUser, error) {
	const q = `
		INSERT INTO chat_users (username, last_seen)
		VALUES ($1, now())
		ON CONFLICT (username) DO UPDATE SET last_seen = now()
		RETURNING id, username, avatar_url, last_seen, created_at`

	var u ChatUser
	err := p.pool.QueryRow(ctx, q, username).
		Scan(&u.ID, &u.Username, &u.AvatarURL, &u.LastSeen, &u.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ChatUser{}, ErrUsernameTaken
		}
		return ChatUser{}, fmt.Errorf("upsert user: %w", err)
	}
	return u, nil
}

func (p *Postgres) CreateUser(ctx context.Context, username string) (ChatUser, error) {
	const q = `
		INSERT INTO chat_users (username, last_seen)
		VALUES ($1, now())
		RETURNING id, username, avatar_url, last_seen, created_at`

	var u ChatUser
	err := p.pool.QueryRow(ctx, q, username).
		Scan(&u.ID, &u.Username, &u.AvatarURL, &u.LastSeen, &u.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ChatUser{}, ErrUsernameTaken
		}
		return ChatUser{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (p *Postgres) TouchLastSeen(ctx context.Context, userID string) error {
	const q = `UPDATE chat_users SET last_seen = now() WHERE id = $1`

	if _, err := p.pool.Exec(ctx, q, userID); err != nil {
		return fmt.Errorf("touch last_seen: %w", err)
	}
	return nil
}

func (p *Postgres) RoomByName(ctx context.Context, name string) (ChatRoom, error) {
	const q = `SELECT id, name, created_at FROM chat_rooms WHERE name = $1`

	var room ChatRoom
	err := p.pool.QueryRow(ctx, q, name).Scan(&room.ID, &room.Name, &room.CreatedAt)
	if err != nil {
		return ChatRoom{}, fmt.Errorf("room by name %q: %w", name, err)
	}
	return room, nil
}

func (p *Postgres) CreateMessage(ctx context.Context, roomID string, userID *string, content string) (Message, error) {
	const insert = `
		INSERT INTO messages (content, user_id, room_id)
		VALUES ($1, $2, $3)
		RETURNING id`

	var messageID string
	if err := p.pool.QueryRow(ctx, insert, content, userID, roomID).Scan(&messageID); err != nil {
		return Message{}, fmt.Errorf("insert message: %w", err)
	}

	// Re-read joined with the author so the broadcast carries display fields.
	const sel = `
		SELECT m.id, m.content, m.user_id, m.room_id, m.created_at,
		       u.username, u.avatar_url
		FROM messages m
		LEFT JOIN chat_users u ON u.id = m.user_id
		WHERE m.id = $1`

	var (
		m         Message
		username  *string
		avatarURL *string
	)
	err := p.pool.QueryRow(ctx, sel, messageID).
		Scan(&m.ID, &m.Content, &m.UserID, &m.RoomID, &m.CreatedAt, &username, &avatarURL)
	if err != nil {
		return Message{}, fmt.Errorf("read back message: %w", err)
	}

	if username != nil {
		m.User = &MessageAuthor{Username: *username, AvatarURL: avatarURL}
	}
	m.Reactions = []Reaction{}

	return m, nil
}

func (p *Postgres) ListRooms(ctx context.Context) ([]ChatRoom, error) {
	const q = `SELECT id, name, created_at FROM chat_rooms ORDER BY created_at ASC`

	rows, err := p.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()

	rooms := []ChatRoom{}
	for rows.Next() {
		var room ChatRoom
		if err := rows.Scan(&room.ID, &room.Name, &room.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}

	return rooms, nil
}

func (p *Postgres) ListMessages(ctx context.Context) ([]Message, error) {
	const q = `
		SELECT m.id, m.content, m.user_id, m.room_id, m.created_at,
		       u.username, u.avatar_url
		FROM messages m
		LEFT JOIN chat_users u ON u.id = m.user_id
		ORDER BY m.created_at ASC`

	rows, err := p.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	messages := []Message{}
	for rows.Next() {
		var (
			m         Message
			username  *string
			avatarURL *string
		)
		if err := rows.Scan(&m.ID, &m.Content, &m.UserID, &m.RoomID, &m.CreatedAt, &username, &avatarURL); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		if username != nil {
			m.User = &MessageAuthor{Username: *username, AvatarURL: avatarURL}
		}
		m.Reactions = []Reaction{}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	reactions, err := p.listReactions(ctx)
	if err != nil {
		return nil, err
	}

	return attachReactions(messages, reactions), nil
}

// messageReaction pairs a reaction with the message it belongs to.
type messageReaction struct {
	MessageID string
	Reaction  Reaction
}

func (p *Postgres) listReactions(ctx context.Context) ([]messageReaction, error) {
	const q = `
		SELECT r.message_id, r.id, r.emoji, r.user_id, u.username
		FROM message_reactions r
		JOIN chat_users u ON u.id = r.user_id
		ORDER BY r.created_at ASC`

	rows, err := p.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list reactions: %w", err)
	}
	defer rows.Close()

	reactions := []messageReaction{}
	for rows.Next() {
		var mr messageReaction
		if err := rows.Scan(&mr.MessageID, &mr.Reaction.ID, &mr.Reaction.Emoji, &mr.Reaction.UserID, &mr.Reaction.ReactorUsername); err != nil {
			return nil, fmt.Errorf("scan reaction: %w", err)
		}
		reactions = append(reactions, mr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list reactions: %w", err)
	}

	return reactions, nil
}

// attachReactions distributes joined reaction rows onto their messages,
// preserving message order.
func attachReactions(messages []Message, reactions []messageReaction) []Message {
	if len(reactions) == 0 {
		return messages
	}

	byMessage := make(map[string][]Reaction, len(messages))
	for _, mr := range reactions {
		byMessage[mr.MessageID] = append(byMessage[mr.MessageID], mr.Reaction)
	}

	for i := range messages {
		if rs, ok := byMessage[messages[i].ID]; ok {
			messages[i].Reactions = rs
		}
	}

	return messages
}

func (p *Postgres) ListUsers(ctx context.Context) ([]ChatUser, error) {
	const q = `
		SELECT id, username, avatar_url, last_seen, created_at
		FROM chat_users
		ORDER BY last_seen DESC`

	rows, err := p.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []ChatUser{}
	for rows.Next() {
		var u ChatUser
		if err := rows.Scan(&u.ID, &u.Username, &u.AvatarURL, &u.LastSeen, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	return users, nil
}

// compile-time interface check
var _ Store = (*Postgres)(nil)
