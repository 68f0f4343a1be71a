package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"chatrelay/internal/app/store"
)

// fakeStore is an in-memory store.Store with injectable failures.
type fakeStore struct {
	mu        sync.Mutex
	users     map[string]store.ChatUser // keyed by username
	usersByID map[string]store.ChatUser
	messages  []store.Message
	touched   []string
	nextID    int

	upsertErr        error
	createErr        error
	createMessageErr error
	touchErr         error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:     make(map[string]store.ChatUser),
		usersByID: make(map[string]store.ChatUser),
	}
}

func (f *fakeStore) newID() string {
	f.nextID++
	return fmt.Sprintf("id-%d", f.nextID)
}

func (f *fakeStore) UpsertUser(_ context.Context, username string) (store.ChatUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.upsertErr != nil {
		return store.ChatUser{}, f.upsertErr
	}

	if u, ok := f.users[username]; ok {
		u.LastSeen = time.Now()
		f.users[username] = u
		f.usersByID[u.ID] = u
		return u, nil
	}

	u := store.ChatUser{
		ID:        f.newID(),
		Username:  username,
		LastSeen:  time.Now(),
		CreatedAt: time.Now(),
	}
	f.users[username] = u
	f.usersByID[u.ID] = u
	return u, nil
}

func (f *fakeStore) CreateUser(_ context.Context, username string) (store.ChatUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return store.ChatUser{}, f.createErr
	}

	if _, ok := f.users[username]; ok {
		return store.ChatUser{}, store.ErrUsernameTaken
	}

	u := store.ChatUser{
		ID:        f.newID(),
		Username:  username,
		LastSeen:  time.Now(),
		CreatedAt: time.Now(),
	}
	f.users[username] = u
	f.usersByID[u.ID] = u
	return u, nil
}

func (f *fakeStore) TouchLastSeen(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.touchErr != nil {
		return f.touchErr
	}

	f.touched = append(f.touched, userID)
	return nil
}

func (f *fakeStore) touchedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]string, len(f.touched))
	copy(out, f.touched)
	return out
}

func (f *fakeStore) RoomByName(_ context.Context, name string) (store.ChatRoom, error) {
	return store.ChatRoom{ID: "room-1", Name: name, CreatedAt: time.Now()}, nil
}

func (f *fakeStore) CreateMessage(_ context.Context, roomID string, userID *string, content string) (store.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createMessageErr != nil {
		return store.Message{}, f.createMessageErr
	}

	m := store.Message{
		ID:        f.newID(),
		Content:   content,
		UserID:    userID,
		RoomID:    roomID,
		CreatedAt: time.Now(),
		Reactions: []store.Reaction{},
	}
	if userID != nil {
		if u, ok := f.usersByID[*userID]; ok {
			m.User = &store.MessageAuthor{Username: u.Username, AvatarURL: u.AvatarURL}
		}
	}
	f.messages = append(f.messages, m)
	return m, nil
}

func (f *fakeStore) ListRooms(_ context.Context) ([]store.ChatRoom, error) {
	return []store.ChatRoom{{ID: "room-1", Name: "general"}}, nil
}

func (f *fakeStore) ListMessages(_ context.Context) ([]store.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]store.Message, len(f.messages))
	copy(out, f.messages)
	return out, nil
}

func (f *fakeStore) ListUsers(_ context.Context) ([]store.ChatUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []store.ChatUser{}
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

var _ store.Store = (*fakeStore)(nil)

// envelope mirrors the wire shape of an Event with the payload left raw.
type envelope struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// recvEvent waits for the next event on the channel and fails the test when
// nothing arrives in time.
func recvEvent(t *testing.T, ch chan []byte) envelope {
	t.Helper()

	select {
	case raw, ok := <-ch:
		if !ok {
			t.Fatal("send channel closed while waiting for event")
		}
		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("failed to decode event: %v", err)
		}
		return env
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return envelope{}
}

// mustEvent asserts the next event has the wanted type.
func mustEvent(t *testing.T, ch chan []byte, want EventType) envelope {
	t.Helper()

	env := recvEvent(t, ch)
	if env.Type != want {
		t.Fatalf("expected %q event, got %q (payload %s)", want, env.Type, env.Payload)
	}
	return env
}

// assertNoEvent asserts that nothing arrives on the channel within the window.
func assertNoEvent(t *testing.T, ch chan []byte) {
	t.Helper()

	select {
	case raw := <-ch:
		t.Fatalf("expected no event, got %s", raw)
	case <-time.After(100 * time.Millisecond):
	}
}
