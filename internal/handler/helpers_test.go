package handler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"chatrelay/internal/app/chat"
	"chatrelay/internal/app/store"
	"chatrelay/internal/configs"
)

// fakeStore is an in-memory store.Store with injectable failures, enough to
// drive the handlers and the realtime scenario end to end.
type fakeStore struct {
	mu        sync.Mutex
	users     map[string]store.ChatUser
	usersByID map[string]store.ChatUser
	rooms     []store.ChatRoom
	messages  []store.Message
	nextID    int

	listRoomsErr    error
	listMessagesErr error
	listUsersErr    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:     make(map[string]store.ChatUser),
		usersByID: make(map[string]store.ChatUser),
		rooms: []store.ChatRoom{
			{ID: "room-1", Name: "general", CreatedAt: time.Now()},
		},
	}
}

func (f *fakeStore) newID() string {
	f.nextID++
	return fmt.Sprintf("id-%d", f.nextID)
}

func (f *fakeStore) UpsertUser(_ context.Context, username string) (store.ChatUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if u, ok := f.users[username]; ok {
		u.LastSeen = time.Now()
		f.users[username] = u
		f.usersByID[u.ID] = u
		return u, nil
	}

	u := store.ChatUser{ID: f.newID(), Username: username, LastSeen: time.Now(), CreatedAt: time.Now()}
	f.users[username] = u
	f.usersByID[u.ID] = u
	return u, nil
}

func (f *fakeStore) CreateUser(_ context.Context, username string) (store.ChatUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.users[username]; ok {
		return store.ChatUser{}, store.ErrUsernameTaken
	}

	u := store.ChatUser{ID: f.newID(), Username: username, LastSeen: time.Now(), CreatedAt: time.Now()}
	f.users[username] = u
	f.usersByID[u.ID] = u
	return u, nil
}

func (f *fakeStore) TouchLastSeen(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if u, ok := f.usersByID[userID]; ok {
		u.LastSeen = time.Now()
		f.usersByID[userID] = u
		f.users[u.Username] = u
	}
	return nil
}

func (f *fakeStore) RoomByName(_ context.Context, name string) (store.ChatRoom, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, room := range f.rooms {
		if room.Name == name {
			return room, nil
		}
	}
	return store.ChatRoom{}, fmt.Errorf("room %q not found", name)
}

func (f *fakeStore) CreateMessage(_ context.Context, roomID string, userID *string, content string) (store.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

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
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.listRoomsErr != nil {
		return nil, f.listRoomsErr
	}

	out := make([]store.ChatRoom, len(f.rooms))
	copy(out, f.rooms)
	return out, nil
}

func (f *fakeStore) ListMessages(_ context.Context) ([]store.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.listMessagesErr != nil {
		return nil, f.listMessagesErr
	}

	out := make([]store.Message, len(f.messages))
	copy(out, f.messages)
	return out, nil
}

func (f *fakeStore) ListUsers(_ context.Context) ([]store.ChatUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.listUsersErr != nil {
		return nil, f.listUsersErr
	}

	out := []store.ChatUser{}
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

var _ store.Store = (*fakeStore)(nil)

// newTestDeps assembles AppDeps around a fake store and a throwaway static dir.
func newTestDeps(t *testing.T, st *fakeStore) *AppDeps {
	t.Helper()

	staticDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(staticDir, "index.html"), []byte("<html>relay</html>"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := &configs.AppConfig{
		Environment:    "development",
		Port:           8080,
		AllowedOrigins: []string{},
		StaticDir:      staticDir,
	}

	hub := chat.NewHub(st, store.ChatRoom{ID: "room-1", Name: "general", CreatedAt: time.Now()})

	return &AppDeps{
		Hub:    hub,
		Store:  st,
		Config: cfg,
	}
}
