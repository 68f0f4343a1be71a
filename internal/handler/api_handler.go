package handler

import (
	"net/http"

	"chatrelay/internal/pkg/resp"
)

// HandleHealth reports liveness.
func HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp.RespondData(w, r, map[string]string{"status": "ok"})
	}
}

// HandleListRooms returns every chat room ordered by creation time ascending.
func HandleListRooms(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rooms, err := deps.Store.ListRooms(r.Context())
		if err != nil {
			resp.RespondDatastoreError(w, r, err)
			return
		}

		resp.RespondData(w, r, rooms)
	}
}

// HandleListMessages returns every message joined with its author and
// reactions, ordered by creation time ascending.
func HandleListMessages(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		messages, err := deps.Store.ListMessages(r.Context())
		if err != nil {
			resp.RespondDatastoreError(w, r, err)
			return
		}

		resp.RespondData(w, r, messages)
	}
}

// HandleListUsers returns every user ordered by last_seen descending.
func HandleListUsers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := deps.Store.ListUsers(r.Context())
		if err != nil {
			resp.RespondDatastoreError(w, r, err)
			return
		}

		resp.RespondData(w, r, users)
	}
}
