package handler

import (
	"chatrelay/internal/app/chat"
	"chatrelay/internal/app/store"
	"chatrelay/internal/configs"
)

// AppDeps bundles the collaborators every handler needs.
type AppDeps struct {
	Hub    *chat.Hub
	Store  store.Store
	Config *configs.AppConfig
}
