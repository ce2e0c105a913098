package handler

import (
	"chatterbox/internal/app/avatar"
	"chatterbox/internal/app/chat"
	"chatterbox/internal/app/message"
	"chatterbox/internal/app/user"
	"chatterbox/internal/configs"
)

// AppDeps carries the services shared by all handlers.
type AppDeps struct {
	Config   *configs.AppConfig
	Users    *user.Service
	Avatars  *avatar.Service
	Messages *message.Service
	Registry *chat.Registry
	Relay    *chat.Relay
}
