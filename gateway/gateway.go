// Package gateway is the transport surface: REST endpoints for the
// request/response operations and the WebSocket protocol for room-scoped
// realtime traffic. Authentication happens here; authorization decisions
// live in the services.
package gateway

import (
	"log/slog"
	"time"

	"chat-rooms/auth"
	"chat-rooms/fanout"
	"chat-rooms/repositories"
	"chat-rooms/services"
)

type Gateway struct {
	log    *slog.Logger
	tokens *auth.TokenManager
	hub    *fanout.Hub
	users  repositories.IUserRepository

	authService       services.IAuthService
	userService       services.IUserService
	roomService       services.IRoomService
	invitationService services.IInvitationService
	messageService    services.IMessageService

	handshakeTimeout     time.Duration
	wsInsecureSkipVerify bool
}

type Options struct {
	HandshakeTimeout     time.Duration
	WSInsecureSkipVerify bool
}

func New(log *slog.Logger, tokens *auth.TokenManager, hub *fanout.Hub,
	users repositories.IUserRepository,
	authService services.IAuthService, userService services.IUserService,
	roomService services.IRoomService, invitationService services.IInvitationService,
	messageService services.IMessageService, opts Options) *Gateway {
	return &Gateway{
		log:                  log,
		tokens:               tokens,
		hub:                  hub,
		users:                users,
		authService:          authService,
		userService:          userService,
		roomService:          roomService,
		invitationService:    invitationService,
		messageService:       messageService,
		handshakeTimeout:     opts.HandshakeTimeout,
		wsInsecureSkipVerify: opts.WSInsecureSkipVerify,
	}
}
