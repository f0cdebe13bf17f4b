package server

import (
	"context"
	"log/slog"
	"time"

	"writescape/internal/middleware"
	"writescape/internal/notifications"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const chatLookupTimeout = 5 * time.Second

// chatIdentity resolves the display identity of a chat user. A failed or
// slow lookup demotes the socket to anonymous (user 0).
func (s *Server) chatIdentity(parent context.Context, userID uint) (uint, notifications.ChatIdentity) {
	if userID == 0 {
		return 0, notifications.ChatIdentity{}
	}
	ctx, cancel := context.WithTimeout(parent, chatLookupTimeout)
	defer cancel()
	user, err := s.userService.GetByID(ctx, userID)
	if err != nil {
		middleware.Logger.Warn("chat: user lookup failed, joining anonymously",
			slog.Uint64("user_id", uint64(userID)),
			slog.String("error", err.Error()))
		return 0, notifications.ChatIdentity{}
	}
	return userID, notifications.ChatIdentity{Username: user.Username, Avatar: user.Avatar}
}

// WebSocketChatHandler serves the global chat room. Anonymous sockets may
// listen but their messages are dropped.
func (s *Server) WebSocketChatHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		middleware.ActiveWebSockets.Inc()
		defer middleware.ActiveWebSockets.Dec()

		userID, _ := conn.Locals("userID").(uint)
		userID, identity := s.chatIdentity(s.shutdownCtx, userID)

		client, err := s.chatHub.Register(conn, userID, identity)
		if err != nil {
			middleware.Logger.Warn("chat: register failed", slog.String("error", err.Error()))
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}

		go client.WritePump()
		client.ReadPump()
	})
}

// WebSocketNotificationsHandler streams per-user events such as new
// followers and posts from followed authors.
func (s *Server) WebSocketNotificationsHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		middleware.ActiveWebSockets.Inc()
		defer middleware.ActiveWebSockets.Dec()

		userID, _ := conn.Locals("userID").(uint)
		client, err := s.hub.Register(userID, conn)
		if err != nil {
			middleware.Logger.Warn("notifications: register failed",
				slog.Uint64("user_id", uint64(userID)),
				slog.String("error", err.Error()))
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}

		go client.WritePump()
		client.ReadPump()
	})
}
