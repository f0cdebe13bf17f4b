package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"writescape/internal/middleware"
	"writescape/internal/observability"
	"writescape/internal/validation"

	"github.com/gofiber/websocket/v2"
)

// Chat frame types.
const (
	ChatWelcome    = "welcome"
	ChatFromClient = "chatMessageFromBrowser"
	ChatFromServer = "chatMessageFromServer"
)

const maxChatConns = 10000

// ErrChatFull is returned when the hub refuses another connection.
var ErrChatFull = errors.New("chat connection limit reached")

// ChatMessage is the envelope of every chat frame in both directions.
type ChatMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ChatIdentity is the sender shown next to a chat line.
type ChatIdentity struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// ChatLine is the payload relayed to receivers.
type ChatLine struct {
	Message  string `json:"message"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

type chatInbound struct {
	Message any `json:"message"`
}

// ChatHub is the single global chat room. Every open connection, anonymous
// or not, receives broadcasts; only authenticated connections may speak.
// Broadcasts are serialized so all receivers observe the same order.
type ChatHub struct {
	mu      sync.Mutex
	clients map[*Client]struct{}
}

// Name returns a human-readable identifier for this hub.
func (h *ChatHub) Name() string { return "chat hub" }

// NewChatHub creates a new ChatHub instance
func NewChatHub() *ChatHub {
	return &ChatHub{clients: make(map[*Client]struct{})}
}

// Register adds a connection. An authenticated connection is greeted with
// its own identity; nobody else is told about the join.
func (h *ChatHub) Register(conn *websocket.Conn, userID uint, identity ChatIdentity) (*Client, error) {
	client := NewClient(h, conn, userID)
	client.Username = identity.Username
	client.Avatar = identity.Avatar
	client.IncomingHandler = h.HandleIncoming

	h.mu.Lock()
	if len(h.clients) >= maxChatConns {
		h.mu.Unlock()
		return nil, ErrChatFull
	}
	h.clients[client] = struct{}{}
	h.mu.Unlock()

	if client.Authenticated() {
		if frame, err := encodeChat(ChatWelcome, identity); err == nil {
			client.TrySend(frame)
		}
	}
	observability.RecordWebSocketEvent("chat_connect")
	return client, nil
}

// UnregisterClient removes the connection and closes its send channel.
func (h *ChatHub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.Send)
	observability.RecordWebSocketEvent("chat_disconnect")
}

// HandleIncoming processes one raw frame from client. Frames from anonymous
// connections, unknown types, and messages that are empty after stripping
// markup are dropped.
func (h *ChatHub) HandleIncoming(client *Client, raw []byte) {
	if !client.Authenticated() {
		return
	}

	var msg ChatMessage
	if err := json.Unmarshal(raw, &msg); err != nil || msg.Type != ChatFromClient {
		return
	}
	var in chatInbound
	if err := json.Unmarshal(msg.Payload, &in); err != nil {
		return
	}

	text := validation.PlainText(validation.String(in.Message))
	if text == "" {
		return
	}

	h.BroadcastFrom(client, ChatLine{
		Message:  text,
		Username: client.Username,
		Avatar:   client.Avatar,
	})
}

// BroadcastFrom delivers line to every connection except sender.
func (h *ChatHub) BroadcastFrom(sender *Client, line ChatLine) int {
	frame, err := encodeChat(ChatFromServer, line)
	if err != nil {
		middleware.Logger.Error("encode chat line", slog.String("error", err.Error()))
		return 0
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	delivered := 0
	for c := range h.clients {
		if c == sender {
			continue
		}
		if c.TrySend(frame) {
			delivered++
		}
	}
	observability.ChatMessagesRelayed.Add(float64(delivered))
	return delivered
}

// Count returns the number of open chat connections.
func (h *ChatHub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Shutdown closes every chat connection.
func (h *ChatHub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		closeConn(client)
		delete(h.clients, client)
	}
	return nil
}

func encodeChat(kind string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(ChatMessage{Type: kind, Payload: body})
}

func closeConn(client *Client) {
	if client.Conn == nil {
		return
	}
	if err := client.Conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down")); err != nil {
		middleware.Logger.Debug("write close frame", slog.String("error", err.Error()))
	}
	_ = client.Conn.Close()
}
