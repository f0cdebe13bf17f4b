package notifications

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func register(t *testing.T, hub *ChatHub, userID uint, name string) *Client {
	t.Helper()
	c, err := hub.Register(nil, userID, ChatIdentity{Username: name, Avatar: "https://gravatar.com/avatar/" + name})
	require.NoError(t, err)
	return c
}

func drain(c *Client) [][]byte {
	var out [][]byte
	for {
		select {
		case m := <-c.Send:
			out = append(out, m)
		default:
			return out
		}
	}
}

func decodeLine(t *testing.T, frame []byte) (string, ChatLine) {
	t.Helper()
	var msg ChatMessage
	require.NoError(t, json.Unmarshal(frame, &msg))
	var line ChatLine
	require.NoError(t, json.Unmarshal(msg.Payload, &line))
	return msg.Type, line
}

func browserFrame(message any) []byte {
	payload, _ := json.Marshal(map[string]any{"message": message})
	frame, _ := json.Marshal(ChatMessage{Type: ChatFromClient, Payload: payload})
	return frame
}

func TestChatHub_WelcomeOnlyForAuthenticated(t *testing.T) {
	hub := NewChatHub()
	alice := register(t, hub, 1, "alice")
	anon := register(t, hub, 0, "")

	frames := drain(alice)
	require.Len(t, frames, 1)
	var msg ChatMessage
	require.NoError(t, json.Unmarshal(frames[0], &msg))
	assert.Equal(t, ChatWelcome, msg.Type)
	var who ChatIdentity
	require.NoError(t, json.Unmarshal(msg.Payload, &who))
	assert.Equal(t, "alice", who.Username)

	assert.Empty(t, drain(anon))
	assert.Equal(t, 2, hub.Count())
}

func TestChatHub_RelaysToOthersOnly(t *testing.T) {
	hub := NewChatHub()
	alice := register(t, hub, 1, "alice")
	bob := register(t, hub, 2, "bob")
	anon := register(t, hub, 0, "")
	drain(alice)
	drain(bob)

	alice.IncomingHandler(alice, browserFrame("  <em>hi</em> there  "))

	assert.Empty(t, drain(alice), "sender must not get an echo")
	for _, c := range []*Client{bob, anon} {
		frames := drain(c)
		require.Len(t, frames, 1)
		kind, line := decodeLine(t, frames[0])
		assert.Equal(t, ChatFromServer, kind)
		assert.Equal(t, ChatLine{Message: "hi there", Username: "alice", Avatar: "https://gravatar.com/avatar/alice"}, line)
	}
}

func TestChatHub_DropsUnusableFrames(t *testing.T) {
	hub := NewChatHub()
	alice := register(t, hub, 1, "alice")
	anon := register(t, hub, 0, "")
	drain(alice)

	anon.IncomingHandler(anon, browserFrame("hello"))
	hub.HandleIncoming(alice, browserFrame("<script>alert(1)</script>"))
	hub.HandleIncoming(alice, browserFrame(42))
	hub.HandleIncoming(alice, []byte("not json"))
	hub.HandleIncoming(alice, []byte(`{"type":"somethingElse","payload":{"message":"x"}}`))

	assert.Empty(t, drain(alice))
	assert.Empty(t, drain(anon))
}

func TestChatHub_OrderIsConsistentAcrossReceivers(t *testing.T) {
	hub := NewChatHub()
	alice := register(t, hub, 1, "alice")
	bob := register(t, hub, 2, "bob")
	carol := register(t, hub, 3, "carol")
	drain(alice)
	drain(bob)
	drain(carol)

	hub.HandleIncoming(alice, browserFrame("one"))
	hub.HandleIncoming(bob, browserFrame("two"))
	hub.HandleIncoming(alice, browserFrame("three"))

	var got []string
	for _, f := range drain(carol) {
		_, line := decodeLine(t, f)
		got = append(got, line.Message)
	}
	assert.Equal(t, []string{"one", "two", "three"}, got)
}

func TestChatHub_FullBufferDropsWithoutBlocking(t *testing.T) {
	hub := NewChatHub()
	alice := register(t, hub, 1, "alice")
	slow := &Client{Hub: hub, UserID: 2, Send: make(chan []byte, 1)}
	hub.mu.Lock()
	hub.clients[slow] = struct{}{}
	hub.mu.Unlock()

	assert.Equal(t, 1, hub.BroadcastFrom(alice, ChatLine{Message: "a"}))
	assert.Equal(t, 0, hub.BroadcastFrom(alice, ChatLine{Message: "b"}))
	assert.Len(t, slow.Send, 1)
}

func TestChatHub_Unregister(t *testing.T) {
	hub := NewChatHub()
	alice := register(t, hub, 1, "alice")
	bob := register(t, hub, 2, "bob")

	hub.UnregisterClient(bob)
	hub.UnregisterClient(bob)
	assert.Equal(t, 1, hub.Count())

	assert.Equal(t, 0, hub.BroadcastFrom(alice, ChatLine{Message: "anyone?"}))
	require.NoError(t, hub.Shutdown(context.Background()))
	assert.Zero(t, hub.Count())
}
