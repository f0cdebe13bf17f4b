package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_NilRedisIsNoop(t *testing.T) {
	n := NewNotifier(nil)
	assert.NoError(t, n.PublishUser(context.Background(), 1, "test payload"))
	assert.NoError(t, n.PublishEvent(context.Background(), Event{Type: EventFollow}, 1, 2))
	assert.NoError(t, n.StartPatternSubscriber(context.Background(), func(string, string) {}))
}

func TestUserChannel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		userID   uint
		expected string
	}{
		{1, "notifications:user:1"},
		{100, "notifications:user:100"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, UserChannel(tt.userID))
	}
}

func TestHub_StartWiringDeliversPublishedEvents(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub()
	n := NewNotifier(rdb)
	require.NoError(t, hub.StartWiring(ctx, n))

	follower, err := hub.Register(5, nil)
	require.NoError(t, err)
	other, err := hub.Register(6, nil)
	require.NoError(t, err)

	ev := Event{Type: EventPostCreated, Payload: map[string]any{"post_id": 9, "author": "alice"}}
	require.NoError(t, n.PublishEvent(context.Background(), ev, 5))

	var frame []byte
	select {
	case frame = <-follower.Send:
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}

	var got Event
	require.NoError(t, json.Unmarshal(frame, &got))
	assert.Equal(t, EventPostCreated, got.Type)
	assert.Equal(t, "alice", got.Payload.(map[string]any)["author"])

	assert.Never(t, func() bool { return len(other.Send) > 0 }, 100*time.Millisecond, 10*time.Millisecond)
}

func TestNotifier_PublishEventSingleRecipient(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	ctx := context.Background()
	sub := rdb.Subscribe(ctx, UserChannel(4))
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	n := NewNotifier(rdb)
	require.NoError(t, n.PublishEvent(ctx, Event{Type: EventFollow, Payload: "bob"}, 4))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"follow","payload":"bob"}`, msg.Payload)
}
