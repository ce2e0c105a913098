package chat

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatterbox/internal/pkg/logx"
)

func init() {
	logx.SetOutput(io.Discard, zerolog.Disabled)
}

func newTestClient(registry *Registry, relay *Relay) *Client {
	return NewClient(nil, registry, relay)
}

// received drains every queued frame of c and returns the msg-receive payloads.
func received(t *testing.T, c *Client) []string {
	t.Helper()

	var texts []string
	for {
		select {
		case frame := <-c.send:
			var event Event
			require.NoError(t, json.Unmarshal(frame, &event))
			require.Equal(t, TypeMsgReceive, event.Type)

			var text string
			require.NoError(t, json.Unmarshal(event.Payload, &text))
			texts = append(texts, text)
		default:
			return texts
		}
	}
}

func TestRelayDropsWhenRecipientAbsent(t *testing.T) {
	registry := NewRegistry()
	relay := NewRelay(registry)
	sender := newTestClient(registry, relay)
	bob := newTestClient(registry, relay)

	assert.False(t, relay.Forward(sender, "bob", "early"))

	registry.Announce("bob", bob)
	assert.Empty(t, received(t, bob), "no backfill after announce")

	assert.True(t, relay.Forward(sender, "bob", "hello"))
	assert.Equal(t, []string{"hello"}, received(t, bob))
}

func TestLastAnnounceWins(t *testing.T) {
	registry := NewRegistry()
	relay := NewRelay(registry)
	sender := newTestClient(registry, relay)
	first := newTestClient(registry, relay)
	second := newTestClient(registry, relay)

	registry.Announce("bob", first)
	registry.Announce("bob", second)

	relay.Forward(sender, "bob", "hi")
	assert.Empty(t, received(t, first))
	assert.Equal(t, []string{"hi"}, received(t, second))
}

func TestReleaseKeepsNewerEntries(t *testing.T) {
	registry := NewRegistry()
	relay := NewRelay(registry)
	first := newTestClient(registry, relay)
	second := newTestClient(registry, relay)
	require.NoError(t, registry.Attach(first))
	require.NoError(t, registry.Attach(second))

	registry.Announce("bob", first)
	registry.Announce("carol", first)
	registry.Announce("bob", second)

	registry.release(first)

	got, ok := registry.Lookup("bob")
	require.True(t, ok)
	assert.Same(t, second, got)

	_, ok = registry.Lookup("carol")
	assert.False(t, ok)
	assert.Equal(t, 1, registry.size())
}

func TestRemoveOnlyMatchingConnection(t *testing.T) {
	registry := NewRegistry()
	first := newTestClient(registry, nil)
	second := newTestClient(registry, nil)

	registry.Announce("bob", second)

	registry.mu.Lock()
	assert.False(t, registry.removeLocked("bob", first))
	assert.True(t, registry.removeLocked("bob", second))
	registry.mu.Unlock()

	assert.Zero(t, registry.size())
}

func TestRelayDoesNotEchoToSender(t *testing.T) {
	registry := NewRegistry()
	relay := NewRelay(registry)
	alice := newTestClient(registry, relay)

	registry.Announce("alice", alice)
	assert.False(t, relay.Forward(alice, "alice", "to myself"))
	assert.Empty(t, received(t, alice))
}

func TestDeliverDropsWhenBufferFullOrClosed(t *testing.T) {
	c := newTestClient(NewRegistry(), nil)

	for range sendBufferSize {
		require.True(t, c.deliver([]byte("x")))
	}
	assert.False(t, c.deliver([]byte("overflow")))

	c.Close()
	c.Close()
	assert.False(t, c.deliver([]byte("after close")))
}

func TestHandleFrameDispatch(t *testing.T) {
	registry := NewRegistry()
	relay := NewRelay(registry)
	alice := newTestClient(registry, relay)
	bob := newTestClient(registry, relay)
	registry.Announce("bob", bob)

	alice.handleFrame([]byte(`{"type":"add-user","payload":"alice"}`))
	alice.handleFrame([]byte(`{"type":"add-user","payload":"alice-2"}`))
	alice.handleFrame([]byte(`{"type":"send-msg","payload":{"to":"bob","message":"hey"}}`))
	alice.handleFrame([]byte(`not json`))
	alice.handleFrame([]byte(`{"type":"unknown"}`))
	alice.handleFrame([]byte(`{"type":"add-user","payload":{"id":1}}`))

	assert.ElementsMatch(t, []string{"alice", "alice-2"}, alice.announcedIDs())
	got, ok := registry.Lookup("alice-2")
	require.True(t, ok)
	assert.Same(t, alice, got)
	assert.Equal(t, []string{"hey"}, received(t, bob))
}

func TestShutdownWaitsForRelease(t *testing.T) {
	registry := NewRegistry()
	c := newTestClient(registry, nil)
	require.NoError(t, registry.Attach(c))

	go func() {
		<-c.done
		registry.release(c)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, registry.Shutdown(ctx))

	assert.ErrorIs(t, registry.Attach(newTestClient(registry, nil)), ErrRegistryClosed)
}

func TestShutdownTimesOut(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Attach(newTestClient(registry, nil)))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, registry.Shutdown(ctx), context.DeadlineExceeded)
}
