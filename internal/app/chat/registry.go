/*
Package chat contains the socket side of the chat: the Presence Registry mapping user ids
to live connections, the Relay that forwards messages between them, and the Client that
pumps frames over one WebSocket connection.

This file defines the Registry, which is owned by the server and injected into every
Client and into the Relay.
*/
package chat

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"chatterbox/internal/pkg/logx"
)

// ErrRegistryClosed is returned by Attach once Shutdown has started.
var ErrRegistryClosed = errors.New("chat: registry is shut down")

// Registry maps user ids to the connection that last announced them and tracks every
// live connection for shutdown.
type Registry struct {
	mu sync.RWMutex

	// entries holds the presence mapping. Last announce wins.
	entries map[string]*Client

	// live holds every attached connection, announced or not.
	live   map[*Client]struct{}
	closed bool

	// wg counts attached connections that have not been released yet.
	wg sync.WaitGroup

	logger zerolog.Logger
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*Client),
		live:    make(map[*Client]struct{}),
		logger:  logx.Component("presence"),
	}
}

// Attach starts tracking c. Every successful Attach must be paired with a release,
// which Client.ReadPump performs on exit.
func (r *Registry) Attach(c *Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRegistryClosed
	}

	r.live[c] = struct{}{}
	r.wg.Add(1)
	return nil
}

// release drops every entry still pointing at c and stops tracking it.
func (r *Registry) release(c *Client) {
	r.mu.Lock()
	for _, id := range c.announcedIDs() {
		r.removeLocked(id, c)
	}
	_, tracked := r.live[c]
	delete(r.live, c)
	r.mu.Unlock()

	if tracked {
		r.wg.Done()
	}
}

// Announce maps userID to c, replacing any previous connection for that id. The
// replaced connection stays open but no longer receives relays for userID.
func (r *Registry) Announce(userID string, c *Client) {
	r.mu.Lock()
	previous, existed := r.entries[userID]
	r.entries[userID] = c
	r.mu.Unlock()

	c.remember(userID)

	event := r.logger.Debug().Str("user_id", userID).Str("conn_id", c.ID)
	if existed && previous != c {
		event = event.Str("replaced_conn_id", previous.ID)
	}
	event.Msg("presence announced")
}

// Lookup returns the connection currently mapped to userID.
func (r *Registry) Lookup(userID string) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.entries[userID]
	return c, ok
}

// removeLocked deletes the entry for userID if it still points at c. r.mu must be held.
func (r *Registry) removeLocked(userID string, c *Client) bool {
	if r.entries[userID] != c {
		return false
	}
	delete(r.entries, userID)
	return true
}

// size returns the number of presence entries.
func (r *Registry) size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.entries)
}

// Shutdown refuses new connections, closes every live connection and waits for their
// pumps to release them or for ctx to end.
func (r *Registry) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	clients := make([]*Client, 0, len(r.live))
	for c := range r.live {
		clients = append(clients, c)
	}
	r.mu.Unlock()

	r.logger.Info().Int("connections", len(clients)).Msg("Closing socket connections...")

	for _, c := range clients {
		c.Close()
	}

	released := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(released)
	}()

	select {
	case <-released:
		r.logger.Info().Msg("Presence registry shutdown complete.")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
