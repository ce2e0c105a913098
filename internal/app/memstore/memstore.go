/*
Package memstore is an in-process implementation of the user and message stores.

It is selected with DATABASE_URL=memory for local development and backs the service
and handler tests. Uniqueness of usernames and emails is checked and applied under the
same lock, so concurrent registrations cannot both succeed.
*/
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"chatterbox/internal/app/message"
	"chatterbox/internal/app/user"
)

// Store keeps users and messages in memory for the lifetime of the process.
type Store struct {
	mu sync.RWMutex

	users      map[string]*user.User
	byUsername map[string]string
	byEmail    map[string]string
	userOrder  []string

	messages []message.Message

	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for message timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New returns an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		users:      make(map[string]*user.User),
		byUsername: make(map[string]string),
		byEmail:    make(map[string]string),
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close implements the store lifecycle; there is nothing to release.
func (s *Store) Close(context.Context) error {
	return nil
}

// CreateUser implements user.Store.
func (s *Store) CreateUser(_ context.Context, nu user.NewUser) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byUsername[nu.Username]; taken {
		return user.User{}, user.ErrDuplicateUsername
	}
	if _, taken := s.byEmail[nu.Email]; taken {
		return user.User{}, user.ErrDuplicateEmail
	}

	u := &user.User{
		ID:           uuid.NewString(),
		Username:     nu.Username,
		Email:        nu.Email,
		PasswordHash: nu.PasswordHash,
	}

	s.users[u.ID] = u
	s.byUsername[u.Username] = u.ID
	s.byEmail[u.Email] = u.ID
	s.userOrder = append(s.userOrder, u.ID)

	return *u, nil
}

// GetUserByUsername implements user.Store.
func (s *Store) GetUserByUsername(_ context.Context, username string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUsername[username]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return *s.users[id], nil
}

// GetUserByID implements user.Store.
func (s *Store) GetUserByID(_ context.Context, id string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return *u, nil
}

// SetAvatar implements user.Store.
func (s *Store) SetAvatar(_ context.Context, id, image string) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	u.IsAvatarImageSet = true
	u.AvatarImage = image
	return *u, nil
}

// ListUsersExcept implements user.Store. Users are returned in registration order.
func (s *Store) ListUsersExcept(_ context.Context, id string) ([]user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]user.User, 0, len(s.userOrder))
	for _, uid := range s.userOrder {
		if uid == id {
			continue
		}
		users = append(users, *s.users[uid])
	}
	return users, nil
}

// AddMessage implements message.Store.
func (s *Store) AddMessage(_ context.Context, m message.Message) (message.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	m.ID = uuid.NewString()
	m.CreatedAt = now
	m.UpdatedAt = now

	s.messages = append(s.messages, m)
	return m, nil
}

// ListConversation implements message.Store.
func (s *Store) ListConversation(_ context.Context, a, b string) ([]message.Message, error) {
	low, high := message.Pair(a, b)

	s.mu.RLock()
	out := make([]message.Message, 0)
	for _, m := range s.messages {
		ml, mh := message.Pair(m.Participants[0], m.Participants[1])
		if ml == low && mh == high {
			out = append(out, m)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.Before(out[j].UpdatedAt)
	})
	return out, nil
}
