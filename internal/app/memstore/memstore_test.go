package memstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatterbox/internal/app/message"
	"chatterbox/internal/app/user"
)

func TestCreateUserUniqueness(t *testing.T) {
	ctx := context.Background()
	s := New()

	first, err := s.CreateUser(ctx, user.NewUser{Username: "alice", Email: "a@x.com", PasswordHash: "h1"})
	require.NoError(t, err)

	_, err = s.CreateUser(ctx, user.NewUser{Username: "alice", Email: "other@x.com", PasswordHash: "h2"})
	assert.ErrorIs(t, err, user.ErrDuplicateUsername)

	_, err = s.CreateUser(ctx, user.NewUser{Username: "bob", Email: "a@x.com", PasswordHash: "h2"})
	assert.ErrorIs(t, err, user.ErrDuplicateEmail)

	got, err := s.GetUserByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "h1", got.PasswordHash)
	assert.Equal(t, "a@x.com", got.Email)
}

func TestConcurrentRegistrationsOnlyOneWins(t *testing.T) {
	s := New()

	const attempts = 20
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.CreateUser(context.Background(), user.NewUser{Username: "alice", Email: "a@x.com"})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, user.ErrDuplicateUsername)
	}
	assert.Equal(t, 1, succeeded)
}

func TestSetAvatar(t *testing.T) {
	ctx := context.Background()
	s := New()

	u, err := s.CreateUser(ctx, user.NewUser{Username: "alice", Email: "a@x.com"})
	require.NoError(t, err)

	updated, err := s.SetAvatar(ctx, u.ID, "img-1")
	require.NoError(t, err)
	assert.True(t, updated.IsAvatarImageSet)
	assert.Equal(t, "img-1", updated.AvatarImage)

	updated, err = s.SetAvatar(ctx, u.ID, "img-2")
	require.NoError(t, err)
	assert.Equal(t, "img-2", updated.AvatarImage)

	_, err = s.SetAvatar(ctx, "missing", "img")
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestListConversationExactPairAndOrder(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	s := New(WithClock(func() time.Time {
		tick++
		// every other message shares a timestamp with the previous one
		return base.Add(time.Duration(tick/2) * time.Second)
	}))

	for _, m := range []message.Message{
		message.New("A", "B", "1"),
		message.New("B", "A", "2"),
		message.New("A", "A", "self"),
		message.New("A", "C", "other"),
		message.New("A", "B", "3"),
	} {
		_, err := s.AddMessage(ctx, m)
		require.NoError(t, err)
	}

	got, err := s.ListConversation(ctx, "B", "A")
	require.NoError(t, err)

	texts := make([]string, 0, len(got))
	for _, m := range got {
		texts = append(texts, m.Text)
	}
	assert.Equal(t, []string{"1", "2", "3"}, texts)

	self, err := s.ListConversation(ctx, "A", "A")
	require.NoError(t, err)
	require.Len(t, self, 1)
	assert.Equal(t, "self", self[0].Text)
}
