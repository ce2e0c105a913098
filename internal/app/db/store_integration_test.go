package db

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatterbox/internal/app/message"
	"chatterbox/internal/app/user"
)

// newTestStore connects to TEST_DATABASE_URL and removes the rows created under
// the returned name suffix when the test ends.
func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := NewPool(ctx, dsn)
	require.NoError(t, err)

	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]

	t.Cleanup(func() {
		ctx := context.Background()
		like := "%" + suffix
		_, _ = pool.Exec(ctx, `DELETE FROM messages WHERE sender IN (SELECT id::text FROM users WHERE username LIKE $1)`, like)
		_, _ = pool.Exec(ctx, `DELETE FROM users WHERE username LIKE $1`, like)
		pool.Close()
	})

	return New(pool), suffix
}

func TestStoreUserConstraints(t *testing.T) {
	store, suffix := newTestStore(t)
	ctx := context.Background()

	alice, err := store.CreateUser(ctx, user.NewUser{Username: "alice_" + suffix, Email: "alice_" + suffix + "@x.com", PasswordHash: "h"})
	require.NoError(t, err)
	assert.NotEmpty(t, alice.ID)
	assert.False(t, alice.IsAvatarImageSet)

	_, err = store.CreateUser(ctx, user.NewUser{Username: "alice_" + suffix, Email: "other_" + suffix + "@x.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, user.ErrDuplicateUsername)

	_, err = store.CreateUser(ctx, user.NewUser{Username: "carol_" + suffix, Email: "alice_" + suffix + "@x.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, user.ErrDuplicateEmail)

	got, err := store.GetUserByUsername(ctx, "alice_"+suffix)
	require.NoError(t, err)
	assert.Equal(t, alice, got)

	_, err = store.GetUserByUsername(ctx, "nobody_"+suffix)
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestStoreAvatarAndLookup(t *testing.T) {
	store, suffix := newTestStore(t)
	ctx := context.Background()

	bob, err := store.CreateUser(ctx, user.NewUser{Username: "bob_" + suffix, Email: "bob_" + suffix + "@x.com", PasswordHash: "h"})
	require.NoError(t, err)

	updated, err := store.SetAvatar(ctx, bob.ID, "data:image/svg+xml;base64,AA==")
	require.NoError(t, err)
	assert.True(t, updated.IsAvatarImageSet)
	assert.Equal(t, "data:image/svg+xml;base64,AA==", updated.AvatarImage)

	got, err := store.GetUserByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)

	_, err = store.GetUserByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, user.ErrNotFound)

	_, err = store.SetAvatar(ctx, uuid.NewString(), "x")
	assert.ErrorIs(t, err, user.ErrNotFound)

	others, err := store.ListUsersExcept(ctx, bob.ID)
	require.NoError(t, err)
	for _, u := range others {
		assert.NotEqual(t, bob.ID, u.ID)
	}
}

func TestStoreConversationIsExactPair(t *testing.T) {
	store, suffix := newTestStore(t)
	ctx := context.Background()

	var ids []string
	for _, name := range []string{"ann_", "ben_", "cat_"} {
		u, err := store.CreateUser(ctx, user.NewUser{Username: name + suffix, Email: name + suffix + "@x.com", PasswordHash: "h"})
		require.NoError(t, err)
		ids = append(ids, u.ID)
	}
	ann, ben, cat := ids[0], ids[1], ids[2]

	for _, m := range []message.Message{
		message.New(ann, ben, "one"),
		message.New(ben, ann, "two"),
		message.New(ann, cat, "elsewhere"),
		message.New(ann, ben, "three"),
	} {
		_, err := store.AddMessage(ctx, m)
		require.NoError(t, err)
	}

	history, err := store.ListConversation(ctx, ben, ann)
	require.NoError(t, err)
	require.Len(t, history, 3)

	var texts []string
	for _, m := range history {
		texts = append(texts, m.Text)
	}
	assert.Equal(t, []string{"one", "two", "three"}, texts)
	assert.Equal(t, [2]string{ben, ann}, history[1].Participants)
	assert.Equal(t, ben, history[1].Sender)

	empty, err := store.ListConversation(ctx, ben, cat)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
