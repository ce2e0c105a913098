package user_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"chatterbox/internal/app/memstore"
	"chatterbox/internal/app/user"
	"chatterbox/internal/pkg/errs"
	"chatterbox/internal/pkg/logx"
)

func init() {
	logx.SetOutput(io.Discard, zerolog.Disabled)
}

func newService(t *testing.T) (*user.Service, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	return user.NewService(store, bcrypt.MinCost), store
}

func TestRegisterAndLoginScenario(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t)

	alice, err := svc.Register(ctx, "alice", "a@x.com", "pw1")
	require.NoError(t, err)
	assert.NotEmpty(t, alice.ID)
	assert.Equal(t, "alice", alice.Username)
	assert.False(t, alice.IsAvatarImageSet)
	assert.Empty(t, alice.AvatarImage)

	_, err = svc.Register(ctx, "alice", "b@y.com", "pw2")
	assert.True(t, errs.HasCode(err, errs.ErrDuplicateUsername))

	stored, err := store.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, stored.ID)
	assert.Equal(t, "a@x.com", stored.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("pw1")))

	loggedIn, err := svc.Login(ctx, "alice", "pw1")
	require.NoError(t, err)
	assert.Equal(t, alice, loggedIn)

	body, err := json.Marshal(loggedIn)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "password")
	assert.NotContains(t, string(body), stored.PasswordHash)

	_, err = svc.Login(ctx, "alice", "wrong")
	assert.True(t, errs.HasCode(err, errs.ErrInvalidCredentials))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	_, err := svc.Register(ctx, "alice", "a@x.com", "pw1")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "bob", "a@x.com", "pw2")
	assert.True(t, errs.HasCode(err, errs.ErrDuplicateEmail))
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	_, err := svc.Register(ctx, "alice", "a@x.com", "pw1")
	require.NoError(t, err)

	_, wrongPassword := svc.Login(ctx, "alice", "nope")
	_, unknownUser := svc.Login(ctx, "mallory", "nope")

	var a, b *errs.CustomError
	require.True(t, errors.As(wrongPassword, &a))
	require.True(t, errors.As(unknownUser, &b))
	assert.Equal(t, a.Code, b.Code)
	assert.Equal(t, a.Message, b.Message)
	assert.Equal(t, a.Status, b.Status)
	assert.False(t, a.IsFault())
}

func TestRegisterPasswordTooLong(t *testing.T) {
	svc, _ := newService(t)

	long := make([]byte, 73)
	for i := range long {
		long[i] = 'x'
	}

	_, err := svc.Register(context.Background(), "alice", "a@x.com", string(long))
	require.True(t, errs.HasCode(err, errs.ErrInvalidField))
	assert.Contains(t, err.Error(), "password")
}

func TestListContactsExcludesCaller(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	alice, err := svc.Register(ctx, "alice", "a@x.com", "pw")
	require.NoError(t, err)
	bob, err := svc.Register(ctx, "bob", "b@x.com", "pw")
	require.NoError(t, err)
	carol, err := svc.Register(ctx, "carol", "c@x.com", "pw")
	require.NoError(t, err)

	contacts, err := svc.ListContacts(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	assert.Equal(t, alice.ID, contacts[0].ID)
	assert.Equal(t, carol.ID, contacts[1].ID)
	assert.Equal(t, "a@x.com", contacts[0].Email)

	all, err := svc.ListContacts(ctx, "unknown")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

type failingStore struct {
	user.Store
}

func (failingStore) CreateUser(context.Context, user.NewUser) (user.User, error) {
	return user.User{}, errors.New("connection refused")
}

func (failingStore) GetUserByUsername(context.Context, string) (user.User, error) {
	return user.User{}, errors.New("connection refused")
}

func TestStoreFailuresAreFaults(t *testing.T) {
	svc := user.NewService(failingStore{}, bcrypt.MinCost)

	_, err := svc.Register(context.Background(), "alice", "a@x.com", "pw")
	var customErr *errs.CustomError
	require.True(t, errors.As(err, &customErr))
	assert.Equal(t, errs.ErrStoreUnavailable, customErr.Code)
	assert.True(t, customErr.IsFault())

	_, err = svc.Login(context.Background(), "alice", "pw")
	assert.True(t, errs.HasCode(err, errs.ErrStoreUnavailable))
}
