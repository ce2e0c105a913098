package avatar

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatterbox/internal/app/memstore"
	"chatterbox/internal/app/user"
	"chatterbox/internal/pkg/errs"
	"chatterbox/internal/pkg/logx"
)

func init() {
	logx.SetOutput(io.Discard, zerolog.Disabled)
}

type storedObject struct {
	data        []byte
	contentType string
}

type fakeObjects struct {
	mu      sync.Mutex
	objects map[string]storedObject
	putErr  error
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: make(map[string]storedObject)}
}

func (f *fakeObjects) Put(_ context.Context, key string, data []byte, contentType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.putErr != nil {
		return f.putErr
	}
	f.objects[key] = storedObject{data: data, contentType: contentType}
	return nil
}

func (f *fakeObjects) Exists(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, ok := f.objects[key]
	return ok, nil
}

func (f *fakeObjects) PresignDownload(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://objects.test/" + key + "?signed", nil
}

func newUser(t *testing.T, store *memstore.Store) user.User {
	t.Helper()

	u, err := store.CreateUser(context.Background(), user.NewUser{Username: "alice", Email: "a@x.com"})
	require.NoError(t, err)
	return u
}

const svgBase64 = "PHN2ZyB4bWxucz0iaHR0cDovL3d3dy53My5vcmcvMjAwMC9zdmciPjwvc3ZnPg=="

func TestSetAvatarMirrorsImage(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	objects := newFakeObjects()
	svc := NewService(store, objects)
	u := newUser(t, store)

	state, err := svc.SetAvatar(ctx, u.ID, svgBase64)
	require.NoError(t, err)
	assert.Equal(t, State{IsSet: true, Image: svgBase64}, state)

	obj, ok := objects.objects[Key(u.ID)]
	require.True(t, ok)
	assert.Equal(t, svgContentType, obj.contentType)
	assert.Contains(t, string(obj.data), "<svg")

	url, err := svc.DownloadURL(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://objects.test/avatars/"+u.ID+"?signed", url)
}

func TestSetAvatarSucceedsWhenMirrorFails(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	objects := newFakeObjects()
	objects.putErr = errors.New("bucket unreachable")
	svc := NewService(store, objects)
	u := newUser(t, store)

	state, err := svc.SetAvatar(ctx, u.ID, svgBase64)
	require.NoError(t, err)
	assert.True(t, state.IsSet)

	_, err = svc.DownloadURL(ctx, u.ID)
	assert.True(t, errs.HasCode(err, errs.ErrAvatarUnavailable))
}

func TestSetAvatarUnknownUser(t *testing.T) {
	svc := NewService(memstore.New(), nil)

	_, err := svc.SetAvatar(context.Background(), "missing", "img")
	var customErr *errs.CustomError
	require.True(t, errors.As(err, &customErr))
	assert.Equal(t, errs.ErrUserNotFound, customErr.Code)
	assert.False(t, customErr.IsFault())
}

func TestDownloadURLUnavailable(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	u := newUser(t, store)

	_, err := NewService(store, nil).DownloadURL(ctx, u.ID)
	assert.True(t, errs.HasCode(err, errs.ErrAvatarUnavailable), "mirroring disabled")

	_, err = NewService(store, newFakeObjects()).DownloadURL(ctx, u.ID)
	assert.True(t, errs.HasCode(err, errs.ErrAvatarUnavailable), "no avatar set")

	_, err = NewService(store, newFakeObjects()).DownloadURL(ctx, "missing")
	assert.True(t, errs.HasCode(err, errs.ErrUserNotFound))
}
