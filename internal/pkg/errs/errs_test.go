package errs

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"chatterbox/internal/pkg/logx"
)

func init() {
	logx.SetOutput(io.Discard, zerolog.Disabled)
}

func TestNewError(t *testing.T) {
	e := NewError(ErrInvalidField, "email")
	assert.Equal(t, "Invalid value for field email.", e.Message)
	assert.Equal(t, http.StatusOK, e.Status)
	assert.False(t, e.IsFault())

	unknown := NewError(424242)
	assert.Equal(t, ErrUnknown, unknown.Code)
	assert.True(t, unknown.IsFault())
}

func TestNewErrorDoesNotMutateTemplate(t *testing.T) {
	_ = NewError(ErrInvalidField, "email")
	assert.Equal(t, "Invalid value for field username.", NewError(ErrInvalidField, "username").Message)
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	wrapped := fmt.Errorf("register: %w", Wrap(ErrStoreUnavailable, cause))

	assert.ErrorIs(t, wrapped, cause)
	assert.True(t, HasCode(wrapped, ErrStoreUnavailable))
	assert.False(t, HasCode(wrapped, ErrUnknown))
	assert.False(t, HasCode(cause, ErrStoreUnavailable))
	assert.Contains(t, wrapped.Error(), "connection refused")
}
