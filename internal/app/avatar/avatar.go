/*
Package avatar assigns avatar images to users and mirrors them into object storage.

The user record is the source of truth. The object storage copy is written on a
best-effort basis and only serves the presigned download link.
*/
package avatar

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"chatterbox/internal/app/storage"
	"chatterbox/internal/app/user"
	"chatterbox/internal/pkg/errs"
	"chatterbox/internal/pkg/logx"
)

const (
	keyPrefix = "avatars/"

	// DownloadExpiration is the lifetime of a presigned avatar link.
	DownloadExpiration = 15 * time.Minute

	mirrorTimeout = 10 * time.Second
)

// Key returns the object key an avatar of userID is mirrored to.
func Key(userID string) string {
	return keyPrefix + userID
}

// State is the response of a successful avatar assignment.
type State struct {
	IsSet bool   `json:"isSet"`
	Image string `json:"image"`
}

// Service sets avatars and resolves download links for them.
type Service struct {
	users   user.Store
	objects storage.ObjectStore
	logger  zerolog.Logger
}

// NewService returns a Service. A nil objects disables mirroring and download links.
func NewService(users user.Store, objects storage.ObjectStore) *Service {
	return &Service{
		users:   users,
		objects: objects,
		logger:  logx.Component("avatar"),
	}
}

// SetAvatar stores image as the avatar of userID and marks it as set.
func (s *Service) SetAvatar(ctx context.Context, userID, image string) (State, error) {
	updated, err := s.users.SetAvatar(ctx, userID, image)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return State{}, errs.NewError(errs.ErrUserNotFound)
		}
		return State{}, errs.Wrap(errs.ErrStoreUnavailable, err)
	}

	s.mirror(ctx, updated.ID, image)

	return State{IsSet: updated.IsAvatarImageSet, Image: updated.AvatarImage}, nil
}

// mirror copies the image to object storage. Failures are logged and otherwise ignored.
func (s *Service) mirror(ctx context.Context, userID, image string) {
	if s.objects == nil {
		return
	}

	data, contentType, err := Decode(image)
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("avatar not mirrored: undecodable image")
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), mirrorTimeout)
	defer cancel()

	if err := s.objects.Put(ctx, Key(userID), data, contentType); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("avatar mirror upload failed")
		return
	}

	s.logger.Debug().
		Str("user_id", userID).
		Str("content_type", contentType).
		Int("bytes", len(data)).
		Msg("avatar mirrored")
}

// DownloadURL returns a presigned link to the mirrored avatar of userID.
func (s *Service) DownloadURL(ctx context.Context, userID string) (string, error) {
	if s.objects == nil {
		return "", errs.NewError(errs.ErrAvatarUnavailable)
	}

	found, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", errs.NewError(errs.ErrUserNotFound)
		}
		return "", errs.Wrap(errs.ErrStoreUnavailable, err)
	}
	if !found.IsAvatarImageSet {
		return "", errs.NewError(errs.ErrAvatarUnavailable)
	}

	exists, err := s.objects.Exists(ctx, Key(found.ID))
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", found.ID).Msg("avatar lookup failed")
		return "", errs.Wrap(errs.ErrAvatarUnavailable, err)
	}
	if !exists {
		return "", errs.NewError(errs.ErrAvatarUnavailable)
	}

	url, err := s.objects.PresignDownload(ctx, Key(found.ID), DownloadExpiration)
	if err != nil {
		return "", errs.Wrap(errs.ErrUnknown, err)
	}
	return url, nil
}
