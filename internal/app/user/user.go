/*
Package user contains the account model, the persistence contract for it, and the
Auth Service that registers and authenticates users.

The password hash never leaves this package in a response: handlers serialize Profile
or Contact values, never User.
*/
package user

import (
	"context"
	"errors"
)

// Store errors. Implementations must return these (possibly wrapped) so the service
// can tell validation-style failures from store faults.
var (
	ErrDuplicateUsername = errors.New("user: username already exists")
	ErrDuplicateEmail    = errors.New("user: email already exists")
	ErrNotFound          = errors.New("user: not found")
)

// User is a persisted account record.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string `json:"-"`

	// IsAvatarImageSet flips to true the first time an avatar is assigned.
	IsAvatarImageSet bool
	AvatarImage      string
}

// NewUser carries the fields needed to create a User. Avatar state starts unset.
type NewUser struct {
	Username     string
	Email        string
	PasswordHash string
}

// Profile is the caller-facing view of a User returned by register and login.
type Profile struct {
	ID               string `json:"id"`
	Username         string `json:"username"`
	Email            string `json:"email"`
	IsAvatarImageSet bool   `json:"isAvatarImgSet"`
	AvatarImage      string `json:"avatarImg"`
}

// Contact is the projection used by the user listing.
type Contact struct {
	Email       string `json:"email"`
	Username    string `json:"username"`
	AvatarImage string `json:"avatarImg"`
	ID          string `json:"id"`
}

// Profile strips the password hash from u.
func (u User) Profile() Profile {
	return Profile{
		ID:               u.ID,
		Username:         u.Username,
		Email:            u.Email,
		IsAvatarImageSet: u.IsAvatarImageSet,
		AvatarImage:      u.AvatarImage,
	}
}

// Contact projects u for the user listing.
func (u User) Contact() Contact {
	return Contact{
		Email:       u.Email,
		Username:    u.Username,
		AvatarImage: u.AvatarImage,
		ID:          u.ID,
	}
}

// Store persists users. Username and email uniqueness is enforced by the store itself;
// CreateUser reports a collision with ErrDuplicateUsername or ErrDuplicateEmail.
// Unknown or malformed ids are reported as ErrNotFound.
type Store interface {
	CreateUser(ctx context.Context, nu NewUser) (User, error)
	GetUserByUsername(ctx context.Context, username string) (User, error)
	GetUserByID(ctx context.Context, id string) (User, error)
	SetAvatar(ctx context.Context, id, image string) (User, error)
	ListUsersExcept(ctx context.Context, id string) ([]User, error)
}
