package user

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"chatterbox/internal/pkg/errs"
	"chatterbox/internal/pkg/logx"
)

// DefaultHashCost is the bcrypt cost used for new password hashes.
const DefaultHashCost = 10

// Service implements registration, login and the contact listing on top of a Store.
// It issues no session or token: the returned Profile is the caller's identity.
type Service struct {
	store Store
	cost  int

	// dummyHash is compared against when the username is unknown, so both
	// failure paths spend a bcrypt comparison.
	dummyOnce sync.Once
	dummyHash []byte

	logger zerolog.Logger
}

// NewService returns a Service hashing passwords with the given bcrypt cost.
func NewService(store Store, cost int) *Service {
	if cost == 0 {
		cost = DefaultHashCost
	}

	return &Service{
		store:  store,
		cost:   cost,
		logger: logx.Component("auth"),
	}
}

// Register creates an account. It fails with ErrDuplicateUsername or ErrDuplicateEmail
// when the store rejects the insert on its uniqueness constraints.
func (s *Service) Register(ctx context.Context, username, email, password string) (Profile, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return Profile{}, errs.NewError(errs.ErrInvalidField, "password")
		}
		return Profile{}, errs.Wrap(errs.ErrUnknown, err)
	}

	created, err := s.store.CreateUser(ctx, NewUser{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	})

	switch {
	case errors.Is(err, ErrDuplicateUsername):
		s.logger.Warn().Str("username", username).Msg("registration conflict: username already exists")
		return Profile{}, errs.NewError(errs.ErrDuplicateUsername)
	case errors.Is(err, ErrDuplicateEmail):
		s.logger.Warn().Str("username", username).Msg("registration conflict: email already exists")
		return Profile{}, errs.NewError(errs.ErrDuplicateEmail)
	case err != nil:
		return Profile{}, errs.Wrap(errs.ErrStoreUnavailable, err)
	}

	s.logger.Info().Str("user_id", created.ID).Msg("user registered")
	return created.Profile(), nil
}

// Login verifies the credentials. An unknown username and a wrong password produce
// the same ErrInvalidCredentials error.
func (s *Service) Login(ctx context.Context, username, password string) (Profile, error) {
	found, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.placeholderHash(), []byte(password))
			s.logger.Debug().Str("username", username).Msg("login: unknown username")
			return Profile{}, errs.NewError(errs.ErrInvalidCredentials)
		}
		return Profile{}, errs.Wrap(errs.ErrStoreUnavailable, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(found.PasswordHash), []byte(password)); err != nil {
		s.logger.Debug().Str("username", username).Msg("login: password mismatch")
		return Profile{}, errs.NewError(errs.ErrInvalidCredentials)
	}

	return found.Profile(), nil
}

// ListContacts returns every user except excludeID.
func (s *Service) ListContacts(ctx context.Context, excludeID string) ([]Contact, error) {
	users, err := s.store.ListUsersExcept(ctx, excludeID)
	if err != nil {
		return nil, errs.Wrap(errs.ErrStoreUnavailable, err)
	}

	contacts := make([]Contact, 0, len(users))
	for _, u := range users {
		contacts = append(contacts, u.Contact())
	}
	return contacts, nil
}

func (s *Service) placeholderHash() []byte {
	s.dummyOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte("placeholder-password"), s.cost)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to build placeholder hash")
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}
