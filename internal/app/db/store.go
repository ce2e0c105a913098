package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"chatterbox/internal/app/message"
	"chatterbox/internal/app/user"
)

// Store implements user.Store and message.Store on PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// New wraps an initialized pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the pool.
func (s *Store) Close(context.Context) error {
	s.pool.Close()
	return nil
}

const userColumns = `id::text, username, email, password_hash, is_avatar_image_set, avatar_image`

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsAvatarImageSet, &u.AvatarImage)
	if errors.Is(err, pgx.ErrNoRows) {
		return user.User{}, user.ErrNotFound
	}
	return u, err
}

// CreateUser inserts a user. Collisions are detected by the unique constraints, not by
// a prior lookup.
func (s *Store) CreateUser(ctx context.Context, nu user.NewUser) (user.User, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING `+userColumns,
		nu.Username, nu.Email, nu.PasswordHash,
	)

	u, err := scanUser(row)
	if err != nil {
		if mapped := mapUserConstraint(err); mapped != err {
			return user.User{}, mapped
		}
		return user.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// GetUserByUsername retrieves a user by exact username.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	return scanUser(row)
}

// GetUserByID retrieves a user by id. Ids that are not UUIDs cannot exist.
func (s *Store) GetUserByID(ctx context.Context, id string) (user.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return user.User{}, user.ErrNotFound
	}

	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// SetAvatar overwrites the avatar image and marks it as set.
func (s *Store) SetAvatar(ctx context.Context, id, image string) (user.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return user.User{}, user.ErrNotFound
	}

	row := s.pool.QueryRow(ctx, `
		UPDATE users
		SET is_avatar_image_set = TRUE, avatar_image = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns,
		id, image,
	)
	return scanUser(row)
}

// ListUsersExcept returns all users other than id, oldest first.
func (s *Store) ListUsersExcept(ctx context.Context, id string) ([]user.User, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id::text <> $1
		ORDER BY created_at, id`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]user.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// AddMessage inserts m, storing the canonical pair alongside the raw participants.
func (s *Store) AddMessage(ctx context.Context, m message.Message) (message.Message, error) {
	low, high := message.Pair(m.Participants[0], m.Participants[1])

	err := s.pool.QueryRow(ctx, `
		INSERT INTO messages (text, user_a, user_b, pair_low, pair_high, sender)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id::text, created_at, updated_at`,
		m.Text, m.Participants[0], m.Participants[1], low, high, m.Sender,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return message.Message{}, fmt.Errorf("insert message: %w", err)
	}
	return m, nil
}

// ListConversation returns the messages of the {a, b} conversation by update time.
func (s *Store) ListConversation(ctx context.Context, a, b string) ([]message.Message, error) {
	low, high := message.Pair(a, b)

	rows, err := s.pool.Query(ctx, `
		SELECT id::text, text, user_a, user_b, sender, created_at, updated_at
		FROM messages
		WHERE pair_low = $1 AND pair_high = $2
		ORDER BY updated_at ASC, id ASC`,
		low, high,
	)
	if err != nil {
		return nil, fmt.Errorf("list conversation: %w", err)
	}
	defer rows.Close()

	out := make([]message.Message, 0)
	for rows.Next() {
		var m message.Message
		if err := rows.Scan(&m.ID, &m.Text, &m.Participants[0], &m.Participants[1], &m.Sender, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
