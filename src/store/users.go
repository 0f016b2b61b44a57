package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

// CreateUser inserts a new user row.
func (s *Store) CreateUser(ctx context.Context, u User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, nickname, password_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID.String(), u.Email, nullable(u.Nickname), u.PasswordHash, u.CreatedAt, u.UpdatedAt)
	return err
}

// UserByID looks up a user by primary key.
func (s *Store) UserByID(ctx context.Context, id uuid.UUID) (User, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, nickname, password_hash, created_at, updated_at
		 FROM users WHERE id = ?`, id.String())
	return scanUser(row)
}

// UserByLogin looks up a user by email or nickname.
func (s *Store) UserByLogin(ctx context.Context, login string) (User, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, nickname, password_hash, created_at, updated_at
		 FROM users WHERE email = ? OR nickname = ?`, login, login)
	return scanUser(row)
}

// UserExists reports whether a user with the given email or nickname
// is already registered.
func (s *Store) UserExists(ctx context.Context, email, nickname string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE email = ? OR (nickname IS NOT NULL AND nickname = ?)`,
		email, nickname).Scan(&n)
	return n > 0, err
}

// ListUsers returns all registered users.
func (s *Store) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, email, nickname, password_hash, created_at, updated_at
		 FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, ok, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		if ok {
			users = append(users, u)
		}
	}
	return users, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, bool, error) {
	var (
		u        User
		id       string
		nickname sql.NullString
	)
	err := row.Scan(&id, &u.Email, &nickname, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, false, nil
		}
		return User{}, false, err
	}
	u.ID, err = uuid.Parse(id)
	if err != nil {
		return User{}, false, err
	}
	u.Nickname = nickname.String
	return u, true, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
