package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

// CreateChat inserts a chat and its membership rows in one transaction.
func (s *Store) CreateChat(ctx context.Context, chat Chat, memberIDs []uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO chats (id, creator_id, created_at) VALUES (?, ?, ?)`,
		chat.ID.String(), chat.CreatorID.String(), chat.CreatedAt)
	if err != nil {
		return err
	}
	for _, userID := range memberIDs {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO chat_users (chat_id, user_id) VALUES (?, ?)`,
			chat.ID.String(), userID.String())
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ChatByID looks up a chat by primary key.
func (s *Store) ChatByID(ctx context.Context, id uuid.UUID) (Chat, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, creator_id, created_at FROM chats WHERE id = ?`, id.String())
	return scanChat(row)
}

// ChatMembers returns the users participating in a chat.
func (s *Store) ChatMembers(ctx context.Context, chatID uuid.UUID) ([]User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT u.id, u.email, u.nickname, u.password_hash, u.created_at, u.updated_at
		 FROM users u JOIN chat_users cu ON cu.user_id = u.id
		 WHERE cu.chat_id = ? ORDER BY u.created_at`, chatID.String())
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

// ChatBetween finds an existing chat that both users participate in.
func (s *Store) ChatBetween(ctx context.Context, a, b uuid.UUID) (Chat, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT c.id, c.creator_id, c.created_at
		 FROM chats c
		 JOIN chat_users m1 ON m1.chat_id = c.id AND m1.user_id = ?
		 JOIN chat_users m2 ON m2.chat_id = c.id AND m2.user_id = ?
		 LIMIT 1`, a.String(), b.String())
	return scanChat(row)
}

// ChatsForUser returns every chat the user participates in.
func (s *Store) ChatsForUser(ctx context.Context, userID uuid.UUID) ([]Chat, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.creator_id, c.created_at
		 FROM chats c JOIN chat_users cu ON cu.chat_id = c.id
		 WHERE cu.user_id = ? ORDER BY c.created_at`, userID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chats []Chat
	for rows.Next() {
		c, ok, err := scanChat(rows)
		if err != nil {
			return nil, err
		}
		if ok {
			chats = append(chats, c)
		}
	}
	return chats, rows.Err()
}

// DeleteChat removes a chat and, via cascade, its memberships and
// messages. Reports whether a row was deleted.
func (s *Store) DeleteChat(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM chats WHERE id = ?`, id.String())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func scanChat(row rowScanner) (Chat, bool, error) {
	var (
		c         Chat
		id        string
		creatorID string
	)
	err := row.Scan(&id, &creatorID, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Chat{}, false, nil
		}
		return Chat{}, false, err
	}
	if c.ID, err = uuid.Parse(id); err != nil {
		return Chat{}, false, err
	}
	if c.CreatorID, err = uuid.Parse(creatorID); err != nil {
		return Chat{}, false, err
	}
	return c, true, nil
}
