package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// CreateMessage inserts a message and links any attached files in one
// transaction.
func (s *Store) CreateMessage(ctx context.Context, m Message, fileIDs []uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO messages (id, chat_id, author_id, content, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID.String(), m.ChatID.String(), m.AuthorID.String(), m.Content, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return err
	}
	for _, fileID := range fileIDs {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO message_files (message_id, file_id) VALUES (?, ?)`,
			m.ID.String(), fileID.String())
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// MessageByID looks up a message by primary key.
func (s *Store) MessageByID(ctx context.Context, id uuid.UUID) (Message, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, chat_id, author_id, content, created_at, updated_at
		 FROM messages WHERE id = ?`, id.String())
	return scanMessage(row)
}

// MessagesForChat returns a chat's messages in creation order.
func (s *Store) MessagesForChat(ctx context.Context, chatID uuid.UUID) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, chat_id, author_id, content, created_at, updated_at
		 FROM messages WHERE chat_id = ? ORDER BY created_at`, chatID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		m, ok, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		if ok {
			messages = append(messages, m)
		}
	}
	return messages, rows.Err()
}

// LastMessage returns the most recent message of a chat.
func (s *Store) LastMessage(ctx context.Context, chatID uuid.UUID) (Message, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, chat_id, author_id, content, created_at, updated_at
		 FROM messages WHERE chat_id = ? ORDER BY created_at DESC LIMIT 1`, chatID.String())
	return scanMessage(row)
}

// UpdateMessageContent replaces a message's content.
func (s *Store) UpdateMessageContent(ctx context.Context, id uuid.UUID, content string, updatedAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE messages SET content = ?, updated_at = ? WHERE id = ?`,
		content, updatedAt, id.String())
	return err
}

// DeleteMessage removes a message; file links go with it via cascade.
func (s *Store) DeleteMessage(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, id.String())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// FilesForMessage returns the files attached to a message.
func (s *Store) FilesForMessage(ctx context.Context, messageID uuid.UUID) ([]File, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT f.id, f.filename, f.path, f.size, f.content_type, f.created_at
		 FROM files f JOIN message_files mf ON mf.file_id = f.id
		 WHERE mf.message_id = ? ORDER BY f.created_at`, messageID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []File
	for rows.Next() {
		f, ok, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		if ok {
			files = append(files, f)
		}
	}
	return files, rows.Err()
}

func scanMessage(row rowScanner) (Message, bool, error) {
	var (
		m        Message
		id       string
		chatID   string
		authorID string
	)
	err := row.Scan(&id, &chatID, &authorID, &m.Content, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Message{}, false, nil
		}
		return Message{}, false, err
	}
	if m.ID, err = uuid.Parse(id); err != nil {
		return Message{}, false, err
	}
	if m.ChatID, err = uuid.Parse(chatID); err != nil {
		return Message{}, false, err
	}
	if m.AuthorID, err = uuid.Parse(authorID); err != nil {
		return Message{}, false, err
	}
	return m, true, nil
}
