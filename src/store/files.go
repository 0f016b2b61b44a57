package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

// CreateFile inserts a file row.
func (s *Store) CreateFile(ctx context.Context, f File) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO files (id, filename, path, size, content_type, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		f.ID.String(), f.Filename, f.Path, f.Size, f.ContentType, f.CreatedAt)
	return err
}

// FileByID looks up a file by primary key.
func (s *Store) FileByID(ctx context.Context, id uuid.UUID) (File, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, filename, path, size, content_type, created_at
		 FROM files WHERE id = ?`, id.String())
	return scanFile(row)
}

// ListFiles returns all stored files.
func (s *Store) ListFiles(ctx context.Context) ([]File, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, filename, path, size, content_type, created_at
		 FROM files ORDER BY created_at`)
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

// DeleteFile removes a file row. Reports whether a row was deleted.
func (s *Store) DeleteFile(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM files WHERE id = ?`, id.String())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func scanFile(row rowScanner) (File, bool, error) {
	var (
		f  File
		id string
	)
	err := row.Scan(&id, &f.Filename, &f.Path, &f.Size, &f.ContentType, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return File{}, false, nil
		}
		return File{}, false, err
	}
	if f.ID, err = uuid.Parse(id); err != nil {
		return File{}, false, err
	}
	return f, true, nil
}
