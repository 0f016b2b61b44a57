package service

import "errors"

var (
	ErrUserExists       = errors.New("user with this email or nickname already exists")
	ErrInvalidLogin     = errors.New("invalid credentials")
	ErrUserNotFound     = errors.New("user not found")
	ErrSelfChat         = errors.New("cannot create chat with yourself")
	ErrChatExists       = errors.New("chat already exists between these users")
	ErrChatNotFound     = errors.New("chat not found")
	ErrMessageNotFound  = errors.New("message not found")
	ErrNotMessageAuthor = errors.New("not the author of this message")
	ErrEmptyMessage     = errors.New("message must have content or files")
	ErrFileNotFound     = errors.New("file not found")
)
