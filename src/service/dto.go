package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/chatify/backend/src/store"
)

// UserRead is the public view of a user.
type UserRead struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Nickname string    `json:"nickname,omitempty"`
}

// ChatRead is a chat with its member list and latest message preview.
type ChatRead struct {
	ID          uuid.UUID  `json:"id"`
	CreatorID   uuid.UUID  `json:"creator_id"`
	Users       []UserRead `json:"users"`
	LastMessage *string    `json:"last_message"`
}

// FileRead is the public view of a stored upload.
type FileRead struct {
	ID          uuid.UUID `json:"id"`
	Filename    string    `json:"filename"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
}

// MessageRead is a message with its author and attachments hydrated.
type MessageRead struct {
	ID        uuid.UUID  `json:"id"`
	ChatID    uuid.UUID  `json:"chat_id"`
	Author    UserRead   `json:"author"`
	Content   string     `json:"content"`
	Files     []FileRead `json:"files"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Token is the response body for signup and login.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func toUserRead(u store.User) UserRead {
	return UserRead{ID: u.ID, Email: u.Email, Nickname: u.Nickname}
}

func toFileRead(f store.File) FileRead {
	return FileRead{
		ID:          f.ID,
		Filename:    f.Filename,
		Size:        f.Size,
		ContentType: f.ContentType,
		CreatedAt:   f.CreatedAt,
	}
}
