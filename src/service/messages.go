package service

import (
	"context"
	"mime/multipart"
	"time"

	"github.com/google/uuid"

	"github.com/chatify/backend/src/store"
)

// MessageService manages message CRUD. Broadcasting the resulting
// room events is the caller's concern; this service only persists.
type MessageService struct {
	store *store.Store
	files *FileService
}

// NewMessageService creates a message service.
func NewMessageService(s *store.Store, files *FileService) *MessageService {
	return &MessageService{store: s, files: files}
}

// Send persists a message with optional uploads in the author's name.
// The chat and the author must exist, and the message must carry
// content or at least one file.
func (m *MessageService) Send(ctx context.Context, chatID, authorID uuid.UUID, content string, uploads []*multipart.FileHeader) (MessageRead, error) {
	if _, found, err := m.store.ChatByID(ctx, chatID); err != nil {
		return MessageRead{}, err
	} else if !found {
		return MessageRead{}, ErrChatNotFound
	}
	author, found, err := m.store.UserByID(ctx, authorID)
	if err != nil {
		return MessageRead{}, err
	}
	if !found {
		return MessageRead{}, ErrUserNotFound
	}
	if content == "" && len(uploads) == 0 {
		return MessageRead{}, ErrEmptyMessage
	}

	var (
		fileIDs []uuid.UUID
		files   []FileRead
	)
	for _, header := range uploads {
		saved, err := m.files.Save(ctx, header)
		if err != nil {
			return MessageRead{}, err
		}
		fileIDs = append(fileIDs, saved.ID)
		files = append(files, saved)
	}

	now := time.Now().UTC()
	msg := store.Message{
		ID:        uuid.New(),
		ChatID:    chatID,
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.store.CreateMessage(ctx, msg, fileIDs); err != nil {
		return MessageRead{}, err
	}

	return MessageRead{
		ID:        msg.ID,
		ChatID:    msg.ChatID,
		Author:    toUserRead(author),
		Content:   msg.Content,
		Files:     files,
		CreatedAt: msg.CreatedAt,
		UpdatedAt: msg.UpdatedAt,
	}, nil
}

// ListForChat returns a chat's messages with authors and attachments.
func (m *MessageService) ListForChat(ctx context.Context, chatID uuid.UUID) ([]MessageRead, error) {
	messages, err := m.store.MessagesForChat(ctx, chatID)
	if err != nil {
		return nil, err
	}

	reads := make([]MessageRead, 0, len(messages))
	for _, msg := range messages {
		read, err := m.hydrate(ctx, msg)
		if err != nil {
			return nil, err
		}
		reads = append(reads, read)
	}
	return reads, nil
}

// Update replaces a message's content. Only the author may edit.
func (m *MessageService) Update(ctx context.Context, messageID, authorID uuid.UUID, content string) (MessageRead, error) {
	msg, found, err := m.store.MessageByID(ctx, messageID)
	if err != nil {
		return MessageRead{}, err
	}
	if !found {
		return MessageRead{}, ErrMessageNotFound
	}
	if msg.AuthorID != authorID {
		return MessageRead{}, ErrNotMessageAuthor
	}

	if err := m.store.UpdateMessageContent(ctx, messageID, content, time.Now().UTC()); err != nil {
		return MessageRead{}, err
	}
	msg, _, err = m.store.MessageByID(ctx, messageID)
	if err != nil {
		return MessageRead{}, err
	}
	return m.hydrate(ctx, msg)
}

// Delete removes a message. Only the author may delete.
func (m *MessageService) Delete(ctx context.Context, messageID, authorID uuid.UUID) error {
	msg, found, err := m.store.MessageByID(ctx, messageID)
	if err != nil {
		return err
	}
	if !found {
		return ErrMessageNotFound
	}
	if msg.AuthorID != authorID {
		return ErrNotMessageAuthor
	}
	if _, err := m.store.DeleteMessage(ctx, messageID); err != nil {
		return err
	}
	return nil
}

func (m *MessageService) hydrate(ctx context.Context, msg store.Message) (MessageRead, error) {
	author, _, err := m.store.UserByID(ctx, msg.AuthorID)
	if err != nil {
		return MessageRead{}, err
	}
	files, err := m.store.FilesForMessage(ctx, msg.ID)
	if err != nil {
		return MessageRead{}, err
	}

	read := MessageRead{
		ID:        msg.ID,
		ChatID:    msg.ChatID,
		Author:    toUserRead(author),
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
		UpdatedAt: msg.UpdatedAt,
	}
	for _, f := range files {
		read.Files = append(read.Files, toFileRead(f))
	}
	return read, nil
}
