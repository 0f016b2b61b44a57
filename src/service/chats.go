package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/chatify/backend/src/store"
)

// ChatService manages 1:1 conversations.
type ChatService struct {
	store *store.Store
}

// NewChatService creates a chat service.
func NewChatService(s *store.Store) *ChatService {
	return &ChatService{store: s}
}

// Create starts a chat between the creator and receiver. Self-chats
// and duplicate pairs are rejected; the receiver must exist.
func (c *ChatService) Create(ctx context.Context, creator store.User, receiverID uuid.UUID) (ChatRead, error) {
	if creator.ID == receiverID {
		return ChatRead{}, ErrSelfChat
	}

	receiver, found, err := c.store.UserByID(ctx, receiverID)
	if err != nil {
		return ChatRead{}, err
	}
	if !found {
		return ChatRead{}, ErrUserNotFound
	}

	if _, exists, err := c.store.ChatBetween(ctx, creator.ID, receiverID); err != nil {
		return ChatRead{}, err
	} else if exists {
		return ChatRead{}, ErrChatExists
	}

	chat := store.Chat{
		ID:        uuid.New(),
		CreatorID: creator.ID,
		CreatedAt: time.Now().UTC(),
	}
	if err := c.store.CreateChat(ctx, chat, []uuid.UUID{creator.ID, receiverID}); err != nil {
		return ChatRead{}, err
	}

	return ChatRead{
		ID:        chat.ID,
		CreatorID: chat.CreatorID,
		Users:     []UserRead{toUserRead(creator), toUserRead(receiver)},
	}, nil
}

// Get returns a chat with its members and latest message preview.
func (c *ChatService) Get(ctx context.Context, chatID uuid.UUID) (ChatRead, error) {
	chat, found, err := c.store.ChatByID(ctx, chatID)
	if err != nil {
		return ChatRead{}, err
	}
	if !found {
		return ChatRead{}, ErrChatNotFound
	}
	return c.hydrate(ctx, chat)
}

// ListForUser returns every chat the user participates in.
func (c *ChatService) ListForUser(ctx context.Context, userID uuid.UUID) ([]ChatRead, error) {
	chats, err := c.store.ChatsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	reads := make([]ChatRead, 0, len(chats))
	for _, chat := range chats {
		read, err := c.hydrate(ctx, chat)
		if err != nil {
			return nil, err
		}
		reads = append(reads, read)
	}
	return reads, nil
}

// Delete removes a chat together with its messages and memberships.
func (c *ChatService) Delete(ctx context.Context, chatID uuid.UUID) error {
	deleted, err := c.store.DeleteChat(ctx, chatID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrChatNotFound
	}
	return nil
}

func (c *ChatService) hydrate(ctx context.Context, chat store.Chat) (ChatRead, error) {
	members, err := c.store.ChatMembers(ctx, chat.ID)
	if err != nil {
		return ChatRead{}, err
	}

	var lastMessage *string
	if last, found, err := c.store.LastMessage(ctx, chat.ID); err != nil {
		return ChatRead{}, err
	} else if found {
		lastMessage = &last.Content
	}

	return ChatRead{
		ID:          chat.ID,
		CreatorID:   chat.CreatorID,
		Users:       lo.Map(members, func(u store.User, _ int) UserRead { return toUserRead(u) }),
		LastMessage: lastMessage,
	}, nil
}
