package api

import (
	"path/filepath"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/chatify/backend/src/auth"
	"github.com/chatify/backend/src/types"
)

func (a *API) handleSignup(c fiber.Ctx) error {
	var req auth.SignupRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request body"})
	}
	token, err := a.auth.Signup(c.Context(), req)
	if err != nil {
		return a.fail(c, err)
	}
	return c.JSON(token)
}

func (a *API) handleLogin(c fiber.Ctx) error {
	var req auth.LoginRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request body"})
	}
	token, err := a.auth.Login(c.Context(), req)
	if err != nil {
		return a.fail(c, err)
	}
	return c.JSON(token)
}

func (a *API) handleListUsers(c fiber.Ctx) error {
	users, err := a.users.List(c.Context())
	if err != nil {
		return a.fail(c, err)
	}
	return c.JSON(users)
}

func (a *API) handleCurrentUser(c fiber.Ctx) error {
	user := currentUser(c)
	return c.JSON(fiber.Map{
		"id":       user.ID,
		"email":    user.Email,
		"nickname": user.Nickname,
	})
}

type createChatRequest struct {
	ReceiverID uuid.UUID `json:"receiver_id"`
}

func (a *API) handleCreateChat(c fiber.Ctx) error {
	var req createChatRequest
	if err := c.Bind().Body(&req); err != nil || req.ReceiverID == uuid.Nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "receiver_id is required"})
	}
	chat, err := a.chats.Create(c.Context(), currentUser(c), req.ReceiverID)
	if err != nil {
		return a.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(chat)
}

func (a *API) handleUserChats(c fiber.Ctx) error {
	chats, err := a.chats.ListForUser(c.Context(), currentUser(c).ID)
	if err != nil {
		return a.fail(c, err)
	}
	return c.JSON(chats)
}

func (a *API) handleGetChat(c fiber.Ctx) error {
	chatID, err := uuid.Parse(c.Params("chat_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid chat id"})
	}
	chat, err := a.chats.Get(c.Context(), chatID)
	if err != nil {
		return a.fail(c, err)
	}
	return c.JSON(chat)
}

func (a *API) handleDeleteChat(c fiber.Ctx) error {
	chatID, err := uuid.Parse(c.Params("chat_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid chat id"})
	}
	if err := a.chats.Delete(c.Context(), chatID); err != nil {
		return a.fail(c, err)
	}
	return c.JSON(fiber.Map{"detail": "chat deleted"})
}

// handleSendMessage accepts a multipart form with chat_id, optional
// content, and optional file parts. After the message commits, a
// NEW_MESSAGE event is fanned out to the chat room.
func (a *API) handleSendMessage(c fiber.Ctx) error {
	chatID, err := uuid.Parse(c.FormValue("chat_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid chat id"})
	}
	content := c.FormValue("content")

	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed multipart form"})
	}

	msg, err := a.messages.Send(c.Context(), chatID, currentUser(c).ID, content, form.File["files"])
	if err != nil {
		return a.fail(c, err)
	}

	a.dispatcher.Notify(chatID, types.Event{Type: "NEW_MESSAGE"})
	return c.Status(fiber.StatusCreated).JSON(msg)
}

func (a *API) handleChatMessages(c fiber.Ctx) error {
	chatID, err := uuid.Parse(c.Params("chat_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid chat id"})
	}
	messages, err := a.messages.ListForChat(c.Context(), chatID)
	if err != nil {
		return a.fail(c, err)
	}
	return c.JSON(messages)
}

func (a *API) handleUpdateMessage(c fiber.Ctx) error {
	messageID, err := uuid.Parse(c.Params("message_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid message id"})
	}
	content := c.FormValue("content")
	if content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "content is required"})
	}
	msg, err := a.messages.Update(c.Context(), messageID, currentUser(c).ID, content)
	if err != nil {
		return a.fail(c, err)
	}
	return c.JSON(msg)
}

func (a *API) handleDeleteMessage(c fiber.Ctx) error {
	messageID, err := uuid.Parse(c.Params("message_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid message id"})
	}
	if err := a.messages.Delete(c.Context(), messageID, currentUser(c).ID); err != nil {
		return a.fail(c, err)
	}
	return c.JSON(fiber.Map{"detail": "message deleted"})
}

func (a *API) handleListFiles(c fiber.Ctx) error {
	files, err := a.files.List(c.Context())
	if err != nil {
		return a.fail(c, err)
	}
	return c.JSON(files)
}

func (a *API) handleGetFile(c fiber.Ctx) error {
	fileID, err := uuid.Parse(c.Params("file_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid file id"})
	}
	file, err := a.files.Get(c.Context(), fileID)
	if err != nil {
		return a.fail(c, err)
	}
	return c.JSON(file)
}

func (a *API) handleDeleteFile(c fiber.Ctx) error {
	fileID, err := uuid.Parse(c.Params("file_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid file id"})
	}
	if err := a.files.Delete(c.Context(), fileID); err != nil {
		return a.fail(c, err)
	}
	return c.JSON(fiber.Map{"detail": "file deleted"})
}

// handleServeUpload serves stored blobs. Names are uuid-based, so a
// base-name restriction is sufficient against traversal.
func (a *API) handleServeUpload(c fiber.Ctx) error {
	name := filepath.Base(c.Params("name"))
	return c.SendFile(filepath.Join(a.uploadDir, name))
}
