package service_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatify/backend/src/auth"
	"github.com/chatify/backend/src/service"
	"github.com/chatify/backend/src/store"
)

type fixture struct {
	store    *store.Store
	auth     *service.AuthService
	chats    *service.ChatService
	messages *service.MessageService
	files    *service.FileService
	users    *service.UserService
	tokens   *auth.TokenService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s, err := store.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	tokens := auth.NewTokenService("test-secret", time.Hour)
	files, err := service.NewFileService(s, t.TempDir(), zerolog.Nop())
	require.NoError(t, err)

	return &fixture{
		store:    s,
		auth:     service.NewAuthService(s, tokens, zerolog.Nop()),
		chats:    service.NewChatService(s),
		messages: service.NewMessageService(s, files),
		files:    files,
		users:    service.NewUserService(s),
		tokens:   tokens,
	}
}

func (f *fixture) signup(t *testing.T, email, nickname string) store.User {
	t.Helper()
	_, err := f.auth.Signup(context.Background(), auth.SignupRequest{
		Email: email, Nickname: nickname, Password: "Str0ngEnough!",
	})
	require.NoError(t, err)
	u, found, err := f.store.UserByLogin(context.Background(), email)
	require.NoError(t, err)
	require.True(t, found)
	return u
}

// uploadHeader builds a throwaway multipart.FileHeader carrying content.
func uploadHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("files", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["files"][0]
}

func TestSignupAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	token, err := f.auth.Signup(ctx, auth.SignupRequest{
		Email: "alice@example.com", Nickname: "alice", Password: "Str0ngEnough!",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token.AccessToken)
	assert.Equal(t, "bearer", token.TokenType)

	// Token subject must resolve back to the stored user.
	userID, err := f.tokens.Validate(token.AccessToken)
	require.NoError(t, err)
	u, found, err := f.store.UserByID(ctx, userID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "alice@example.com", u.Email)

	_, err = f.auth.Signup(ctx, auth.SignupRequest{
		Email: "alice@example.com", Nickname: "alice2", Password: "Str0ngEnough!",
	})
	assert.ErrorIs(t, err, service.ErrUserExists)

	_, err = f.auth.Login(ctx, auth.LoginRequest{Login: "alice", Password: "Str0ngEnough!"})
	assert.NoError(t, err)
	_, err = f.auth.Login(ctx, auth.LoginRequest{Login: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, service.ErrInvalidLogin)
	_, err = f.auth.Login(ctx, auth.LoginRequest{Login: "nobody", Password: "whatever"})
	assert.ErrorIs(t, err, service.ErrInvalidLogin)
}

func TestChatCreationRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.signup(t, "alice@example.com", "alice")
	bob := f.signup(t, "bob@example.com", "bob")

	_, err := f.chats.Create(ctx, alice, alice.ID)
	assert.ErrorIs(t, err, service.ErrSelfChat)

	_, err = f.chats.Create(ctx, alice, uuid.New())
	assert.ErrorIs(t, err, service.ErrUserNotFound)

	chat, err := f.chats.Create(ctx, alice, bob.ID)
	require.NoError(t, err)
	assert.Len(t, chat.Users, 2)
	assert.Equal(t, alice.ID, chat.CreatorID)

	_, err = f.chats.Create(ctx, bob, alice.ID)
	assert.ErrorIs(t, err, service.ErrChatExists)
}

func TestChatGetAndListWithLastMessage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.signup(t, "alice@example.com", "alice")
	bob := f.signup(t, "bob@example.com", "bob")

	chat, err := f.chats.Create(ctx, alice, bob.ID)
	require.NoError(t, err)

	got, err := f.chats.Get(ctx, chat.ID)
	require.NoError(t, err)
	assert.Nil(t, got.LastMessage)

	_, err = f.messages.Send(ctx, chat.ID, bob.ID, "hi alice", nil)
	require.NoError(t, err)

	got, err = f.chats.Get(ctx, chat.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastMessage)
	assert.Equal(t, "hi alice", *got.LastMessage)

	list, err := f.chats.ListForUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = f.chats.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, service.ErrChatNotFound)

	require.NoError(t, f.chats.Delete(ctx, chat.ID))
	assert.ErrorIs(t, f.chats.Delete(ctx, chat.ID), service.ErrChatNotFound)
}

func TestSendMessageRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.signup(t, "alice@example.com", "alice")
	bob := f.signup(t, "bob@example.com", "bob")
	chat, err := f.chats.Create(ctx, alice, bob.ID)
	require.NoError(t, err)

	_, err = f.messages.Send(ctx, uuid.New(), alice.ID, "hi", nil)
	assert.ErrorIs(t, err, service.ErrChatNotFound)

	_, err = f.messages.Send(ctx, chat.ID, uuid.New(), "hi", nil)
	assert.ErrorIs(t, err, service.ErrUserNotFound)

	_, err = f.messages.Send(ctx, chat.ID, alice.ID, "", nil)
	assert.ErrorIs(t, err, service.ErrEmptyMessage)

	msg, err := f.messages.Send(ctx, chat.ID, alice.ID, "hello bob", nil)
	require.NoError(t, err)
	assert.Equal(t, "hello bob", msg.Content)
	assert.Equal(t, alice.ID, msg.Author.ID)
}

func TestSendMessageWithUpload(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.signup(t, "alice@example.com", "alice")
	bob := f.signup(t, "bob@example.com", "bob")
	chat, err := f.chats.Create(ctx, alice, bob.ID)
	require.NoError(t, err)

	header := uploadHeader(t, "note.txt", []byte("attached text"))
	msg, err := f.messages.Send(ctx, chat.ID, alice.ID, "", []*multipart.FileHeader{header})
	require.NoError(t, err)
	require.Len(t, msg.Files, 1)
	assert.Equal(t, "note.txt", msg.Files[0].Filename)
	assert.Contains(t, msg.Files[0].ContentType, "text/plain")

	// The attachment survives a list round trip.
	listed, err := f.messages.ListForChat(ctx, chat.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Len(t, listed[0].Files, 1)
}

func TestMessageAuthorship(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.signup(t, "alice@example.com", "alice")
	bob := f.signup(t, "bob@example.com", "bob")
	chat, err := f.chats.Create(ctx, alice, bob.ID)
	require.NoError(t, err)

	msg, err := f.messages.Send(ctx, chat.ID, alice.ID, "original", nil)
	require.NoError(t, err)

	_, err = f.messages.Update(ctx, msg.ID, bob.ID, "hijacked")
	assert.ErrorIs(t, err, service.ErrNotMessageAuthor)

	updated, err := f.messages.Update(ctx, msg.ID, alice.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)

	assert.ErrorIs(t, f.messages.Delete(ctx, msg.ID, bob.ID), service.ErrNotMessageAuthor)
	require.NoError(t, f.messages.Delete(ctx, msg.ID, alice.ID))
	assert.ErrorIs(t, f.messages.Delete(ctx, msg.ID, alice.ID), service.ErrMessageNotFound)
}

func TestFileLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	header := uploadHeader(t, "photo.png", []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'})
	saved, err := f.files.Save(ctx, header)
	require.NoError(t, err)
	assert.Equal(t, "image/png", saved.ContentType)

	got, err := f.files.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "photo.png", got.Filename)

	all, err := f.files.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	// Capture the on-disk path before deleting.
	stored, found, err := f.store.FileByID(ctx, saved.ID)
	require.NoError(t, err)
	require.True(t, found)

	require.NoError(t, f.files.Delete(ctx, saved.ID))
	assert.ErrorIs(t, f.files.Delete(ctx, saved.ID), service.ErrFileNotFound)

	// The blob is gone from disk as well.
	_, statErr := os.Stat(stored.Path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestUserList(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "alice@example.com", "alice")
	f.signup(t, "bob@example.com", "bob")

	users, err := f.users.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 2)
}
