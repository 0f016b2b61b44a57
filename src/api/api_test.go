package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatify/backend/src/api"
	"github.com/chatify/backend/src/auth"
	"github.com/chatify/backend/src/hub"
	"github.com/chatify/backend/src/service"
	"github.com/chatify/backend/src/store"
)

type testBackend struct {
	app        *api.API
	fiber      *fiber.App
	store      *store.Store
	registry   *hub.Registry
	dispatcher *hub.Dispatcher
	tokens     *auth.TokenService
}

func newTestBackend(t *testing.T) *testBackend {
	t.Helper()
	logger := zerolog.Nop()

	s, err := store.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	registry := hub.NewRegistry(logger)
	dispatcher := hub.NewDispatcher(registry, logger)
	tokens := auth.NewTokenService("test-secret", time.Hour)
	uploadDir := t.TempDir()
	files, err := service.NewFileService(s, uploadDir, logger)
	require.NoError(t, err)

	a := api.New(api.Options{
		Auth:       service.NewAuthService(s, tokens, logger),
		Users:      service.NewUserService(s),
		Chats:      service.NewChatService(s),
		Messages:   service.NewMessageService(s, files),
		Files:      files,
		Verifier:   auth.NewVerifier(tokens, s),
		Registry:   registry,
		Dispatcher: dispatcher,
		UploadDir:  uploadDir,
		Logger:     logger,
	})

	app := fiber.New()
	a.RegisterRoutes(app)

	return &testBackend{
		app:        a,
		fiber:      app,
		store:      s,
		registry:   registry,
		dispatcher: dispatcher,
		tokens:     tokens,
	}
}

func (b *testBackend) request(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := b.fiber.Test(req, fiber.TestConfig{Timeout: 10 * time.Second})
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (b *testBackend) signup(t *testing.T, email, nickname string) string {
	t.Helper()
	resp := b.request(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"email": email, "nickname": nickname, "password": "Str0ngEnough!",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decode[service.Token](t, resp).AccessToken
}

func TestSignupLoginFlow(t *testing.T) {
	b := newTestBackend(t)

	token := b.signup(t, "alice@example.com", "alice")
	assert.NotEmpty(t, token)

	resp := b.request(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"email": "alice@example.com", "nickname": "other", "password": "Str0ngEnough!",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = b.request(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"login": "alice", "password": "Str0ngEnough!",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = b.request(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"login": "alice", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	b := newTestBackend(t)

	resp := b.request(t, http.MethodGet, "/api/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = b.request(t, http.MethodGet, "/api/users", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Valid signature but no such user.
	ghost, err := b.tokens.Generate(uuid.New())
	require.NoError(t, err)
	resp = b.request(t, http.MethodGet, "/api/users", ghost, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestChatEndpoints(t *testing.T) {
	b := newTestBackend(t)
	aliceToken := b.signup(t, "alice@example.com", "alice")
	b.signup(t, "bob@example.com", "bob")

	users := decode[[]service.UserRead](t, b.request(t, http.MethodGet, "/api/users", aliceToken, nil))
	require.Len(t, users, 2)
	var bobID uuid.UUID
	for _, u := range users {
		if u.Nickname == "bob" {
			bobID = u.ID
		}
	}
	require.NotEqual(t, uuid.Nil, bobID)

	resp := b.request(t, http.MethodPost, "/api/chats", aliceToken, map[string]any{"receiver_id": bobID})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	chat := decode[service.ChatRead](t, resp)
	assert.Len(t, chat.Users, 2)

	resp = b.request(t, http.MethodPost, "/api/chats", aliceToken, map[string]any{"receiver_id": bobID})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	chats := decode[[]service.ChatRead](t, b.request(t, http.MethodGet, "/api/chats/user", aliceToken, nil))
	assert.Len(t, chats, 1)

	resp = b.request(t, http.MethodGet, "/api/chats/"+chat.ID.String(), aliceToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = b.request(t, http.MethodGet, "/api/chats/"+uuid.NewString(), aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = b.request(t, http.MethodDelete, "/api/chats/"+chat.ID.String(), aliceToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func (b *testBackend) sendMessage(t *testing.T, token string, chatID uuid.UUID, content string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("chat_id", chatID.String()))
	if content != "" {
		require.NoError(t, w.WriteField("content", content))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/messages", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := b.fiber.Test(req, fiber.TestConfig{Timeout: 10 * time.Second})
	require.NoError(t, err)
	return resp
}

func TestMessageEndpoints(t *testing.T) {
	b := newTestBackend(t)
	aliceToken := b.signup(t, "alice@example.com", "alice")
	bobToken := b.signup(t, "bob@example.com", "bob")

	me := decode[service.UserRead](t, b.request(t, http.MethodGet, "/api/users/me", bobToken, nil))
	resp := b.request(t, http.MethodPost, "/api/chats", aliceToken, map[string]any{"receiver_id": me.ID})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	chat := decode[service.ChatRead](t, resp)

	resp = b.sendMessage(t, aliceToken, chat.ID, "hello bob")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	msg := decode[service.MessageRead](t, resp)
	assert.Equal(t, "hello bob", msg.Content)

	resp = b.sendMessage(t, aliceToken, chat.ID, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = b.sendMessage(t, aliceToken, uuid.New(), "lost")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	messages := decode[[]service.MessageRead](t,
		b.request(t, http.MethodGet, "/api/messages/chat/"+chat.ID.String(), bobToken, nil))
	assert.Len(t, messages, 1)
}

func TestInfoEndpoint(t *testing.T) {
	b := newTestBackend(t)
	resp := b.request(t, http.MethodGet, "/ws/info", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	info := decode[map[string]any](t, resp)
	assert.Equal(t, float64(0), info["clients"])
}
