package api

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"

	"github.com/chatify/backend/src/auth"
	"github.com/chatify/backend/src/hub"
	"github.com/chatify/backend/src/service"
)

// API wires the HTTP surface: REST routes on a fiber app and the raw
// WebSocket upgrade endpoint beside it.
type API struct {
	auth       *service.AuthService
	users      *service.UserService
	chats      *service.ChatService
	messages   *service.MessageService
	files      *service.FileService
	verifier   *auth.Verifier
	registry   *hub.Registry
	dispatcher *hub.Dispatcher
	uploadDir  string
	logger     zerolog.Logger
}

// Options collects the collaborators an API needs.
type Options struct {
	Auth       *service.AuthService
	Users      *service.UserService
	Chats      *service.ChatService
	Messages   *service.MessageService
	Files      *service.FileService
	Verifier   *auth.Verifier
	Registry   *hub.Registry
	Dispatcher *hub.Dispatcher
	UploadDir  string
	Logger     zerolog.Logger
}

// New creates the API.
func New(opts Options) *API {
	return &API{
		auth:       opts.Auth,
		users:      opts.Users,
		chats:      opts.Chats,
		messages:   opts.Messages,
		files:      opts.Files,
		verifier:   opts.Verifier,
		registry:   opts.Registry,
		dispatcher: opts.Dispatcher,
		uploadDir:  opts.UploadDir,
		logger:     opts.Logger.With().Str("component", "api").Logger(),
	}
}

// RegisterRoutes registers all REST routes on the fiber app. The
// WebSocket upgrade itself is served by WebSocketHandler at the
// fasthttp level, since fiber v3 does not expose *fasthttp.RequestCtx.
func (a *API) RegisterRoutes(app *fiber.App) {
	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/signup", a.handleSignup)
	authGroup.Post("/login", a.handleLogin)

	protected := api.Group("", a.requireAuth)
	protected.Get("/users", a.handleListUsers)
	protected.Get("/users/me", a.handleCurrentUser)

	protected.Post("/chats", a.handleCreateChat)
	protected.Get("/chats/user", a.handleUserChats)
	protected.Get("/chats/:chat_id", a.handleGetChat)
	protected.Delete("/chats/:chat_id", a.handleDeleteChat)

	protected.Post("/messages", a.handleSendMessage)
	protected.Get("/messages/chat/:chat_id", a.handleChatMessages)
	protected.Put("/messages/:message_id", a.handleUpdateMessage)
	protected.Delete("/messages/:message_id", a.handleDeleteMessage)

	protected.Get("/files", a.handleListFiles)
	protected.Get("/files/:file_id", a.handleGetFile)
	protected.Delete("/files/:file_id", a.handleDeleteFile)

	app.Get("/uploads/:name", a.handleServeUpload)
	app.Get("/ws/info", a.handleInfo)
}

// handleInfo reports live hub statistics.
func (a *API) handleInfo(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"websocket": true,
		"endpoint":  "/ws/chats/{chat_id}",
		"clients":   a.registry.ClientCount(),
		"rooms":     a.registry.RoomCount(),
	})
}

// fail maps service errors onto HTTP statuses.
func (a *API) fail(c fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrUserExists),
		errors.Is(err, service.ErrSelfChat),
		errors.Is(err, service.ErrChatExists),
		errors.Is(err, service.ErrEmptyMessage):
		status = fiber.StatusBadRequest
	case errors.Is(err, service.ErrInvalidLogin):
		status = fiber.StatusUnauthorized
	case errors.Is(err, service.ErrNotMessageAuthor):
		status = fiber.StatusForbidden
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrChatNotFound),
		errors.Is(err, service.ErrMessageNotFound),
		errors.Is(err, service.ErrFileNotFound):
		status = fiber.StatusNotFound
	default:
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			status = fiber.StatusBadRequest
		}
	}

	if status == fiber.StatusInternalServerError {
		a.logger.Error().Err(err).Str("path", c.Path()).Msg("request failed")
		return c.Status(status).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
