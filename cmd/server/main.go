package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v3"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/chatify/backend/config"
	"github.com/chatify/backend/src/api"
	"github.com/chatify/backend/src/auth"
	"github.com/chatify/backend/src/hub"
	"github.com/chatify/backend/src/service"
	"github.com/chatify/backend/src/store"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components and manages the server lifecycle, so
// deferred cleanup executes before the process exits.
func run() (int, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return exitConfig, err
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return exitConfig, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()

	ctx := context.Background()
	db, err := store.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return exitRuntime, err
	}
	defer db.Close()

	registry := hub.NewRegistry(logger)
	dispatcher := hub.NewDispatcher(registry, logger)

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	verifier := auth.NewVerifier(tokens, db)

	files, err := service.NewFileService(db, cfg.UploadDir, logger)
	if err != nil {
		return exitRuntime, err
	}

	apiLayer := api.New(api.Options{
		Auth:       service.NewAuthService(db, tokens, logger),
		Users:      service.NewUserService(db),
		Chats:      service.NewChatService(db),
		Messages:   service.NewMessageService(db, files),
		Files:      files,
		Verifier:   verifier,
		Registry:   registry,
		Dispatcher: dispatcher,
		UploadDir:  cfg.UploadDir,
		Logger:     logger,
	})

	app := fiber.New(fiber.Config{AppName: "chatify"})
	apiLayer.RegisterRoutes(app)

	// One fasthttp server multiplexes WebSocket upgrades and the fiber
	// app: the upgrader needs the raw *fasthttp.RequestCtx.
	wsHandler := apiLayer.WebSocketHandler()
	fiberHandler := app.Handler()
	server := &fasthttp.Server{
		Name: "chatify",
		Handler: func(ctx *fasthttp.RequestCtx) {
			if strings.HasPrefix(string(ctx.Path()), "/ws/chats/") {
				wsHandler(ctx)
				return
			}
			fiberHandler(ctx)
		},
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Addr).Msg("server listening")
		errCh <- server.ListenAndServe(cfg.Addr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return exitRuntime, err
	case sig := <-stop:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	if err := server.Shutdown(); err != nil {
		return exitRuntime, fmt.Errorf("shutdown: %w", err)
	}
	return exitOK, nil
}
