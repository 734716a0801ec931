package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chat-rooms/auth"
	"chat-rooms/fanout"
	"chat-rooms/gateway"
	"chat-rooms/moderation"
	"chat-rooms/repositories"
	"chat-rooms/search"
	"chat-rooms/services"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting so that deferred cleanups (database close,
// index close) always execute before the process exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.INFO))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Search index
	index, err := search.NewMessageIndex(config.BlugeFilepath)
	if err != nil {
		return fmt.Errorf("search index opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing search index...")
		_ = index.Close()
	}()

	// 4. Moderation
	replacement, err := CharacterRune(config.CharReplacement)
	if err != nil {
		return err
	}
	var moderator *moderation.Moderator
	if words := config.BannedWordList(); len(words) > 0 {
		if moderator, err = moderation.NewModerator(words, replacement); err != nil {
			return fmt.Errorf("moderator setup failed: %w", err)
		}
	}

	// 5. Repositories, fanout and services
	tokens := auth.NewTokenManager(config.JWTSecret, config.AuthTokenDuration)
	hub := fanout.NewHub(log, config.FanoutBufferSize)

	userRepository := repositories.NewUserRepository(db)
	roomRepository := repositories.NewRoomRepository(db)
	invitationRepository := repositories.NewInvitationRepository(db)
	messageRepository := repositories.NewMessageRepository(db, log, config.LimitMessages)

	roomService := services.NewRoomService(roomRepository, userRepository, hub, log)
	authService := services.NewAuthService(userRepository, tokens)
	userService := services.NewUserService(userRepository, hub, log)
	invitationService := services.NewInvitationService(
		invitationRepository, userRepository, roomService, config.InvitationBaseURL, log)
	messageService := services.NewMessageService(
		messageRepository, userRepository, roomService, moderator, index, hub, log)

	// 6. Transport
	gw := gateway.New(log, tokens, hub, userRepository,
		authService, userService, roomService, invitationService, messageService,
		gateway.Options{
			HandshakeTimeout:     config.HandshakeTimeout,
			WSInsecureSkipVerify: config.WSSkipOriginCheck,
		})

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{Addr: address, Handler: gw.Router()}

	// 7. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 8. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 9. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	log.Info("Program stopped cleanly")

	return nil
}
