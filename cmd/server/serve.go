package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"learnstudio/internal/avatar"
	"learnstudio/internal/config"
	"learnstudio/internal/handler"
	"learnstudio/internal/llm"
	"learnstudio/internal/logging"
	"learnstudio/internal/mail"
	"learnstudio/internal/metrics"
	"learnstudio/internal/service"
	"learnstudio/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

const (
	mailQueueSize   = 100
	mailSendTimeout = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}

	logger := logging.SetDefault("learnstudio", version, cfg.LogFormat, cfg.LogLevel)
	if cfg.UsingInsecureDefaults() {
		logger.Warn("using built-in development secrets; set JWT_SECRET and ADMIN_CODE before deploying")
	}
	gin.SetMode(cfg.GinMode)

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg.Store)
	if err != nil {
		return oops.Code("STORE_CONNECT_FAILED").With("driver", cfg.Store.Driver).Wrap(err)
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			logger.Error("failed to close store", "error", err)
		}
	}()
	if err := store.Migrate(ctx); err != nil {
		return oops.Code("MIGRATION_FAILED").With("driver", cfg.Store.Driver).Wrap(err)
	}
	logger.Info("store ready", "driver", cfg.Store.Driver)

	m := metrics.New()

	var mailer mail.Mailer
	if cfg.SMTP.Enabled() {
		smtp, err := mail.NewSMTPMailer(cfg.SMTP)
		if err != nil {
			return oops.Code("SMTP_CONFIG_INVALID").Wrap(err)
		}
		mailer = smtp
	} else {
		logger.Warn("SMTP credentials not set, reset codes will only be logged")
		mailer = mail.NewLogMailer(logger)
	}
	dispatcher := mail.NewDispatcher(mailer, mailQueueSize, mailSendTimeout, logger, m)
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := dispatcher.Stop(stopCtx); err != nil {
			logger.Warn("mail queue not drained", "error", err)
		}
	}()

	var avatars avatar.Storage = avatar.NewInlineStorage(cfg.Avatar.MaxBytes)
	if cfg.Avatar.Storage == config.AvatarS3 {
		s3Storage, err := avatar.NewS3Storage(ctx, cfg.Avatar)
		if err != nil {
			return oops.Code("AVATAR_STORAGE_INVALID").Wrap(err)
		}
		avatars = s3Storage
	}

	var completer service.Completer
	if cfg.Chat.APIKey != "" {
		completer = llm.New(cfg.Chat)
	} else {
		logger.Warn("GROQ_API_KEY not set, chat is disabled")
	}

	jwtUtil := utils.NewJWTUtil(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	hasher := utils.NewPasswordHasher(cfg.Auth.BcryptCost)

	router := handler.NewRouter(handler.RouterConfig{
		Version:            version,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitPerSecond: cfg.RateLimitPerSecond,
		RateLimitIPHeader:  cfg.RateLimitIPHeader,
		RequestTimeout:     cfg.Store.Timeout,
		Logger:             logger,
		Metrics:            m,
		Store:              store,
		Auth:               service.NewAuthService(store.Users(), jwtUtil, hasher, cfg.Auth, m),
		Resets:             service.NewResetService(store.Users(), store.Resets(), hasher, dispatcher, cfg.Auth, m),
		Users:              service.NewUserService(store.Users(), hasher, avatars, cfg.Auth),
		Progress:           service.NewProgressService(store.Progress()),
		Admin:              service.NewAdminService(store.Users(), store.Progress()),
		Chat:               service.NewChatService(completer, m),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Port, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return oops.Code("LISTEN_FAILED").With("port", cfg.Port).Wrap(err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		return oops.Code("SHUTDOWN_FAILED").Wrap(err)
	}

	logger.Info("server exiting")
	return nil
}
