package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Dosada05/clubhub/config"
	"github.com/Dosada05/clubhub/db"
	"github.com/Dosada05/clubhub/docstore"
	"github.com/Dosada05/clubhub/handlers"
	"github.com/Dosada05/clubhub/live"
	"github.com/Dosada05/clubhub/metrics"
	"github.com/Dosada05/clubhub/middleware"
	"github.com/Dosada05/clubhub/repositories"
	"github.com/Dosada05/clubhub/routes"
	"github.com/Dosada05/clubhub/services"
	"github.com/Dosada05/clubhub/session"
	"github.com/Dosada05/clubhub/storage"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the ClubHub API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Подключение к базе данных
	dbConn, err := db.Connect(ctx, cfg.DatabaseURL, cfg.DB, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	if cfg.AutoMigrate {
		if err := db.MigrateUp(dbConn); err != nil {
			return err
		}
		logger.Info("migrations applied")
	}

	m := metrics.New()
	m.RegisterDBStats(dbConn)

	revocations, err := session.NewRedisRevocations(cfg.RedisURL)
	if err != nil {
		return err
	}
	defer revocations.Close()
	logger.Info("redis connection established")

	loc, err := time.LoadLocation(cfg.Calendar.TimeZone)
	if err != nil {
		return fmt.Errorf("invalid calendar timezone %q: %w", cfg.Calendar.TimeZone, err)
	}

	uploader, err := newUploader(ctx, cfg, logger)
	if err != nil {
		return err
	}
	calendar, err := newCalendar(ctx, cfg, logger)
	if err != nil {
		return err
	}

	// WebSocket hub
	hub := live.NewHub(logger, m.LiveConnections)
	go hub.Run(ctx)

	store := docstore.NewPostgresStore(dbConn)
	userRepo := repositories.NewUserRepository(store)
	playerRepo := repositories.NewPlayerRepository(store)
	tournamentRepo := repositories.NewTournamentRepository(store)
	signupRepo := repositories.NewSignupRepository(store)
	teamRepo := repositories.NewTeamRepository(store)
	credRepo := repositories.NewCredentialsRepository(store)

	state := session.NewState()
	mailer := services.ObservedMailer(services.NewMailer(cfg.Email, &http.Client{Timeout: 10 * time.Second}), m.ObserveEmail)
	emailService := services.NewEmailService(mailer, cfg.PublicURL)

	identityService := services.NewIdentityService(userRepo)
	authService := services.NewAuthService(services.AuthDeps{
		Store:       store,
		Credentials: credRepo,
		Users:       userRepo,
		Players:     playerRepo,
		Identity:    identityService,
		Tokens:      services.NewTokenIssuer(cfg.JWTSecretKey, cfg.SessionTTL, nil),
		Revocations: revocations,
		State:       state,
		Google:      services.NewGoogleIDTokenVerifier(cfg.OAuth.GoogleClientID),
		Email:       emailService,
		Logger:      logger,
	})
	userService := services.NewUserService(store, userRepo, playerRepo, credRepo, logger)
	playerService := services.NewPlayerService(store, playerRepo, userRepo, nil, logger)
	relationshipService := services.NewRelationshipService(store, userRepo, playerRepo, logger)
	tournamentService := services.NewTournamentService(services.TournamentDeps{
		Store:       store,
		Tournaments: tournamentRepo,
		Calendar:    calendar,
		Uploader:    uploader,
		Live:        hub,
		Location:    loc,
		Logger:      logger,
	})
	signupService := services.NewSignupService(tournamentRepo, signupRepo, playerRepo, hub, nil, loc, logger)
	rosterService := services.NewRosterService(tournamentRepo, teamRepo, signupRepo, playerRepo, hub, nil, logger)
	messagingService := services.NewMessagingService(userRepo, teamRepo, signupRepo, emailService, logger)

	router := routes.SetupRoutes(routes.Handlers{
		Auth:        handlers.NewAuthHandler(authService),
		Users:       handlers.NewUserHandler(userService, signupService, relationshipService),
		Players:     handlers.NewPlayerHandler(playerService),
		Tournaments: handlers.NewTournamentHandler(tournamentService),
		Signups:     handlers.NewSignupHandler(signupService),
		Teams:       handlers.NewTeamHandler(rosterService),
		Messages:    handlers.NewMessageHandler(messagingService),
		Health: handlers.NewHealthHandler(map[string]handlers.Pinger{
			"database": store,
			"redis":    revocations,
		}),
		WebSocket: handlers.NewWebSocketHandler(hub, state, tournamentService, cfg.CORSAllowedOrigins, logger),
	}, routes.Options{
		Auth:           middleware.NewAuthenticator(authService, identityService, m, logger),
		Metrics:        m,
		Logger:         logger,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			return err
		}
	}
	logger.Info("server shutdown complete")
	return nil
}

// newUploader returns nil when R2 is not configured; flyer uploads then
// answer 503.
func newUploader(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.FileUploader, error) {
	if !cfg.R2.Enabled() {
		logger.Info("Cloudflare R2 not configured, flyer uploads disabled")
		return nil, nil
	}
	uploader, err := storage.NewCloudflareR2Uploader(ctx, storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2.AccountID,
		AccessKeyID:     cfg.R2.AccessKeyID,
		SecretAccessKey: cfg.R2.SecretAccessKey,
		BucketName:      cfg.R2.BucketName,
		PublicBaseURL:   cfg.R2.PublicBaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudflare R2 uploader: %w", err)
	}
	logger.Info("Cloudflare R2 uploader initialized")
	return uploader, nil
}

func newCalendar(ctx context.Context, cfg *config.Config, logger *slog.Logger) (services.CalendarClient, error) {
	if !cfg.Calendar.Enabled() {
		logger.Info("Google Calendar not configured, calendar sync disabled")
		return services.DisabledCalendar(), nil
	}
	cal, err := services.NewGoogleCalendar(ctx, cfg.Calendar)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Calendar: %w", err)
	}
	return cal, nil
}
