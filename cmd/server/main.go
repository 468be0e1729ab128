package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/goer-app/goer/backend/internal/auth"
	"github.com/goer-app/goer/backend/internal/handlers"
	"github.com/goer-app/goer/backend/internal/mailer"
	"github.com/goer-app/goer/backend/internal/push"
	"github.com/goer-app/goer/backend/internal/repositories"
	"github.com/goer-app/goer/backend/internal/router"
	"github.com/goer-app/goer/backend/internal/services"
	"github.com/goer-app/goer/backend/internal/storage"
	"github.com/goer-app/goer/backend/internal/validators"
	"github.com/goer-app/goer/backend/pkg/config"
	"github.com/goer-app/goer/backend/pkg/firebase"
	"github.com/goer-app/goer/backend/pkg/logger"
)

const (
	tokenTTL        = 30 * 24 * time.Hour
	shutdownTimeout = 15 * time.Second
)

func main() {
	// Load configuration
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty, ServiceName: "goer-api"})
	l := logger.L()

	ctx := context.Background()
	db, err := config.InitDB(ctx, cfg)
	if err != nil {
		l.Fatal().Err(err).Msg("failed to initialize databases")
	}
	defer db.Close()

	if err := repositories.AutoMigrate(db.Postgres); err != nil {
		l.Fatal().Err(err).Msg("failed to migrate PostgreSQL")
	}
	if err := repositories.EnsureIndexes(ctx, db.Database); err != nil {
		l.Fatal().Err(err).Msg("failed to create MongoDB indexes")
	}

	// Firebase is optional: without it push and federated sign-in are off.
	var pusher push.Pusher
	var verifier services.IDTokenVerifier
	if cfg.FirebaseCredentialsPath != "" {
		fb, err := firebase.New(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			l.Fatal().Err(err).Msg("failed to initialize Firebase")
		}
		pusher = push.NewFirebasePusher(fb.Messaging)
		verifier = fb.Auth
	} else {
		l.Warn().Msg("FIREBASE_CREDENTIALS_PATH not set, push and Firebase sign-in disabled")
	}

	store, localRoot, err := newStorage(ctx, cfg)
	if err != nil {
		l.Fatal().Err(err).Msg("failed to initialize storage")
	}

	var m mailer.Mailer = mailer.NopMailer{}
	if cfg.SMTPHost != "" {
		m = mailer.NewSMTPMailer(mailer.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		})
	}

	issuer, err := auth.NewIssuer(cfg.JWTSecret, tokenTTL)
	if err != nil {
		l.Fatal().Err(err).Msg("failed to create token issuer")
	}

	// --- Initialize Repositories ---
	mdb := db.Database
	accountRepo := repositories.NewMongoAccountRepository(mdb)
	followRepo := repositories.NewMongoFollowRepository(mdb)
	postRepo := repositories.NewMongoPostRepository(mdb)
	reviewRepo := repositories.NewMongoReviewRepository(mdb)
	commentRepo := repositories.NewMongoCommentRepository(mdb)
	reactionRepo := repositories.NewMongoReactionRepository(mdb)
	threadRepo := repositories.NewMongoThreadRepository(mdb)
	messageRepo := repositories.NewMongoMessageRepository(mdb)
	eventRepo := repositories.NewMongoEventRepository(mdb)
	saveRepo := repositories.NewMongoSaveRepository(mdb)
	sessionRepo := repositories.NewPostgresSessionRepository(db.Postgres)
	notificationRepo := repositories.NewPostgresNotificationRepository(db.Postgres)

	// --- Initialize Services ---
	notifier := services.NewNotifier(notificationRepo, sessionRepo, accountRepo, pusher)
	svc := router.Services{
		Accounts:  services.NewAccountService(accountRepo, sessionRepo, followRepo, notifier, issuer, m, store, verifier),
		Follows:   services.NewFollowService(followRepo, accountRepo, notifier),
		Content:   services.NewContentService(postRepo, reviewRepo, commentRepo, reactionRepo, accountRepo, followRepo, notifier, store),
		Reviews:   services.NewReviewService(reviewRepo, accountRepo, postRepo, commentRepo, reactionRepo, notifier),
		Reactions: services.NewReactionService(reactionRepo, postRepo, reviewRepo, commentRepo, accountRepo, followRepo, notifier),
		Threads:   services.NewThreadService(threadRepo, messageRepo, eventRepo, accountRepo, notifier),
		Events:    services.NewEventService(eventRepo, threadRepo),
		Catalog: services.NewCatalogService(
			repositories.NewTagRepository(mdb),
			repositories.NewStaticRepository(mdb),
			repositories.NewPreferenceRepository(mdb),
			repositories.NewFeedbackRepository(mdb),
			saveRepo,
			accountRepo,
		),
		Notifier: notifier,
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()

	// Setup global middleware
	router.SetupMiddleware(e, *l)

	// Setup routes and dependencies
	router.SetupRoutes(e, svc, map[string]handlers.Check{
		"postgres": db.PingPostgres,
		"mongo":    db.PingMongo,
	})
	if localRoot != "" {
		e.Static("/uploads", localRoot)
	}

	// Start server
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	l.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		l.Error().Err(err).Msg("server shutdown failed")
	}
	if err := notifier.Wait(shutdownCtx); err != nil {
		l.Warn().Err(err).Msg("pending pushes abandoned")
	}
}

// newStorage selects the blob store. The second result is the directory to
// serve uploads from when files are kept on local disk.
func newStorage(ctx context.Context, cfg *config.Config) (storage.Storage, string, error) {
	if cfg.StorageDriver == "s3" {
		s, err := storage.NewS3Storage(ctx, storage.S3Config{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretKey,
			UsePathStyle:    cfg.S3UsePathStyle,
			PublicURL:       cfg.S3PublicURL,
		})
		return s, "", err
	}
	s, err := storage.NewLocalStorage(storage.LocalConfig{
		BasePath: cfg.StorageLocalPath,
		BaseURL:  cfg.PublicURL + "/uploads",
	})
	if err != nil {
		return nil, "", err
	}
	return s, s.Root(), nil
}
