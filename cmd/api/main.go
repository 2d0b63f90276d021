package main

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/parkspot/parkspot-api/internal/config"
	"github.com/parkspot/parkspot-api/internal/domain/analytics"
	"github.com/parkspot/parkspot-api/internal/domain/auth"
	"github.com/parkspot/parkspot-api/internal/domain/booking"
	"github.com/parkspot/parkspot-api/internal/domain/live"
	"github.com/parkspot/parkspot-api/internal/domain/session"
	"github.com/parkspot/parkspot-api/internal/domain/spot"
	"github.com/parkspot/parkspot-api/internal/domain/user"
	"github.com/parkspot/parkspot-api/internal/middleware"
	"github.com/parkspot/parkspot-api/internal/pkg/database"
	"github.com/parkspot/parkspot-api/internal/pkg/email"
	"github.com/parkspot/parkspot-api/internal/pkg/events"
	"github.com/parkspot/parkspot-api/internal/pkg/firebase"
	"github.com/parkspot/parkspot-api/internal/pkg/imaging"
	"github.com/parkspot/parkspot-api/internal/pkg/jwt"
	"github.com/parkspot/parkspot-api/internal/pkg/logger"
	"github.com/parkspot/parkspot-api/internal/pkg/response"
	"github.com/parkspot/parkspot-api/internal/pkg/storage"
)

func main() {
	cfg := config.Load()
	logger.Setup(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env, Service: "parkspot-api"})

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Str("slot_accounting", cfg.SlotAccountingMode).
		Msg("Starting ParkSpot API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	if cfg.RunMigrations {
		if err := database.Migrate(context.Background(), db); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply migrations")
		}
	}

	redis, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redis)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)

	photoStorage, err := storage.New(storage.Config{
		Driver:      cfg.StorageDriver,
		LocalPath:   cfg.StorageLocalPath,
		PublicURL:   cfg.StoragePublicURL,
		S3Endpoint:  cfg.S3Endpoint,
		S3Region:    cfg.S3Region,
		S3Bucket:    cfg.S3Bucket,
		S3AccessKey: cfg.S3AccessKey,
		S3SecretKey: cfg.S3SecretKey,
		R2: storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			AccessKeySecret: cfg.R2AccessKeySecret,
			BucketName:      cfg.R2BucketName,
			PublicURL:       cfg.R2PublicURL,
		},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create photo storage")
	}

	// ---------- Email ----------
	var sender email.Sender
	switch cfg.EmailDriver {
	case config.EmailSendGrid:
		sender = email.NewSendGridClient(email.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.EmailFrom,
			FromName:  cfg.EmailFromName,
		})
	case config.EmailSES:
		sender, err = email.NewSESSender(context.Background(), cfg.SESRegion, cfg.EmailFrom, cfg.EmailFromName)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create SES sender")
		}
	default:
		log.Warn().Msg("EMAIL_DRIVER=log, emails are written to the log only")
		sender = email.LogSender{}
	}
	mailer := email.NewService(sender)
	defer mailer.Close()

	// ---------- Live feed ----------
	hub := live.NewHub()
	go hub.Run()
	defer hub.Shutdown()

	publishers := events.Multi{}
	if redis != nil {
		publishers = append(publishers, events.NewRedisPublisher(redis))
		go hub.FanoutFrom(redis)
	} else {
		publishers = append(publishers, hub)
	}
	if cfg.RabbitMQURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.RabbitMQURL, cfg.EventsQueue)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to RabbitMQ")
		}
		defer amqpPublisher.Close()
		publishers = append(publishers, amqpPublisher)
	} else {
		log.Warn().Msg("RABBITMQ_URL not set, push notifications disabled")
	}

	// ---------- Repositories ----------
	userRepo := user.NewRepository(db)
	spotRepo := spot.NewRepository(db)
	bookingRepo := booking.NewRepository(db)
	analyticsRepo := analytics.NewRepository(db)

	// ---------- Services ----------
	userService := user.NewService(userRepo)
	authService := auth.NewService(userRepo, jwtService, auth.NewRedisRefreshStore(redis), auth.Verification{
		Codes:  auth.NewRedisCodeStore(redis),
		Mailer: mailer,
		AppURL: cfg.AppBaseURL,
	})
	spotService := spot.NewService(spotRepo, photoStorage, imaging.NewProcessor(imaging.DefaultConfig()), cfg.PhotoMaxBytes)
	bookingService := booking.NewService(bookingRepo, spotRepo, publishers, booking.Options{
		SkipInactiveOverlaps: cfg.OverlapSkipInactive,
		Currency:             cfg.Currency,
	})
	sessionService := session.NewService(bookingRepo, spotRepo, spot.NewSlotCounter(spotRepo, cfg.SlotAccountingMode), publishers)
	analyticsService := analytics.NewService(analyticsRepo, cfg.Location(), cfg.Currency)

	refresher, err := live.NewDashboardRefresher(hub, analyticsService, cfg.DashboardRefreshInterval)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create dashboard scheduler")
	}
	if err := refresher.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start dashboard refresher")
	}
	defer refresher.Stop()

	// ---------- Auth middleware ----------
	authMiddleware := middleware.Auth(jwtService)
	if cfg.FirebaseAuthEnabled {
		fbApp, err := firebase.New(context.Background(), cfg.FirebaseCredentialsFile)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialise Firebase")
		}
		authMiddleware = middleware.AuthWithFirebase(jwtService, &middleware.FirebaseAuth{
			Verifier: firebase.NewTokenVerifier(fbApp.Auth),
			Users:    userService,
		})
		log.Info().Msg("Firebase ID token sign-in enabled")
	}

	var uploadsDir string
	if local, ok := photoStorage.(*storage.LocalStorage); ok {
		uploadsDir = local.Root()
	}

	r := newRouter(cfg, routes{
		auth:      auth.NewHandler(authService),
		user:      user.NewHandler(userService),
		spot:      spot.NewHandler(spotService, cfg.Currency),
		booking:   booking.NewHandler(bookingService),
		session:   session.NewHandler(sessionService),
		analytics: analytics.NewHandler(analyticsService),
		live:      live.NewHandler(hub, cfg.AllowedOrigins),
	}, authMiddleware, middleware.RequireVerifiedEmail(userService), uploadsDir)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

type routes struct {
	auth      *auth.Handler
	user      *user.Handler
	spot      *spot.Handler
	booking   *booking.Handler
	session   *session.Handler
	analytics *analytics.Handler
	live      *live.Handler
}

// newRouter assembles the middleware chain and mounts every domain under /api/v1.
// Everything outside /auth also requires a verified email.
// uploadsDir, when set, is served at the path of STORAGE_PUBLIC_URL.
func newRouter(cfg *config.Config, h routes, authMiddleware, requireVerified func(http.Handler) http.Handler, uploadsDir string) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, map[string]string{"status": "ok"})
	})

	if uploadsDir != "" {
		prefix := publicPath(cfg.StoragePublicURL)
		r.Handle(prefix+"/*", http.StripPrefix(prefix, http.FileServer(http.Dir(uploadsDir))))
	}

	verified := func(next http.Handler) http.Handler {
		return authMiddleware(requireVerified(next))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/auth", h.auth.Routes(authMiddleware))
		r.Mount("/users", h.user.Routes(verified))
		r.Mount("/spots", h.spot.Routes(verified))
		r.Mount("/bookings", h.booking.Routes(verified))
		r.Mount("/sessions", h.session.Routes(verified))
		r.Mount("/analytics", h.analytics.Routes(verified))
		r.Mount("/live", h.live.Routes(verified))
	})

	return r
}

// publicPath extracts the path component of a public URL, e.g. "/uploads".
func publicPath(publicURL string) string {
	u, err := url.Parse(publicURL)
	if err != nil {
		return "/uploads"
	}
	p := strings.TrimRight(u.Path, "/")
	if p == "" {
		return "/uploads"
	}
	return p
}
