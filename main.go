package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ventar/internal/analytics"
	analytics_api "ventar/internal/analytics/api"
	"ventar/internal/auth"
	"ventar/internal/auth/auth_api"
	authdb "ventar/internal/auth/db"
	"ventar/internal/config"
	"ventar/internal/database/migrations"
	"ventar/internal/events"
	eventdb "ventar/internal/events/db"
	"ventar/internal/events/event_api"
	"ventar/internal/kafka"
	"ventar/internal/logger"
	"ventar/internal/notifications"
	"ventar/internal/registrations"
	registrationdb "ventar/internal/registrations/db"
	"ventar/internal/registrations/qr"
	"ventar/internal/registrations/registration_api"
	"ventar/internal/retry"
)

func connectPostgres(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) *bun.DB {
	var sqldb *sql.DB

	policy := retry.ConstantBackoff(5, 2*time.Second)
	attempt := 0
	err := policy.Do(ctx, func() error {
		attempt++
		log.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", attempt, policy.MaxAttempts))

		var openErr error
		sqldb, openErr = sql.Open("postgres", cfg.DSN)
		if openErr != nil {
			return openErr
		}
		return sqldb.PingContext(ctx)
	})
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", policy.MaxAttempts, err))
	}

	log.Info("DATABASE", "PostgreSQL connection successful")
	return bun.NewDB(sqldb, pgdialect.New())
}

func connectRedis(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Redis connection error: %v", err))
	}
	log.Info("DATABASE", fmt.Sprintf("Redis connection successful to %s (DB: %d)", cfg.Addr, cfg.DB))
	return client
}

func setupKafka(cfg config.KafkaConfig, log *logger.Logger) kafka.Sender {
	if !cfg.Enabled || cfg.MockMode {
		log.Info("KAFKA", "Kafka disabled or mocked, publishes will be logged only")
		return kafka.NewMockSender(log)
	}

	producer := kafka.NewProducer(cfg.Brokers, log)
	log.Info("KAFKA", "Kafka producer initialized successfully")

	requiredTopics := []string{
		cfg.Topics.EventCreated,
		cfg.Topics.EventDeleted,
		cfg.Topics.RegistrationCreated,
	}
	if err := kafka.EnsureTopicsExist(cfg.Brokers, requiredTopics, log); err != nil {
		log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
	} else {
		log.Info("KAFKA", "Required topics ensured successfully")
	}
	return producer
}

func main() {
	log := logger.NewLogger()
	defer log.Close()

	log.Info("APP", "Starting Ventar service initialization")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		log.Info("CONFIG", "Loaded environment variables from .env file")
	}

	cfg := config.Load()
	ctx := context.Background()

	bunDB := connectPostgres(ctx, cfg.Database, log)
	defer bunDB.Close()

	redisClient := connectRedis(ctx, cfg.Redis, log)
	defer redisClient.Close()

	if cfg.Database.AutoMigrate {
		runner := migrations.NewRunner(bunDB, migrations.Options{
			MigrationsDir: cfg.Database.MigrationsDir,
			AutoMigrate:   true,
		}, log)
		if err := runner.Up(); err != nil {
			log.Fatal("DATABASE", fmt.Sprintf("Migrations failed: %v", err))
		}
	}

	sender := setupKafka(cfg.Kafka, log)
	defer sender.Close()
	publisher := kafka.NewDomainPublisher(sender, cfg.Kafka.Topics)

	// Auth stack: JWT tokens, Redis-backed sessions, in-process auth events.
	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)
	sessions := auth.NewRedisSessionCache(redisClient)
	broadcaster := auth.NewBroadcaster()
	authService := auth.NewService(&authdb.DB{Bun: bunDB}, tokens, sessions, broadcaster, log, cfg.Auth.BcryptCost)
	authHandler := auth_api.NewHandler(authService, log, cfg.Auth.ResetTTL)

	// Events stack: service plus the per-host store manager that fronts it.
	eventService := events.NewService(&eventdb.DB{Bun: bunDB}, publisher, log)
	storeManager := events.NewManager(events.Deps{Fetcher: eventService, Deleter: eventService}, broadcaster)
	defer storeManager.Close()
	eventHandler := event_api.NewHandler(eventService, storeManager, log, cfg.Share.PublicBaseURL)

	// Registrations stack: public sign-up plus door check-in.
	qrGen := qr.NewGenerator(cfg.QR.SecretKey)
	registrationService := registrations.NewService(&registrationdb.DB{Bun: bunDB}, eventService, publisher, qrGen, log)
	registrationHandler := registration_api.NewHandler(registrationService, log)

	analyticsService := analytics.NewService(bunDB)
	analyticsHandler := analytics_api.NewHandler(analyticsService, eventService, log)

	feed := notifications.NewFeed()
	notificationHandler := notifications.NewHandler(feed)

	consumerCtx, stopConsumer := context.WithCancel(ctx)
	defer stopConsumer()
	if cfg.Kafka.Enabled && !cfg.Kafka.MockMode {
		bridge := notifications.NewBridge(feed, cfg.Kafka.Topics, log)
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, []string{
			cfg.Kafka.Topics.EventCreated,
			cfg.Kafka.Topics.EventDeleted,
			cfg.Kafka.Topics.RegistrationCreated,
		}, log)
		defer consumer.Close()
		go consumer.Run(consumerCtx, bridge.Handle)
	}

	log.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// --- Public Routes ---
	r.Post("/api/auth/signup", authHandler.SignUp)
	r.Post("/api/auth/login", authHandler.SignIn)
	r.Post("/api/auth/reset-password", authHandler.ResetPassword)
	r.Get("/api/register/{eventID}", registrationHandler.GetEvent)
	r.Post("/api/register/{eventID}", registrationHandler.Register)
	log.Info("ROUTER", "Public auth and registration routes registered")

	// --- Protected Routes ---
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(authService))
		log.Info("AUTH", "Session guard applied to protected API routes")

		r.Get("/api/auth/session", authHandler.Session)
		r.Post("/api/auth/logout", authHandler.SignOut)

		r.Route("/api/events", func(r chi.Router) {
			r.Get("/", eventHandler.List)
			r.Post("/", eventHandler.Create)
			r.Delete("/{eventID}", eventHandler.Delete)
			r.Get("/{eventID}/share", eventHandler.Share)
			r.Get("/{eventID}/share/qr", eventHandler.ShareQR)
			r.Post("/{eventID}/checkin", registrationHandler.CheckIn)
			r.Get("/{eventID}/attendees", registrationHandler.Attendees)
		})
		log.Info("ROUTER", "Event routes registered under /api/events")

		r.Get("/api/notifications", notificationHandler.List)
		r.Post("/api/notifications/{notificationID}/toggle", notificationHandler.Toggle)

		analyticsHandler.RegisterRoutes(r)
		log.Info("ROUTER", "Analytics routes registered under /api/analytics")
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("Ventar service running on :%s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server shutdown failed: %v", err))
	} else {
		log.Info("HTTP", "Ventar service shutdown complete")
	}
}
