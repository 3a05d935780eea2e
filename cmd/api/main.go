package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/pbl-go-api/internal/config"
	"github.com/noah-isme/pbl-go-api/internal/database"
	"github.com/noah-isme/pbl-go-api/internal/handler"
	"github.com/noah-isme/pbl-go-api/internal/middleware"
	"github.com/noah-isme/pbl-go-api/internal/observability"
	"github.com/noah-isme/pbl-go-api/internal/repository"
	"github.com/noah-isme/pbl-go-api/internal/router"
	"github.com/noah-isme/pbl-go-api/internal/service"
	"github.com/noah-isme/pbl-go-api/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := newLogger(cfg)
	observability.RegisterMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis url not configured; profile cache disabled")
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to nats")
		}
		defer natsConn.Drain()
	} else {
		logger.Warn().Msg("nats url not configured; unlock events and progress listener disabled")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	gamificationRepo := repository.NewGamificationRepository(db)
	rubricRepo := repository.NewRubricRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	eventRepo := repository.NewEventRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	activityService := service.NewActivityService(activityRepo, logger)
	gamificationService := service.NewGamificationService(
		gamificationRepo,
		service.DefaultThresholdRules(),
		validate,
		redisClient,
		cfg.ProfileCacheTTL,
		service.NewNATSAchievementPublisher(natsConn, cfg.NATSSubjectBase),
		activityService,
		logger,
	)
	rubricService := service.NewRubricService(rubricRepo, projectRepo, validate, activityService, logger)
	gradingService := service.NewGradingService(submissionRepo, rubricRepo, projectRepo, validate, activityService, logger)
	pendingActionsService := service.NewPendingActionsService(projectRepo, eventRepo, cfg.Timezone, logger)
	projectService := service.NewProjectService(projectRepo, validate, activityService, logger)
	reportService := service.NewReportService(projectRepo, submissionRepo, rubricRepo, logger)
	seedService := service.NewSeedService(gamificationService, cfg.SeedToken, logger)

	if cfg.SeedCatalog {
		if _, err := gamificationService.SeedCatalog(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to seed achievement catalog")
		}
	}

	listener := service.NewProgressListener(natsConn, cfg.NATSSubjectBase, gamificationService, logger)
	if err := listener.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to start progress listener")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			status := fiber.StatusInternalServerError
			if fiberErr, ok := err.(*fiber.Error); ok {
				status = fiberErr.Code
			}
			return utils.SendError(c, status, err.Error())
		},
	})

	middleware.Register(app, middleware.Config{
		Logger:       &logger,
		AllowOrigins: cfg.CORSOrigins,
		AccessLog:    cfg.AccessLog,
		RateLimit:    cfg.RateLimit,
		RateWindow:   cfg.RateWindow,
	})
	router.Register(app, cfg, router.Dependencies{
		AchievementHandler:    handler.NewAchievementHandler(gamificationService, logger),
		RubricHandler:         handler.NewRubricHandler(rubricService, gradingService, logger),
		GradingHandler:        handler.NewGradingHandler(gradingService, logger),
		ProjectHandler:        handler.NewProjectHandler(projectService, reportService, logger),
		PendingActionsHandler: handler.NewPendingActionsHandler(pendingActionsService, logger),
		ActivityHandler:       handler.NewActivityHandler(activityService, logger),
		SeedHandler:           handler.NewSeedHandler(seedService, logger),
		Health:                handler.HealthDependencies{DB: db, Redis: redisClient, NATS: natsConn},
		JWTMiddleware:         middleware.JWTProtected(middleware.JWTConfig{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer}),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	shutdown(app, logger)
}

func newLogger(cfg config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.AppEnv == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stdout)
	}
	return logger.Level(level).With().Timestamp().Str("service", cfg.AppName).Logger()
}

func shutdown(app *fiber.App, logger zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
