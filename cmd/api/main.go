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
	"github.com/rs/zerolog"

	"github.com/aulagest/aulagest-api/internal/config"
	"github.com/aulagest/aulagest-api/internal/database"
	"github.com/aulagest/aulagest-api/internal/handler"
	"github.com/aulagest/aulagest-api/internal/middleware"
	"github.com/aulagest/aulagest-api/internal/models"
	"github.com/aulagest/aulagest-api/internal/repository"
	"github.com/aulagest/aulagest-api/internal/router"
	"github.com/aulagest/aulagest-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Enrollment{},
		&models.Module{},
		&models.Practice{},
		&models.Rubric{},
		&models.Criterion{},
		&models.Submission{},
		&models.Grade{},
		&models.ActivityLog{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var events *nats.Conn
	if cfg.NATSURL != "" {
		events, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer events.Drain()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	rosterRepo := repository.NewRosterRepository(db)
	moduleRepo := repository.NewModuleRepository(db)
	practiceRepo := repository.NewPracticeRepository(db)
	rubricRepo := repository.NewRubricRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	activityRecorder := service.NewActivityService(activityRepo, logger)
	userService := service.NewUserService(userRepo, validate, logger)
	rosterService := service.NewRosterService(rosterRepo, userRepo, validate, redisClient, cfg.RosterCacheTTL, activityRecorder, logger)
	moduleService := service.NewModuleService(moduleRepo, rosterRepo, userRepo, validate, logger)
	practiceService := service.NewPracticeService(practiceRepo, userRepo, validate, logger)
	rubricService := service.NewRubricService(rubricRepo, practiceRepo, userRepo, validate, activityRecorder, logger)
	gradingService := service.NewGradingService(submissionRepo, gradeRepo, practiceRepo, rubricRepo, userRepo, validate, activityRecorder, events, cfg.EventSubject, logger)
	exportService := service.NewExportService(submissionRepo, logger)
	seedService := service.NewSeedService(userRepo, rosterRepo, cfg.SeedEnabled, cfg.SeedToken, logger)

	userHandler := handler.NewUserHandler(userService, logger)
	groupHandler := handler.NewGroupHandler(rosterService, logger)
	moduleHandler := handler.NewModuleHandler(moduleService, logger)
	practiceHandler := handler.NewPracticeHandler(practiceService, logger)
	rubricHandler := handler.NewRubricHandler(rubricService, logger)
	submissionHandler := handler.NewSubmissionHandler(gradingService, logger)
	gradeHandler := handler.NewGradeHandler(gradingService, logger)
	exportHandler := handler.NewExportHandler(exportService, logger)
	activityHandler := handler.NewActivityHandler(activityRecorder, logger)
	seedHandler := handler.NewSeedHandler(seedService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		UserHandler:       userHandler,
		GroupHandler:      groupHandler,
		ModuleHandler:     moduleHandler,
		PracticeHandler:   practiceHandler,
		RubricHandler:     rubricHandler,
		SubmissionHandler: submissionHandler,
		GradeHandler:      gradeHandler,
		ExportHandler:     exportHandler,
		ActivityHandler:   activityHandler,
		SeedHandler:       seedHandler,
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
