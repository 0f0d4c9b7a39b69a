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

	"github.com/noah-isme/lumina-api/internal/config"
	"github.com/noah-isme/lumina-api/internal/database"
	"github.com/noah-isme/lumina-api/internal/handler"
	"github.com/noah-isme/lumina-api/internal/middleware"
	"github.com/noah-isme/lumina-api/internal/models"
	"github.com/noah-isme/lumina-api/internal/repository"
	"github.com/noah-isme/lumina-api/internal/router"
	"github.com/noah-isme/lumina-api/internal/service"
	"github.com/noah-isme/lumina-api/pkg/ai"
	cloud "github.com/noah-isme/lumina-api/pkg/cloudinary"
	"github.com/noah-isme/lumina-api/pkg/storage"
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
		&models.Category{},
		&models.Image{},
		&models.ActivityLog{},
		&models.SiteSettings{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, stats caching disabled")
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	store := buildFileStorage(cfg, logger)
	captioner := buildCaptioner(cfg, logger)
	natsConn := connectNATS(cfg, logger)
	if natsConn != nil {
		defer natsConn.Close()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	activityRepo := repository.NewActivityLogRepository(db)
	imageRepo := repository.NewImageRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	userRepo := repository.NewUserRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream := service.NewActivityStream(natsConn, cfg.NATSSubject, logger)
	stream.Start(ctx)

	detector := service.NewAnomalyDetector(activityRepo, logger)
	recorder := service.NewActivityService(activityRepo, detector, stream, logger)
	queryService := service.NewActivityQueryService(activityRepo, redisClient, cfg.StatsCacheTTL, logger)

	authService := service.NewAuthService(userRepo, recorder, validate, cfg.JWTSecret, cfg.TokenTTL, logger)
	imageService := service.NewAdminImageService(imageRepo, store, recorder, captioner, validate, int(cfg.MaxUploadSizeMB), logger)
	categoryService := service.NewAdminCategoryService(categoryRepo, imageRepo, recorder, validate, logger)
	userService := service.NewAdminUserService(userRepo, recorder, validate, logger)
	settingsService, err := service.NewAdminSettingsService(settingsRepo, recorder, logger)
	if err != nil {
		log.Fatalf("failed to build settings service: %v", err)
	}
	galleryService := service.NewGalleryService(imageRepo, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AllowOrigins: cfg.CORSAllowOrigins})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:           handler.NewAuthHandler(authService, logger),
		GalleryHandler:        handler.NewGalleryHandler(galleryService, logger),
		ActivityHandler:       handler.NewAdminActivityHandler(queryService, logger),
		ActivityStreamHandler: handler.NewActivityStreamHandler(stream, logger),
		ImageHandler:          handler.NewAdminImageHandler(imageService, logger),
		CategoryHandler:       handler.NewAdminCategoryHandler(categoryService, logger),
		UserHandler:           handler.NewAdminUserHandler(userService, logger),
		SettingsHandler:       handler.NewAdminSettingsHandler(settingsService, logger),
		JWTMiddleware:         middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

// buildFileStorage prefers Cloudinary and falls back to local disk when the
// credentials are not configured.
func buildFileStorage(cfg config.Config, logger zerolog.Logger) storage.FileStorage {
	if cfg.CloudinaryCloudName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		uploader, err := cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		}, logger)
		if err != nil {
			log.Fatalf("failed to create cloudinary client: %v", err)
		}
		return uploader
	}

	local, err := storage.NewLocalStorage(cfg.StorageDir, cfg.StorageBaseURL, logger)
	if err != nil {
		log.Fatalf("failed to create local storage: %v", err)
	}
	logger.Warn().Str("dir", cfg.StorageDir).Msg("cloudinary not configured, storing uploads on local disk")
	return local
}

func buildCaptioner(cfg config.Config, logger zerolog.Logger) ai.Captioner {
	if cfg.OpenAIAPIKey == "" {
		return nil
	}
	captioner, err := ai.NewOpenAICaptioner(ai.OpenAIConfig{
		APIKey: cfg.OpenAIAPIKey,
		Model:  cfg.OpenAIModel,
		Logger: logger,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("caption suggestions disabled")
		return nil
	}
	return captioner
}

func connectNATS(cfg config.Config, logger zerolog.Logger) *nats.Conn {
	if cfg.NATSURL == "" {
		return nil
	}
	conn, err := nats.Connect(cfg.NATSURL, nats.Name(cfg.AppName))
	if err != nil {
		logger.Warn().Err(err).Msg("nats unavailable, activity stream stays node local")
		return nil
	}
	return conn
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
