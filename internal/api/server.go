package api

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/rescuenet/callout_service/config"
	"github.com/rescuenet/callout_service/infra/queue"
	"github.com/rescuenet/callout_service/internal/api/rest/handlers"
	"github.com/rescuenet/callout_service/internal/api/rest/middleware"
	"github.com/rescuenet/callout_service/internal/clients/firebase"
	"github.com/rescuenet/callout_service/internal/domain"
	"github.com/rescuenet/callout_service/internal/helper"
	"github.com/rescuenet/callout_service/internal/repository"
	"github.com/rescuenet/callout_service/internal/services"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func StartServer(cfg config.Config) {
	app := fiber.New()

	// ---------- CORS ----------
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.BaseURL,
		AllowHeaders: "Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))

	// ---------- DB ----------
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DatabaseDSN,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	if err != nil {
		log.Fatalf("database connection error: %v", err)
	}
	log.Println("database connected")

	// ---------- MIGRATION (guarded by advisory lock) ----------
	const migrateLockID int64 = 20241104

	if err := db.Exec("SELECT pg_advisory_lock(?)", migrateLockID).Error; err != nil {
		log.Fatalf("migration lock error: %v", err)
	}
	defer func() {
		_ = db.Exec("SELECT pg_advisory_unlock(?)", migrateLockID).Error
	}()

	if err := db.AutoMigrate(
		&domain.User{},
		&domain.FcmToken{},
		&domain.Event{},
		&domain.EventUser{},
	); err != nil {
		log.Fatalf("migration error: %v", err)
	}
	log.Println("migration successful")

	// ---------- Infra ----------
	kafkaProducer := queue.NewProducer(
		cfg.KafkaBroker,
		cfg.KafkaTopic,
		cfg.KafkaUsername,
		cfg.KafkaPassword,
	)
	identityClient := firebase.NewAuthClient(cfg.FirebaseAPIKey)
	messagingClient := firebase.NewMessagingClient(cfg.FirebaseProjectID, cfg.FCMAccessToken)

	authHelper := helper.SetupAuth(cfg.AccessSecret)

	// ---------- Repositories ----------
	userRepo := repository.NewUserRepository(db)
	eventRepo := repository.NewEventRepository(db)
	participationRepo := repository.NewParticipationRepository(db)
	fcmTokenRepo := repository.NewFcmTokenRepository(db)

	// ---------- Services ----------
	notifier := services.NewNotificationService(fcmTokenRepo, messagingClient)
	reminders := services.NewReminderScheduler(services.DefaultReminderInterval, eventRepo, notifier)
	authSvc := services.NewAuthService(userRepo, identityClient, authHelper, kafkaProducer)
	userSvc := services.NewUserService(userRepo, fcmTokenRepo, identityClient, authHelper)
	eventSvc := services.NewEventService(eventRepo, participationRepo, userRepo, notifier, reminders, kafkaProducer)

	// open events lose their timers on restart; pick them back up
	reminders.Restore()

	// ---------- Health ----------
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// ---------- Handlers ----------
	authHandler := handlers.NewAuthHandler(authSvc)
	authHandler.SetupRoutes(app)

	app.Use(middleware.AuthMiddleware(authHelper, userRepo))

	userHandler := handlers.NewUserHandler(userSvc, authHelper)
	userHandler.SetupRoutes(app)

	eventHandler := handlers.NewEventHandler(eventSvc, authHelper)
	eventHandler.SetupRoutes(app)

	// ---------- Listen ----------
	addr := cfg.ServerPort
	log.Println("listening on", addr)
	log.Fatal(app.Listen(addr))
}
