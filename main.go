package main

import (
	"campuslink/config"
	"campuslink/database"
	"campuslink/middleware"
	adminRoutes "campuslink/routers/adminRoutes"
	authRoutes "campuslink/routers/authRoutes"
	notificationRoutes "campuslink/routers/notificationRoutes"
	organizationRoutes "campuslink/routers/organizationRoutes"
	postingRoutes "campuslink/routers/postingRoutes"
	studentRoutes "campuslink/routers/studentRoutes"
	userProfileRoutes "campuslink/routers/userRoutes"
	"campuslink/services"
	"campuslink/storage"
	"campuslink/utils"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	cfg := config.AppConfig
	services.Default = services.New(database.Database.Db, services.Options{
		Blobs:          blobStore(cfg),
		EmailDomains:   cfg.VerificationEmailDomains,
		DocumentPolicy: storage.Policy{AllowedTypes: storage.DocumentTypes, MaxBytes: cfg.VerificationMaxBytes},
		ResumePolicy:   storage.Policy{AllowedTypes: storage.ResumeTypes, MaxBytes: cfg.ResumeMaxBytes},
		LogoPolicy:     storage.Policy{AllowedTypes: storage.ImageTypes, MaxBytes: cfg.LogoMaxBytes},
		PasswordCost:   cfg.SaltRound,
	})

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Printf("Warning: redis unavailable, rate limits stay in memory: %v", err)
	}

	app := fiber.New(fiber.Config{
		JSONEncoder:  sonic.Marshal,
		JSONDecoder:  sonic.Unmarshal,
		BodyLimit:    int(max(cfg.VerificationMaxBytes, cfg.ResumeMaxBytes, cfg.LogoMaxBytes)) + 1<<20,
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE",  // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))
	app.Use(middleware.GlobalRateLimiter(cfg.GlobalRateLimit, cfg.GlobalRateLimitWindow))

	// Serve uploaded files when they are kept on local disk
	if cfg.StorageDriver != "supabase" {
		app.Static(cfg.UploadBaseURL, cfg.UploadDir)
	}

	authRoutes.SetupAuthRoutes(app)
	userProfileRoutes.SetupUserRoutes(app)
	postingRoutes.SetupPostingRoutes(app)
	studentRoutes.SetupStudentRoutes(app, middleware.NewRedisLimiter(redisClient))
	organizationRoutes.SetupOrganizationRoutes(app)
	adminRoutes.SetupAdminRoutes(app)
	notificationRoutes.SetupNotificationRoutes(app)

	scheduler, err := utils.InitializeSessionScheduler(services.Default.Sessions, cfg.SessionPurgeSchedule, cfg.AutoLogout)
	if err != nil {
		log.Fatalf("Failed to start session scheduler: %v", err)
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit

		log.Println("Shutting down server...")
		<-scheduler.Stop().Done()
		if err := app.Shutdown(); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}()

	log.Printf("Server is running on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}

	if redisClient != nil {
		redisClient.Close()
	}
	if sqlDB, err := database.Database.Db.DB(); err == nil {
		sqlDB.Close()
	}
}

// blobStore picks the upload backend for STORAGE_DRIVER.
func blobStore(cfg *config.Config) storage.BlobStore {
	if cfg.StorageDriver == "supabase" {
		return storage.NewSupabaseStore(cfg.SupabaseProjectURL, cfg.SupabaseServiceKey, cfg.SupabaseBucket, cfg.SupabaseSignedURLTTL)
	}
	return storage.NewLocalStore(cfg.UploadDir, cfg.UploadBaseURL)
}

// errorHandler keeps framework errors (unknown routes, oversized bodies) in the JSON envelope.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Something went wrong, please try again later!"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	} else {
		log.Printf("[HTTP] %s %s failed: %v", c.Method(), c.Path(), err)
	}
	return middleware.JsonResponse(c, code, false, message, nil)
}
