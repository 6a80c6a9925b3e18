package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"foliosh/folio-api/internal/config"
	"foliosh/folio-api/internal/handlers"
	"foliosh/folio-api/internal/repositories"
	"foliosh/folio-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	// Initialize repositories
	resumeRepo := repositories.NewResumeRepository(db)
	usernameRepo := repositories.NewUsernameRepository(db)
	log.Println("✅ Repositories initialized successfully")

	// Initialize storage
	storageService, err := services.NewStorageService(cfg.Storage)
	if err != nil {
		log.Fatalf("❌ Failed to initialize storage: %v", err)
	}
	log.Println("✅ Storage initialized successfully")

	// Initialize Gemini AI. A missing key is not fatal: generation then
	// always yields the fallback document.
	var geminiService services.GeminiService
	geminiService, err = services.NewGeminiService(cfg.Gemini.APIKey)
	if err != nil {
		log.Printf("⚠️  Gemini unavailable, generation will use fallback: %v", err)
		geminiService = nil
	} else {
		log.Println("✅ Gemini AI initialized successfully")
	}

	// Initialize services
	pdfParser := services.NewPDFParserService()
	generatorService := services.NewGeneratorService(geminiService)
	usernameService := services.NewUsernameService(usernameRepo)
	log.Println("✅ Services initialized successfully")

	// Initialize deletion worker
	deletionWorker := services.NewDeletionWorker(
		resumeRepo,
		usernameRepo,
		storageService,
		cfg.Worker.QueueSize,
		cfg.Worker.Retries,
	)
	deletionWorker.Start(context.Background())
	log.Println("✅ Deletion worker started successfully")

	// Initialize handlers
	uploadHandler := handlers.NewUploadHandler(resumeRepo, storageService, cfg.Storage.MaxFileSize)
	generateHandler := handlers.NewGenerateHandler(resumeRepo, pdfParser, generatorService, usernameService)
	resumeHandler := handlers.NewResumeHandler(resumeRepo, storageService)
	usernameHandler := handlers.NewUsernameHandler(usernameService)
	publicHandler := handlers.NewPublicHandler(resumeRepo, usernameRepo)
	webhookHandler := handlers.NewWebhookHandler(deletionWorker, cfg.Auth.WebhookSecret)
	log.Println("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Folio API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize) + 1024*1024,
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Routes
	api := app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	authed := api.Group("", handlers.RequireAuth(cfg.Auth.JWTSecret))
	authed.Post("/upload", uploadHandler.HandleUpload)
	authed.Post("/generate", generateHandler.HandleGenerate)
	authed.Get("/resume", resumeHandler.HandleGet)
	authed.Put("/resume", resumeHandler.HandleUpdate)
	authed.Patch("/resume", resumeHandler.HandleStatus)
	authed.Post("/resume/clear-file", resumeHandler.HandleClearFile)
	authed.Get("/username", usernameHandler.HandleGet)
	authed.Post("/username", usernameHandler.HandleUpdate)
	authed.Get("/username/check", usernameHandler.HandleCheck)
	authed.Delete("/user", webhookHandler.HandleSelfDelete)

	app.Post("/webhooks/identity", webhookHandler.HandleIdentityEvent)
	app.Get("/p/:username", publicHandler.HandleProfile)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		deletionWorker.Stop()
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
