package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron"

	config "github.com/postlinehq/postline/configs"
	"github.com/postlinehq/postline/internal/api/handlers"
	"github.com/postlinehq/postline/internal/api/middleware"
	"github.com/postlinehq/postline/internal/jobs"
	"github.com/postlinehq/postline/internal/platform"
	"github.com/postlinehq/postline/internal/queue"
	"github.com/postlinehq/postline/internal/repository"
	"github.com/postlinehq/postline/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  2 * time.Minute,
		WriteTimeout: 2 * time.Minute,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewScheduledPostRepository(db)
	integrationRepo := repository.NewIntegrationRepository(db)

	credentialResolver := service.NewCredentialResolver(*cfg, integrationRepo)
	mediaResolver := service.NewR2MediaResolver(*cfg)
	notificationService := service.NewNotificationService(*cfg)
	controlService := service.NewPostControlService(postRepo)

	registry := platform.NewRegistry(cfg.BioServiceURL)
	notifier := queue.NewNotifier(client)

	publishJob := jobs.NewPublishPostsJob(postRepo, userRepo, credentialResolver, mediaResolver,
		registry, notifier, cfg.PublishWindowMinutes, cfg.PublishBatchLimit)

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	post := handlers.NewPostHandler(controlService)
	api.Get("/posts", post.ListPosts)
	api.Post("/posts/retry", post.RetryPost)
	api.Post("/posts/cancel", post.CancelPost)
	api.Get("/platforms/limits", post.PlatformLimits)

	publish := handlers.NewPublishHandler(publishJob)
	app.Post("/internal/jobs/publish", publish.RunPublishJob)

	// In-process trigger. The cadence must match the due window; posts that
	// drift outside it only publish via manual retry.
	c := cron.New()
	c.AddFunc(fmt.Sprintf("@every %dm", cfg.PublishWindowMinutes), func() {
		if _, err := publishJob.Run(context.Background()); err != nil {
			log.Printf("Publish job failed: %v", err)
		}
	})
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypeNotifyFailure, queue.NewQueue(notificationService).HandleNotifyFailureTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
