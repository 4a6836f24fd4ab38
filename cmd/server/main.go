package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kingscanvas/internal/config"
	"kingscanvas/internal/database"
	"kingscanvas/internal/handlers"
	"kingscanvas/internal/jobs"
	"kingscanvas/internal/logging"
	"kingscanvas/internal/middleware"
	"kingscanvas/internal/services"
	"kingscanvas/pkg/auth"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Initialize structured logging (JSON in production, text in dev)
	logging.Init()

	log.Println("🚀 Starting King's Canvas Server...")

	// Load .env file (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  No .env file found or error loading it: %v", err)
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	// Load configuration
	cfg := config.Load()
	log.Printf("📋 Configuration loaded (Port: %s)", cfg.Port)

	// Initialize MongoDB
	if cfg.MongoURI == "" {
		log.Fatal("❌ MONGODB_URI environment variable is required")
	}
	mongoDB, err := database.NewMongoDB(cfg.MongoURI)
	if err != nil {
		log.Fatalf("❌ Failed to connect to MongoDB: %v", err)
	}
	defer mongoDB.Close(context.Background())

	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := mongoDB.Initialize(initCtx); err != nil {
		initCancel()
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}
	initCancel()
	log.Println("✅ MongoDB connected successfully")

	// Initialize Redis (optional - shuffle quota disabled without it)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️ Invalid REDIS_URL: %v (shuffle quota disabled)", err)
		} else {
			redisClient = redis.NewClient(opts)
			pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := redisClient.Ping(pingCtx).Err(); err != nil {
				log.Printf("⚠️ Failed to connect to Redis: %v (shuffle quota disabled)", err)
				redisClient = nil
			} else {
				log.Println("✅ Redis connected successfully")
				defer redisClient.Close()
			}
			cancel()
		}
	} else {
		log.Println("⚠️ REDIS_URL not set - shuffle quota disabled")
	}

	// Initialize local JWT auth
	var jwtAuth *auth.LocalJWTAuth
	if cfg.JWTSecret != "" {
		jwtAuth, err = auth.NewLocalJWTAuth(cfg.JWTSecret, 15*time.Minute, 7*24*time.Hour)
		if err != nil {
			log.Fatalf("❌ Failed to initialize JWT auth: %v", err)
		}
		log.Println("✅ Local JWT auth initialized")
	} else {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "production" {
			log.Fatal("❌ CRITICAL SECURITY ERROR: JWT_SECRET is required in production")
		}
		log.Println("⚠️ JWT_SECRET not set - auth disabled (development mode only)")
	}

	// Prometheus metrics
	services.InitMetrics()

	// Initialize services
	userService := services.NewUserService(mongoDB)
	intentionService := services.NewIntentionService(mongoDB)
	stepService := services.NewStepService(mongoDB)
	opportunityService := services.NewOpportunityService(mongoDB)

	completionClient := services.NewOpenAICompatClient(cfg.SimulationBaseURL, cfg.SimulationAPIKey, cfg.SimulationModel)
	simulationService := services.NewSimulationService(completionClient)
	generationService := services.NewGenerationService(stepService, intentionService, opportunityService, simulationService)
	log.Printf("✅ Simulation client initialized (model: %s)", cfg.SimulationModel)

	shuffleLimiter := middleware.NewShuffleLimiter(redisClient, cfg.MaxShufflesPerDay)

	// Background jobs
	jobScheduler := jobs.NewJobScheduler()
	jobScheduler.Register("retention-cleanup", jobs.NewRetentionCleanupJob(opportunityService, cfg.DismissedRetentionDays))
	jobScheduler.Start()

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "King's Canvas v1.0",
		ReadTimeout:  120 * time.Second, // generation requests hold the connection through a model round-trip
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
		BodyLimit:    1 * 1024 * 1024,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())

	// Prometheus metrics middleware
	prometheus := fiberprometheus.New("kingscanvas")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)
	log.Println("📊 Prometheus metrics endpoint enabled at /metrics")

	// CORS configuration with environment-based origins
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:5173,http://localhost:3000"
		log.Println("⚠️  ALLOWED_ORIGINS not set, using development defaults")
	}

	// Fiber's CORS middleware does not allow AllowCredentials with wildcard origins.
	allowCredentials := allowedOrigins != "*"

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization",
		AllowCredentials: allowCredentials,
	}))

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(mongoDB)
	authHandler := handlers.NewAuthHandler(userService, jwtAuth)
	intentionHandler := handlers.NewIntentionHandler(intentionService)
	stepHandler := handlers.NewStepHandler(stepService, generationService)
	opportunityHandler := handlers.NewOpportunityHandler(stepService, opportunityService, generationService, shuffleLimiter)

	// Routes
	app.Get("/health", healthHandler.Handle)

	api := app.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/refresh", authHandler.Refresh)

	protected := api.Group("", middleware.LocalAuthMiddleware(jwtAuth))

	protected.Get("/intentions", intentionHandler.List)
	protected.Post("/intentions", intentionHandler.Create)
	protected.Put("/intentions/:id", intentionHandler.Update)
	protected.Delete("/intentions/:id", intentionHandler.Delete)

	protected.Get("/steps", stepHandler.List)
	protected.Post("/steps", stepHandler.Create)
	protected.Put("/steps/:id", stepHandler.Update)
	protected.Post("/steps/:id/accept", stepHandler.Accept)
	protected.Post("/steps/:id/reject", stepHandler.Reject)
	protected.Delete("/steps/:id", stepHandler.Delete)

	protected.Get("/steps/:stepId/opportunities", opportunityHandler.List)
	protected.Post("/steps/:stepId/opportunities", opportunityHandler.Create)
	protected.Post("/steps/:stepId/opportunities/shuffle", shuffleLimiter.CheckLimit, opportunityHandler.Shuffle)
	protected.Post("/steps/:stepId/generate-opportunities", opportunityHandler.Generate)
	protected.Patch("/opportunities/:id", opportunityHandler.UpdateStatus)
	protected.Delete("/opportunities/:id", opportunityHandler.Delete)

	log.Printf("📡 Health check: http://localhost:%s/health", cfg.Port)
	log.Println("🕐 Background jobs: retention cleanup (daily 3 AM UTC)")

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("\n🛑 Shutting down server...")

		jobScheduler.Stop()

		if err := app.Shutdown(); err != nil {
			log.Printf("⚠️ Error shutting down server: %v", err)
		}
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}
