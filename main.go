package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"calmquest-backend/handlers"
	"calmquest-backend/middleware"
	"calmquest-backend/models"
	"calmquest-backend/services"
	"calmquest-backend/storage"
	"calmquest-backend/utils"
	"calmquest-backend/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // 10MB — share card uploads are the largest bodies
	})

	// 🔐 GLOBAL: Only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-Session-Token, X-Service-Token, X-Device-ID",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.UserProfile{},
		&models.CompletedQuest{},
		&models.AchievementUnlock{},
		&models.MoodEntry{},
		&models.LeaderboardEntry{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	cachePath := os.Getenv("LOCAL_CACHE_PATH")
	if cachePath == "" {
		cachePath = "./calmquest_cache.db"
	}
	cache, err := storage.NewLocalCache(cachePath)
	if err != nil {
		log.Fatal("failed to open local cache:", err)
	}
	defer cache.Close()

	gateway := storage.NewRemoteGateway(db)
	reward := services.RewardFormulaByName(os.Getenv("QUEST_XP_FORMULA"))
	engines := services.NewEngineManager(gateway, cache, reward)

	leaderboardService := services.NewLeaderboardService(db)
	leaderboardService.StartSnapshotScheduler()

	coachClient := services.NewCoachClient(os.Getenv("GROQ_API_KEY"))

	var authClient *services.AuthServiceClient
	if authURL := os.Getenv("AUTH_SERVICE_URL"); authURL != "" {
		authClient = services.NewAuthServiceClient(authURL, os.Getenv("WELLNESS_SERVICE_TOKEN"))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	flushWorker := workers.NewPendingWriteFlushWorker(cache, gateway)
	flushWorker.Start(ctx)

	handlers.SetupProgressionRoutes(app, engines, leaderboardService, authClient)
	handlers.SetupQuestRoutes(app)
	handlers.SetupCoachRoutes(app, coachClient, gateway, authClient)

	go func() {
		if err := app.Listen(":5200"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5200")
	log.Println("✅ Pending write flush worker running (every 30s)")
	log.Println("✅ Leaderboard snapshot scheduler running (every 5m)")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
