package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"weddinggo/backend/internal/api/handler"
	"weddinggo/backend/internal/appeal"
	"weddinggo/backend/internal/enforcement"
	"weddinggo/backend/internal/feed"
	"weddinggo/backend/internal/localization"
	"weddinggo/backend/internal/models"
	"weddinggo/backend/internal/notify"
	"weddinggo/backend/internal/storage"
)

func setupDependencies() (*gorm.DB, *redis.Client) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		envOr("DB_HOST", "localhost"),
		envOr("DB_USER", "user"),
		envOr("DB_PASSWORD", "password"),
		envOr("DB_NAME", "weddinggodb"),
		envOr("DB_PORT", "5432"),
	)

	// TranslateError turns driver duplicate-key errors into
	// gorm.ErrDuplicatedKey, which the ledger dedup path relies on.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     envOr("REDIS_ADDR", "localhost:6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	ctx := context.Background()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	err = db.AutoMigrate(
		&models.Account{},
		&models.ViolationRecord{},
		&models.SuspensionRecord{},
		&models.Appeal{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	log.Println("Starting WeddingGo Enforcement Engine...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}

	db, rdb := setupDependencies()
	s := storage.NewStorageService(db, rdb)

	enforcementSvc := enforcement.NewService(s)
	appealSvc := appeal.NewService(s, enforcementSvc)

	localizer, err := localization.NewLocalizer(envOr("LOCALES_DIR", "locales"))
	if err != nil {
		log.Fatalf("Failed to load localizations: %v", err)
	}

	hub := feed.NewHub(s)
	go hub.Run()

	// The Telegram notifier is optional; the engine runs fine without it.
	if botToken := os.Getenv("TELEGRAM_BOT_TOKEN"); botToken != "" {
		adminChatID, err := strconv.ParseInt(os.Getenv("ADMIN_CHAT_ID"), 10, 64)
		if err != nil {
			log.Fatalf("ADMIN_CHAT_ID must be set when TELEGRAM_BOT_TOKEN is: %v", err)
		}
		botService, err := notify.NewBotService(botToken, s, appealSvc, adminChatID)
		if err != nil {
			log.Fatalf("Failed to start Telegram notifier: %v", err)
		}
		go botService.Run()
	}

	r := gin.Default()
	h := handler.NewHandler(s, enforcementSvc, appealSvc, hub, localizer)

	// Message pipeline contract. The ledger write sits behind a service
	// credential: only the trusted pipeline records violations, never the
	// account owners themselves.
	pipeline := r.Group("/", handler.PipelineAuth())
	pipeline.POST("/analyze", h.Analyze)
	pipeline.POST("/accounts/:id/violations", h.RecordViolation)

	// Owner-scoped surface: the authenticated account must match :id.
	owner := r.Group("/accounts/:id", handler.OwnerAuth())
	owner.GET("/reputation", h.GetReputation)
	owner.GET("/warning-level", h.GetWarningLevel)
	owner.GET("/violations", h.ListViolations)
	owner.POST("/appeal", h.SubmitAppeal)

	// Admin surface
	admin := r.Group("/admin", handler.AdminAuth())
	admin.GET("/appeals", h.ListAppeals)
	admin.POST("/appeals/:id/resolve", h.ResolveAppeal)
	admin.POST("/accounts/:id/suspend", h.SuspendAccount)
	admin.POST("/accounts/:id/reinstate", h.ReinstateAccount)
	admin.GET("/suspensions", h.ListSuspensions)
	admin.GET("/feed", h.ServeFeed)

	server := &http.Server{
		Addr:           ":" + envOr("PORT", "8080"),
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}
