package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"weddinggo/backend/internal/api/handler"
	"weddinggo/backend/internal/appeal"
	"weddinggo/backend/internal/enforcement"
	"weddinggo/backend/internal/models"
	"weddinggo/backend/internal/storage"
)

func main() {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     os.Getenv("REDIS_ADDR"),
		Password: os.Getenv("REDIS_PASSWORD"),
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}

	storageSvc := storage.NewStorageService(db, rdb)
	enforcementSvc := enforcement.NewService(storageSvc)
	appealSvc := appeal.NewService(storageSvc, enforcementSvc)

	adminID := os.Getenv("ADMIN_ID")
	if adminID == "" {
		adminID = "cli-admin"
	}

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command> [args]")
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "suspend":
		if len(os.Args) < 4 {
			fmt.Println("Usage: admin suspend <account_id> <reason> [details...]")
			os.Exit(1)
		}
		accountID := os.Args[2]
		reason := models.SuspensionReason(os.Args[3])
		details := strings.Join(os.Args[4:], " ")
		if err := enforcementSvc.SuspendManually(accountID, reason, details, true, adminID); err != nil {
			log.Fatalf("Error suspending account: %v", err)
		}
		fmt.Printf("Account %s has been suspended.\n", accountID)

	case "reinstate":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin reinstate <account_id>")
			os.Exit(1)
		}
		accountID := os.Args[2]
		if err := enforcementSvc.Reinstate(accountID, adminID); err != nil {
			log.Fatalf("Error reinstating account: %v", err)
		}
		fmt.Printf("Account %s has been reinstated.\n", accountID)

	case "appeals":
		appeals, err := storageSvc.ListAppealsByStatus(models.AppealPending)
		if err != nil {
			log.Fatalf("Error listing appeals: %v", err)
		}
		if len(appeals) == 0 {
			fmt.Println("No pending appeals.")
			return
		}
		for _, a := range appeals {
			fmt.Printf("%s  account=%s  submitted=%s\n  %s\n",
				a.ID, a.AccountID, a.SubmittedAt.Format("2006-01-02 15:04"), a.Message)
		}

	case "resolve-appeal":
		if len(os.Args) < 4 {
			fmt.Println("Usage: admin resolve-appeal <appeal_id> <approved|rejected> [notes...]")
			os.Exit(1)
		}
		appealID := os.Args[2]
		decision := models.AppealStatus(os.Args[3])
		notes := strings.Join(os.Args[4:], " ")
		resolved, err := appealSvc.Resolve(appealID, decision, adminID, notes)
		if err != nil {
			log.Fatalf("Error resolving appeal: %v", err)
		}
		fmt.Printf("Appeal %s is now %s.\n", resolved.ID, resolved.Status)

	case "token":
		if len(os.Args) != 4 {
			fmt.Println("Usage: admin token <admin|pipeline|account> <id>")
			os.Exit(1)
		}
		var token string
		var err error
		switch os.Args[2] {
		case "admin":
			token, err = handler.GenerateAdminToken(os.Args[3])
		case "pipeline":
			token, err = handler.GeneratePipelineToken(os.Args[3])
		case "account":
			token, err = handler.GenerateAccountToken(os.Args[3])
		default:
			fmt.Println("Usage: admin token <admin|pipeline|account> <id>")
			os.Exit(1)
		}
		if err != nil {
			log.Fatalf("Error generating token: %v", err)
		}
		fmt.Println(token)

	default:
		fmt.Println("Unknown command")
		os.Exit(1)
	}
}
