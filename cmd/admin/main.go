// Command admin is an offline operator tool. It boots the core against
// the configured snapshot backend, seeds the demo dataset and runs one
// subcommand. Reports themselves are in-memory per process, so the
// tool is for inspecting the seeded state and exercising transitions,
// not for mutating a running server.
package main

import (
	"fmt"
	"log"
	"os"

	"tipsy/backend/internal/adviser"
	"tipsy/backend/internal/auth"
	"tipsy/backend/internal/ledger"
	"tipsy/backend/internal/models"
	"tipsy/backend/internal/storage"
	"tipsy/backend/internal/store"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupSnapshots() storage.Snapshots {
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to connect database: %v", err)
		}
		snaps, err := storage.NewPostgresSnapshots(db)
		if err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
		return snaps
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
		return storage.NewRedisService(rdb)
	}
	return storage.NewMemorySnapshots()
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}

	users, err := auth.NewService(setupSnapshots())
	if err != nil {
		log.Fatalf("failed to initialize auth service: %v", err)
	}

	// No delays and no live listeners in a one-shot tool.
	adv := &adviser.Service{}
	st := store.NewService(users, adv, ledger.New(), nil)
	st.Seed()

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command> [args]")
		fmt.Println("Commands: status, verify, reports, users")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "status":
		if len(os.Args) != 4 {
			fmt.Println("Usage: admin status <report_id> <Open|'Under Review'|Resolved>")
			os.Exit(1)
		}
		reportID, status := os.Args[2], models.ReportStatus(os.Args[3])
		if err := st.ChangeStatus(reportID, status); err != nil {
			log.Fatalf("Error changing status: %v", err)
		}
		fmt.Printf("Report %s is now %s.\n", reportID, status)
	case "verify":
		led := st.Ledger()
		if err := led.Verify(); err != nil {
			log.Fatalf("Chain verification failed: %v", err)
		}
		fmt.Printf("Chain valid, %d blocks.\n", led.Length())
	case "reports":
		for _, r := range st.Reports() {
			fmt.Printf("%-4s %-13s %-6s %3d/%-3d %s\n",
				r.ID, r.Status, r.Criticality, r.Upvotes, r.Downvotes, r.Title)
		}
	case "users":
		for _, u := range users.Users() {
			rep := "-"
			if u.Reputation != nil {
				rep = fmt.Sprintf("%d", *u.Reputation)
			}
			fmt.Printf("%-4s %-22s %-8s rep=%-4s %s\n",
				u.ID, u.Email, u.Role, rep, u.AnonymousID)
		}
	default:
		fmt.Println("Unknown command")
		os.Exit(1)
	}
}
