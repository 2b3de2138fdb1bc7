package main

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"tipsy/backend/internal/adviser"
	"tipsy/backend/internal/api/handler"
	"tipsy/backend/internal/auth"
	"tipsy/backend/internal/chathub"
	"tipsy/backend/internal/ledger"
	"tipsy/backend/internal/storage"
	"tipsy/backend/internal/store"
	"tipsy/backend/internal/telegram"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupSnapshots picks the session/user persistence backend from the
// environment: Postgres when a DSN is set, Redis when an address is
// set, in-memory otherwise. The Redis service is returned separately
// because it also carries the chat pub/sub bridge.
func setupSnapshots() (storage.Snapshots, *storage.RedisService) {
	var rds *storage.RedisService
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       0,
		})
		rds = storage.NewRedisService(rdb)
		if err := rdb.Ping(rds.Ctx).Err(); err != nil {
			log.Fatalf("Failed to connect Redis: %v", err)
		}
		log.Println("Redis connection established.")
	}

	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			log.Fatalf("Failed to connect PostgreSQL: %v", err)
		}
		snaps, err := storage.NewPostgresSnapshots(db)
		if err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		log.Println("Database connection established, migrations complete.")
		return snaps, rds
	}

	if rds != nil {
		return rds, rds
	}
	log.Println("No persistence configured, using in-memory snapshots.")
	return storage.NewMemorySnapshots(), nil
}

func main() {
	log.Println("Starting TIPSY Backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is not set!")
	}

	snaps, rds := setupSnapshots()

	users, err := auth.NewService(snaps)
	if err != nil {
		log.Fatalf("Failed to initialize auth service: %v", err)
	}

	led := ledger.New()
	adv := adviser.New()

	// The hub and the store point at each other: the store publishes
	// accepted messages, the hub writes inbound ones through the store.
	// With Redis the publish leg goes through pub/sub instead, so every
	// instance delivers it.
	hub := chathub.NewManagerService(nil)
	var pub store.Publisher = hub
	if rds != nil {
		pub = rds
		hub.StartPubSubListener(rds)
	}
	st := store.NewService(users, adv, led, pub)
	hub.Store = st

	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		chatID, err := strconv.ParseInt(os.Getenv("TELEGRAM_ADMIN_CHAT_ID"), 10, 64)
		if err != nil {
			log.Fatalf("TELEGRAM_ADMIN_CHAT_ID is not a valid chat id: %v", err)
		}
		notifier, err := telegram.NewNotifier(token, chatID)
		if err != nil {
			log.Fatalf("Failed to start telegram notifier: %v", err)
		}
		st.SetNotifier(notifier)
	}

	st.Seed()
	go hub.Run()

	r := gin.Default()
	h := handler.NewHandler(users, st, adv, hub, []byte(jwtSecret))
	h.Register(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:           ":" + port,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Printf("Listening on :%s", port)
	log.Fatal(server.ListenAndServe())
}
