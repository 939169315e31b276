package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"order-fulfillment-service/internal/adapters/artifacts"
	rediscache "order-fulfillment-service/internal/adapters/cache"
	"order-fulfillment-service/internal/adapters/erp"
	"order-fulfillment-service/internal/adapters/notify"
	"order-fulfillment-service/internal/adapters/repositories"
	"order-fulfillment-service/internal/api"
	"order-fulfillment-service/internal/platform/db"
	"order-fulfillment-service/internal/ports"
	"order-fulfillment-service/internal/services"
)

// main is the application composition root.
// It wires concrete adapters (Mexal, SQL, Redis, Excel) behind ports and
// starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	port := getEnv("PORT", "8080")
	artifactDir := getEnv("ARTIFACT_DIR", "data/artifacts")

	baseURL := os.Getenv("MX_API_BASE_URL")
	token := os.Getenv("MX_AUTH_TOKEN")
	coordinates := os.Getenv("MX_COORDINATES")
	if strings.TrimSpace(baseURL) == "" || strings.TrimSpace(token) == "" {
		log.Fatal("MX_API_BASE_URL and MX_AUTH_TOKEN are required")
	}

	mexal, err := erp.NewMexalClient(baseURL, token, coordinates, envDuration("MX_TIMEOUT", 30*time.Second))
	if err != nil {
		log.Fatal(err)
	}

	database, store, err := openStore()
	if err != nil {
		log.Fatal(err)
	}
	defer database.Close()

	generator, err := artifacts.NewExcelPackingList(artifactDir)
	if err != nil {
		log.Fatal(err)
	}

	hub := notify.NewHub()

	// Redis is optional: without it every barcode scan resolves through the
	// ERP alias search.
	var aliasCache ports.AliasCache
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr, Password: os.Getenv("REDIS_PASSWORD")})
		if err := client.Ping(context.Background()).Err(); err != nil {
			log.Fatalf("redis ping failed: %v", err)
		}
		aliasCache = rediscache.NewRedisAliasCache(client, envDuration("ALIAS_CACHE_TTL", 24*time.Hour))
	}

	content := services.NewContentCache(mexal, envDuration("CONTENT_TTL", 10*time.Minute))
	states := services.NewStateStore(store)
	workflow := services.NewWorkflow(states, content, generator, hub)
	packing := services.NewPacking(states, content)
	barcode := services.NewBarcodeResolver(mexal, aliasCache)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	detector := services.NewStalenessDetector(mexal, content, envDuration("STALENESS_INTERVAL", time.Minute))
	go detector.Run(ctx)

	router := api.NewRouter(content, states, workflow, packing, barcode, mexal, hub)

	// Write timeout covers approve: artifact generation plus a slow ERP read.
	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

// openStore picks Postgres when DATABASE_URL is set, local SQLite otherwise.
func openStore() (*sql.DB, ports.FulfillmentStore, error) {
	if databaseURL := os.Getenv("DATABASE_URL"); strings.TrimSpace(databaseURL) != "" {
		database, err := db.OpenPostgres(databaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := repositories.InitSchema(database); err != nil {
			return nil, nil, fmt.Errorf("init schema: %w", err)
		}
		return database, repositories.NewSQLFulfillmentStore(database), nil
	}

	dbPath := getEnv("DB_PATH", "data/fulfillment.db")
	database, err := db.OpenSQLite(dbPath)
	if err != nil {
		return nil, nil, err
	}
	if err := repositories.InitSchema(database); err != nil {
		return nil, nil, fmt.Errorf("init schema: %w", err)
	}
	return database, repositories.NewSqliteFulfillmentStore(database), nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	log.Printf("invalid duration %s=%q, using %s", key, v, fallback)
	return fallback
}
