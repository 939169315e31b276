package main

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"order-fulfillment-service/internal/adapters/repositories"
	"order-fulfillment-service/internal/platform/db"
	"order-fulfillment-service/internal/ports"
)

// dbtool initializes the fulfillment schema and prints the persisted
// states, for local setup and quick inspection.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	var (
		database interface{ Close() error }
		store    ports.FulfillmentStore
	)

	if databaseURL := os.Getenv("DATABASE_URL"); strings.TrimSpace(databaseURL) != "" {
		d, err := db.OpenPostgres(databaseURL)
		if err != nil {
			log.Fatal(err)
		}
		if err := repositories.InitSchema(d); err != nil {
			log.Fatalf("schema initialization failed: %v", err)
		}
		database, store = d, repositories.NewSQLFulfillmentStore(d)
	} else {
		dbPath := os.Getenv("DB_PATH")
		if dbPath == "" {
			dbPath = "data/fulfillment.db"
		}
		d, err := db.OpenSQLite(dbPath)
		if err != nil {
			log.Fatal(err)
		}
		if err := repositories.InitSchema(d); err != nil {
			log.Fatalf("schema initialization failed: %v", err)
		}
		database, store = d, repositories.NewSqliteFulfillmentStore(d)
	}
	defer database.Close()
	log.Println("Schema ready.")

	states, err := store.List(context.Background())
	if err != nil {
		log.Fatalf("list states failed: %v", err)
	}

	log.Printf("%d fulfillment states", len(states))
	for _, s := range states {
		picked := 0
		for _, n := range s.PickedSummary {
			picked += n
		}
		log.Printf("order=%s status=%s boxes=%d picked_units=%d artifact=%q updated=%s",
			s.OrderKey, s.Status, len(s.PackingList), picked, s.ArtifactRef, s.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
}
