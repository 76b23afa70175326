package database_test

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/wonny/kquant/internal/dataset"
	"github.com/wonny/kquant/pkg/config"
	"github.com/wonny/kquant/pkg/database"
	"github.com/wonny/kquant/pkg/logger"
)

// Example shows the pool feeding the snapshot store, the way the API server
// wires it.
func Example() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store := dataset.NewSnapshotStore(db.Pool, logger.New(cfg))
	snap, err := store.Current(ctx)
	if err != nil {
		log.Fatalf("Failed to load snapshot: %v", err)
	}
	if snap == nil {
		fmt.Println("No screening snapshot published yet")
		return
	}

	fmt.Printf("Snapshot date: %s\n", snap.Date.Format("2006-01-02"))
	fmt.Printf("Securities screened: %d\n", len(snap.Rows))
	fmt.Printf("Pool connections in use: %d\n", db.Stats().AcquiredConns)
}
