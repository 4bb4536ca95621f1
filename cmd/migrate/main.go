// Command migrate applies the storefront schema to POSTGRES_DSN.
package main

import (
	"context"
	"log"
	"os"
	"time"

	platformpostgres "github.com/llmndev/perfume-storefront/internal/platform/postgres"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := platformpostgres.Connect(ctx, os.Getenv("POSTGRES_DSN"))
	if err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Printf("storefront schema is up to date")
}
