package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/llmndev/perfume-storefront/internal/app/storefront"
)

func main() {
	cfg, err := storefront.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := storefront.Run(ctx, cfg); err != nil {
		log.Fatalf("storefront exited: %v", err)
	}
}
