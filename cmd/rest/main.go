package main

import (
	"context"
	"log"

	"notelets-be/internal/bootstrap"
	"notelets-be/internal/config"
	"notelets-be/internal/server"
	"notelets-be/internal/tracer"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(cfg)

	// 3. Start Background Services
	go func() {
		log.Println("Background: Starting Sync Service...")
		if err := container.SyncService.Consume(context.Background()); err != nil {
			log.Printf("Background Sync Error: %v", err)
		}
	}()

	// 4. Initialize Server
	srv := server.New(cfg, container)

	// 5. Run Server
	log.Fatal(srv.Run())
}
