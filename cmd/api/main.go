package main

import (
	"log"

	"interview-backend/internal/bootstrap"
	"interview-backend/internal/shared/config"
	"interview-backend/internal/shared/server"
)

func main() {
	cfg := config.Load()

	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}

	addr := server.Addr(cfg.Port)
	log.Printf("Starting interview API server on %s", addr)

	if err := app.Router.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
