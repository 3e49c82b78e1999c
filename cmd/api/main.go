package main

import (
	"context"
	"log"

	"github.com/agile-mini/agile-mini-backend/config"
	"github.com/agile-mini/agile-mini-backend/internal/bootstrap"
	"github.com/agile-mini/agile-mini-backend/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := storage.Open(context.Background(), &cfg.Database)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer db.Close()

	bootstrap.SetGinMode(cfg.App.Environment)

	r := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: "agile-mini-api",
		Version:     cfg.App.Version,
		DB:          db,
	})

	log.Printf("listening on :%s (db driver: %s)", cfg.Server.Port, cfg.Database.Driver)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
