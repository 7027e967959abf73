package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/myfinance/finauth/internal/server"
	"github.com/myfinance/finauth/internal/server/config"
)

func main() {
	// A missing .env file is fine; real env vars still apply.
	_ = godotenv.Load()

	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := server.NewApp(cfg)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)
}
