package main

import (
	"context"
	"log"

	"range-breakout/internal/app"

	"go.uber.org/zap"
)

func main() {
	application, err := app.NewApp()
	if err != nil {
		log.Fatalf("failed to create application: %v", err)
	}

	// DB, NATS, report cache, worker pool
	ctx := context.Background()
	if err := application.Init(ctx); err != nil {
		application.Logger.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := application.Run(ctx); err != nil {
		application.Logger.Fatal("application error", zap.Error(err))
	}
}
