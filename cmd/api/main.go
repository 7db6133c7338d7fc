package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/logtide/logtide/internal/logger"
	"github.com/logtide/logtide/internal/server"
)

func main() {
	godotenv.Load(".env")
	config, err := server.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	srv, err := server.NewServer(config)
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	err = srv.Start(ctx)
	if err != nil {
		log.Printf("Server stopped with error: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	logger.Shutdown(shutdownCtx)
	if err := srv.Close(); err != nil {
		log.Printf("Failed to close server resources: %v", err)
	}
}
