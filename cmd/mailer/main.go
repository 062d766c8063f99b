package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/coursecity0-ctr/CourseCity-sub000/internal/config"
	"github.com/coursecity0-ctr/CourseCity-sub000/internal/mail"
)

func main() {
	cfg := config.Load()
	logger := log.New(os.Stdout, "mailer ", log.LstdFlags|log.Lmicroseconds)

	if cfg.RabbitURL == "" {
		logger.Fatal("RABBITMQ_URL is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn, err := mail.Dial(cfg.RabbitURL)
	if err != nil {
		logger.Fatalf("rabbit connect: %v", err)
	}
	defer conn.Close()

	if err := mail.StartEmailConsumer(ctx, conn, mail.LogTransport{Logger: logger}, logger); err != nil {
		logger.Fatalf("start consumer: %v", err)
	}

	logger.Printf("consuming %s", mail.EmailQueue)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Printf("shutdown signal: %s", sig)
	cancel()
}
