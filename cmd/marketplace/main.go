package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coursecity0-ctr/CourseCity-sub000/internal/cart"
	"github.com/coursecity0-ctr/CourseCity-sub000/internal/catalog"
	"github.com/coursecity0-ctr/CourseCity-sub000/internal/checkout"
	"github.com/coursecity0-ctr/CourseCity-sub000/internal/config"
	"github.com/coursecity0-ctr/CourseCity-sub000/internal/db"
	"github.com/coursecity0-ctr/CourseCity-sub000/internal/httpapi"
	"github.com/coursecity0-ctr/CourseCity-sub000/internal/mail"
	"github.com/coursecity0-ctr/CourseCity-sub000/internal/notify"
	"github.com/coursecity0-ctr/CourseCity-sub000/internal/order"
	"github.com/coursecity0-ctr/CourseCity-sub000/internal/wishlist"
)

func main() {
	cfg := config.Load()
	logger := log.New(os.Stdout, "", log.LstdFlags|log.Lmicroseconds)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- DB ---
	pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
	if err != nil {
		logger.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.RunMigrations(cfg.DatabaseDSN, logger); err != nil {
			logger.Fatalf("db migrate: %v", err)
		}
	}

	courseRepo := catalog.NewPostgresRepository(pool)
	cartRepo := cart.NewPostgresRepository(pool)
	wishlistRepo := wishlist.NewPostgresRepository(pool)
	orderRepo := order.NewPostgresRepository(pool)
	notificationRepo := notify.NewPostgresRepository(pool)

	// --- notifications ---
	var directory notify.OperatorDirectory
	if cfg.OperatorEmail != "" || cfg.OperatorUserID != "" {
		directory = notify.StaticDirectory{Op: notify.Operator{
			UserID: cfg.OperatorUserID,
			Email:  cfg.OperatorEmail,
		}}
	} else {
		directory = notify.NewPostgresDirectory(pool)
	}

	var sender notify.EmailSender
	if cfg.RabbitURL != "" {
		conn, err := mail.Dial(cfg.RabbitURL)
		if err != nil {
			logger.Fatalf("rabbit connect: %v", err)
		}
		defer conn.Close()

		pub, err := mail.NewPublisher(conn)
		if err != nil {
			logger.Fatalf("mail publisher: %v", err)
		}
		defer pub.Close()
		sender = pub
	} else {
		logger.Printf("RABBITMQ_URL not set, email notifications disabled")
	}

	dispatcher := notify.NewDispatcher(directory, sender, notificationRepo, cfg.NotifyTimeout, logger)

	// --- checkout ---
	checkoutSvc := checkout.NewService(
		checkout.PoolBeginner{Pool: pool},
		cartRepo,
		dispatcher,
		cfg.CheckoutTimeout,
		logger,
	)

	// --- HTTP ---
	h := httpapi.NewHandler(courseRepo, cartRepo, wishlistRepo, orderRepo, notificationRepo, checkoutSvc)
	r := httpapi.NewRouter(h)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Printf("http listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// --- graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Printf("shutdown signal: %s", sig)
	case err := <-errCh:
		logger.Printf("fatal error: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = httpServer.Shutdown(shutdownCtx)
	cancel()

	logger.Printf("shutdown complete")
}
