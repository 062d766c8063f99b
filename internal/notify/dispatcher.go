package notify

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/coursecity0-ctr/CourseCity-sub000/internal/checkout"
)

// Dispatcher is the post-commit side channel: one email-send request and one
// in-app notification row per placed order. Everything here is best-effort;
// failures are logged and discarded, never surfaced to the checkout caller.
type Dispatcher struct {
	directory OperatorDirectory
	mail      EmailSender // optional
	repo      Repository  // optional
	timeout   time.Duration
	logger    *log.Logger
}

type EmailSender interface {
	Send(ctx context.Context, m Email) error
}

func NewDispatcher(directory OperatorDirectory, mail EmailSender, repo Repository, timeout time.Duration, logger *log.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Dispatcher{
		directory: directory,
		mail:      mail,
		repo:      repo,
		timeout:   timeout,
		logger:    logger,
	}
}

func (d *Dispatcher) OrderPlaced(ctx context.Context, r checkout.Receipt) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	op, err := d.directory.Operator(ctx)
	if err != nil {
		d.logger.Printf("notify: resolve operator: %v", err)
		return
	}

	title := "New order placed"
	message := fmt.Sprintf("Order %s by user %s: %d line(s), total %s",
		r.OrderID, r.UserID, r.Lines, r.Total.StringFixed(2))

	// The legs are independent: a failed email must not stop the in-app row
	// and vice versa, so each one swallows and logs its own error.
	var g errgroup.Group

	if d.mail != nil && op.Email != "" {
		g.Go(func() error {
			err := d.mail.Send(ctx, Email{To: op.Email, Subject: title, Body: message})
			if err != nil {
				d.logger.Printf("notify: send email to %s: %v", op.Email, err)
			}
			return nil
		})
	}

	if d.repo != nil && op.UserID != "" {
		g.Go(func() error {
			err := d.repo.Insert(ctx, &Notification{
				Recipient: op.UserID,
				Type:      TypeOrderPlaced,
				Title:     title,
				Message:   message,
			})
			if err != nil {
				d.logger.Printf("notify: insert notification: %v", err)
			}
			return nil
		})
	}

	_ = g.Wait()
}
