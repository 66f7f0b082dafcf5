package notify

import (
	"context"
	"log/slog"
	"time"
)

// Mailer delivers a single notification. Real SMTP delivery lives outside
// this service; LogMailer is the default stand-in.
type Mailer interface {
	Send(ctx context.Context, n Notification) error
}

// LogMailer writes notifications to the log instead of sending them.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, n Notification) error {
	slog.Info("mail out",
		slog.String("id", n.ID),
		slog.String("kind", string(n.Kind)),
		slog.String("recipient", n.Recipient),
		slog.String("subject", n.Subject),
	)
	return nil
}

// Queue is the worker's view of the outbox.
type Queue interface {
	Pop(ctx context.Context, timeout time.Duration) (*Notification, error)
}

// Worker drains the outbox and hands each notification to the mailer.
// Delivery failures are logged and the message is dropped after the
// attempt; the booking state that produced it is already durable.
type Worker struct {
	queue  Queue
	mailer Mailer
}

func NewWorker(queue Queue, mailer Mailer) *Worker {
	return &Worker{queue: queue, mailer: mailer}
}

// Run loops until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		n, err := w.queue.Pop(ctx, 5*time.Second)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.Error("outbox pop failed", slog.Any("error", err))
			time.Sleep(time.Second)
			continue
		}
		if n == nil {
			continue
		}

		if err := w.mailer.Send(ctx, *n); err != nil {
			slog.Error("notification delivery failed",
				slog.String("id", n.ID),
				slog.String("kind", string(n.Kind)),
				slog.Any("error", err),
			)
		}
	}
}
