package mail

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"learnstudio/internal/metrics"
)

// Message is one queued email
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Dispatcher delivers queued messages from a single worker goroutine
type Dispatcher struct {
	mailer      Mailer
	logger      *slog.Logger
	metrics     *metrics.Metrics
	sendTimeout time.Duration

	mu     sync.Mutex
	closed bool
	queue  chan Message
	done   chan struct{}
}

// NewDispatcher starts the worker. Call Stop to drain and release it.
func NewDispatcher(mailer Mailer, size int, sendTimeout time.Duration, logger *slog.Logger, m *metrics.Metrics) *Dispatcher {
	d := &Dispatcher{
		mailer:      mailer,
		logger:      logger,
		metrics:     m,
		sendTimeout: sendTimeout,
		queue:       make(chan Message, size),
		done:        make(chan struct{}),
	}
	go d.run()
	return d
}

// Enqueue never blocks. It reports false when the queue is full or stopped.
func (d *Dispatcher) Enqueue(msg Message) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		d.metrics.MailResult("dropped")
		return false
	}
	select {
	case d.queue <- msg:
		return true
	default:
		d.metrics.MailResult("dropped")
		d.logger.Warn("mail queue full, dropping message", "to", msg.To, "subject", msg.Subject)
		return false
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for msg := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), d.sendTimeout)
		err := d.mailer.Send(ctx, msg.To, msg.Subject, msg.HTML)
		cancel()
		if err != nil {
			d.metrics.MailResult("failed")
			d.logger.Error("mail delivery failed", "to", msg.To, "subject", msg.Subject, "error", err)
			continue
		}
		d.metrics.MailResult("sent")
	}
}

// Stop refuses new messages and waits for queued ones until ctx ends
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
