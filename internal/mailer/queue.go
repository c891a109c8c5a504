package mailer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker/v2"
)

var (
	ErrQueueFull   = errors.New("mail queue is full")
	ErrQueueClosed = errors.New("mail queue is closed")
)

var dispatchTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "mail_dispatch_total",
		Help: "Total number of email dispatch attempts by kind and result",
	},
	[]string{"kind", "result"},
)

type QueueOptions struct {
	Size        int
	Workers     int
	SendTimeout time.Duration
	MaxTries    uint
	// InitialBackoff is the first retry delay; later delays grow exponentially.
	InitialBackoff time.Duration
}

// Queue sends messages out of band so request handlers never wait on a
// mail transport. Failed sends are retried with exponential backoff.
type Queue struct {
	mailer Mailer
	opts   QueueOptions
	jobs   chan Message

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup

	// stop aborts retry waits once shutdown runs out of time
	stop   context.Context
	cancel context.CancelFunc
}

func NewQueue(m Mailer, opts QueueOptions) *Queue {
	if opts.Size <= 0 {
		opts.Size = 100
	}
	if opts.Workers <= 0 {
		opts.Workers = 2
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = 10 * time.Second
	}
	if opts.MaxTries == 0 {
		opts.MaxTries = 5
	}
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = 500 * time.Millisecond
	}

	stop, cancel := context.WithCancel(context.Background())
	q := &Queue{
		mailer: m,
		opts:   opts,
		jobs:   make(chan Message, opts.Size),
		stop:   stop,
		cancel: cancel,
	}

	for i := 0; i < opts.Workers; i++ {
		q.wg.Add(1)
		go q.work()
	}
	return q
}

// Enqueue schedules msg for delivery. It never blocks.
func (q *Queue) Enqueue(msg Message) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.jobs <- msg:
		return nil
	default:
		dispatchTotal.WithLabelValues(msg.Kind, "dropped").Inc()
		return ErrQueueFull
	}
}

// Close stops accepting messages and waits for queued ones to be delivered
// or for ctx to end, whichever comes first.
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.cancel()
		return nil
	case <-ctx.Done():
		q.cancel()
		<-done
		return ctx.Err()
	}
}

func (q *Queue) work() {
	defer q.wg.Done()
	for msg := range q.jobs {
		q.deliver(msg)
	}
}

func (q *Queue) deliver(msg Message) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = q.opts.InitialBackoff

	attempt := 0
	_, err := backoff.Retry(q.stop, func() (struct{}, error) {
		attempt++
		ctx, cancel := context.WithTimeout(q.stop, q.opts.SendTimeout)
		defer cancel()

		err := q.mailer.Send(ctx, msg)
		if errors.Is(err, gobreaker.ErrOpenState) {
			return struct{}{}, backoff.Permanent(err)
		}
		if err != nil {
			slog.Warn("email send failed", "type", msg.Kind, "to", msg.To, "attempt", attempt, "error", err)
		}
		return struct{}{}, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(q.opts.MaxTries),
	)

	switch {
	case err == nil:
		dispatchTotal.WithLabelValues(msg.Kind, "sent").Inc()
		slog.Info("email sent", "type", msg.Kind, "to", msg.To)
	case errors.Is(err, gobreaker.ErrOpenState):
		dispatchTotal.WithLabelValues(msg.Kind, "breaker_open").Inc()
		slog.Error("email dropped, transport circuit open", "type", msg.Kind, "to", msg.To)
	default:
		dispatchTotal.WithLabelValues(msg.Kind, "failed").Inc()
		slog.Error("email delivery gave up", "type", msg.Kind, "to", msg.To, "attempts", attempt, "error", err)
	}
}
