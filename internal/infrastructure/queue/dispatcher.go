package queue

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/wandertrails/tours-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 64
)

// MailDispatcher decouples mail delivery from the request path: Send only
// enqueues, and a fixed set of workers drains the queues. Messages are
// sharded by recipient so mails to the same address keep their order.
type MailDispatcher struct {
	workers []chan ports.MailMessage
	mailer  ports.Mailer
	log     zerolog.Logger
}

// NewMailDispatcher creates a MailDispatcher with numWorkers sharded workers
// delivering through mailer. If numWorkers <= 0, defaultWorkers is used.
func NewMailDispatcher(numWorkers int, mailer ports.Mailer, log zerolog.Logger) *MailDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &MailDispatcher{
		workers: make([]chan ports.MailMessage, numWorkers),
		mailer:  mailer,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.MailMessage, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *MailDispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Send implements ports.Mailer by enqueueing the message for asynchronous
// delivery. The call is non-blocking up to channelBuffer capacity.
func (d *MailDispatcher) Send(_ context.Context, msg ports.MailMessage) error {
	d.workers[d.shardIndex(msg.To)] <- msg
	return nil
}

// shardIndex maps a recipient deterministically to a worker index.
func (d *MailDispatcher) shardIndex(to string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(to))
	return int(h.Sum32()) % len(d.workers)
}

func (d *MailDispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.MailMessage) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if err := d.mailer.Send(ctx, msg); err != nil {
				d.log.Error().Err(err).
					Str("to", msg.To).
					Int("worker_id", id).
					Msg("mail delivery failed")
			}
		}
	}
}
