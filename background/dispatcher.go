// Package background runs work outside the request-response cycle. The
// Dispatcher takes notifications off the write paths and publishes them from
// a small pool of worker goroutines.
package background

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/user/inkwell-go/logging"
	"github.com/user/inkwell-go/notify"
)

var (
	// ErrQueueFull is returned by Notify when the event was dropped.
	ErrQueueFull = errors.New("background: notification queue is full")
	// ErrStopped is returned by Notify after Stop.
	ErrStopped = errors.New("background: dispatcher stopped")
)

const (
	defaultQueueSize = 256
	defaultWorkers   = 2
)

// Publisher receives events from the workers.
type Publisher interface {
	Publish(ev notify.Event) int
}

// Dispatcher is a notify.Notifier backed by a bounded queue.
type Dispatcher struct {
	publisher Publisher
	log       logging.Logger
	queue     chan notify.Event
	workers   int

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	dropped  atomic.Uint64
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithQueueSize sets the queue capacity.
func WithQueueSize(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.queue = make(chan notify.Event, n)
		}
	}
}

// WithWorkers sets the number of worker goroutines.
func WithWorkers(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.workers = n
		}
	}
}

func NewDispatcher(publisher Publisher, log logging.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		publisher: publisher,
		log:       log.With("component", "dispatcher"),
		queue:     make(chan notify.Event, defaultQueueSize),
		workers:   defaultWorkers,
		stop:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start launches the workers. Call it once.
func (d *Dispatcher) Start() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.run(i)
	}
	d.log.Info(context.Background(), "notification dispatcher started", "workers", d.workers, "queue", cap(d.queue))
}

func (d *Dispatcher) run(worker int) {
	defer d.wg.Done()
	for {
		select {
		case ev := <-d.queue:
			d.publish(worker, ev)
		case <-d.stop:
			// Drain what is already queued.
			for {
				select {
				case ev := <-d.queue:
					d.publish(worker, ev)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) publish(worker int, ev notify.Event) {
	n := d.publisher.Publish(ev)
	d.log.Debug(context.Background(), "event published",
		"worker", worker, "topic", ev.Topic, "event", ev.Name, "subscribers", n)
}

// Notify enqueues ev without blocking.
func (d *Dispatcher) Notify(ctx context.Context, ev notify.Event) error {
	select {
	case <-d.stop:
		return ErrStopped
	default:
	}

	select {
	case d.queue <- ev:
		return nil
	default:
		total := d.dropped.Add(1)
		d.log.Warn(ctx, "notification queue full, dropping event",
			"topic", ev.Topic, "event", ev.Name, "dropped_total", total)
		return ErrQueueFull
	}
}

// Dropped returns how many events have been dropped so far.
func (d *Dispatcher) Dropped() uint64 { return d.dropped.Load() }

// Stop signals the workers to drain the queue and waits for them or for ctx.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.stopOnce.Do(func() { close(d.stop) })

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.log.Info(ctx, "notification dispatcher stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
