package notify

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/cristianortiz/auctionlifecycle/internal/auction/domain"
	"github.com/cristianortiz/auctionlifecycle/internal/shared/logger"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// Sink delivers events to one external system (websocket rooms, logs, a broker).
type Sink interface {
	Name() string
	Deliver(ctx context.Context, event domain.Event) error
}

// Dispatcher is an asynchronous domain.Emitter. Emit only enqueues, a single worker fans events out
// to every sink in emission order. When the queue is full the event is dropped and logged so the
// engine never waits on delivery.
type Dispatcher struct {
	queue chan domain.Event
	sinks []Sink

	mu      sync.RWMutex
	closed  bool
	done    chan struct{}
	dropped atomic.Int64
}

var _ domain.Emitter = (*Dispatcher)(nil)

func NewDispatcher(buffer int, sinks ...Sink) *Dispatcher {
	if buffer <= 0 {
		buffer = 1
	}
	return &Dispatcher{
		queue: make(chan domain.Event, buffer),
		sinks: sinks,
		done:  make(chan struct{}),
	}
}

func (d *Dispatcher) Emit(_ context.Context, event domain.Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		log.Warn("dispatcher closed, event dropped",
			zap.String("eventType", string(event.Type)),
			zap.String("auctionID", event.AuctionID.String()),
		)
		return
	}

	select {
	case d.queue <- event:
	default:
		dropped := d.dropped.Add(1)
		log.Error("event queue full, event dropped",
			zap.String("eventType", string(event.Type)),
			zap.String("auctionID", event.AuctionID.String()),
			zap.Int64("dropped", dropped),
		)
	}
}

// Run delivers queued events until Close is called and the queue is drained.
func (d *Dispatcher) Run(ctx context.Context) {
	defer close(d.done)
	log.Info("event dispatcher started", zap.Int("sinks", len(d.sinks)))
	for event := range d.queue {
		d.deliver(ctx, event)
	}
	log.Info("event dispatcher stopped")
}

// Close stops accepting events and waits for Run to drain the queue or ctx to end.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dropped reports how many events were lost to a full queue.
func (d *Dispatcher) Dropped() int64 {
	return d.dropped.Load()
}

func (d *Dispatcher) deliver(ctx context.Context, event domain.Event) {
	for _, sink := range d.sinks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Error("sink panicked", zap.String("sink", sink.Name()), zap.Any("panic", r))
				}
			}()
			if err := sink.Deliver(ctx, event); err != nil {
				log.Error("sink delivery failed",
					zap.String("sink", sink.Name()),
					zap.String("eventType", string(event.Type)),
					zap.String("auctionID", event.AuctionID.String()),
					zap.Error(err),
				)
			}
		}()
	}
}
