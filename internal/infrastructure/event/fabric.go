package event

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dinehub/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// FabricConfig tunes subscriber delivery
type FabricConfig struct {
	// QueueSize bounds each subscription's delivery queue
	QueueSize int
	// HandlerRetries bounds redelivery attempts to a failing handler before
	// the event is dropped for that subscriber. The drop is logged with the
	// event ID so an operator can replay it from the outbox; the idempotency
	// wrapper only marks events on success, so redelivery reaches the handler.
	HandlerRetries int
	// HandlerRetryBackoff is the base backoff between handler retries
	HandlerRetryBackoff time.Duration
}

// DefaultFabricConfig returns fabric defaults
func DefaultFabricConfig() FabricConfig {
	return FabricConfig{
		QueueSize:           256,
		HandlerRetries:      3,
		HandlerRetryBackoff: 100 * time.Millisecond,
	}
}

// Fabric is the in-process namespaced event fabric. Delivery is at-least-once
// and asynchronous: Publish enqueues onto each matching subscription's serial
// queue and returns. Events from one publisher keep their publish order per
// subscriber; one slow subscriber never blocks delivery to the others.
type Fabric struct {
	registry *subscriptionRegistry
	logger   *zap.Logger
	cfg      FabricConfig

	running  atomic.Bool
	stopCh   chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewFabric creates a new in-process event fabric
func NewFabric(cfg FabricConfig, logger *zap.Logger) *Fabric {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultFabricConfig().QueueSize
	}
	if cfg.HandlerRetries <= 0 {
		cfg.HandlerRetries = DefaultFabricConfig().HandlerRetries
	}
	if cfg.HandlerRetryBackoff <= 0 {
		cfg.HandlerRetryBackoff = DefaultFabricConfig().HandlerRetryBackoff
	}
	return &Fabric{
		registry: newSubscriptionRegistry(),
		logger:   logger,
		cfg:      cfg,
		stopCh:   make(chan struct{}),
	}
}

// Subscribe registers a handler on a namespace. The handler's EventTypes
// narrow which events it receives; empty means every event on the namespace.
// Subscribe must be called before Start.
func (f *Fabric) Subscribe(ns shared.Namespace, handler shared.EventHandler) {
	if !ns.IsValid() {
		f.logger.Error("subscribe to unknown namespace ignored", zap.String("namespace", ns.String()))
		return
	}
	types := make(map[string]struct{})
	for _, t := range handler.EventTypes() {
		types[t] = struct{}{}
	}
	sub := &subscription{
		ns:      ns,
		handler: handler,
		types:   types,
		queue:   make(chan shared.DomainEvent, f.cfg.QueueSize),
	}
	f.registry.add(sub)
	f.logger.Debug("handler subscribed",
		zap.String("namespace", ns.String()),
		zap.Strings("event_types", handler.EventTypes()),
	)
}

// Publish enqueues events for delivery on their namespaces. It blocks only
// when a subscription queue is full (backpressure to the outbox processor),
// never on handler execution.
func (f *Fabric) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, evt := range events {
		ns := evt.EventNamespace()
		if !ns.IsValid() {
			f.logger.Error("event with unknown namespace dropped",
				zap.String("namespace", ns.String()),
				zap.String("event_type", evt.EventType()),
			)
			continue
		}
		for _, sub := range f.registry.forNamespace(ns) {
			if !sub.wants(evt.EventType()) {
				continue
			}
			select {
			case sub.queue <- evt:
			case <-ctx.Done():
				return ctx.Err()
			case <-f.stopCh:
				return shared.ErrUnavailable
			}
		}
	}
	return nil
}

// Start launches one delivery goroutine per subscription
func (f *Fabric) Start(ctx context.Context) error {
	if !f.running.CompareAndSwap(false, true) {
		return nil
	}
	for _, sub := range f.registry.all() {
		f.wg.Add(1)
		go f.deliverLoop(sub)
	}
	f.logger.Info("event fabric started")
	return nil
}

// Stop drains buffered events and stops delivery
func (f *Fabric) Stop(ctx context.Context) error {
	f.stopOnce.Do(func() { close(f.stopCh) })
	done := make(chan struct{})
	go func() {
		f.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		f.running.Store(false)
		f.logger.Info("event fabric stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// deliverLoop is the serial delivery goroutine for one subscription
func (f *Fabric) deliverLoop(sub *subscription) {
	defer f.wg.Done()
	for {
		select {
		case evt := <-sub.queue:
			f.deliver(sub, evt)
		case <-f.stopCh:
			// Drain whatever was already enqueued, then exit.
			for {
				select {
				case evt := <-sub.queue:
					f.deliver(sub, evt)
				default:
					return
				}
			}
		}
	}
}

// deliver hands one event to the handler with bounded retries
func (f *Fabric) deliver(sub *subscription, evt shared.DomainEvent) {
	ctx := context.Background()
	var err error
	for attempt := 0; attempt < f.cfg.HandlerRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(f.cfg.HandlerRetryBackoff << uint(attempt-1))
		}
		if err = f.safeHandle(ctx, sub, evt); err == nil {
			return
		}
	}
	f.logger.Error("handler exhausted delivery retries, event dropped for subscriber",
		zap.String("namespace", sub.ns.String()),
		zap.String("event_type", evt.EventType()),
		zap.String("event_id", evt.EventID().String()),
		zap.Error(err),
	)
}

// safeHandle invokes the handler with panic recovery
func (f *Fabric) safeHandle(ctx context.Context, sub *subscription, evt shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			f.logger.Error("handler panicked",
				zap.String("namespace", sub.ns.String()),
				zap.String("event_type", evt.EventType()),
				zap.Any("panic", r),
			)
			err = shared.NewDomainError("HANDLER_PANIC", "event handler panicked")
		}
	}()
	return sub.handler.Handle(ctx, evt)
}

// Ensure Fabric implements the fabric contract
var _ shared.EventFabric = (*Fabric)(nil)
