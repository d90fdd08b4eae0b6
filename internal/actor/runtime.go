package actor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dinehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Config holds runtime tuning knobs
type Config struct {
	// MailboxSize bounds the per-key command queue. A full mailbox surfaces
	// shared.ErrBusy to the dispatcher instead of dropping the command.
	MailboxSize int
	// IdleTimeout is how long an actor may sit without commands before its
	// goroutine is evicted. Eviction follows a successful persist, so it
	// never loses committed state; the next dispatch reactivates the key.
	IdleTimeout time.Duration
	// PersistRetries bounds version-conflict retries at persist time before
	// the key is quarantined.
	PersistRetries int
	// StoreRetries bounds infrastructure retry attempts against the store
	StoreRetries int
	// StoreRetryBackoff is the base backoff between store retries (doubled
	// per attempt)
	StoreRetryBackoff time.Duration
}

// DefaultConfig returns runtime defaults suitable for production
func DefaultConfig() Config {
	return Config{
		MailboxSize:       64,
		IdleTimeout:       5 * time.Minute,
		PersistRetries:    2,
		StoreRetries:      3,
		StoreRetryBackoff: 50 * time.Millisecond,
	}
}

// Metrics receives runtime observations. Implementations must be safe for
// concurrent use; the telemetry package provides an OpenTelemetry-backed one.
type Metrics interface {
	ActorActivated(actorType string)
	ActorEvicted(actorType string)
	CommandProcessed(actorType, commandType string, elapsed time.Duration, err error)
	MailboxRejected(actorType string)
}

type nopMetrics struct{}

func (nopMetrics) ActorActivated(string)                                 {}
func (nopMetrics) ActorEvicted(string)                                   {}
func (nopMetrics) CommandProcessed(string, string, time.Duration, error) {}
func (nopMetrics) MailboxRejected(string)                                {}

// dispatchResult carries the reply for one command
type dispatchResult struct {
	response   any
	newVersion int
	err        error
}

// envelope wraps a queued command with its reply channel
type envelope struct {
	ctx   context.Context
	cmd   Command
	reply chan dispatchResult
}

// mailbox is the per-key serial command queue. A single goroutine drains it,
// which is the mutual-exclusion guarantee: commands for one key never run
// concurrently, commands for different keys always may.
type mailbox struct {
	key    Key
	ch     chan *envelope
	closed bool // guarded by Runtime.mu
}

// Runtime activates per-key actors on demand and dispatches commands to them
// with serialized, all-or-nothing semantics.
type Runtime struct {
	store     StateStore
	behaviors map[string]Behavior
	logger    *zap.Logger
	metrics   Metrics
	cfg       Config

	mu          sync.Mutex
	actors      map[Key]*mailbox
	quarantined map[Key]error

	wg       sync.WaitGroup
	shutdown chan struct{}
	stopOnce sync.Once
}

// Option configures the Runtime
type Option func(*Runtime)

// WithMetrics attaches a metrics sink
func WithMetrics(m Metrics) Option {
	return func(r *Runtime) { r.metrics = m }
}

// NewRuntime creates an actor runtime over the given state store
func NewRuntime(store StateStore, cfg Config, logger *zap.Logger, opts ...Option) *Runtime {
	if cfg.MailboxSize <= 0 {
		cfg.MailboxSize = DefaultConfig().MailboxSize
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultConfig().IdleTimeout
	}
	if cfg.PersistRetries <= 0 {
		cfg.PersistRetries = DefaultConfig().PersistRetries
	}
	if cfg.StoreRetries <= 0 {
		cfg.StoreRetries = DefaultConfig().StoreRetries
	}
	if cfg.StoreRetryBackoff <= 0 {
		cfg.StoreRetryBackoff = DefaultConfig().StoreRetryBackoff
	}
	r := &Runtime{
		store:       store,
		behaviors:   make(map[string]Behavior),
		logger:      logger,
		metrics:     nopMetrics{},
		cfg:         cfg,
		actors:      make(map[Key]*mailbox),
		quarantined: make(map[Key]error),
		shutdown:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register registers the behavior for one actor type. Registration must
// happen before any dispatch for that type.
func (r *Runtime) Register(b Behavior) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.behaviors[b.ActorType()] = b
	r.logger.Info("actor behavior registered", zap.String("actor_type", b.ActorType()))
}

// Dispatch sends one command to the actor addressed by key and waits for the
// result. Commands for the same key are applied in receipt order; commands
// for different keys run in parallel. A full mailbox returns shared.ErrBusy.
func (r *Runtime) Dispatch(ctx context.Context, key Key, cmd Command) (any, int, error) {
	if err := key.Validate(); err != nil {
		return nil, 0, shared.NewDomainError("VALIDATION_ERROR", err.Error())
	}
	select {
	case <-r.shutdown:
		return nil, 0, shared.ErrUnavailable
	default:
	}

	env := &envelope{ctx: ctx, cmd: cmd, reply: make(chan dispatchResult, 1)}
	if err := r.enqueue(key, env); err != nil {
		return nil, 0, err
	}

	select {
	case res := <-env.reply:
		return res.response, res.newVersion, res.err
	case <-ctx.Done():
		// The worker checks the command context before it starts executing,
		// so a cancelled-while-queued command is never applied. Once
		// execution starts it runs to completion regardless.
		return nil, 0, ctx.Err()
	}
}

// Snapshot reads the latest persisted state for key into out, bypassing the
// command queue entirely. During contention the result may trail an in-flight
// command by one write; it is never a partially applied state.
func (r *Runtime) Snapshot(ctx context.Context, key Key, out any) (int, error) {
	if err := key.Validate(); err != nil {
		return 0, shared.NewDomainError("VALIDATION_ERROR", err.Error())
	}
	env, err := r.store.Load(ctx, key)
	if err != nil {
		return 0, err
	}
	if out != nil {
		if err := json.Unmarshal(env.Payload, out); err != nil {
			return 0, fmt.Errorf("decode snapshot for %s: %w", key, err)
		}
	}
	return env.Version, nil
}

// ActiveActors returns the number of currently activated actor goroutines
func (r *Runtime) ActiveActors() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.actors)
}

// Quarantined reports whether the key has been quarantined and why
func (r *Runtime) Quarantined(key Key) (error, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	err, ok := r.quarantined[key]
	return err, ok
}

// Stop stops accepting dispatches and waits for in-flight commands to finish
// or the context to expire.
func (r *Runtime) Stop(ctx context.Context) error {
	r.stopOnce.Do(func() { close(r.shutdown) })
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// enqueue places the envelope on the key's mailbox, activating the actor if
// needed. Runs under the runtime lock so activation and eviction never race.
func (r *Runtime) enqueue(key Key, env *envelope) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if qerr, ok := r.quarantined[key]; ok {
		r.logger.Warn("dispatch to quarantined actor rejected",
			zap.String("key", key.String()), zap.Error(qerr))
		return shared.ErrConsistencyFailure
	}

	mb, ok := r.actors[key]
	if !ok || mb.closed {
		beh, found := r.behaviors[key.Type]
		if !found {
			return shared.NewDomainError("VALIDATION_ERROR",
				fmt.Sprintf("no behavior registered for actor type %q", key.Type))
		}
		mb = &mailbox{key: key, ch: make(chan *envelope, r.cfg.MailboxSize)}
		r.actors[key] = mb
		r.wg.Add(1)
		go r.run(mb, beh)
		r.metrics.ActorActivated(key.Type)
	}

	select {
	case mb.ch <- env:
		return nil
	default:
		r.metrics.MailboxRejected(key.Type)
		return shared.ErrBusy
	}
}

// activation is the in-memory working copy of one actor's envelope
type activation struct {
	loaded             bool
	payload            json.RawMessage
	version            int
	lastAppliedEventID uuid.UUID
}

// run is the single logical thread of control for one key
func (r *Runtime) run(mb *mailbox, beh Behavior) {
	defer r.wg.Done()

	act := &activation{}
	idle := time.NewTimer(r.cfg.IdleTimeout)
	defer idle.Stop()

	for {
		select {
		case env := <-mb.ch:
			if !idle.Stop() {
				select {
				case <-idle.C:
				default:
				}
			}
			r.process(mb.key, beh, act, env)
			idle.Reset(r.cfg.IdleTimeout)

		case <-idle.C:
			if r.tryEvict(mb) {
				return
			}
			idle.Reset(r.cfg.IdleTimeout)
		}
	}
}

// tryEvict removes the actor from the active map when its mailbox is empty.
// Both enqueue and eviction run under the runtime lock, so a command is
// either observed here (eviction aborts) or finds the map entry gone and
// reactivates the key.
func (r *Runtime) tryEvict(mb *mailbox) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(mb.ch) > 0 {
		return false
	}
	mb.closed = true
	delete(r.actors, mb.key)
	r.metrics.ActorEvicted(mb.key.Type)
	r.logger.Debug("idle actor evicted", zap.String("key", mb.key.String()))
	return true
}

// process applies one command with all-or-nothing persistence
func (r *Runtime) process(key Key, beh Behavior, act *activation, env *envelope) {
	started := time.Now()

	// Queued commands honor cancellation up to this point, never after.
	if err := env.ctx.Err(); err != nil {
		env.reply <- dispatchResult{err: err}
		return
	}

	// enqueue only screens commands that arrive after a quarantine; anything
	// already sitting in the mailbox when it fired is rejected here, so a
	// quarantined key never commits another write.
	if qerr, ok := r.Quarantined(key); ok {
		r.logger.Warn("queued command rejected, actor quarantined",
			zap.String("key", key.String()), zap.Error(qerr))
		env.reply <- dispatchResult{err: shared.ErrConsistencyFailure}
		return
	}

	res := r.applyCommand(env.ctx, key, beh, act, env.cmd)
	r.metrics.CommandProcessed(key.Type, env.cmd.CommandType(), time.Since(started), res.err)
	env.reply <- res
}

func (r *Runtime) applyCommand(ctx context.Context, key Key, beh Behavior, act *activation, cmd Command) dispatchResult {
	if !act.loaded {
		if err := r.load(ctx, key, act); err != nil {
			return dispatchResult{err: err}
		}
	}

	// Idempotent event re-application: a command derived from the event the
	// actor applied last is acknowledged without re-running the handler.
	if es, ok := cmd.(EventSourced); ok {
		if id := es.SourceEventID(); id != uuid.Nil && id == act.lastAppliedEventID {
			r.logger.Debug("duplicate event-sourced command skipped",
				zap.String("key", key.String()),
				zap.String("command", cmd.CommandType()),
				zap.String("source_event_id", id.String()))
			return dispatchResult{newVersion: act.version}
		}
	}

	for attempt := 0; ; attempt++ {
		state := beh.NewState()
		if act.payload != nil {
			if err := json.Unmarshal(act.payload, state); err != nil {
				qerr := fmt.Errorf("corrupt state payload for %s: %w", key, err)
				r.quarantine(key, qerr)
				return dispatchResult{err: shared.ErrConsistencyFailure}
			}
		}

		outcome, err := beh.Handle(ctx, state, cmd)
		if err != nil {
			// Domain failure: state unchanged, typed result to the caller.
			return dispatchResult{newVersion: act.version, err: err}
		}
		if outcome == nil || outcome.State == nil {
			// Read-only command, nothing to persist.
			return dispatchResult{response: responseOf(outcome), newVersion: act.version}
		}

		newPayload, err := json.Marshal(outcome.State)
		if err != nil {
			return dispatchResult{err: fmt.Errorf("encode state for %s: %w", key, err)}
		}
		newEnv := StateEnvelope{
			Payload:            newPayload,
			Version:            act.version,
			LastAppliedEventID: act.lastAppliedEventID,
		}
		if es, ok := cmd.(EventSourced); ok && es.SourceEventID() != uuid.Nil {
			newEnv.LastAppliedEventID = es.SourceEventID()
		}

		newVersion, err := r.save(ctx, key, newEnv, act.version, outcome.Events)
		if err == nil {
			act.payload = newPayload
			act.version = newVersion
			act.lastAppliedEventID = newEnv.LastAppliedEventID
			return dispatchResult{response: outcome.Response, newVersion: newVersion}
		}

		if errors.Is(err, shared.ErrVersionConflict) {
			// The runtime is the single writer per key, so a conflict means
			// some external writer touched the row. Reload and replay a
			// bounded number of times, then quarantine the key.
			if attempt < r.cfg.PersistRetries {
				r.logger.Warn("version conflict at persist, reloading",
					zap.String("key", key.String()), zap.Int("attempt", attempt+1))
				if lerr := r.load(ctx, key, act); lerr != nil {
					return dispatchResult{err: lerr}
				}
				continue
			}
			qerr := fmt.Errorf("persisted version diverged for %s after %d attempts", key, attempt+1)
			r.quarantine(key, qerr)
			return dispatchResult{err: shared.ErrConsistencyFailure}
		}

		return dispatchResult{err: err}
	}
}

// load reads the envelope into the activation, treating a missing key as a
// fresh entity at version zero.
func (r *Runtime) load(ctx context.Context, key Key, act *activation) error {
	env, err := r.loadWithRetry(ctx, key)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			act.loaded = true
			act.payload = nil
			act.version = 0
			act.lastAppliedEventID = uuid.Nil
			return nil
		}
		return err
	}
	act.loaded = true
	act.payload = env.Payload
	act.version = env.Version
	act.lastAppliedEventID = env.LastAppliedEventID
	return nil
}

func (r *Runtime) loadWithRetry(ctx context.Context, key Key) (StateEnvelope, error) {
	var lastErr error
	for attempt := 0; attempt < r.cfg.StoreRetries; attempt++ {
		env, err := r.store.Load(ctx, key)
		if err == nil || errors.Is(err, shared.ErrNotFound) {
			return env, err
		}
		lastErr = err
		if !r.backoff(ctx, attempt) {
			break
		}
	}
	r.logger.Error("entity store unavailable on load",
		zap.String("key", key.String()), zap.Error(lastErr))
	return StateEnvelope{}, shared.ErrUnavailable
}

func (r *Runtime) save(ctx context.Context, key Key, env StateEnvelope, expectedVersion int, events []shared.DomainEvent) (int, error) {
	var lastErr error
	for attempt := 0; attempt < r.cfg.StoreRetries; attempt++ {
		newVersion, err := r.store.Save(ctx, key, env, expectedVersion, events)
		if err == nil || errors.Is(err, shared.ErrVersionConflict) {
			return newVersion, err
		}
		lastErr = err
		if !r.backoff(ctx, attempt) {
			break
		}
	}
	r.logger.Error("entity store unavailable on save",
		zap.String("key", key.String()), zap.Error(lastErr))
	return 0, shared.ErrUnavailable
}

// backoff sleeps for an exponentially growing interval; returns false when
// the context expired first.
func (r *Runtime) backoff(ctx context.Context, attempt int) bool {
	delay := r.cfg.StoreRetryBackoff << uint(attempt)
	select {
	case <-time.After(delay):
		return true
	case <-ctx.Done():
		return false
	}
}

func (r *Runtime) quarantine(key Key, reason error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.quarantined[key] = reason
	r.logger.Error("actor quarantined pending operator intervention",
		zap.String("key", key.String()), zap.Error(reason))
}

func responseOf(o *Outcome) any {
	if o == nil {
		return nil
	}
	return o.Response
}
