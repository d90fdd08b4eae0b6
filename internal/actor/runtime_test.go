package actor

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dinehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memoryStore is an in-memory StateStore with CAS semantics
type memoryStore struct {
	mu     sync.Mutex
	states map[Key]StateEnvelope
	events []shared.DomainEvent
	saves  int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{states: make(map[Key]StateEnvelope)}
}

func (s *memoryStore) Load(_ context.Context, key Key) (StateEnvelope, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	env, ok := s.states[key]
	if !ok {
		return StateEnvelope{}, shared.ErrNotFound
	}
	return env, nil
}

func (s *memoryStore) Save(_ context.Context, key Key, env StateEnvelope, expectedVersion int, events []shared.DomainEvent) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.states[key]
	currentVersion := 0
	if ok {
		currentVersion = current.Version
	}
	if currentVersion != expectedVersion {
		return 0, shared.ErrVersionConflict
	}
	env.Version = expectedVersion + 1
	s.states[key] = env
	s.events = append(s.events, events...)
	s.saves++
	return env.Version, nil
}

// counterState is a minimal actor state for runtime tests
type counterState struct {
	Count int `json:"count"`
}

type addCommand struct {
	Delta    int
	SourceID uuid.UUID
}

func (addCommand) CommandType() string        { return "Add" }
func (c addCommand) SourceEventID() uuid.UUID { return c.SourceID }

type readCommand struct{}

func (readCommand) CommandType() string { return "Read" }

type failCommand struct{}

func (failCommand) CommandType() string { return "Fail" }

type counterBehavior struct{}

func (counterBehavior) ActorType() string { return "counter" }
func (counterBehavior) NewState() any     { return &counterState{} }

func (counterBehavior) Handle(_ context.Context, state any, cmd Command) (*Outcome, error) {
	st := state.(*counterState)
	switch c := cmd.(type) {
	case addCommand:
		st.Count += c.Delta
		return &Outcome{Response: st.Count, State: st}, nil
	case readCommand:
		return &Outcome{Response: st.Count}, nil
	case failCommand:
		st.Count = -9999 // must never be persisted
		return nil, shared.ErrInvalidStateTransition
	}
	return nil, shared.ErrValidation
}

func newTestRuntime(t *testing.T, store StateStore, cfg Config) *Runtime {
	t.Helper()
	rt := NewRuntime(store, cfg, zap.NewNop())
	rt.Register(counterBehavior{})
	return rt
}

func testKey() Key {
	return NewKey(uuid.New(), "counter", uuid.New())
}

func TestDispatch_CreatesAndPersistsState(t *testing.T) {
	store := newMemoryStore()
	rt := newTestRuntime(t, store, Config{})
	key := testKey()

	resp, version, err := rt.Dispatch(context.Background(), key, addCommand{Delta: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, resp)
	assert.Equal(t, 1, version)

	var snap counterState
	version, err = rt.Snapshot(context.Background(), key, &snap)
	require.NoError(t, err)
	assert.Equal(t, 1, version)
	assert.Equal(t, 3, snap.Count)
}

func TestDispatch_SerializesConcurrentCommands(t *testing.T) {
	store := newMemoryStore()
	rt := newTestRuntime(t, store, Config{MailboxSize: 256})
	key := testKey()

	const n = 100
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := rt.Dispatch(context.Background(), key, addCommand{Delta: 1})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	var snap counterState
	version, err := rt.Snapshot(context.Background(), key, &snap)
	require.NoError(t, err)
	assert.Equal(t, n, snap.Count, "no lost updates")
	assert.Equal(t, n, version, "one version per command")
}

func TestDispatch_ParallelAcrossKeys(t *testing.T) {
	store := newMemoryStore()
	rt := newTestRuntime(t, store, Config{})

	var wg sync.WaitGroup
	keys := make([]Key, 8)
	for i := range keys {
		keys[i] = testKey()
		wg.Add(1)
		go func(k Key) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				_, _, err := rt.Dispatch(context.Background(), k, addCommand{Delta: 1})
				assert.NoError(t, err)
			}
		}(keys[i])
	}
	wg.Wait()

	for _, k := range keys {
		var snap counterState
		_, err := rt.Snapshot(context.Background(), k, &snap)
		require.NoError(t, err)
		assert.Equal(t, 10, snap.Count)
	}
}

func TestDispatch_FailedHandlerLeavesStateUnchanged(t *testing.T) {
	store := newMemoryStore()
	rt := newTestRuntime(t, store, Config{})
	key := testKey()

	_, _, err := rt.Dispatch(context.Background(), key, addCommand{Delta: 5})
	require.NoError(t, err)

	_, version, err := rt.Dispatch(context.Background(), key, failCommand{})
	assert.ErrorIs(t, err, shared.ErrInvalidStateTransition)
	assert.Equal(t, 1, version)

	var snap counterState
	_, err = rt.Snapshot(context.Background(), key, &snap)
	require.NoError(t, err)
	assert.Equal(t, 5, snap.Count, "failed command must not partially apply")
}

func TestDispatch_ReadOnlyCommandDoesNotPersist(t *testing.T) {
	store := newMemoryStore()
	rt := newTestRuntime(t, store, Config{})
	key := testKey()

	_, _, err := rt.Dispatch(context.Background(), key, addCommand{Delta: 2})
	require.NoError(t, err)
	savesBefore := store.saves

	resp, version, err := rt.Dispatch(context.Background(), key, readCommand{})
	require.NoError(t, err)
	assert.Equal(t, 2, resp)
	assert.Equal(t, 1, version)
	assert.Equal(t, savesBefore, store.saves)
}

func TestDispatch_BusyOnFullMailbox(t *testing.T) {
	store := newMemoryStore()
	rt := NewRuntime(store, Config{MailboxSize: 1}, zap.NewNop())

	block := make(chan struct{})
	rt.Register(blockingBehavior{block: block})
	key := NewKey(uuid.New(), "blocking", uuid.New())

	// First command occupies the worker, second fills the mailbox.
	go func() { _, _, _ = rt.Dispatch(context.Background(), key, blockCommand{}) }()
	require.Eventually(t, func() bool { return rt.ActiveActors() == 1 }, time.Second, time.Millisecond)
	go func() { _, _, _ = rt.Dispatch(context.Background(), key, blockCommand{}) }()

	var busyErr error
	require.Eventually(t, func() bool {
		_, _, err := rt.Dispatch(context.Background(), key, blockCommand{})
		busyErr = err
		return err != nil
	}, time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, busyErr, shared.ErrBusy)
	close(block)
}

type blockCommand struct{}

func (blockCommand) CommandType() string { return "Block" }

type blockingBehavior struct {
	block chan struct{}
}

func (blockingBehavior) ActorType() string { return "blocking" }
func (blockingBehavior) NewState() any     { return &counterState{} }
func (b blockingBehavior) Handle(context.Context, any, Command) (*Outcome, error) {
	<-b.block
	return &Outcome{}, nil
}

func TestDispatch_IdleEvictionReloadsCommittedState(t *testing.T) {
	store := newMemoryStore()
	rt := newTestRuntime(t, store, Config{IdleTimeout: 20 * time.Millisecond})
	key := testKey()

	_, _, err := rt.Dispatch(context.Background(), key, addCommand{Delta: 7})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return rt.ActiveActors() == 0 },
		time.Second, 5*time.Millisecond, "idle actor should be evicted")

	resp, version, err := rt.Dispatch(context.Background(), key, addCommand{Delta: 1})
	require.NoError(t, err)
	assert.Equal(t, 8, resp, "reactivation must see committed state")
	assert.Equal(t, 2, version)
}

func TestDispatch_DuplicateEventSourcedCommandIsNoop(t *testing.T) {
	store := newMemoryStore()
	rt := newTestRuntime(t, store, Config{})
	key := testKey()
	sourceEvent := uuid.New()

	_, v1, err := rt.Dispatch(context.Background(), key, addCommand{Delta: 4, SourceID: sourceEvent})
	require.NoError(t, err)

	// Redelivery of the same source event changes state at most once.
	_, v2, err := rt.Dispatch(context.Background(), key, addCommand{Delta: 4, SourceID: sourceEvent})
	require.NoError(t, err)
	assert.Equal(t, v1, v2)

	var snap counterState
	_, err = rt.Snapshot(context.Background(), key, &snap)
	require.NoError(t, err)
	assert.Equal(t, 4, snap.Count)
}

func TestDispatch_EvictionPreservesLastAppliedEventID(t *testing.T) {
	store := newMemoryStore()
	rt := newTestRuntime(t, store, Config{IdleTimeout: 20 * time.Millisecond})
	key := testKey()
	sourceEvent := uuid.New()

	_, _, err := rt.Dispatch(context.Background(), key, addCommand{Delta: 4, SourceID: sourceEvent})
	require.NoError(t, err)
	require.Eventually(t, func() bool { return rt.ActiveActors() == 0 },
		time.Second, 5*time.Millisecond)

	_, _, err = rt.Dispatch(context.Background(), key, addCommand{Delta: 4, SourceID: sourceEvent})
	require.NoError(t, err)

	var snap counterState
	_, err = rt.Snapshot(context.Background(), key, &snap)
	require.NoError(t, err)
	assert.Equal(t, 4, snap.Count, "dedup must survive eviction")
}

// conflictingStore simulates an external writer racing every persist
type conflictingStore struct {
	*memoryStore
	conflict bool
}

func (s *conflictingStore) Save(ctx context.Context, key Key, env StateEnvelope, expectedVersion int, events []shared.DomainEvent) (int, error) {
	if s.conflict {
		return 0, shared.ErrVersionConflict
	}
	return s.memoryStore.Save(ctx, key, env, expectedVersion, events)
}

func TestDispatch_ExternalWriterQuarantinesActor(t *testing.T) {
	store := &conflictingStore{memoryStore: newMemoryStore()}
	rt := NewRuntime(store, Config{PersistRetries: 1}, zap.NewNop())
	rt.Register(counterBehavior{})
	key := testKey()

	_, _, err := rt.Dispatch(context.Background(), key, addCommand{Delta: 1})
	require.NoError(t, err)

	store.conflict = true
	_, _, err = rt.Dispatch(context.Background(), key, addCommand{Delta: 1})
	assert.ErrorIs(t, err, shared.ErrConsistencyFailure)

	_, quarantined := rt.Quarantined(key)
	assert.True(t, quarantined)

	// Once quarantined, writes are refused even after the store recovers.
	store.conflict = false
	_, _, err = rt.Dispatch(context.Background(), key, addCommand{Delta: 1})
	assert.ErrorIs(t, err, shared.ErrConsistencyFailure)
}

// limitedConflictStore rejects the first n saves with a version conflict,
// then behaves like the plain memory store
type limitedConflictStore struct {
	*memoryStore
	remaining atomic.Int32
}

func (s *limitedConflictStore) Save(ctx context.Context, key Key, env StateEnvelope, expectedVersion int, events []shared.DomainEvent) (int, error) {
	if s.remaining.Add(-1) >= 0 {
		return 0, shared.ErrVersionConflict
	}
	return s.memoryStore.Save(ctx, key, env, expectedVersion, events)
}

// gatedCounterBehavior holds its first invocation open so further commands
// can pile up in the mailbox behind it
type gatedCounterBehavior struct {
	gate  chan struct{}
	calls *atomic.Int32
}

func (gatedCounterBehavior) ActorType() string { return "gated" }
func (gatedCounterBehavior) NewState() any     { return &counterState{} }
func (b gatedCounterBehavior) Handle(_ context.Context, state any, _ Command) (*Outcome, error) {
	if b.calls.Add(1) == 1 {
		<-b.gate
	}
	st := state.(*counterState)
	st.Count++
	return &Outcome{Response: st.Count, State: st}, nil
}

func TestDispatch_QuarantineRejectsAlreadyQueuedCommands(t *testing.T) {
	store := &limitedConflictStore{memoryStore: newMemoryStore()}
	store.remaining.Store(2) // initial attempt plus the single reload retry
	rt := NewRuntime(store, Config{PersistRetries: 1, MailboxSize: 4}, zap.NewNop())

	gate := make(chan struct{})
	var calls atomic.Int32
	rt.Register(gatedCounterBehavior{gate: gate, calls: &calls})
	key := NewKey(uuid.New(), "gated", uuid.New())

	firstErr := make(chan error, 1)
	go func() {
		_, _, err := rt.Dispatch(context.Background(), key, addCommand{Delta: 1})
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)

	// Queue a second command behind the gated one, then let the first run
	// into its conflicts and quarantine the key.
	queued := &envelope{ctx: context.Background(), cmd: addCommand{Delta: 1}, reply: make(chan dispatchResult, 1)}
	require.NoError(t, rt.enqueue(key, queued))
	close(gate)

	require.ErrorIs(t, <-firstErr, shared.ErrConsistencyFailure)
	_, quarantined := rt.Quarantined(key)
	require.True(t, quarantined)

	res := <-queued.reply
	assert.ErrorIs(t, res.err, shared.ErrConsistencyFailure, "a command queued before the quarantine must not execute")
	assert.Equal(t, int32(2), calls.Load(), "the handler never sees the queued command")
	assert.Equal(t, 0, store.saves, "no write commits after the quarantine")
}

func TestDispatch_UnknownActorType(t *testing.T) {
	store := newMemoryStore()
	rt := NewRuntime(store, Config{}, zap.NewNop())

	_, _, err := rt.Dispatch(context.Background(), NewKey(uuid.New(), "nope", uuid.New()), readCommand{})
	require.Error(t, err)
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "VALIDATION_ERROR", de.Code)
}

func TestDispatch_CancelledBeforeExecution(t *testing.T) {
	store := newMemoryStore()
	rt := NewRuntime(store, Config{MailboxSize: 4}, zap.NewNop())
	block := make(chan struct{})
	rt.Register(blockingBehavior{block: block})
	key := NewKey(uuid.New(), "blocking", uuid.New())

	go func() { _, _, _ = rt.Dispatch(context.Background(), key, blockCommand{}) }()
	require.Eventually(t, func() bool { return rt.ActiveActors() == 1 }, time.Second, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, _, err := rt.Dispatch(ctx, key, blockCommand{})
		done <- err
	}()
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	close(block)
}

func TestSnapshot_UnknownKeyReturnsNotFound(t *testing.T) {
	store := newMemoryStore()
	rt := newTestRuntime(t, store, Config{})

	var snap counterState
	_, err := rt.Snapshot(context.Background(), testKey(), &snap)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestStateEnvelope_PayloadRoundTrip(t *testing.T) {
	store := newMemoryStore()
	rt := newTestRuntime(t, store, Config{})
	key := testKey()

	_, _, err := rt.Dispatch(context.Background(), key, addCommand{Delta: 42})
	require.NoError(t, err)

	env, err := store.Load(context.Background(), key)
	require.NoError(t, err)
	var st counterState
	require.NoError(t, json.Unmarshal(env.Payload, &st))
	assert.Equal(t, 42, st.Count)
}
