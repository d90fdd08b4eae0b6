package actor

import "context"

// Dispatcher is the command-side surface of the runtime. Application services
// and reactors depend on this interface rather than the concrete Runtime so
// tests can capture dispatches.
type Dispatcher interface {
	// Dispatch sends one command to the actor addressed by key and returns
	// the response and the post-command state version
	Dispatch(ctx context.Context, key Key, cmd Command) (any, int, error)
}

// SnapshotReader is the read-side surface of the runtime: latest committed
// state without going through the command queue.
type SnapshotReader interface {
	// Snapshot decodes the latest persisted state for key into out
	Snapshot(ctx context.Context, key Key, out any) (int, error)
}
