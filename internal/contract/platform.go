package contract

import "context"

// ThreadInfo describes a forum thread as seen by the chat platform.
type ThreadInfo struct {
	ThreadID        string
	ParentChannelID string
	OwnerID         string
	TagIDs          []string
}

// Platform is the slice of the chat platform the lifecycle engine consults.
// The command layer implements it over the real Discord session; tests use
// a fake.
type Platform interface {
	// ResolveThread returns thread details for a channel ID, or nil if the
	// channel is not a thread.
	ResolveThread(ctx context.Context, channelID string) (*ThreadInfo, error)
}

// Reconciler applies a points change to platform role membership. Implemented
// by the rolesync package.
type Reconciler interface {
	// Reconcile returns the role IDs gained by the change. Per-role
	// failures are collected inside the implementation and do not abort
	// sibling roles; only store-level failures surface as err.
	Reconcile(ctx context.Context, userID string, oldPoints, newPoints int) (gained []string, err error)
}
