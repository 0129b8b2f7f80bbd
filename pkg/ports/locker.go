package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock taken by DistributedLocker.Lock.
// Releasing a lock that already expired is not an error.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serialises layout saves across server replicas that share
// one storage backend. Keys are layout filenames, so two saves of the same
// name never interleave while saves of different names run in parallel.
type DistributedLocker interface {
	// Lock waits until key is free or ctx is done.
	// The lock expires on its own after ttl, which bounds how long a crashed
	// replica can block a filename; ttl should exceed the slowest expected save.
	// The returned UnlockFunc only releases the lock if this caller still holds it.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
