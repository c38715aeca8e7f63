package db

import (
	"context"
)

// TryAcquireRunLock attempts a session advisory lock without blocking.
// Session advisory locks belong to the connection that took them, so the
// lock is pinned to a dedicated pooled connection for its whole lifetime:
// a pool-level query could land on a connection that already holds the
// lock (advisory locks are reentrant within a session) or release it on a
// connection that never held it.
//
// When acquired is true the caller must invoke release exactly once; the
// release returns the connection to the pool.
func (db *DB) TryAcquireRunLock(ctx context.Context, lockID int64) (release func(context.Context) error, acquired bool, err error) {
	conn, err := db.Pool.Acquire(ctx)
	if err != nil {
		return nil, false, err
	}

	if err := conn.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", lockID).Scan(&acquired); err != nil {
		conn.Release()
		return nil, false, err
	}

	if !acquired {
		conn.Release()
		return nil, false, nil
	}

	release = func(ctx context.Context) error {
		defer conn.Release()

		_, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", lockID)
		return err
	}

	return release, true, nil
}
