// Package lockmgr implements the advisory edit lock that serializes write
// access to a shared document among competing clients.
//
// The lock is a single process-wide cell (owner + expiry deadline), not a
// collection. It is cooperative: clients are trusted to check it, nothing is
// enforced at a lower level. It is time-bounded: a lock is valid only while
// the current time is before its deadline, and validity is recomputed from
// the clock on every inspection rather than swept by a background timer.
//
// Core properties:
//   - At most one client holds a valid lock at any time
//   - Acquire and renew are the same idempotent operation for the holder
//   - An expired lock is handed to whoever asks next, no cleanup required
//   - There is no unlock: crashing or going idle releases by expiry
//
// Losing the lock does not corrupt anything by itself - the coordinator's
// revision check catches writers racing across an expiry boundary.
package lockmgr
