// Package coordinator implements write admission over one shared document
// using the advisory lock from lockmgr plus an optimistic revision check.
//
// The protocol, per write request:
//
//  1. If a valid lock exists and belongs to someone else -> LockHeld,
//     carrying the lock snapshot.
//  2. Load the committed document; its revision is the server revision.
//  3. A missing base revision -> InvalidRequest (client bug, not a race).
//  4. Base revision != server revision -> RevisionConflict, carrying the
//     server revision and the full current document so the caller can
//     rebase and resubmit. No merge is ever attempted.
//  5. Otherwise commit the payload wholesale at revision serverRev+1,
//     persisting durably before returning.
//
// The whole sequence runs under one mutex per document, so two writers can
// never both pass the revision check against the same server revision.
// Accepted writes form a total order; which of two simultaneous writers
// wins is unspecified, but exactly one wins and the other sees a conflict.
//
// Reads share the mutex and are unconditional. Reset skips step 3/4 by
// design: "start over" is available to any admitted caller regardless of
// how stale its view is, and still advances the revision.
//
// The lock alone would suffice with well-behaved clients; the revision
// check is the defense against two clients racing across the lock's expiry
// boundary.
package coordinator
