// Package storage defines the durable persistence boundary of the
// coordinator: load one blob, save one blob, nothing else.
//
// The coordinator serializes the document to JSON itself; backends only see
// opaque bytes. Two implementations exist:
//
//   - File storage (fstorage): whole-file overwrite through a temp file and
//     rename, synced before the rename. This is the production backend.
//     Available in the "github.com/ValentinKolb/bracketd/lib/storage/fstorage" package.
//
//   - Memory storage (mstorage): a byte slice behind a mutex, used for tests
//     and ephemeral serving.
//     Available in the "github.com/ValentinKolb/bracketd/lib/storage/mstorage" package.
//
// The conformance suite shared by all backends lives in
// "github.com/ValentinKolb/bracketd/lib/storage/testing".
package storage
