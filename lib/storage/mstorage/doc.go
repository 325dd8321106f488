// Package mstorage implements in-memory storage for the coordinator.
// It fulfils the storage contract without touching the filesystem and is
// mainly used by tests and by servers running ephemeral documents.
package mstorage
