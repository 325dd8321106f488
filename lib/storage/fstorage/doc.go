// Package fstorage implements file-backed durable storage for the
// coordinator. One document maps to one file; every save rewrites the whole
// file through a synced temp file plus rename, so readers never observe a
// partial document even across a crash mid-save.
package fstorage
