// Package testing provides the shared conformance suite for storage
// backends. Backend packages call RunStorageTests from their own tests with
// a factory, so every implementation is held to the same contract.
package testing
