// Package serializer converts Message objects to and from byte arrays.
// Three interchangeable formats exist: JSON (human readable, interoperable
// with plain HTTP clients), GOB (Go native) and a custom binary format
// optimized for size and speed. Client and server must agree on the format.
package serializer
