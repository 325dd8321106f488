// Package document defines the shared document model used by the coordinator.
//
// A document is an opaque JSON object plus one mandatory integer field,
// the revision ("rev"). The revision increases by exactly one on every
// committed write and is the only field the coordination layer ever
// interprets - everything else belongs to the clients.
//
// The zero state of a document (no persisted copy exists yet) is the
// default empty bracket payload with revision 0, see New().
package document
