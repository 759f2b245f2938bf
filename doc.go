// Package hmmap implements a generic, lock-free concurrent hash map built
// on the Harris–Michael ordered-list algorithm.
//
// The map is an array of B independent buckets; each bucket is the head of
// a singly linked, key-sorted list of nodes. All list operations — insert,
// find, delete, and forward iteration — use the classic mark-bit-on-next-
// pointer technique so that a deletion is first published logically (the
// node's own next pointer is marked) and only later unlinked physically by
// whichever thread next walks past it. Buckets never interact, so
// throughput scales with B under a reasonably uniform hash.
//
// Safe memory reclamation is pluggable through the Reclaimer interface
// (see reclaim.go); a hazard-pointer-based default is provided so that a
// zero-value Map works out of the box.
//
// There is no dynamic resizing: B is fixed for the lifetime of a Map.
// Callers that need resizing should layer a second structure (e.g. a
// split-ordered list) on top, or reconstruct a new Map and re-insert.
package hmmap
