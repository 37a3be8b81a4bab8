// Package memory provides an immutable in-memory chunk index. A knowledge
// generation snapshots the persisted chunks into one of these at install
// time, so queries keep a stable view of the vector index while the
// backing store is rebuilt.
package memory
