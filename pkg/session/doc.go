// Package session holds ladder rungs while they are being edited.
//
// A [Session] owns one rung and drives the editing engines on it: it shows
// placeholders, inserts an [Element] at the selected one, removes elements
// and runs drag gestures. Callers serialize access to a Session; the HTTP
// server does this with one mutex per session.
//
// Sessions outlive a single request or CLI invocation through a [Store]:
//
//   - [MemoryStore] for tests and single-process servers
//   - [FileStore] for the CLI, one JSON file per session
//   - [RedisStore] for servers sharing sessions, one key per session that
//     expires with it
//
// Stores keep the committed rung and any pending placeholders. A drag in
// progress lives only in memory and is not stored.
package session
