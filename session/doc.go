// Package session provides the durable credential slots that back a client
// session: the serialized user record, the auth token and the socket token.
//
// # Storage contract
//
// A [Store] exposes three independently fallible operations (Get, Set, Delete)
// over string slots. [RedisStore] persists slots in Redis; [MemoryStore] keeps
// them in process memory for tests and single-run tools.
//
// [CredentialSet] groups the three slots named by [Keys] and reads, writes and
// deletes them together.
//
// # Architecture boundaries
//
// This package owns persistence only. It does NOT decode the user record,
// normalize roles or decide whether a session is valid; those decisions belong
// to the Manager in the root package.
//
// # What this package must NOT do
//
//   - Import scoreauth, api or navigation (no upward imports).
//   - Interpret token contents.
package session
