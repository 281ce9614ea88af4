// Package scoreauth keeps the signed-in user of the scoring client, their role
// and their credentials consistent across memory, durable storage and the
// outgoing request headers.
//
// # Lifecycle
//
// A [Manager] is built once per process through [Builder.Build]. Call
// [Manager.Restore] at startup, then drive it with Login, ScorerLogin, Signup,
// ScorerSignup, UpdateProfile and Logout. Observers (the navigation guard)
// register with [Manager.Subscribe] and receive a [State] after every
// committed change.
//
// # Consistency
//
//   - A user is present exactly when an auth token is present.
//   - Request credentials are attached and detached in the same step that sets
//     or clears the token.
//   - A login whose credentials cannot be persisted is rolled back; the
//     session is never signed in only in memory.
//   - Logout always succeeds from the caller's perspective.
//
// # Concurrency
//
// Manager methods are safe to call from multiple goroutines, but operations
// are not serialized against each other: callers are expected to keep one
// session-changing operation in flight at a time (for example by disabling a
// submit control while [State.IsLoading] is true). When operations do overlap,
// the last one to commit wins.
package scoreauth
