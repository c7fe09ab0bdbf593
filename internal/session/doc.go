// Package session implements the server-side session lifecycle: opaque
// high-entropy identifiers carried by a cookie, pluggable persistence
// (postgres, redis, in-memory) selected once at boot with graceful fallback,
// and a manager handling creation on login, validated retrieval with optional
// rolling renewal, idempotent destruction, and periodic expiry pruning.
//
// Sessions are only created when a user authenticates; anonymous visitors
// never allocate one. Concurrent requests sharing a session id are not
// serialized here: stores are internally safe and destruction is idempotent,
// so a logout racing an authenticated action resolves to either outcome by
// arrival order.
package session
