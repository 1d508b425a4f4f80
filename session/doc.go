// Package session manages per-user session lifecycle on top of the fail-open
// memory client. The Session struct itself lives in the core package to
// centralize domain contracts; this package owns id generation, the
// one-active-session-per-user invariant (get-or-create), metadata updates,
// caller-initiated deletion and the expiry sweep.
//
// The manager never blocks a caller on memory-store availability: session
// creation always returns a usable id, persisting the record only when the
// store is reachable.
package session
