package events

import "errors"

// Sentinel errors for the event collection layer. The db package maps raw
// driver errors onto these at the boundary; handlers map them onto HTTP
// statuses. Nothing above the db layer inspects driver error strings.
var (
	// ErrNotFound: the referenced event does not exist (or was deleted
	// between page load and the request).
	ErrNotFound = errors.New("event not found")

	// ErrColumnMissing: the store reported the host scoping column absent.
	// Resolved by the documented unscoped fallback plus a visible warning,
	// never by crashing.
	ErrColumnMissing = errors.New("host_id column missing")

	// ErrUnauthorized: the store rejected the query as unauthorized; always
	// resolved by redirecting through the session guard.
	ErrUnauthorized = errors.New("store rejected query as unauthorized")

	// ErrHasRegistrations: delete blocked by dependent registrations; the
	// caller must confirm the cascade explicitly.
	ErrHasRegistrations = errors.New("event has dependent registrations")

	// ErrNoSession: the collection store was asked for host-scoped data
	// before a session was attached.
	ErrNoSession = errors.New("no active session")

	// ErrStoreClosed: the store was torn down; late results are discarded.
	ErrStoreClosed = errors.New("store is closed")

	// ErrDeleteInFlight: a delete for the same event id is already running.
	ErrDeleteInFlight = errors.New("delete already in flight for this event")
)
