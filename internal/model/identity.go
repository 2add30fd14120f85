package model

// Identity is the logical "who is using the client" projection derived
// from the persisted bearer token. It is a value, never mutated in
// place; session changes produce a fresh Identity.
type Identity struct {
	// UserID is the opaque identifier extracted from the token. Empty
	// when unauthenticated.
	UserID string

	// DisplayName is the user's display name, when the token carries
	// one.
	DisplayName string

	// Authenticated reports whether a valid, unexpired token was
	// resolved. Authenticated implies a non-empty UserID.
	Authenticated bool
}

// Anonymous is the unauthenticated Identity. Any token that is absent,
// malformed, or expired resolves to this value.
var Anonymous = Identity{}
