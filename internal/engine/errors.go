package engine

import "errors"

// Precondition errors, returned when an operation is called against a
// state that doesn't hold the key material it needs. Input validation
// and codec errors surface as the underlying groupsig error instead.
var (
	// ErrNotSeeded is returned by any operation requiring SEEDED when the
	// engine has never been seeded.
	ErrNotSeeded = errors.New("engine: not seeded")

	// ErrNoGroupPrivateKey is returned when an operation needs the
	// issuer's private key but none is loaded.
	ErrNoGroupPrivateKey = errors.New("engine: no group private key loaded")

	// ErrNoGroupPublicKey is returned when an operation needs a group
	// public key but none is loaded.
	ErrNoGroupPublicKey = errors.New("engine: no group public key loaded")

	// ErrNoUserCredentials is returned when an operation needs user
	// credentials but none are bound.
	ErrNoUserCredentials = errors.New("engine: no user credentials loaded")
)
