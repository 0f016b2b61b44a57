package auth

import "errors"

// Admission-time failures. All are terminal for the attempt that
// produced them; none is ever retried by the server.
var (
	// ErrMissingCredential means no token was supplied at all.
	ErrMissingCredential = errors.New("missing credential")

	// ErrInvalidCredential means the token could not be decoded, is
	// expired, or fails signature verification.
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrUnknownIdentity means the token decoded cleanly but its
	// subject does not correspond to a known user.
	ErrUnknownIdentity = errors.New("unknown identity")
)
