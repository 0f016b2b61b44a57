package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/chatify/backend/src/store"
)

// UserLookup is the narrow read-only view of the store the verifier
// needs. *store.Store satisfies it.
type UserLookup interface {
	UserByID(ctx context.Context, id uuid.UUID) (store.User, bool, error)
}

// Verifier resolves a bearer credential to a known user. It has no
// side effects: one cryptographic check plus one point lookup per call.
type Verifier struct {
	tokens *TokenService
	users  UserLookup
}

// NewVerifier creates a verifier over the given token service and user
// lookup.
func NewVerifier(tokens *TokenService, users UserLookup) *Verifier {
	return &Verifier{tokens: tokens, users: users}
}

// Resolve validates the credential and returns the user it identifies.
// Failure modes: ErrMissingCredential for an empty credential,
// ErrInvalidCredential for a token that cannot be verified, and
// ErrUnknownIdentity for a valid token whose subject no longer exists.
func (v *Verifier) Resolve(ctx context.Context, credential string) (store.User, error) {
	if credential == "" {
		return store.User{}, ErrMissingCredential
	}

	userID, err := v.tokens.Validate(credential)
	if err != nil {
		return store.User{}, err
	}

	user, found, err := v.users.UserByID(ctx, userID)
	if err != nil {
		return store.User{}, fmt.Errorf("look up user %s: %w", userID, err)
	}
	if !found {
		return store.User{}, ErrUnknownIdentity
	}
	return user, nil
}
