package auth

import "context"

// CredentialResult is the completion payload of a provider sign-in,
// success or failure. Err set means the flow failed or was cancelled.
type CredentialResult struct {
	UserID        string
	Email         string
	FullName      string
	IdentityToken string
	Err           error
}

// CredentialProvider runs the provider side of a sign-in and delivers
// the completion result. Implementations own any network work and must
// return (not publish) their outcome.
type CredentialProvider interface {
	RequestCredential(ctx context.Context) CredentialResult
}

// TokenStore persists identity tokens outside the database.
type TokenStore interface {
	StoreIdentityToken(userID, token string) error
	DeleteIdentityToken(userID string) error
}
