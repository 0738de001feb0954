package auth

import "github.com/oralable/oralable/internal/secrets"

// SecretsTokenStore persists tokens in the per-user encrypted file store.
type SecretsTokenStore struct{}

func (SecretsTokenStore) StoreIdentityToken(userID, token string) error {
	return secrets.StoreIdentityToken(userID, token)
}

func (SecretsTokenStore) DeleteIdentityToken(userID string) error {
	return secrets.DeleteIdentityToken(userID)
}
