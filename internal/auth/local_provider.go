package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// LocalProvider derives a deterministic credential from an email address.
// It stands in for a real identity provider on platforms without one and
// in demo mode. The same email always yields the same user id, so a
// returning user gets their previous account back.
type LocalProvider struct {
	Email    string
	FullName string
}

func (p *LocalProvider) RequestCredential(ctx context.Context) CredentialResult {
	email := strings.TrimSpace(strings.ToLower(p.Email))
	if email == "" || !strings.Contains(email, "@") {
		return CredentialResult{Err: errors.New("enter a valid email address to sign in")}
	}
	sum := sha256.Sum256([]byte("oralable-local:" + email))
	userID := uuid.NewSHA1(uuid.NameSpaceOID, []byte("user:"+email)).String()
	return CredentialResult{
		UserID:        userID,
		Email:         email,
		FullName:      strings.TrimSpace(p.FullName),
		IdentityToken: hex.EncodeToString(sum[:]),
	}
}
