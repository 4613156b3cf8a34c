package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// APIKeyInfo holds the identity and permission data for a validated API key.
type APIKeyInfo struct {
	ID      string
	KeyHash string
	Name    string
	Scopes  []string
}

// Caller converts the key into the identity it authenticates.
func (k *APIKeyInfo) Caller() *Caller {
	return &Caller{
		ID:     k.ID,
		Name:   k.Name,
		Scopes: k.Scopes,
	}
}

// Repository provides lookup of API keys by their HMAC hash. Unknown hashes
// yield ErrKeyNotFound.
type Repository interface {
	FindByHash(ctx context.Context, hash string) (*APIKeyInfo, error)
}

// HashAPIKey returns the hex HMAC-SHA256 of key under pepper, the form in
// which keys are stored.
func HashAPIKey(pepper []byte, key string) string {
	mac := hmac.New(sha256.New, pepper)
	mac.Write([]byte(key))
	return hex.EncodeToString(mac.Sum(nil))
}
