package memory

import (
	"context"

	"github.com/xenking/sales-api/internal/domain/auth"
)

var _ auth.Repository = (*APIKeyRepository)(nil)

// APIKeyRepository implements auth.Repository in memory.
type APIKeyRepository struct {
	s *Store
}

// Upsert registers an API key, replacing any key with the same hash.
func (r *APIKeyRepository) Upsert(_ context.Context, info *auth.APIKeyInfo) error {
	return r.s.view(nil, func(st *state) error {
		st.apikeys[info.KeyHash] = *info
		return nil
	})
}

// FindByHash looks up a key by its HMAC hash.
func (r *APIKeyRepository) FindByHash(_ context.Context, hash string) (*auth.APIKeyInfo, error) {
	var out auth.APIKeyInfo
	err := r.s.view(nil, func(st *state) error {
		info, ok := st.apikeys[hash]
		if !ok {
			return auth.ErrKeyNotFound
		}
		out = info
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
