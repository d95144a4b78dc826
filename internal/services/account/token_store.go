package account

import (
	"context"
	"fmt"

	"banbds/internal/domain"
)

// KeyUserToken is the store key of the logged-in user's token.
const KeyUserToken = "user_token"

// TokenStore persists the user token in a key-value store.
type TokenStore struct {
	kv domain.KeyValueStore
}

// NewTokenStore wraps kv.
func NewTokenStore(kv domain.KeyValueStore) *TokenStore {
	return &TokenStore{kv: kv}
}

// UserToken returns the stored token; ok is false when nobody is logged in.
func (s *TokenStore) UserToken(ctx context.Context) (domain.UserToken, bool, error) {
	v, ok, err := s.kv.Get(ctx, KeyUserToken)
	if err != nil {
		return "", false, fmt.Errorf("read user token: %w", err)
	}
	if !ok || v == "" {
		return "", false, nil
	}
	return domain.UserToken(v), true, nil
}

// Save replaces the stored token.
func (s *TokenStore) Save(ctx context.Context, tok domain.UserToken) error {
	if err := s.kv.Set(ctx, KeyUserToken, tok.String()); err != nil {
		return fmt.Errorf("save user token: %w", err)
	}
	return nil
}

// Clear removes the stored token. Clearing an empty store is not an error.
func (s *TokenStore) Clear(ctx context.Context) error {
	if err := s.kv.Remove(ctx, KeyUserToken); err != nil {
		return fmt.Errorf("clear user token: %w", err)
	}
	return nil
}

// Compile-time assertion that TokenStore implements domain.UserTokenSource.
var _ domain.UserTokenSource = (*TokenStore)(nil)
