package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/ChomusukeBot/Chomusuke/auth"
	"github.com/ChomusukeBot/Chomusuke/docstore"
)

// Credential is a user's token for a provider.
type Credential struct {
	User     string
	Provider string
	Token    string
}

// Pick is a user's selected repository on a provider.
type Pick struct {
	User     string
	Provider string
	Slug     string
}

type tokenDoc struct {
	Token []byte `json:"token"`
}

type pickDoc struct {
	Slug string `json:"slug"`
}

// TokenStore holds at most one credential per user for a provider.
// Tokens are sealed at rest.
type TokenStore struct {
	provider string
	docs     docstore.Collection
	seal     *auth.Sealer
}

// NewTokenStore creates a token store in the provider's token collection.
func NewTokenStore(s docstore.Store, provider string, seal *auth.Sealer) *TokenStore {
	return &TokenStore{
		provider: provider,
		docs:     s.Collection(provider + "_tokens"),
		seal:     seal,
	}
}

// ad binds sealed tokens to their owner and provider so that a sealed token
// copied to another document does not open.
func (s *TokenStore) ad(user string) []byte {
	return []byte(s.provider + "\x00" + user)
}

// Get returns the user's credential.
// If the user has none, the error is [ErrCredentialRequired].
func (s *TokenStore) Get(ctx context.Context, user string) (Credential, error) {
	d, err := docstore.Find[tokenDoc](ctx, s.docs, user)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return Credential{}, ErrCredentialRequired
		}
		return Credential{}, fmt.Errorf("couldn't get %s token: %w", s.provider, err)
	}
	tok, err := s.seal.Open(d.Token, s.ad(user))
	if err != nil {
		return Credential{}, fmt.Errorf("couldn't get %s token: %w", s.provider, err)
	}
	return Credential{User: user, Provider: s.provider, Token: tok}, nil
}

// Upsert stores the user's token, replacing any existing one.
// The token is not validated.
func (s *TokenStore) Upsert(ctx context.Context, user, token string) error {
	d := tokenDoc{Token: s.seal.Seal(token, s.ad(user))}
	if err := docstore.Save(ctx, s.docs, user, d); err != nil {
		return fmt.Errorf("couldn't save %s token: %w", s.provider, err)
	}
	return nil
}

// Delete removes the user's credential and reports whether one existed.
func (s *TokenStore) Delete(ctx context.Context, user string) (bool, error) {
	ok, err := s.docs.Delete(ctx, user)
	if err != nil {
		return false, fmt.Errorf("couldn't delete %s token: %w", s.provider, err)
	}
	return ok, nil
}

// PickStore holds at most one picked repository per user for a provider.
type PickStore struct {
	provider string
	docs     docstore.Collection
}

// NewPickStore creates a pick store in the provider's pick collection.
func NewPickStore(s docstore.Store, provider string) *PickStore {
	return &PickStore{
		provider: provider,
		docs:     s.Collection(provider + "_picks"),
	}
}

// Get returns the user's pick.
// If the user has none, the error is [ErrNotFound].
func (s *PickStore) Get(ctx context.Context, user string) (Pick, error) {
	d, err := docstore.Find[pickDoc](ctx, s.docs, user)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return Pick{}, ErrNotFound
		}
		return Pick{}, fmt.Errorf("couldn't get %s pick: %w", s.provider, err)
	}
	return Pick{User: user, Provider: s.provider, Slug: d.Slug}, nil
}

// Upsert stores the user's pick, replacing any existing one.
func (s *PickStore) Upsert(ctx context.Context, user, slug string) error {
	if err := docstore.Save(ctx, s.docs, user, pickDoc{Slug: slug}); err != nil {
		return fmt.Errorf("couldn't save %s pick: %w", s.provider, err)
	}
	return nil
}

// Delete removes the user's pick and reports whether one existed.
func (s *PickStore) Delete(ctx context.Context, user string) (bool, error) {
	ok, err := s.docs.Delete(ctx, user)
	if err != nil {
		return false, fmt.Errorf("couldn't delete %s pick: %w", s.provider, err)
	}
	return ok, nil
}
