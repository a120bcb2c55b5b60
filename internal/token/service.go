package token

import (
	"context"
	"crypto/rsa"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/marketplace-api/internal/apperr"
)

// RefreshStore persists the single refresh-token row each user owns.
// Get returns sql.ErrNoRows when the user has no row yet.
type RefreshStore interface {
	Get(ctx context.Context, userID uint64) (tokenHash string, expiresAt time.Time, err error)
	Upsert(ctx context.Context, userID uint64, tokenHash string, expiresAt time.Time) error
	Delete(ctx context.Context, userID uint64) error
}

// Service issues access tokens and manages refresh-token rotation.  It
// is deliberately not on the purchase path: token work never holds or
// waits on the inventory transaction.
type Service struct {
	priv       *rsa.PrivateKey
	store      RefreshStore
	accessTTL  int // minutes
	refreshTTL int // days
	now        func() time.Time
}

// NewService wires a Service.  priv may be nil in processes that only
// verify tokens and never issue them.
func NewService(priv *rsa.PrivateKey, store RefreshStore, accessTTLMin, refreshTTLDays int) *Service {
	return &Service{
		priv:       priv,
		store:      store,
		accessTTL:  accessTTLMin,
		refreshTTL: refreshTTLDays,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// IssueAccessToken signs a fresh access token for the given identity.
func (s *Service) IssueAccessToken(c Claims) (AccessToken, error) {
	at, err := NewAccessToken(s.priv, c, s.accessTTL)
	if err != nil {
		return AccessToken{}, apperr.Internal(err)
	}
	return at, nil
}

// RotateRefresh generates a new opaque refresh token for the user and
// overwrites the stored row in place.  The previous value stops
// validating the moment the new hash lands; there is never more than one
// live refresh token per user.
func (s *Service) RotateRefresh(ctx context.Context, userID uint64) (RefreshToken, error) {
	rt, err := NewRefreshToken(s.refreshTTL)
	if err != nil {
		return RefreshToken{}, apperr.Internal(err)
	}
	if err := s.store.Upsert(ctx, userID, HashRefreshRaw(rt.Raw), rt.Exp); err != nil {
		return RefreshToken{}, apperr.Internal(err)
	}
	return rt, nil
}

// ValidateRefresh checks the presented refresh token for a user.  It
// fails when no row exists, when the row has expired, or when the
// presented value does not hash to the stored one.  Success is expected
// to be followed immediately by RotateRefresh, which makes refresh
// tokens single-use in effect.
func (s *Service) ValidateRefresh(ctx context.Context, userID uint64, presented string) error {
	hash, expiresAt, err := s.store.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.New(apperr.KindAuth, "invalid or expired refresh token")
		}
		return apperr.Internal(err)
	}
	if !expiresAt.After(s.now()) {
		return apperr.New(apperr.KindAuth, "invalid or expired refresh token")
	}
	if HashRefreshRaw(presented) != hash {
		return apperr.New(apperr.KindAuth, "invalid or expired refresh token")
	}
	return nil
}

// Revoke drops the user's refresh token so the session cannot be
// extended. Used by logout.
func (s *Service) Revoke(ctx context.Context, userID uint64) error {
	if err := s.store.Delete(ctx, userID); err != nil {
		return apperr.Internal(err)
	}
	return nil
}
