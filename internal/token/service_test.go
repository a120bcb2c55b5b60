package token

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/marketplace-api/internal/apperr"
	"github.com/iliyamo/marketplace-api/internal/model"
)

// memRefreshStore keeps one row per user, like the real table.
type memRefreshStore struct {
	mu   sync.Mutex
	rows map[uint64]struct {
		hash string
		exp  time.Time
	}
}

func newMemRefreshStore() *memRefreshStore {
	return &memRefreshStore{rows: map[uint64]struct {
		hash string
		exp  time.Time
	}{}}
}

func (m *memRefreshStore) Get(ctx context.Context, userID uint64) (string, time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[userID]
	if !ok {
		return "", time.Time{}, sql.ErrNoRows
	}
	return row.hash, row.exp, nil
}

func (m *memRefreshStore) Upsert(ctx context.Context, userID uint64, tokenHash string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[userID] = struct {
		hash string
		exp  time.Time
	}{tokenHash, expiresAt}
	return nil
}

func (m *memRefreshStore) Delete(ctx context.Context, userID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, userID)
	return nil
}

func testKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return priv
}

func TestAccessTokenRoundTrip(t *testing.T) {
	priv := testKey(t)
	svc := NewService(priv, newMemRefreshStore(), 15, 7)

	in := Claims{UserID: 7, Email: "bob@example.com", Name: "bob", Role: model.RoleCustomer}
	at, err := svc.IssueAccessToken(in)
	require.NoError(t, err)
	assert.True(t, at.Exp.After(time.Now()))

	out, err := VerifyAccessToken(&priv.PublicKey, at.Token)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestAccessTokenWrongKey(t *testing.T) {
	priv := testKey(t)
	svc := NewService(priv, newMemRefreshStore(), 15, 7)

	at, err := svc.IssueAccessToken(Claims{UserID: 7, Role: model.RoleCustomer})
	require.NoError(t, err)

	other := testKey(t)
	_, err = VerifyAccessToken(&other.PublicKey, at.Token)
	assert.Error(t, err)
}

func TestAccessTokenExpired(t *testing.T) {
	priv := testKey(t)
	// Negative TTL produces an already-expired token.
	at, err := NewAccessToken(priv, Claims{UserID: 7, Role: model.RoleCustomer}, -1)
	require.NoError(t, err)

	_, err = VerifyAccessToken(&priv.PublicKey, at.Token)
	assert.Error(t, err)
}

func TestAccessTokenGarbage(t *testing.T) {
	priv := testKey(t)
	_, err := VerifyAccessToken(&priv.PublicKey, "not-a-jwt")
	assert.Error(t, err)
}

func TestRefreshRotation(t *testing.T) {
	ctx := context.Background()
	svc := NewService(testKey(t), newMemRefreshStore(), 15, 7)

	first, err := svc.RotateRefresh(ctx, 7)
	require.NoError(t, err)
	require.NoError(t, svc.ValidateRefresh(ctx, 7, first.Raw))

	second, err := svc.RotateRefresh(ctx, 7)
	require.NoError(t, err)
	assert.NotEqual(t, first.Raw, second.Raw)

	// Only the most recent value validates.
	err = svc.ValidateRefresh(ctx, 7, first.Raw)
	assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))
	assert.NoError(t, svc.ValidateRefresh(ctx, 7, second.Raw))
}

func TestValidateRefreshFailures(t *testing.T) {
	ctx := context.Background()
	store := newMemRefreshStore()
	svc := NewService(testKey(t), store, 15, 7)

	t.Run("no row", func(t *testing.T) {
		err := svc.ValidateRefresh(ctx, 99, "whatever")
		assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))
	})

	t.Run("expired row", func(t *testing.T) {
		rt, err := svc.RotateRefresh(ctx, 7)
		require.NoError(t, err)

		svc.now = func() time.Time { return rt.Exp.Add(time.Minute) }
		defer func() { svc.now = func() time.Time { return time.Now().UTC() } }()

		err = svc.ValidateRefresh(ctx, 7, rt.Raw)
		assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))
	})

	t.Run("value mismatch", func(t *testing.T) {
		rt, err := svc.RotateRefresh(ctx, 8)
		require.NoError(t, err)

		err = svc.ValidateRefresh(ctx, 8, rt.Raw+"tampered")
		assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))
	})
}

func TestRevoke(t *testing.T) {
	ctx := context.Background()
	svc := NewService(testKey(t), newMemRefreshStore(), 15, 7)

	rt, err := svc.RotateRefresh(ctx, 7)
	require.NoError(t, err)
	require.NoError(t, svc.Revoke(ctx, 7))

	err = svc.ValidateRefresh(ctx, 7, rt.Raw)
	assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))
}
