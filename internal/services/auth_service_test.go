package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfwise/auth-backend/internal/auth"
	"github.com/shelfwise/auth-backend/internal/config"
	"github.com/shelfwise/auth-backend/internal/models"
	"github.com/shelfwise/auth-backend/internal/store"
	"github.com/shelfwise/auth-backend/internal/token"
)

const (
	testIssuer   = "https://auth.test"
	testAudience = "test-api"
	testSecret   = "service-test-secret"
)

func newAuthService(st store.Store, accessTTL, refreshTTL time.Duration) (*AuthService, *token.Codec) {
	codec := token.NewCodec(testSecret, testIssuer, testAudience, accessTTL)
	cfg := &config.Config{JWTRefreshExpiry: refreshTTL}
	return NewAuthService(st, codec, cfg), codec
}

func registerAlice(t *testing.T, s *AuthService) *models.User {
	t.Helper()
	user, err := s.Register(context.Background(), "alice", "password123", "alice@example.com")
	require.NoError(t, err)
	return user
}

func TestRegister_Validation(t *testing.T) {
	s, _ := newAuthService(store.NewMemory(), time.Minute, time.Hour)
	ctx := context.Background()

	_, err := s.Register(ctx, "", "password123", "a@x.com")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = s.Register(ctx, "alice", "short", "a@x.com")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = s.Register(ctx, "alice", "password123", "not-an-email")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	s, _ := newAuthService(store.NewMemory(), time.Minute, time.Hour)
	registerAlice(t, s)

	_, err := s.Register(context.Background(), "ALICE", "password123", "other@example.com")
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestRegister_CreatesNoSession(t *testing.T) {
	st := store.NewMemory()
	s, _ := newAuthService(st, time.Minute, time.Hour)
	registerAlice(t, s)

	stored, err := st.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Nil(t, stored.RefreshTokenHash)
	assert.Empty(t, stored.Roles)
}

func TestLogin_DoesNotDistinguishMissingUserFromBadPassword(t *testing.T) {
	s, _ := newAuthService(store.NewMemory(), time.Minute, time.Hour)
	registerAlice(t, s)
	ctx := context.Background()

	_, errMissing := s.Login(ctx, "nobody", "password123")
	_, errWrongPw := s.Login(ctx, "alice", "wrong-password")
	assert.ErrorIs(t, errMissing, ErrInvalidCredentials)
	assert.ErrorIs(t, errWrongPw, ErrInvalidCredentials)
}

func TestLoginThenRefresh_SameSubject(t *testing.T) {
	st := store.NewMemory()
	s, codec := newAuthService(st, time.Minute, time.Hour)
	registerAlice(t, s)
	ctx := context.Background()

	login, err := s.Login(ctx, "alice", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, login.RefreshSecret)

	// Raw secret is never persisted, only its hash.
	stored, err := st.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, stored.RefreshTokenHash)
	assert.NotEqual(t, login.RefreshSecret, *stored.RefreshTokenHash)
	assert.Equal(t, token.HashRefreshSecret(login.RefreshSecret), *stored.RefreshTokenHash)

	refreshed, err := s.Refresh(ctx, login.AccessToken, login.RefreshSecret)
	require.NoError(t, err)

	claims, err := codec.ValidateStrict(refreshed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
}

func TestRefresh_ForgedSignatureFails(t *testing.T) {
	s, _ := newAuthService(store.NewMemory(), time.Minute, time.Hour)
	registerAlice(t, s)
	ctx := context.Background()

	login, err := s.Login(ctx, "alice", "password123")
	require.NoError(t, err)

	forger := token.NewCodec("attacker-secret", testIssuer, testAudience, time.Minute)
	forged, _, err := forger.Issue("alice", nil)
	require.NoError(t, err)

	_, err = s.Refresh(ctx, forged, login.RefreshSecret)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestRefresh_WrongSecretFails(t *testing.T) {
	s, _ := newAuthService(store.NewMemory(), time.Minute, time.Hour)
	registerAlice(t, s)
	ctx := context.Background()

	login, err := s.Login(ctx, "alice", "password123")
	require.NoError(t, err)

	wrong, err := token.NewRefreshSecret()
	require.NoError(t, err)

	_, err = s.Refresh(ctx, login.AccessToken, wrong)
	assert.ErrorIs(t, err, ErrRefreshRejected)
}

func TestRefresh_AfterStoredExpiryFails(t *testing.T) {
	s, _ := newAuthService(store.NewMemory(), time.Minute, -time.Second)
	registerAlice(t, s)
	ctx := context.Background()

	login, err := s.Login(ctx, "alice", "password123")
	require.NoError(t, err)

	_, err = s.Refresh(ctx, login.AccessToken, login.RefreshSecret)
	assert.ErrorIs(t, err, ErrRefreshRejected)
}

func TestRefresh_WithoutSessionFails(t *testing.T) {
	s, codec := newAuthService(store.NewMemory(), time.Minute, time.Hour)
	registerAlice(t, s)

	raw, _, err := codec.Issue("alice", nil)
	require.NoError(t, err)
	secret, err := token.NewRefreshSecret()
	require.NoError(t, err)

	_, err = s.Refresh(context.Background(), raw, secret)
	assert.ErrorIs(t, err, ErrRefreshRejected)
}

func TestRefresh_PicksUpRoleChanges(t *testing.T) {
	st := store.NewMemory()
	s, codec := newAuthService(st, time.Minute, time.Hour)
	user := registerAlice(t, s)
	ctx := context.Background()

	login, err := s.Login(ctx, "alice", "password123")
	require.NoError(t, err)

	roles := NewRoleService(st)
	created, err := roles.Create(ctx, "Admin")
	require.NoError(t, err)
	require.NoError(t, roles.Assign(ctx, user.ID, created.Name))

	refreshed, err := s.Refresh(ctx, login.AccessToken, login.RefreshSecret)
	require.NoError(t, err)

	claims, err := codec.ValidateStrict(refreshed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, []string{"Admin"}, claims.Roles)
}

func TestRevoke_BlocksFurtherRefresh(t *testing.T) {
	s, _ := newAuthService(store.NewMemory(), time.Minute, time.Hour)
	registerAlice(t, s)
	ctx := context.Background()

	login, err := s.Login(ctx, "alice", "password123")
	require.NoError(t, err)

	require.NoError(t, s.Revoke(ctx, "alice"))

	// Even though the stored expiry has not elapsed, the secret is dead.
	_, err = s.Refresh(ctx, login.AccessToken, login.RefreshSecret)
	assert.ErrorIs(t, err, ErrRefreshRejected)
}

func TestRevoke_Idempotent(t *testing.T) {
	s, _ := newAuthService(store.NewMemory(), time.Minute, time.Hour)
	registerAlice(t, s)
	ctx := context.Background()

	require.NoError(t, s.Revoke(ctx, "alice"))
	require.NoError(t, s.Revoke(ctx, "alice"))
}

func TestConcurrentLogins_NeverTearHashExpiryPair(t *testing.T) {
	st := store.NewMemory()
	s, _ := newAuthService(st, time.Minute, time.Hour)
	registerAlice(t, s)
	ctx := context.Background()

	const workers = 8
	results := make([]*LoginResult, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if res, err := s.Login(ctx, "alice", "password123"); err == nil {
				results[i] = res
			}
		}(i)
	}
	wg.Wait()

	stored, err := st.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, stored.RefreshTokenHash)

	// The stored hash and expiry must both come from the same winning login.
	matches := 0
	for _, res := range results {
		if res == nil {
			continue
		}
		if token.HashRefreshSecret(res.RefreshSecret) == *stored.RefreshTokenHash {
			matches++
			assert.Equal(t, res.RefreshExpiry, stored.RefreshTokenExpiry)
		}
	}
	assert.Equal(t, 1, matches)
}

// Full lifecycle: login, access token expires, authorize fails, refresh
// succeeds with a distinct token, revoke, then the old secret is dead.
func TestSessionLifecycleScenario(t *testing.T) {
	st := store.NewMemory()
	// Access tokens are born expired so the post-expiry path needs no sleep.
	s, codec := newAuthService(st, -time.Second, 3*time.Hour)
	gate := auth.NewGate(codec)
	registerAlice(t, s)
	ctx := context.Background()

	login, err := s.Login(ctx, "alice", "password123")
	require.NoError(t, err)
	t1, s1 := login.AccessToken, login.RefreshSecret

	_, err = gate.Authorize(t1)
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)

	refreshed, err := s.Refresh(ctx, t1, s1)
	require.NoError(t, err)
	t2 := refreshed.AccessToken
	assert.NotEqual(t, t1, t2)

	require.NoError(t, s.Revoke(ctx, "alice"))

	_, err = s.Refresh(ctx, t2, s1)
	assert.ErrorIs(t, err, ErrRefreshRejected)
}
