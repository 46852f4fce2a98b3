package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/shelfwise/auth-backend/internal/config"
	"github.com/shelfwise/auth-backend/internal/models"
	"github.com/shelfwise/auth-backend/internal/store"
	"github.com/shelfwise/auth-backend/internal/token"
)

var (
	ErrUsernameTaken = errors.New("username already registered")
	// ErrInvalidCredentials covers both unknown-user and wrong-password so
	// login responses cannot be used to enumerate usernames.
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrTokenInvalid       = errors.New("access token is not valid")
	ErrRefreshRejected    = errors.New("refresh rejected")
	ErrUserNotFound       = errors.New("user not found")
	ErrValidation         = errors.New("validation failed")
)

// bcrypt hash of an unused password, compared against when the user does not
// exist so the login path costs the same either way.
const dummyPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// LoginResult carries everything Login hands back to the boundary layer.
// RefreshSecret is the raw opaque secret; the handler delivers it on a
// separate channel (HttpOnly cookie) from the access token and it is never
// stored or logged.
type LoginResult struct {
	AccessToken       string
	AccessTokenExpiry time.Time
	RefreshSecret     string
	RefreshExpiry     time.Time
}

// RefreshResult is the outcome of a refresh exchange. The refresh secret is
// not rotated, so only a new access token comes back.
type RefreshResult struct {
	AccessToken       string
	AccessTokenExpiry time.Time
}

// AuthService owns the session lifecycle: registration, login, refresh and
// revocation, together with the invariants tying access tokens to the stored
// per-user refresh slot.
type AuthService struct {
	store      store.Store
	codec      *token.Codec
	refreshTTL time.Duration
}

func NewAuthService(st store.Store, codec *token.Codec, cfg *config.Config) *AuthService {
	return &AuthService{
		store:      st,
		codec:      codec,
		refreshTTL: cfg.JWTRefreshExpiry,
	}
}

// Register creates a credential record with a bcrypt password verifier, an
// empty role set, and no refresh session.
func (s *AuthService) Register(ctx context.Context, username, password, email string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrValidation)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email address", ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Login verifies the password and, on success, issues an access token and a
// fresh refresh secret. The secret's hash and expiry are persisted as one
// atomic write; issuing a new secret invalidates any previous one.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Equalize cost with the found-user path.
			_ = bcrypt.CompareHashAndPassword([]byte(dummyPasswordHash), []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	accessToken, accessExpiry, err := s.codec.Issue(user.Username, user.RoleNames())
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	secret, err := token.NewRefreshSecret()
	if err != nil {
		return nil, err
	}
	hash := token.HashRefreshSecret(secret)
	refreshExpiry := time.Now().Add(s.refreshTTL)

	if err := s.store.UpdateRefreshSlot(ctx, user, &hash, refreshExpiry); err != nil {
		return nil, fmt.Errorf("failed to persist refresh session: %w", err)
	}

	slog.Info("login succeeded", "user_id", user.ID)
	return &LoginResult{
		AccessToken:       accessToken,
		AccessTokenExpiry: accessExpiry,
		RefreshSecret:     secret,
		RefreshExpiry:     refreshExpiry,
	}, nil
}

// Refresh exchanges an expired (or still valid) access token plus the raw
// refresh secret for a new access token. The access token only has to pass
// the expiry-tolerant validation; signature, issuer and audience are still
// enforced so forged or foreign tokens cannot drive a refresh. Role claims
// are re-fetched, so role changes since login take effect here. The refresh
// secret itself is not rotated and stays valid until its own expiry or an
// explicit revoke.
func (s *AuthService) Refresh(ctx context.Context, accessToken, refreshSecret string) (*RefreshResult, error) {
	claims, err := s.codec.ValidateIgnoringExpiry(accessToken)
	if err != nil || claims.Subject == "" {
		return nil, ErrTokenInvalid
	}

	user, err := s.store.FindByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if user.RefreshTokenHash == nil {
		return nil, ErrRefreshRejected
	}
	supplied := token.HashRefreshSecret(refreshSecret)
	if subtle.ConstantTimeCompare([]byte(supplied), []byte(*user.RefreshTokenHash)) != 1 {
		return nil, ErrRefreshRejected
	}
	if time.Now().After(user.RefreshTokenExpiry) {
		return nil, ErrRefreshRejected
	}

	newToken, expiry, err := s.codec.Issue(user.Username, user.RoleNames())
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	slog.Info("refresh succeeded", "user_id", user.ID)
	return &RefreshResult{AccessToken: newToken, AccessTokenExpiry: expiry}, nil
}

// Revoke clears the stored refresh hash so no further refresh is possible
// until the next login. The stale expiry is left in place; it is meaningless
// while the hash is null. Revoking an already-revoked session succeeds.
func (s *AuthService) Revoke(ctx context.Context, username string) error {
	user, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	if user.RefreshTokenHash == nil {
		return nil
	}
	if err := s.store.UpdateRefreshSlot(ctx, user, nil, user.RefreshTokenExpiry); err != nil {
		return fmt.Errorf("failed to revoke refresh session: %w", err)
	}

	slog.Info("refresh session revoked", "user_id", user.ID)
	return nil
}

// Me returns the caller's credential record with roles preloaded.
func (s *AuthService) Me(ctx context.Context, username string) (*models.User, error) {
	user, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
