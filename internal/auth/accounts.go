package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/erazemk/zaloga/internal/model"
	"github.com/erazemk/zaloga/internal/store"
)

// Account errors.
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrNotVerified        = errors.New("account not verified")
	ErrInvalidCode        = errors.New("invalid or expired verification code")
	ErrTokenRevoked       = errors.New("token revoked")
)

// DefaultCodeTTL is how long a verification code stays valid.
const DefaultCodeTTL = 15 * time.Minute

// Accounts implements registration, verification and sign-in against the
// accounts database. It is shared by the API and the web UI.
type Accounts struct {
	DB       *sql.DB
	Secret   string
	TokenTTL time.Duration
	CodeTTL  time.Duration
}

// Registration holds the fields of a new account.
type Registration struct {
	Name     string
	Username string
	Password string
	Phone    string
}

// Register creates an unverified user and issues a verification code. The
// code is delivered by logging it.
func (a *Accounts) Register(ctx context.Context, reg Registration) (*model.User, error) {
	if err := model.ValidatePassword(reg.Password); err != nil {
		return nil, err
	}

	hash, err := HashPassword(reg.Password)
	if err != nil {
		return nil, err
	}

	user, err := store.CreateUser(ctx, a.DB, reg.Name, reg.Username, hash, reg.Phone)
	if err != nil {
		return nil, err
	}

	if err := a.SendCode(ctx, user); err != nil {
		return nil, err
	}

	slog.Info("user registered", "user", user.Username)
	return user, nil
}

// SendCode issues a fresh verification code for user, replacing any earlier one.
func (a *Accounts) SendCode(ctx context.Context, user *model.User) error {
	code, err := GenerateCode()
	if err != nil {
		return err
	}

	ttl := a.CodeTTL
	if ttl <= 0 {
		ttl = DefaultCodeTTL
	}
	if err := store.SetPendingCode(ctx, a.DB, user.Username, code, time.Now().Add(ttl)); err != nil {
		return err
	}

	slog.Info("verification code sent", "user", user.Username, "phone", user.Phone, "code", code)
	return nil
}

// Verify consumes a verification code, marks the user verified and returns a
// session token.
func (a *Accounts) Verify(ctx context.Context, username, code string) (string, *model.User, error) {
	user, err := store.GetUserByUsername(ctx, a.DB, username)
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		return "", nil, ErrInvalidCode
	}

	ok, err := store.ConsumePendingCode(ctx, a.DB, username, code)
	if err != nil {
		return "", nil, err
	}
	if !ok {
		slog.Warn("verification failed", "user", username)
		return "", nil, ErrInvalidCode
	}

	if !user.Verified() {
		if err := store.MarkUserVerified(ctx, a.DB, user.ID); err != nil {
			return "", nil, err
		}
		now := time.Now().UTC()
		user.VerifiedAt = &now
	}

	token, err := GenerateToken(a.Secret, user.ID, user.Username, a.TokenTTL)
	if err != nil {
		return "", nil, err
	}

	slog.Info("user verified", "user", user.Username)
	return token, user, nil
}

// Login checks credentials and returns a session token. Unverified users are
// refused with ErrNotVerified.
func (a *Accounts) Login(ctx context.Context, username, password string) (string, *model.User, error) {
	user, err := store.GetUserByUsername(ctx, a.DB, username)
	if err != nil {
		return "", nil, err
	}
	if user == nil || !CheckPassword(user.PasswordHash, password) {
		slog.Warn("login failed", "username", username)
		return "", nil, ErrInvalidCredentials
	}
	if !user.Verified() {
		return "", user, ErrNotVerified
	}

	token, err := GenerateToken(a.Secret, user.ID, user.Username, a.TokenTTL)
	if err != nil {
		return "", nil, err
	}

	slog.Info("user logged in", "user", user.Username)
	return token, user, nil
}

// Authenticate validates a session token and rejects revoked ones.
func (a *Accounts) Authenticate(ctx context.Context, token string) (*Claims, error) {
	claims, err := ValidateToken(a.Secret, token)
	if err != nil {
		return nil, err
	}

	revoked, err := store.IsTokenRevoked(ctx, a.DB, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// Logout revokes the session token described by claims.
func (a *Accounts) Logout(ctx context.Context, claims *Claims) error {
	expiresAt := time.Now().Add(DefaultTokenTTL)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	if err := store.RevokeToken(ctx, a.DB, claims.ID, expiresAt); err != nil {
		return err
	}
	slog.Info("user logged out", "user", claims.Username)
	return nil
}

// ChangePassword replaces the user's password after checking the current one.
func (a *Accounts) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	user, err := store.GetUser(ctx, a.DB, userID)
	if err != nil {
		return err
	}
	if user == nil || !CheckPassword(user.PasswordHash, current) {
		return ErrInvalidCredentials
	}
	if err := model.ValidatePassword(next); err != nil {
		return err
	}

	hash, err := HashPassword(next)
	if err != nil {
		return err
	}
	if err := store.UpdateUserPassword(ctx, a.DB, userID, hash); err != nil {
		return fmt.Errorf("changing password: %w", err)
	}

	slog.Info("user changed own password", "user", user.Username)
	return nil
}

// PruneEvery removes expired revocations and verification codes once per
// interval until ctx is done.
func (a *Accounts) PruneEvery(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := store.PruneExpired(ctx, a.DB, now)
			if err != nil {
				slog.Error("failed to prune expired tokens", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("pruned expired tokens and codes", "rows", n)
			}
		}
	}
}
