package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"portfolio-tracker/internal/store"
)

const testSecret = "test-secret"

func newAuth(t *testing.T) (*AuthService, *store.MemoryStore) {
	t.Helper()
	db := store.NewMemoryStore()
	return NewAuthService(db, testSecret, 3*time.Hour, nopLog), db
}

func TestAuthService_signup(t *testing.T) {
	ctx := context.Background()
	auth, db := newAuth(t)

	user, err := auth.Signup(ctx, " alice ", "Alice@Example.com", "password123")
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
	require.Equal(t, "alice", user.Username)
	require.Equal(t, "alice@example.com", user.Email)

	stored, err := db.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotEqual(t, "password123", stored.Password)
	require.True(t, stored.CheckPassword("password123"))

	_, err = auth.Signup(ctx, "alice2", "ALICE@example.com", "password456")
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthService_signupBlankUsername(t *testing.T) {
	ctx := context.Background()
	auth, db := newAuth(t)

	_, err := auth.Signup(ctx, "   ", "blank@example.com", "password123")
	require.ErrorIs(t, err, ErrUsernameRequired)

	_, err = db.GetUserByEmail(ctx, "blank@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestAuthService_signin(t *testing.T) {
	ctx := context.Background()
	auth, _ := newAuth(t)

	user, err := auth.Signup(ctx, "bob", "bob@example.com", "password123")
	require.NoError(t, err)

	token, err := auth.Signin(ctx, "Bob@Example.com", "password123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := auth.ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, user.ID, userID)

	_, err = auth.Signin(ctx, "bob@example.com", "wrong-password")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = auth.Signin(ctx, "nobody@example.com", "password123")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_tokenExpiry(t *testing.T) {
	auth, _ := newAuth(t)

	auth.now = func() time.Time { return time.Now().Add(-4 * time.Hour) }
	expired, err := auth.GenerateToken("user-1")
	require.NoError(t, err)

	auth.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	fresh, err := auth.GenerateToken("user-1")
	require.NoError(t, err)

	_, err = auth.ParseToken(expired)
	require.ErrorIs(t, err, ErrInvalidToken)

	userID, err := auth.ParseToken(fresh)
	require.NoError(t, err)
	require.Equal(t, "user-1", userID)
}

func TestAuthService_rejectsForeignTokens(t *testing.T) {
	auth, db := newAuth(t)
	other := NewAuthService(db, "another-secret", 3*time.Hour, nopLog)

	token, err := other.GenerateToken("user-1")
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"wrong secret": token,
		"garbage":      "not.a.token",
		"empty":        "",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := auth.ParseToken(tok)
			require.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestAuthService_getUserByID(t *testing.T) {
	ctx := context.Background()
	auth, _ := newAuth(t)

	user, err := auth.Signup(ctx, "carol", "carol@example.com", "password123")
	require.NoError(t, err)

	got, err := auth.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, user.Email, got.Email)

	_, err = auth.GetUserByID(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}
