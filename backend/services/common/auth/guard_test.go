package auth

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/sumasri3003/Smart-Inventory-Project/backend/services/common/errors"
)

const testSecret = "test-signing-key"

func newTestGuard(t *testing.T) *Guard {
	t.Helper()
	store := NewStaticStore([]SeedUser{
		{Username: "admin", Password: "admin123", Role: RoleAdmin},
		{Username: "warehouse", Password: "warehouse123", Role: RoleWarehouse},
	}, bcrypt.MinCost)
	g, err := NewGuard(store, testSecret, time.Hour)
	require.NoError(t, err)
	return g
}

func issue(t *testing.T, g *Guard, user, pass string) string {
	t.Helper()
	token, _, err := g.Authenticate(context.Background(), user, pass)
	require.NoError(t, err)
	return token
}

func TestNewGuard_RequiresSecret(t *testing.T) {
	_, err := NewGuard(NewStaticStore(nil, bcrypt.MinCost), "  ", time.Hour)
	assert.Error(t, err)
}

func TestAuthenticate_IssuesTokenWithClaims(t *testing.T) {
	g := newTestGuard(t)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	g.now = func() time.Time { return fixed }

	token, claims, err := g.Authenticate(context.Background(), "admin", "admin123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "admin", claims.Subject)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.Equal(t, fixed.Add(time.Hour), claims.ExpiresAt)
}

func TestAuthenticate_RejectsBadCredentials(t *testing.T) {
	g := newTestGuard(t)

	_, _, err := g.Authenticate(context.Background(), "admin", "wrong")
	assert.True(t, stderrors.Is(err, apperrors.ErrUnauthorized))

	_, _, err = g.Authenticate(context.Background(), "ghost", "admin123")
	assert.True(t, stderrors.Is(err, apperrors.ErrUnauthorized))
}

func TestVerify_RoundTrip(t *testing.T) {
	g := newTestGuard(t)
	token := issue(t, g, "warehouse", "warehouse123")

	claims, err := g.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "warehouse", claims.Subject)
	assert.Equal(t, RoleWarehouse, claims.Role)
}

func TestVerify_RejectsForeignSignature(t *testing.T) {
	g := newTestGuard(t)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "admin",
		"role": "admin",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	forged, err := token.SignedString([]byte("some-other-key"))
	require.NoError(t, err)

	_, err = g.Verify(forged)
	assert.True(t, stderrors.Is(err, apperrors.ErrUnauthorized))
}

func TestVerify_RejectsOtherHMACAlgorithms(t *testing.T) {
	g := newTestGuard(t)
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"sub":  "admin",
		"role": "admin",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = g.Verify(signed)
	assert.True(t, stderrors.Is(err, apperrors.ErrUnauthorized))
}

func TestVerify_RejectsExpiredToken(t *testing.T) {
	g := newTestGuard(t)
	g.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token := issue(t, g, "admin", "admin123")

	g.now = time.Now
	_, err := g.Verify(token)
	assert.True(t, stderrors.Is(err, apperrors.ErrUnauthorized))
}

func TestVerify_RejectsUnknownRole(t *testing.T) {
	g := newTestGuard(t)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "root",
		"role": "superuser",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = g.Verify(signed)
	assert.True(t, stderrors.Is(err, apperrors.ErrUnauthorized))
}

func TestRequireRole(t *testing.T) {
	g := newTestGuard(t)
	adminToken := issue(t, g, "admin", "admin123")
	warehouseToken := issue(t, g, "warehouse", "warehouse123")

	_, err := g.RequireRole(warehouseToken, RoleAdmin)
	assert.True(t, stderrors.Is(err, apperrors.ErrForbidden))

	for _, token := range []string{adminToken, warehouseToken} {
		claims, err := g.RequireRole(token, RoleAdmin, RoleWarehouse)
		require.NoError(t, err)
		assert.NotEmpty(t, claims.Subject)
	}

	_, err = g.RequireRole("", RoleAdmin)
	assert.True(t, stderrors.Is(err, apperrors.ErrUnauthorized))
}
