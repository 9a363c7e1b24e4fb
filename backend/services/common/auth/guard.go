package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/sumasri3003/Smart-Inventory-Project/backend/services/common/errors"
)

// Role is the closed set of caller roles.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleWarehouse Role = "warehouse"
)

// DefaultTokenTTL is the lifetime of an issued access token.
const DefaultTokenTTL = 60 * time.Minute

// ParseRole validates s against the closed role set.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleWarehouse:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Claims are the verified contents of an access token.
type Claims struct {
	Subject   string    `json:"sub"`
	Role      Role      `json:"role"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}

// Guard issues and verifies HS256 bearer tokens and gates callers by role.
type Guard struct {
	store  CredentialStore
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewGuard builds a Guard. The secret must come from configuration.
func NewGuard(store CredentialStore, secret string, ttl time.Duration) (*Guard, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("JWT secret not configured")
	}
	if store == nil {
		return nil, errors.New("credential store is required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Guard{store: store, secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Authenticate checks username and password against the credential store and
// returns a signed token with its claims.
func (g *Guard) Authenticate(ctx context.Context, username, password string) (string, *Claims, error) {
	cred, err := g.store.Lookup(ctx, username)
	if err != nil {
		if errors.Is(err, ErrCredentialNotFound) {
			return "", nil, apperrors.Unauthorized("Invalid username or password")
		}
		return "", nil, apperrors.Storage("credential lookup failed", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)) != nil {
		return "", nil, apperrors.Unauthorized("Invalid username or password")
	}

	issued := g.now()
	claims := &Claims{
		Subject:   cred.Username,
		Role:      cred.Role,
		IssuedAt:  issued,
		ExpiresAt: issued.Add(g.ttl),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  claims.Subject,
		"role": string(claims.Role),
		"iat":  issued.Unix(),
		"exp":  claims.ExpiresAt.Unix(),
	})
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims, nil
}

// Verify validates signature, algorithm and expiry and returns the claims.
func (g *Guard) Verify(tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, apperrors.Unauthorized("Missing bearer token")
	}
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return g.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || token == nil || !token.Valid {
		return nil, apperrors.Unauthorized("Invalid or expired token")
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperrors.Unauthorized("Invalid token claims")
	}
	sub, _ := mc["sub"].(string)
	roleStr, _ := mc["role"].(string)
	role, roleErr := ParseRole(roleStr)
	exp, expOK := mc["exp"].(float64)
	if sub == "" || roleErr != nil || !expOK {
		return nil, apperrors.Unauthorized("Invalid token claims")
	}

	claims := &Claims{Subject: sub, Role: role, ExpiresAt: time.Unix(int64(exp), 0)}
	if iat, ok := mc["iat"].(float64); ok {
		claims.IssuedAt = time.Unix(int64(iat), 0)
	}
	return claims, nil
}

// RequireRole verifies tokenStr and fails with Forbidden unless the embedded
// role is one of allowed. With no roles given any valid token passes.
func (g *Guard) RequireRole(tokenStr string, allowed ...Role) (*Claims, error) {
	claims, err := g.Verify(tokenStr)
	if err != nil {
		return nil, err
	}
	if len(allowed) == 0 {
		return claims, nil
	}
	for _, r := range allowed {
		if claims.Role == r {
			return claims, nil
		}
	}
	return nil, apperrors.Forbidden(fmt.Sprintf("Access denied. Allowed roles: %s", joinRoles(allowed)))
}

func joinRoles(roles []Role) string {
	parts := make([]string, len(roles))
	for i, r := range roles {
		parts[i] = string(r)
	}
	return strings.Join(parts, ", ")
}
