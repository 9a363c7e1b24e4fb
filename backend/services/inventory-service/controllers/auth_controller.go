package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sumasri3003/Smart-Inventory-Project/backend/services/common/auth"
	apperrors "github.com/sumasri3003/Smart-Inventory-Project/backend/services/common/errors"
	"github.com/sumasri3003/Smart-Inventory-Project/backend/services/common/logger"
	"go.uber.org/zap"
)

// Authenticator issues tokens for valid credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (string, *auth.Claims, error)
}

type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type AuthController struct {
	authn  Authenticator
	logger *zap.Logger
}

func NewAuthController(authn Authenticator, logger *zap.Logger) *AuthController {
	return &AuthController{authn: authn, logger: logger}
}

// Login handles POST /auth/login with a JSON or form body.
func (ac *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil || req.Username == "" || req.Password == "" {
		apperrors.Respond(c, apperrors.Validation("username and password are required"))
		return
	}

	token, claims, err := ac.authn.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		logger.For(c.Request.Context(), ac.logger).Warn("Login failed", zap.String("username", req.Username))
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
		"username":     claims.Subject,
		"role":         claims.Role,
	})
}

// Me handles GET /auth/me.
func (ac *AuthController) Me(c *gin.Context) {
	claims, ok := auth.ClaimsFrom(c)
	if !ok {
		apperrors.Respond(c, apperrors.Unauthorized("Not authenticated"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"username":   claims.Subject,
		"role":       claims.Role,
		"issued_at":  claims.IssuedAt,
		"expires_at": claims.ExpiresAt,
	})
}
