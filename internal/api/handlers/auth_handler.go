// server/internal/api/handlers/auth_handler.go
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"edc-panorama-api-server/internal/auth"
	"edc-panorama-api-server/internal/database"
	"edc-panorama-api-server/internal/models"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	Store    database.Store
	Tokens   *auth.TokenIssuer
	Throttle *auth.Throttle
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

func respondAuthError(c *gin.Context, status int, code string) {
	c.JSON(status, gin.H{"error": auth.Message(code), "code": code})
}

// Login checks the credential and returns a session token with the profile.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email := auth.NormalizeEmail(req.Email)
	if err := auth.ValidateEmail(email); err != nil {
		respondAuthError(c, http.StatusBadRequest, auth.CodeInvalidEmail)
		return
	}
	if h.Throttle.Blocked(email) {
		respondAuthError(c, http.StatusTooManyRequests, auth.CodeTooManyRequests)
		return
	}

	ctx := c.Request.Context()
	cred, err := h.Store.GetCredentialByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			h.Throttle.Fail(email)
			respondAuthError(c, http.StatusUnauthorized, auth.CodeInvalidCredential)
			return
		}
		slog.Error("credential lookup failed", "email", email, "error", err)
		respondAuthError(c, http.StatusServiceUnavailable, auth.CodeNetworkFailed)
		return
	}
	if !auth.CheckPasswordHash(req.Password, cred.PasswordHash) {
		h.Throttle.Fail(email)
		respondAuthError(c, http.StatusUnauthorized, auth.CodeInvalidCredential)
		return
	}

	user, err := h.Store.GetUser(ctx, cred.UserID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondAuthError(c, http.StatusUnauthorized, auth.CodeProfileNotFound)
			return
		}
		slog.Error("profile lookup failed", "email", email, "error", err)
		respondAuthError(c, http.StatusServiceUnavailable, auth.CodeNetworkFailed)
		return
	}
	h.Throttle.Reset(email)

	token, err := h.Tokens.GenerateJWT(user.ID.Hex(), user.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}
	if user.Preferences.Theme == "" {
		user.Preferences.Theme = models.DefaultTheme
	}

	slog.Info("user signed in", "email", email, "userID", user.ID.Hex())
	c.JSON(http.StatusOK, LoginResponse{Token: token, User: user})
}
