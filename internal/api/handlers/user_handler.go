// server/internal/api/handlers/user_handler.go
package handlers

import (
	"errors"
	"net/http"
	"slices"

	"edc-panorama-api-server/internal/api/middleware"
	"edc-panorama-api-server/internal/auth"
	"edc-panorama-api-server/internal/database"
	"edc-panorama-api-server/internal/models"
	"edc-panorama-api-server/internal/socket"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserHandler struct {
	Store      database.Store
	Hub        Broadcaster
	BcryptCost int
}

type CreateUserRequest struct {
	FirstName   string             `json:"firstName" binding:"required"`
	LastName    string             `json:"lastName"`
	Email       string             `json:"email" binding:"required"`
	Password    string             `json:"password" binding:"required"`
	Permissions models.Permissions `json:"permissions"`
}

type UpdateUserRequest struct {
	FirstName   string             `json:"firstName" binding:"required"`
	LastName    string             `json:"lastName"`
	Permissions models.Permissions `json:"permissions"`
}

type ThemeRequest struct {
	Theme string `json:"theme" binding:"required"`
}

// Me returns the caller's profile.
func (h *UserHandler) Me(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	if user.Preferences.Theme == "" {
		user.Preferences.Theme = models.DefaultTheme
	}
	c.JSON(http.StatusOK, user)
}

// SetTheme persists the caller's theme preference.
func (h *UserHandler) SetTheme(c *gin.Context) {
	var req ThemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !slices.Contains(models.Themes, req.Theme) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown theme", "themes": models.Themes})
		return
	}

	user, _ := middleware.CurrentUser(c)
	if err := h.Store.SetTheme(c.Request.Context(), user.ID, req.Theme); err != nil {
		respondStoreError(c, "Failed to save theme", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"theme": req.Theme})
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.Store.ListUsers(c.Request.Context())
	if err != nil {
		respondStoreError(c, "Failed to list users", err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// CreateUser provisions a credential and its profile. The caller's own
// session is left untouched.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email := auth.NormalizeEmail(req.Email)
	for _, err := range []error{auth.ValidateEmail(email), auth.ValidatePassword(req.Password)} {
		var authErr *auth.Error
		if errors.As(err, &authErr) {
			respondAuthError(c, http.StatusBadRequest, authErr.Code)
			return
		}
	}

	hash, err := auth.HashPassword(req.Password, h.BcryptCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	ctx := c.Request.Context()
	user := models.User{
		ID:          primitive.NewObjectID(),
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       email,
		Permissions: req.Permissions,
		Preferences: models.Preferences{Theme: models.DefaultTheme},
	}
	if err := database.ProvisionUser(ctx, h.Store, &user, hash); err != nil {
		if errors.Is(err, database.ErrEmailTaken) {
			respondAuthError(c, http.StatusConflict, auth.CodeEmailInUse)
			return
		}
		respondStoreError(c, "Failed to create user", err)
		return
	}

	h.Hub.Broadcast(socket.EventUsersChanged, database.UsersCollection)
	c.JSON(http.StatusCreated, user)
}

// UpdateUser replaces names and permissions. Email and preferences are kept.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	user, err := h.Store.GetUser(ctx, id)
	if err != nil {
		respondStoreError(c, "Failed to load user", err)
		return
	}
	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.Permissions = req.Permissions
	if err := h.Store.UpdateUser(ctx, user); err != nil {
		respondStoreError(c, "Failed to update user", err)
		return
	}

	h.Hub.Broadcast(socket.EventUsersChanged, database.UsersCollection)
	c.JSON(http.StatusOK, user)
}

// DeleteUser removes the profile only; the credential can no longer open a session.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}
	if caller, _ := middleware.CurrentUser(c); caller.ID == id {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot delete your own account"})
		return
	}
	if err := h.Store.DeleteUser(c.Request.Context(), id); err != nil {
		respondStoreError(c, "Failed to delete user", err)
		return
	}

	h.Hub.Broadcast(socket.EventUsersChanged, database.UsersCollection)
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}
