// server/internal/database/seeder.go
package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"edc-panorama-api-server/internal/auth"
	"edc-panorama-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminSeed describes the administrator account created on first start.
type AdminSeed struct {
	Email      string
	Password   string
	FirstName  string
	LastName   string
	BcryptCost int
}

// SeedAdmin creates an administrator profile and its credential when the
// email has no credential yet. It reports whether an account was created.
func SeedAdmin(ctx context.Context, store Store, seed AdminSeed) (bool, error) {
	email := auth.NormalizeEmail(seed.Email)
	if err := auth.ValidateEmail(email); err != nil {
		return false, err
	}
	if err := auth.ValidatePassword(seed.Password); err != nil {
		return false, err
	}

	_, err := store.GetCredentialByEmail(ctx, email)
	if err == nil {
		slog.Info("admin already exists, seeding skipped", "email", email)
		return false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return false, err
	}

	slog.Info("admin not found, seeding", "email", email)
	hashedPassword, err := auth.HashPassword(seed.Password, seed.BcryptCost)
	if err != nil {
		return false, err
	}

	admin := models.User{
		FirstName:   seed.FirstName,
		LastName:    seed.LastName,
		Email:       email,
		Permissions: models.AllPermissions(),
		Preferences: models.Preferences{Theme: models.DefaultTheme},
	}
	if err := ProvisionUser(ctx, store, &admin, hashedPassword); err != nil {
		return false, err
	}

	slog.Info("admin seeded", "email", email, "userID", admin.ID.Hex())
	return true, nil
}

// ProvisionUser creates the credential, then the profile it points to. The
// credential is removed again when the profile cannot be written, so the
// email stays available. ErrEmailTaken is returned unwrapped.
func ProvisionUser(ctx context.Context, store Store, user *models.User, passwordHash string) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	cred := models.Credential{Email: user.Email, PasswordHash: passwordHash, UserID: user.ID}
	if err := store.InsertCredential(ctx, &cred); err != nil {
		return err
	}
	if err := store.InsertUser(ctx, user); err != nil {
		if delErr := store.DeleteCredential(ctx, cred.Email); delErr != nil {
			slog.Error("failed to roll back credential", "email", cred.Email, "error", delErr)
		}
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

// SeedConfig writes the default configuration when none is stored.
func SeedConfig(ctx context.Context, store ConfigStore) (bool, error) {
	_, err := store.GetConfig(ctx)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return false, err
	}
	if err := store.SaveConfig(ctx, models.DefaultAppConfig()); err != nil {
		return false, err
	}
	slog.Info("default configuration seeded")
	return true, nil
}
