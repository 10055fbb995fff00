package database

import (
	"context"
	"errors"
	"testing"

	"edc-panorama-api-server/internal/auth"
	"edc-panorama-api-server/internal/models"

	"golang.org/x/crypto/bcrypt"
)

func TestSeedAdmin_CreatesOnce(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seed := AdminSeed{Email: "Admin@EDC.cm", Password: "changeme", FirstName: "Super", LastName: "Admin", BcryptCost: bcrypt.MinCost}

	created, err := SeedAdmin(ctx, s, seed)
	if err != nil || !created {
		t.Fatalf("first seed: created=%v err=%v", created, err)
	}
	created, err = SeedAdmin(ctx, s, seed)
	if err != nil || created {
		t.Fatalf("second seed: created=%v err=%v", created, err)
	}

	cred, err := s.GetCredentialByEmail(ctx, "admin@edc.cm")
	if err != nil {
		t.Fatal(err)
	}
	if !auth.CheckPasswordHash("changeme", cred.PasswordHash) {
		t.Fatal("stored hash does not match the seed password")
	}
	user, err := s.GetUser(ctx, cred.UserID)
	if err != nil {
		t.Fatal(err)
	}
	if !user.Permissions.IsAdmin || user.Preferences.Theme != models.DefaultTheme {
		t.Fatalf("unexpected admin profile: %+v", user)
	}
}

func TestSeedAdmin_RejectsWeakPassword(t *testing.T) {
	_, err := SeedAdmin(context.Background(), NewMemoryStore(), AdminSeed{Email: "a@edc.cm", Password: "123", BcryptCost: bcrypt.MinCost})
	if err == nil {
		t.Fatal("expected weak password error")
	}
}

type failingProfiles struct {
	*MemoryStore
}

func (failingProfiles) InsertUser(context.Context, *models.User) error {
	return errors.New("write failed")
}

func TestProvisionUser_RollsBackCredential(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()
	user := models.User{Email: "paul@edc.cm"}

	if err := ProvisionUser(ctx, failingProfiles{mem}, &user, "hash"); err == nil {
		t.Fatal("expected profile write error")
	}
	if _, err := mem.GetCredentialByEmail(ctx, "paul@edc.cm"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("credential kept after failed profile write: %v", err)
	}

	user = models.User{Email: "paul@edc.cm"}
	if err := ProvisionUser(ctx, mem, &user, "hash"); err != nil {
		t.Fatal(err)
	}
	if err := ProvisionUser(ctx, mem, &models.User{Email: "paul@edc.cm"}, "hash"); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("duplicate email: err = %v", err)
	}
}

func TestSeedConfig(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	created, err := SeedConfig(ctx, s)
	if err != nil || !created {
		t.Fatalf("created=%v err=%v", created, err)
	}
	cfg, err := s.GetConfig(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.HasCategory("IT") {
		t.Fatal("default categories missing")
	}

	cfg.CompanyName = "Custom"
	_ = s.SaveConfig(ctx, cfg)
	if created, _ := SeedConfig(ctx, s); created {
		t.Fatal("existing config must not be overwritten")
	}
}
