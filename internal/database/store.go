// server/internal/database/store.go
package database

import (
	"context"
	"errors"

	"edc-panorama-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collection names.
const (
	AssetsCollection      = "assets"
	UsersCollection       = "users"
	CredentialsCollection = "credentials"
	LogsCollection        = "logs"
	ConfigCollection      = "config"
)

// DeleteBatchSize bounds the number of ids sent in a single bulk delete.
const DeleteBatchSize = 450

var (
	ErrNotFound      = errors.New("document not found")
	ErrDuplicateCode = errors.New("asset code already exists")
	ErrEmailTaken    = errors.New("email already in use")
)

type AssetStore interface {
	ListAssets(ctx context.Context) ([]models.Asset, error)
	GetAsset(ctx context.Context, id primitive.ObjectID) (models.Asset, error)
	// InsertAsset assigns the new ID and timestamps on asset.
	InsertAsset(ctx context.Context, asset *models.Asset) error
	UpdateAsset(ctx context.Context, asset models.Asset) error
	// SetArchived toggles the soft delete flag. A non-empty state is written too.
	SetArchived(ctx context.Context, id primitive.ObjectID, archived bool, state string) error
	DeleteAsset(ctx context.Context, id primitive.ObjectID) error
	// DeleteAssets removes assets in chunks of DeleteBatchSize. A failure
	// leaves earlier chunks deleted; the returned count reflects them.
	DeleteAssets(ctx context.Context, ids []primitive.ObjectID) (int64, error)
	UpsertAssetByCode(ctx context.Context, asset models.Asset) error
}

type UserStore interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, id primitive.ObjectID) (models.User, error)
	InsertUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user models.User) error
	DeleteUser(ctx context.Context, id primitive.ObjectID) error
	SetTheme(ctx context.Context, id primitive.ObjectID, theme string) error
}

type CredentialStore interface {
	GetCredentialByEmail(ctx context.Context, email string) (models.Credential, error)
	InsertCredential(ctx context.Context, cred *models.Credential) error
	DeleteCredential(ctx context.Context, email string) error
}

// LogStore is append-only: logs are never updated or removed.
type LogStore interface {
	AppendLog(ctx context.Context, entry *models.Log) error
	RecentLogs(ctx context.Context, limit int) ([]models.Log, error)
}

type ConfigStore interface {
	GetConfig(ctx context.Context) (models.AppConfig, error)
	SaveConfig(ctx context.Context, cfg models.AppConfig) error
}

// Store groups every collection accessor used by the API.
type Store interface {
	AssetStore
	UserStore
	CredentialStore
	LogStore
	ConfigStore
}

func chunkIDs(ids []primitive.ObjectID, size int) [][]primitive.ObjectID {
	var chunks [][]primitive.ObjectID
	for i := 0; i < len(ids); i += size {
		end := i + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[i:end])
	}
	return chunks
}
