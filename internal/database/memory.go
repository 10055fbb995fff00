// server/internal/database/memory.go
package database

import (
	"context"
	"maps"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"edc-panorama-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore is an in-process Store used by tests and local runs without MongoDB.
type MemoryStore struct {
	mu          sync.RWMutex
	assets      map[primitive.ObjectID]models.Asset
	users       map[primitive.ObjectID]models.User
	credentials map[string]models.Credential
	logs        []models.Log
	config      *models.AppConfig
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		assets:      make(map[primitive.ObjectID]models.Asset),
		users:       make(map[primitive.ObjectID]models.User),
		credentials: make(map[string]models.Credential),
	}
}

var _ Store = (*MemoryStore)(nil)

func cloneAsset(a models.Asset) models.Asset {
	a.CustomAttributes = maps.Clone(a.CustomAttributes)
	if a.Amount != nil {
		v := *a.Amount
		a.Amount = &v
	}
	return a
}

func (m *MemoryStore) codeTaken(code string, except primitive.ObjectID) bool {
	for id, a := range m.assets {
		if id != except && a.Code == code {
			return true
		}
	}
	return false
}

func (m *MemoryStore) ListAssets(ctx context.Context) ([]models.Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Asset, 0, len(m.assets))
	for _, a := range m.assets {
		out = append(out, cloneAsset(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (m *MemoryStore) GetAsset(ctx context.Context, id primitive.ObjectID) (models.Asset, error) {
	if err := ctx.Err(); err != nil {
		return models.Asset{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.assets[id]
	if !ok {
		return models.Asset{}, ErrNotFound
	}
	return cloneAsset(a), nil
}

func (m *MemoryStore) InsertAsset(ctx context.Context, asset *models.Asset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.codeTaken(asset.Code, primitive.NilObjectID) {
		return ErrDuplicateCode
	}
	now := time.Now().UTC()
	asset.ID = primitive.NewObjectID()
	asset.CreatedAt = now
	asset.UpdatedAt = now
	m.assets[asset.ID] = cloneAsset(*asset)
	return nil
}

func (m *MemoryStore) UpdateAsset(ctx context.Context, asset models.Asset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.assets[asset.ID]; !ok {
		return ErrNotFound
	}
	if m.codeTaken(asset.Code, asset.ID) {
		return ErrDuplicateCode
	}
	asset.UpdatedAt = time.Now().UTC()
	m.assets[asset.ID] = cloneAsset(asset)
	return nil
}

func (m *MemoryStore) SetArchived(ctx context.Context, id primitive.ObjectID, archived bool, state string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.assets[id]
	if !ok {
		return ErrNotFound
	}
	a.IsArchived = archived
	if state != "" {
		a.State = state
	}
	a.UpdatedAt = time.Now().UTC()
	m.assets[id] = a
	return nil
}

func (m *MemoryStore) DeleteAsset(ctx context.Context, id primitive.ObjectID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.assets[id]; !ok {
		return ErrNotFound
	}
	delete(m.assets, id)
	return nil
}

func (m *MemoryStore) DeleteAssets(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	var deleted int64
	for _, chunk := range chunkIDs(ids, DeleteBatchSize) {
		if err := ctx.Err(); err != nil {
			return deleted, err
		}
		m.mu.Lock()
		for _, id := range chunk {
			if _, ok := m.assets[id]; ok {
				delete(m.assets, id)
				deleted++
			}
		}
		m.mu.Unlock()
	}
	return deleted, nil
}

func (m *MemoryStore) UpsertAssetByCode(ctx context.Context, asset models.Asset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	for id, existing := range m.assets {
		if existing.Code != asset.Code {
			continue
		}
		asset.ID = id
		asset.CreatedAt = existing.CreatedAt
		asset.PhotoURL = existing.PhotoURL
		asset.Amount = existing.Amount
		asset.Unit = existing.Unit
		asset.IsArchived = false
		asset.UpdatedAt = now
		m.assets[id] = cloneAsset(asset)
		return nil
	}
	asset.ID = primitive.NewObjectID()
	asset.IsArchived = false
	asset.CreatedAt = now
	asset.UpdatedAt = now
	m.assets[asset.ID] = cloneAsset(asset)
	return nil
}

func (m *MemoryStore) ListUsers(ctx context.Context) ([]models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := slices.Collect(maps.Values(m.users))
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (m *MemoryStore) GetUser(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return u, nil
}

func (m *MemoryStore) InsertUser(ctx context.Context, user *models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	m.users[user.ID] = *user
	return nil
}

func (m *MemoryStore) UpdateUser(ctx context.Context, user models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[user.ID]; !ok {
		return ErrNotFound
	}
	m.users[user.ID] = user
	return nil
}

func (m *MemoryStore) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *MemoryStore) SetTheme(ctx context.Context, id primitive.ObjectID, theme string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Preferences.Theme = theme
	m.users[id] = u
	return nil
}

func (m *MemoryStore) GetCredentialByEmail(ctx context.Context, email string) (models.Credential, error) {
	if err := ctx.Err(); err != nil {
		return models.Credential{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	cred, ok := m.credentials[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return models.Credential{}, ErrNotFound
	}
	return cred, nil
}

func (m *MemoryStore) InsertCredential(ctx context.Context, cred *models.Credential) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	cred.Email = strings.ToLower(strings.TrimSpace(cred.Email))
	if _, ok := m.credentials[cred.Email]; ok {
		return ErrEmailTaken
	}
	if cred.ID.IsZero() {
		cred.ID = primitive.NewObjectID()
	}
	m.credentials[cred.Email] = *cred
	return nil
}

func (m *MemoryStore) DeleteCredential(ctx context.Context, email string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	email = strings.ToLower(strings.TrimSpace(email))
	if _, ok := m.credentials[email]; !ok {
		return ErrNotFound
	}
	delete(m.credentials, email)
	return nil
}

func (m *MemoryStore) AppendLog(ctx context.Context, entry *models.Log) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	entry.ID = primitive.NewObjectID()
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	m.logs = append(m.logs, *entry)
	return nil
}

func (m *MemoryStore) RecentLogs(ctx context.Context, limit int) ([]models.Log, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit = logWindow(limit)
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := slices.Clone(m.logs)
	slices.Reverse(out)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) GetConfig(ctx context.Context) (models.AppConfig, error) {
	if err := ctx.Err(); err != nil {
		return models.AppConfig{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.config == nil {
		return models.AppConfig{}, ErrNotFound
	}
	return *m.config, nil
}

func (m *MemoryStore) SaveConfig(ctx context.Context, cfg models.AppConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	cfg.ID = models.ConfigDocumentID
	m.config = &cfg
	return nil
}
