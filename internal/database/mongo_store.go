// server/internal/database/mongo_store.go
package database

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implements Store on top of a MongoDB database.
type MongoStore struct {
	db *mongo.Database
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

func (s *MongoStore) assets() *mongo.Collection      { return s.db.Collection(AssetsCollection) }
func (s *MongoStore) users() *mongo.Collection       { return s.db.Collection(UsersCollection) }
func (s *MongoStore) credentials() *mongo.Collection { return s.db.Collection(CredentialsCollection) }
func (s *MongoStore) logs() *mongo.Collection        { return s.db.Collection(LogsCollection) }
func (s *MongoStore) config() *mongo.Collection      { return s.db.Collection(ConfigCollection) }

// EnsureIndexes creates the unique and sort indexes the store relies on.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	indexes := []struct {
		coll  *mongo.Collection
		model mongo.IndexModel
	}{
		{s.assets(), mongo.IndexModel{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("code_unique"),
		}},
		{s.assets(), mongo.IndexModel{
			Keys:    bson.D{{Key: "isArchived", Value: 1}},
			Options: options.Index().SetName("is_archived"),
		}},
		{s.credentials(), mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("email_unique"),
		}},
		{s.users(), mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("email"),
		}},
		{s.logs(), mongo.IndexModel{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("timestamp_desc"),
		}},
	}
	for _, idx := range indexes {
		if _, err := idx.coll.Indexes().CreateOne(ctx, idx.model); err != nil {
			return fmt.Errorf("create index on %s: %w", idx.coll.Name(), err)
		}
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

var _ Store = (*MongoStore)(nil)
