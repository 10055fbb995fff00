// server/internal/database/assets.go
package database

import (
	"context"
	"fmt"
	"time"

	"edc-panorama-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (s *MongoStore) ListAssets(ctx context.Context) ([]models.Asset, error) {
	opts := options.Find().SetSort(bson.D{{Key: "code", Value: 1}})
	cursor, err := s.assets().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find assets: %w", err)
	}
	defer cursor.Close(ctx)

	assets := []models.Asset{}
	if err := cursor.All(ctx, &assets); err != nil {
		return nil, fmt.Errorf("decode assets: %w", err)
	}
	return assets, nil
}

func (s *MongoStore) GetAsset(ctx context.Context, id primitive.ObjectID) (models.Asset, error) {
	var asset models.Asset
	err := s.assets().FindOne(ctx, bson.M{"_id": id}).Decode(&asset)
	if err != nil {
		return models.Asset{}, notFound(err)
	}
	return asset, nil
}

func (s *MongoStore) InsertAsset(ctx context.Context, asset *models.Asset) error {
	now := time.Now().UTC()
	asset.ID = primitive.NewObjectID()
	asset.CreatedAt = now
	asset.UpdatedAt = now
	if _, err := s.assets().InsertOne(ctx, asset); err != nil {
		asset.ID = primitive.NilObjectID
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateCode
		}
		return fmt.Errorf("insert asset: %w", err)
	}
	return nil
}

func (s *MongoStore) UpdateAsset(ctx context.Context, asset models.Asset) error {
	asset.UpdatedAt = time.Now().UTC()
	res, err := s.assets().ReplaceOne(ctx, bson.M{"_id": asset.ID}, asset)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateCode
		}
		return fmt.Errorf("replace asset: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) SetArchived(ctx context.Context, id primitive.ObjectID, archived bool, state string) error {
	set := bson.M{"isArchived": archived, "updatedAt": time.Now().UTC()}
	if state != "" {
		set["state"] = state
	}
	res, err := s.assets().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update asset archive flag: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) DeleteAsset(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.assets().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete asset: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) DeleteAssets(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	var deleted int64
	for _, chunk := range chunkIDs(ids, DeleteBatchSize) {
		res, err := s.assets().DeleteMany(ctx, bson.M{"_id": bson.M{"$in": chunk}})
		if err != nil {
			return deleted, fmt.Errorf("delete assets batch: %w", err)
		}
		deleted += res.DeletedCount
	}
	return deleted, nil
}

// UpsertAssetByCode merges the imported fields into the asset holding the
// same code, creating it when absent.
func (s *MongoStore) UpsertAssetByCode(ctx context.Context, asset models.Asset) error {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"code":             asset.Code,
			"name":             asset.Name,
			"category":         asset.Category,
			"location":         asset.Location,
			"acquisitionYear":  asset.AcquisitionYear,
			"registrationDate": asset.RegistrationDate,
			"state":            asset.State,
			"holder":           asset.Holder,
			"holderPresence":   asset.HolderPresence,
			"door":             asset.Door,
			"description":      asset.Description,
			"observation":      asset.Observation,
			"customAttributes": asset.CustomAttributes,
			"isArchived":       false,
			"updatedAt":        now,
		},
		"$setOnInsert": bson.M{"createdAt": now},
	}
	opts := options.Update().SetUpsert(true)
	if _, err := s.assets().UpdateOne(ctx, bson.M{"code": asset.Code}, update, opts); err != nil {
		return fmt.Errorf("upsert asset %s: %w", asset.Code, err)
	}
	return nil
}
