// server/internal/database/app_config.go
package database

import (
	"context"
	"fmt"

	"edc-panorama-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (s *MongoStore) GetConfig(ctx context.Context) (models.AppConfig, error) {
	var cfg models.AppConfig
	err := s.config().FindOne(ctx, bson.M{"_id": models.ConfigDocumentID}).Decode(&cfg)
	if err != nil {
		return models.AppConfig{}, notFound(err)
	}
	return cfg, nil
}

func (s *MongoStore) SaveConfig(ctx context.Context, cfg models.AppConfig) error {
	cfg.ID = models.ConfigDocumentID
	opts := options.Replace().SetUpsert(true)
	if _, err := s.config().ReplaceOne(ctx, bson.M{"_id": models.ConfigDocumentID}, cfg, opts); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}
