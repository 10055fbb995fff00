// server/internal/database/logs.go
package database

import (
	"context"
	"fmt"
	"time"

	"edc-panorama-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Audit window sizes. Larger requests are capped at MaxLogLimit.
const (
	DefaultLogLimit = 100
	MaxLogLimit     = 100
)

// logWindow clamps a requested limit into (0, MaxLogLimit].
func logWindow(limit int) int {
	if limit <= 0 {
		return DefaultLogLimit
	}
	return min(limit, MaxLogLimit)
}

func (s *MongoStore) AppendLog(ctx context.Context, entry *models.Log) error {
	entry.ID = primitive.NewObjectID()
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	if _, err := s.logs().InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("insert log: %w", err)
	}
	return nil
}

func (s *MongoStore) RecentLogs(ctx context.Context, limit int) ([]models.Log, error) {
	limit = logWindow(limit)
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := s.logs().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find logs: %w", err)
	}
	defer cursor.Close(ctx)

	logs := []models.Log{}
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, fmt.Errorf("decode logs: %w", err)
	}
	return logs, nil
}
