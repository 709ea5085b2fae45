package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/yatagaratsu666/Servidor-Inventario/internal/logger"
	"github.com/yatagaratsu666/Servidor-Inventario/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDBLogRepository implements MutationLogRepository for MongoDB
type MongoDBLogRepository struct {
	conn       *MongoConn
	collection *mongo.Collection
}

// NewMongoDBLogRepository creates a new MongoDB mutation log repository
func NewMongoDBLogRepository(ctx context.Context, conn *MongoConn, collectionName string) (*MongoDBLogRepository, error) {
	collection := conn.Database().Collection(collectionName)

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "player", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "counterparty", Value: 1}, {Key: "created_at", Value: -1}}},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Component("mongodb").Warn("Failed to create mutation log indexes", "error", err)
	}

	return &MongoDBLogRepository{conn: conn, collection: collection}, nil
}

// InsertMutationLogs inserts log entries; duplicates from a retried flush are ignored.
func (r *MongoDBLogRepository) InsertMutationLogs(ctx context.Context, logs []model.MutationLog) error {
	if len(logs) == 0 {
		return nil
	}

	docs := make([]interface{}, len(logs))
	for i := range logs {
		if logs[i].CreatedAt.IsZero() {
			logs[i].CreatedAt = time.Now().UTC()
		}
		docs[i] = logs[i]
	}

	_, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("failed to insert mutation logs: %w", err)
	}
	return nil
}

// GetMutationLogs retrieves logs with pagination
func (r *MongoDBLogRepository) GetMutationLogs(ctx context.Context, player string, limit, offset int) ([]model.MutationLog, int64, error) {
	filter := bson.M{}
	if player != "" {
		filter = bson.M{"$or": bson.A{bson.M{"player": player}, bson.M{"counterparty": player}}}
	}

	findOptions := options.Find()
	findOptions.SetSort(bson.D{{Key: "created_at", Value: -1}})
	findOptions.SetLimit(int64(limit))
	findOptions.SetSkip(int64(offset))

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find mutation logs: %w", err)
	}
	defer cursor.Close(ctx)

	var logs []model.MutationLog
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, 0, fmt.Errorf("failed to decode mutation logs: %w", err)
	}

	// Ensure not nil slice for JSON
	if logs == nil {
		logs = []model.MutationLog{}
	}

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count mutation logs: %w", err)
	}

	return logs, count, nil
}

// DeleteLogsOlderThan removes logs older than threshold.
func (r *MongoDBLogRepository) DeleteLogsOlderThan(ctx context.Context, threshold time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-threshold)

	result, err := r.collection.DeleteMany(ctx, bson.M{"created_at": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete old mutation logs: %w", err)
	}
	return result.DeletedCount, nil
}

// Close closes the MongoDB connection
func (r *MongoDBLogRepository) Close() error {
	return r.conn.Close()
}

var _ MutationLogRepository = (*MongoDBLogRepository)(nil)
