package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yatagaratsu666/Servidor-Inventario/internal/logger"
	"github.com/yatagaratsu666/Servidor-Inventario/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDBPlayerRepository implements PlayerRepository on a MongoDB collection
// with one document per player.
type MongoDBPlayerRepository struct {
	conn       *MongoConn
	collection *mongo.Collection
	log        *slog.Logger
}

// NewMongoDBPlayerRepository binds the players collection and ensures its unique index.
func NewMongoDBPlayerRepository(ctx context.Context, conn *MongoConn, collection string) (*MongoDBPlayerRepository, error) {
	coll := conn.Database().Collection(collection)
	log := logger.Component("mongodb")

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: model.FieldNombreUsuario, Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := coll.Indexes().CreateOne(ctx, indexModel); err != nil {
		log.Warn("Failed to create player index", "error", err)
	}

	return &MongoDBPlayerRepository{conn: conn, collection: coll, log: log}, nil
}

// GetPlayer loads one player document by name.
func (r *MongoDBPlayerRepository) GetPlayer(ctx context.Context, name string) (*model.Player, error) {
	var p model.Player
	err := r.collection.FindOne(ctx, bson.M{model.FieldNombreUsuario: name}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: %s", model.ErrPlayerNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	p.Inventario.Normalize()
	p.Equipados.Normalize()
	return &p, nil
}

// CreatePlayer inserts a new player document.
func (r *MongoDBPlayerRepository) CreatePlayer(ctx context.Context, p *model.Player) error {
	if _, err := r.collection.InsertOne(ctx, p); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", model.ErrPlayerExists, p.NombreUsuario)
		}
		return fmt.Errorf("failed to create player: %w", err)
	}
	return nil
}

// BatchWrite sends every statement as one update in a single ordered bulk write.
func (r *MongoDBPlayerRepository) BatchWrite(ctx context.Context, stmts []model.Statement) (*model.BatchResult, error) {
	result := &model.BatchResult{Statements: len(stmts)}
	if len(stmts) == 0 {
		return result, nil
	}

	models := make([]mongo.WriteModel, len(stmts))
	for i, s := range stmts {
		m, err := writeModelFor(s)
		if err != nil {
			return result, err
		}
		models[i] = m
	}

	res, err := r.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true))
	if res != nil {
		result.Matched = int(res.MatchedCount)
		result.Modified = int(res.ModifiedCount)
	}
	if err != nil {
		var bwe mongo.BulkWriteException
		if errors.As(err, &bwe) {
			r.log.Error("Batch write partially applied",
				"statements", len(stmts),
				"modified", result.Modified,
				"write_errors", len(bwe.WriteErrors))
		}
		return result, fmt.Errorf("failed to batch write: %w", err)
	}
	return result, nil
}

// writeModelFor translates a statement into an update against the player's document.
func writeModelFor(s model.Statement) (mongo.WriteModel, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	filter := bson.M{model.FieldNombreUsuario: s.PlayerKey}
	var update bson.M

	switch s.Op {
	case model.OpRemoveFromList:
		update = bson.M{"$pull": bson.M{s.Path: matchDocument(*s.Match)}}
	case model.OpAppendToList:
		update = bson.M{"$push": bson.M{s.Path: s.Item}}
	case model.OpIncrementField:
		update = bson.M{"$inc": bson.M{s.Path: s.Delta}}
	case model.OpReplaceListElement:
		if s.Match.ID != nil {
			filter[s.Path+".id"] = *s.Match.ID
		} else {
			filter[s.Path+".name"] = s.Match.Name
		}
		update = bson.M{"$set": bson.M{s.Path + ".$": s.Item}}
	}

	return mongo.NewUpdateOneModel().SetFilter(filter).SetUpdate(update), nil
}

func matchDocument(m model.Match) bson.M {
	if m.ID != nil {
		return bson.M{"id": *m.ID}
	}
	return bson.M{"name": m.Name}
}

// GetStats returns statistics about the players collection.
func (r *MongoDBPlayerRepository) GetStats(ctx context.Context) (map[string]interface{}, error) {
	stats := make(map[string]interface{})
	stats["status"] = "connected"
	stats["backend"] = "mongodb"

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return stats, err
	}
	stats["total_players"] = count

	result := r.conn.Database().RunCommand(ctx, bson.D{{Key: "collStats", Value: r.collection.Name()}})
	var collStats bson.M
	if err := result.Decode(&collStats); err == nil {
		switch size := collStats["size"].(type) {
		case int64:
			stats["db_size_bytes"] = size
		case int32:
			stats["db_size_bytes"] = int64(size)
		case float64:
			stats["db_size_bytes"] = int64(size)
		}
	}

	return stats, nil
}

// Close closes the MongoDB connection.
func (r *MongoDBPlayerRepository) Close() error {
	return r.conn.Close()
}

var _ PlayerRepository = (*MongoDBPlayerRepository)(nil)
