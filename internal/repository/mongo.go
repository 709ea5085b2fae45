package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/yatagaratsu666/Servidor-Inventario/internal/logger"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConn is one pooled client shared by the MongoDB repositories.
type MongoConn struct {
	client    *mongo.Client
	db        *mongo.Database
	closeOnce sync.Once
	closeErr  error
}

// ConnectMongo opens a pooled client and verifies it with a ping.
func ConnectMongo(uri, database string) (*MongoConn, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	clientOpts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(50).
		SetMinPoolSize(5).
		SetMaxConnIdleTime(5 * time.Minute).
		SetRetryWrites(true).
		// Nested item payloads decode as plain maps instead of bson.D.
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.Component("mongodb").Info("Connected", "database", database)
	return &MongoConn{client: client, db: client.Database(database)}, nil
}

// Database returns the configured database handle.
func (c *MongoConn) Database() *mongo.Database {
	return c.db
}

// Close disconnects the client. Safe to call from every repository sharing it.
func (c *MongoConn) Close() error {
	c.closeOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		c.closeErr = c.client.Disconnect(ctx)
	})
	return c.closeErr
}
