package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoProvider hands out one shared *mongo.Database. The connection is
// opened on the first call to Database and reused for the process lifetime.
// A failed first connect is cached too; the process is expected to exit.
type MongoProvider struct {
	uri    string
	dbName string
	log    zerolog.Logger

	once   sync.Once
	client *mongo.Client
	db     *mongo.Database
	err    error
}

func NewMongoProvider(uri, dbName string, log zerolog.Logger) *MongoProvider {
	return &MongoProvider{uri: uri, dbName: dbName, log: log}
}

// Database connects on first use and returns the shared handle.
func (p *MongoProvider) Database(ctx context.Context) (*mongo.Database, error) {
	p.once.Do(func() {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		opts := options.Client().
			ApplyURI(p.uri).
			SetServerSelectionTimeout(5 * time.Second)

		client, err := mongo.Connect(connectCtx, opts)
		if err != nil {
			p.err = fmt.Errorf("mongo connect: %w", err)
			return
		}
		if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
			_ = client.Disconnect(context.Background())
			p.err = fmt.Errorf("mongo ping: %w", err)
			return
		}

		p.client = client
		p.db = client.Database(p.dbName)
		p.log.Info().Str("database", p.dbName).Msg("✅ connected to MongoDB")
	})
	return p.db, p.err
}

// Ping checks the server is reachable. Used by the health check.
func (p *MongoProvider) Ping(ctx context.Context) error {
	db, err := p.Database(ctx)
	if err != nil {
		return err
	}
	return db.Client().Ping(ctx, readpref.Primary())
}

// Close disconnects if a connection was ever opened.
func (p *MongoProvider) Close(ctx context.Context) error {
	if p.client == nil {
		return nil
	}
	return p.client.Disconnect(ctx)
}
