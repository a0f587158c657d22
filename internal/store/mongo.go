package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// CollectionName is the MongoDB collection holding key-value documents.
const CollectionName = "kv"

type kvDocument struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// Mongo stores each key as one document whose _id is the key.
type Mongo struct {
	client     *mongo.Client
	collection *mongo.Collection
	log        *zap.Logger
}

// NewMongo connects to MongoDB and pings it.
func NewMongo(uri, dbName string, log *zap.Logger) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	log.Info("connected to mongodb", zap.String("database", dbName))

	return NewMongoFromDatabase(client.Database(dbName), log), nil
}

// NewMongoFromDatabase wraps an existing database handle.
func NewMongoFromDatabase(db *mongo.Database, log *zap.Logger) *Mongo {
	return &Mongo{
		client:     db.Client(),
		collection: db.Collection(CollectionName),
		log:        log,
	}
}

// Close disconnects from MongoDB.
func (m *Mongo) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := m.client.Disconnect(ctx); err != nil {
		m.log.Warn("error disconnecting from mongodb", zap.Error(err))
		return
	}
	m.log.Info("disconnected from mongodb")
}

// Get decodes the value under key into dest.
func (m *Mongo) Get(ctx context.Context, key string, dest any) (bool, error) {
	var doc kvDocument
	err := m.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, err
	}

	if err := json.Unmarshal([]byte(doc.Value), dest); err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
	}

	return true, nil
}

// Set upserts the document for key.
func (m *Mongo) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	doc := kvDocument{Key: key, Value: string(data), UpdatedAt: time.Now()}
	_, err = m.collection.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	return err
}

// Delete removes the document for key.
func (m *Mongo) Delete(ctx context.Context, key string) error {
	_, err := m.collection.DeleteOne(ctx, bson.M{"_id": key})
	return err
}

// SetRaw stores an undecoded payload. Used by the seeder and tests.
func (m *Mongo) SetRaw(ctx context.Context, key, raw string) error {
	doc := kvDocument{Key: key, Value: raw, UpdatedAt: time.Now()}
	_, err := m.collection.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	return err
}
