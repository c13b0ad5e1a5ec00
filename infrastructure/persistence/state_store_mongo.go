package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const stateCollection = "tracker_state"

type stateDocument struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// documentCollection is the part of *mongo.Collection the store uses.
type documentCollection interface {
	FindOne(ctx context.Context, filter any, opts ...options.Lister[options.FindOneOptions]) *mongo.SingleResult
	ReplaceOne(ctx context.Context, filter any, replacement any, opts ...options.Lister[options.ReplaceOptions]) (*mongo.UpdateResult, error)
}

// StateStoreMongo keeps one document per tracker key.
type StateStoreMongo struct {
	client     *mongo.Client
	collection documentCollection
	prefix     string
	now        func() time.Time
}

func NewStateStoreMongo(client *mongo.Client, database, prefix string) *StateStoreMongo {
	return &StateStoreMongo{
		client:     client,
		collection: client.Database(database).Collection(stateCollection),
		prefix:     prefix,
		now:        time.Now,
	}
}

func (s *StateStoreMongo) Load(ctx context.Context, key string) ([]byte, bool, error) {
	var doc stateDocument
	err := s.collection.FindOne(ctx, bson.D{{Key: "_id", Value: prefixedKey(s.prefix, key)}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load %s: %w", key, err)
	}
	return []byte(doc.Value), true, nil
}

func (s *StateStoreMongo) Save(ctx context.Context, key string, value []byte) error {
	doc := stateDocument{Key: prefixedKey(s.prefix, key), Value: string(value), UpdatedAt: s.now().UTC()}
	_, err := s.collection.ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: doc.Key}},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func (s *StateStoreMongo) Close() error {
	if s.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
