package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

func TestStateDocument_BSON(t *testing.T) {
	doc := stateDocument{Key: prefixedKey("p:", "timeGoal"), Value: "120", UpdatedAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)}

	raw, err := bson.Marshal(doc)
	require.NoError(t, err)

	var decoded bson.M
	require.NoError(t, bson.Unmarshal(raw, &decoded))
	assert.Equal(t, "p:timeGoal", decoded["_id"])
	assert.Equal(t, "120", decoded["value"])

	var back stateDocument
	require.NoError(t, bson.Unmarshal(raw, &back))
	assert.True(t, doc.UpdatedAt.Equal(back.UpdatedAt))
}

type fakeCollection struct {
	docs        map[string]stateDocument
	findErr     error
	replaceErr  error
	lastFilter  any
	lastUpserts *bool
}

func (f *fakeCollection) FindOne(_ context.Context, filter any, _ ...options.Lister[options.FindOneOptions]) *mongo.SingleResult {
	f.lastFilter = filter
	if f.findErr != nil {
		return mongo.NewSingleResultFromDocument(bson.D{}, f.findErr, nil)
	}
	id := filter.(bson.D)[0].Value.(string)
	doc, ok := f.docs[id]
	if !ok {
		return mongo.NewSingleResultFromDocument(bson.D{}, mongo.ErrNoDocuments, nil)
	}
	return mongo.NewSingleResultFromDocument(doc, nil, nil)
}

func (f *fakeCollection) ReplaceOne(_ context.Context, filter any, replacement any, opts ...options.Lister[options.ReplaceOptions]) (*mongo.UpdateResult, error) {
	f.lastFilter = filter
	if f.replaceErr != nil {
		return nil, f.replaceErr
	}
	var ro options.ReplaceOptions
	for _, o := range opts {
		for _, set := range o.List() {
			if err := set(&ro); err != nil {
				return nil, err
			}
		}
	}
	f.lastUpserts = ro.Upsert
	doc := replacement.(stateDocument)
	f.docs[doc.Key] = doc
	return &mongo.UpdateResult{UpsertedCount: 1}, nil
}

func newMongoStoreWithFake(prefix string) (*StateStoreMongo, *fakeCollection) {
	fake := &fakeCollection{docs: map[string]stateDocument{}}
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return &StateStoreMongo{collection: fake, prefix: prefix, now: func() time.Time { return now }}, fake
}

func TestStateStoreMongo_Load(t *testing.T) {
	store, fake := newMongoStoreWithFake("alice:")
	fake.docs["alice:timeGoal"] = stateDocument{Key: "alice:timeGoal", Value: "90"}

	value, found, err := store.Load(context.Background(), "timeGoal")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "90", string(value))
	assert.Equal(t, bson.D{{Key: "_id", Value: "alice:timeGoal"}}, fake.lastFilter)

	value, found, err = store.Load(context.Background(), "watchedVideos")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, value)

	fake.findErr = errors.New("server selection timeout")
	_, _, err = store.Load(context.Background(), "monthlyProgress")
	assert.ErrorContains(t, err, "server selection timeout")
}

func TestStateStoreMongo_Save(t *testing.T) {
	store, fake := newMongoStoreWithFake("")

	require.NoError(t, store.Save(context.Background(), "timeGoal", []byte("120")))
	require.NotNil(t, fake.lastUpserts)
	assert.True(t, *fake.lastUpserts)
	assert.Equal(t, "120", fake.docs["timeGoal"].Value)
	assert.Equal(t, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC), fake.docs["timeGoal"].UpdatedAt)

	// the upsert overwrites the same document
	require.NoError(t, store.Save(context.Background(), "timeGoal", []byte("45")))
	assert.Len(t, fake.docs, 1)
	assert.Equal(t, "45", fake.docs["timeGoal"].Value)

	fake.replaceErr = errors.New("not primary")
	err := store.Save(context.Background(), "timeGoal", []byte("30"))
	assert.ErrorContains(t, err, "save timeGoal")
	assert.NoError(t, store.Close())
}
