package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/curatist/curatist/internal/types"
)

// MongoStore persists items in a MongoDB collection with a unique compound
// index on (platform, platform_id).
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *slog.Logger
}

// NewMongoStore connects to MongoDB and ensures the uniqueness index.
func NewMongoStore(uri, database, collection string, logger *slog.Logger) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}

	coll := client.Database(database).Collection(collection)

	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "platform", Value: 1}, {Key: "platform_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("mongodb ensure index: %w", err)
	}

	return &MongoStore{
		client:     client,
		collection: coll,
		logger:     logger.With("component", "mongo_store"),
	}, nil
}

func (s *MongoStore) Upsert(ctx context.Context, items []*types.Item) error {
	if len(items) == 0 {
		return nil
	}

	models := make([]mongo.WriteModel, 0, len(items))
	for _, item := range items {
		filter := bson.M{"platform": item.Platform, "platform_id": item.PlatformID}
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(filter).
			SetReplacement(item).
			SetUpsert(true))
	}

	res, err := s.collection.BulkWrite(ctx, models)
	if err != nil {
		return &types.StoreError{Op: "upsert", Err: err}
	}

	s.logger.Debug("items upserted",
		"count", len(items),
		"inserted", res.UpsertedCount,
		"modified", res.ModifiedCount,
	)
	return nil
}

func (s *MongoStore) FetchByPlatformIDs(ctx context.Context, platform types.Platform, ids []string) ([]*types.Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cursor, err := s.collection.Find(ctx, bson.M{
		"platform":    platform,
		"platform_id": bson.M{"$in": ids},
	})
	if err != nil {
		return nil, &types.StoreError{Op: "fetch", Err: err}
	}

	var items []*types.Item
	if err := cursor.All(ctx, &items); err != nil {
		return nil, &types.StoreError{Op: "fetch", Err: err}
	}
	return items, nil
}

func (s *MongoStore) ExistingIDs(ctx context.Context, platform types.Platform, ids []string) (map[string]bool, error) {
	existing, err := s.FetchByPlatformIDs(ctx, platform, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(existing))
	for _, item := range existing {
		out[item.PlatformID] = true
	}
	return out, nil
}

func (s *MongoStore) Delete(ctx context.Context, platform types.Platform, id string) error {
	_, err := s.collection.DeleteOne(ctx, bson.M{"platform": platform, "platform_id": id})
	if err != nil {
		return &types.StoreError{Op: "delete", Err: err}
	}
	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
