package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type settingsDocument struct {
	Key       string    `bson:"_id"`
	Data      string    `bson:"data"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// SettingsStorage keeps each serialized settings object as one document keyed by the storage key.
type SettingsStorage struct {
	collection *mongo.Collection
}

func NewSettingsStorage(db *DB, collection string) *SettingsStorage {
	return &SettingsStorage{collection: db.Database.Collection(collection)}
}

func (s *SettingsStorage) Load(ctx context.Context, key string) ([]byte, error) {
	var doc settingsDocument
	err := s.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find settings %q: %w", key, err)
	}
	return []byte(doc.Data), nil
}

func (s *SettingsStorage) Save(ctx context.Context, key string, data []byte) error {
	update := bson.M{
		"$set": bson.M{
			"data":       string(data),
			"updated_at": time.Now(),
		},
	}
	_, err := s.collection.UpdateOne(ctx, bson.M{"_id": key}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert settings %q: %w", key, err)
	}
	return nil
}
