// Path: internal/storage/status_storage.go
package storage

import (
	"context"
	"errors"

	"gh-trending/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const runRecordID = "last_run"

// MongoStatusStorage persists the outcome of the most recent cycle so the
// daemon's state is visible across restarts.
type MongoStatusStorage struct {
	collection *mongo.Collection
}

// NewMongoStatusStorage creates a new storage adapter for run status.
func NewMongoStatusStorage(db *mongo.Database, collectionName string) *MongoStatusStorage {
	return &MongoStatusStorage{
		collection: db.Collection(collectionName),
	}
}

// LastRun returns the most recent run record, or nil if no cycle has ever
// completed.
func (s *MongoStatusStorage) LastRun(ctx context.Context) (*domain.RunRecord, error) {
	var rec domain.RunRecord
	err := s.collection.FindOne(ctx, bson.M{"_id": runRecordID}).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// RecordRun overwrites the run record with the given cycle outcome.
func (s *MongoStatusStorage) RecordRun(ctx context.Context, rec domain.RunRecord) error {
	rec.ID = runRecordID
	opts := options.Replace().SetUpsert(true)
	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": runRecordID}, rec, opts)
	return err
}
