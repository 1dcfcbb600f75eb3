package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cyderes/notion-sync/internal/config"
	"github.com/cyderes/notion-sync/internal/models"
)

const (
	snapshotsCollection = "snapshots"
	statusCollection    = "sync_status"
)

// MongoDBStorage mirrors the latest snapshot into a MongoDB collection
type MongoDBStorage struct {
	client    *mongo.Client
	snapshots *mongo.Collection
	status    *mongo.Collection
}

// NewMongoDBStorage connects to MongoDB and verifies the connection
func NewMongoDBStorage(ctx context.Context, cfg config.StorageConfig) (*MongoDBStorage, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoDBURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	db := client.Database(cfg.MongoDatabase)
	return &MongoDBStorage{
		client:    client,
		snapshots: db.Collection(snapshotsCollection),
		status:    db.Collection(statusCollection),
	}, nil
}

// snapshotBSON converts the document into a BSON document keyed "latest"
func snapshotBSON(doc *models.Document) (bson.D, error) {
	b, err := Encode(doc)
	if err != nil {
		return nil, err
	}
	body, err := jsonToBSON(b)
	if err != nil {
		return nil, fmt.Errorf("failed to convert document to bson: %w", err)
	}
	return bson.D{
		{Key: "_id", Value: latestKey},
		{Key: "synced_at", Value: doc.SyncedAt.UTC()},
		{Key: "document", Value: body},
	}, nil
}

// jsonToBSON converts plain JSON into an ordered BSON document. Keys are taken
// literally, so user-defined names such as "$date" are not read as extended JSON.
func jsonToBSON(b []byte) (bson.D, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	v, err := decodeBSONValue(dec)
	if err != nil {
		return nil, err
	}
	d, ok := v.(bson.D)
	if !ok {
		return nil, errors.New("top-level JSON value is not an object")
	}
	return d, nil
}

func decodeBSONValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			d := bson.D{}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, _ := keyTok.(string)
				val, err := decodeBSONValue(dec)
				if err != nil {
					return nil, err
				}
				d = append(d, bson.E{Key: key, Value: val})
			}
			_, err := dec.Token()
			return d, err
		case '[':
			a := bson.A{}
			for dec.More() {
				val, err := decodeBSONValue(dec)
				if err != nil {
					return nil, err
				}
				a = append(a, val)
			}
			_, err := dec.Token()
			return a, err
		default:
			return nil, fmt.Errorf("unexpected delimiter %s", t)
		}
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, nil
		}
		return t.Float64()
	default:
		// string, bool or nil
		return t, nil
	}
}

// statusSet is the upsert update for the status record. A zero
// LastSuccessfulRun is omitted so the stored value survives failed runs.
func statusSet(status models.SyncStatus) bson.M {
	return bson.M{"$set": status}
}

// StoreDocument replaces the "latest" snapshot document
func (m *MongoDBStorage) StoreDocument(ctx context.Context, doc *models.Document) error {
	record, err := snapshotBSON(doc)
	if err != nil {
		return err
	}
	_, err = m.snapshots.ReplaceOne(ctx, bson.M{"_id": latestKey}, record, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to store document in mongodb: %w", err)
	}
	return nil
}

// UpdateSyncStatus upserts the sync status record
func (m *MongoDBStorage) UpdateSyncStatus(ctx context.Context, status models.SyncStatus) error {
	_, err := m.status.UpdateOne(ctx,
		bson.M{"_id": statusKey},
		statusSet(status),
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to store sync status in mongodb: %w", err)
	}
	return nil
}

func (m *MongoDBStorage) Close() error {
	return m.client.Disconnect(context.Background())
}
