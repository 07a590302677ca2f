package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// CartStorage keeps serialized carts in a Mongo collection, one document
// per session holding a key/value map.
type CartStorage struct {
	coll    *mongo.Collection
	timeout time.Duration
	log     *zap.Logger
}

func NewCartStorage(db *mongo.Database, timeout time.Duration, log *zap.Logger) *CartStorage {
	return &CartStorage{coll: db.Collection("carts"), timeout: timeout, log: log}
}

// ForSession returns the key/value view of one session's storage.
func (s *CartStorage) ForSession(sessionID string) *SessionStorage {
	return &SessionStorage{parent: s, sessionID: sessionID}
}

// SessionStorage implements cart.Storage for a single session.
type SessionStorage struct {
	parent    *CartStorage
	sessionID string
}

type cartDocument struct {
	SessionID string            `bson:"_id"`
	Values    map[string]string `bson:"values"`
	UpdatedAt time.Time         `bson:"updated_at"`
}

// Get reports a missing value for unknown sessions and keys. Read failures
// are returned so callers never mistake them for an empty cart.
func (s *SessionStorage) Get(key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.parent.timeout)
	defer cancel()

	var doc cartDocument
	err := s.parent.coll.FindOne(ctx, bson.M{"_id": s.sessionID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		s.parent.log.Warn("cart storage read failed", zap.String("session", s.sessionID), zap.Error(err))
		return "", false, fmt.Errorf("CartStorage.Get: %w", err)
	}
	v, ok := doc.Values[key]
	return v, ok, nil
}

func (s *SessionStorage) Set(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.parent.timeout)
	defer cancel()

	_, err := s.parent.coll.UpdateOne(ctx,
		bson.M{"_id": s.sessionID},
		bson.M{"$set": bson.M{
			"values." + key: value,
			"updated_at":    time.Now().UTC(),
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("CartStorage.Set: %w", err)
	}
	return nil
}
