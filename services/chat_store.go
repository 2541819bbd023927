package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"map-action-api/models"
)

const chatSessionsCollection = "chat_sessions"

// MongoChatStore keeps one document per chat session in MongoDB.
// History is always scoped to a session id; no process-wide state.
type MongoChatStore struct {
	collection *mongo.Collection
}

// NewMongoChatStore builds the store over the given database handle.
func NewMongoChatStore(db *mongo.Database) *MongoChatStore {
	return &MongoChatStore{collection: db.Collection(chatSessionsCollection)}
}

// NewSessionID mints a fresh session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// History returns the stored messages for a session, oldest first.
// An unknown session is an empty history, not an error.
func (s *MongoChatStore) History(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var session models.ChatSession
	err := s.collection.FindOne(ctx, bson.M{"_id": sessionID}).Decode(&session)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load chat session %s: %w", sessionID, err)
	}
	return session.Messages, nil
}

// Append adds messages to a session, creating the session document on
// first use.
func (s *MongoChatStore) Append(ctx context.Context, sessionID string, messages ...models.ChatMessage) error {
	if len(messages) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	update := bson.M{
		"$push": bson.M{"messages": bson.M{"$each": messages}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}
	_, err := s.collection.UpdateByID(ctx, sessionID, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("append to chat session %s: %w", sessionID, err)
	}
	return nil
}
