// Package mongodb implements the repositories on MongoDB.
//
// Capacity is held by an attending counter on each event document. Admit
// claims a slot with a conditional $inc that only matches while attending is
// below capacity, then inserts the registration; the unique (user_id, event_id)
// index rejects duplicates and the claimed slot is released again.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"eventhub/internal/domain"
)

const (
	usersCollection         = "users"
	eventsCollection        = "events"
	registrationsCollection = "registrations"
)

// Connect opens a client and pings the primary.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(25).
		SetServerSelectionTimeout(5*time.Second))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the indexes the repositories rely on. It is safe to
// call on every start.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		eventsCollection: {
			{Keys: bson.D{{Key: "organizer_id", Value: 1}, {Key: "date_time", Value: -1}}},
		},
		registrationsCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "event_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "event_id", Value: 1}, {Key: "registered_at", Value: -1}}},
		},
	}
	for coll, models := range specs {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create %s indexes: %w", coll, err)
		}
	}
	return nil
}

// NewEventRepository returns an EventRepository backed by db.
func NewEventRepository(db *mongo.Database) domain.EventRepository {
	return &EventRepository{
		events:        db.Collection(eventsCollection),
		users:         db.Collection(usersCollection),
		registrations: db.Collection(registrationsCollection),
	}
}

// NewUserRepository returns a UserRepository backed by db.
func NewUserRepository(db *mongo.Database) domain.UserRepository {
	return &UserRepository{users: db.Collection(usersCollection)}
}

// NewRegistrationRepository returns a RegistrationRepository backed by db.
func NewRegistrationRepository(db *mongo.Database) domain.RegistrationRepository {
	return &RegistrationRepository{
		events:        db.Collection(eventsCollection),
		users:         db.Collection(usersCollection),
		registrations: db.Collection(registrationsCollection),
	}
}

func exists(ctx context.Context, coll *mongo.Collection, id string) (bool, error) {
	n, err := coll.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
