package mongodb

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"eventhub/internal/domain"
)

type EventRepository struct {
	events        *mongo.Collection
	users         *mongo.Collection
	registrations *mongo.Collection
}

func (r *EventRepository) Create(ctx context.Context, e *domain.Event) error {
	ok, err := exists(ctx, r.users, e.OrganizerID)
	if err != nil {
		return fmt.Errorf("check organizer: %w", err)
	}
	if !ok {
		return domain.ErrUserNotFound
	}
	e.ID = uuid.NewString()
	e.Attending = 0
	if _, err := r.events.InsertOne(ctx, newEventDoc(e)); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (r *EventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	var doc eventDoc
	if err := r.events.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("find event: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *EventRepository) ListByOrganizer(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	cur, err := r.events.Find(ctx, bson.M{"organizer_id": organizerID},
		options.Find().SetSort(bson.D{{Key: "date_time", Value: -1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find events: %w", err)
	}
	var docs []eventDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}
	out := make([]*domain.Event, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// Update writes the editable fields. The filter only matches while the stored
// attendance fits under the new capacity.
func (r *EventRepository) Update(ctx context.Context, e *domain.Event) error {
	res, err := r.events.UpdateOne(ctx,
		bson.M{"_id": e.ID, "attending": bson.M{"$lte": e.Capacity}},
		bson.M{"$set": bson.M{
			"title":       e.Title,
			"category":    e.Category,
			"date_time":   e.DateTime.UTC(),
			"venue_type":  string(e.VenueType),
			"location":    e.Location,
			"price":       e.Price,
			"capacity":    e.Capacity,
			"banner_url":  e.BannerURL,
			"description": e.Description,
			"updated_at":  e.UpdatedAt.UTC(),
		}})
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}
	ok, err := exists(ctx, r.events, e.ID)
	if err != nil {
		return fmt.Errorf("check event: %w", err)
	}
	if !ok {
		return domain.ErrEventNotFound
	}
	return domain.ErrCapacityBelowAttendance
}

// Delete removes an event with no active registrations together with its
// cancelled ones.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	res, err := r.events.DeleteOne(ctx, bson.M{"_id": id, "attending": 0})
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if res.DeletedCount == 0 {
		ok, err := exists(ctx, r.events, id)
		if err != nil {
			return fmt.Errorf("check event: %w", err)
		}
		if !ok {
			return domain.ErrEventNotFound
		}
		return domain.ErrEventHasActiveRegistrations
	}
	if _, err := r.registrations.DeleteMany(context.WithoutCancel(ctx), bson.M{"event_id": id}); err != nil {
		return fmt.Errorf("delete event registrations: %w", err)
	}
	return nil
}
