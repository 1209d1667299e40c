package mongodb

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"eventhub/internal/domain"
)

type RegistrationRepository struct {
	events        *mongo.Collection
	users         *mongo.Collection
	registrations *mongo.Collection
}

var activeStatuses = bson.A{string(domain.StatusPending), string(domain.StatusConfirmed)}

// Admit claims a slot and records the registration. A failed insert gives the
// slot back; the release ignores cancellation of ctx so an abandoned request
// cannot leak a seat.
func (r *RegistrationRepository) Admit(ctx context.Context, reg *domain.Registration) error {
	ok, err := exists(ctx, r.users, reg.UserID)
	if err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	if !ok {
		return domain.ErrUserNotFound
	}

	var claimed struct {
		Price float64 `bson:"price"`
	}
	err = r.events.FindOneAndUpdate(ctx,
		bson.M{
			"_id":   reg.EventID,
			"$expr": bson.M{"$lt": bson.A{"$attending", "$capacity"}},
		},
		bson.M{
			"$inc": bson.M{"attending": 1},
			"$set": bson.M{"updated_at": reg.CreatedAt.UTC()},
		},
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(bson.M{"price": 1}),
	).Decode(&claimed)
	if err != nil {
		if !isNoDocuments(err) {
			return fmt.Errorf("claim slot: %w", err)
		}
		ok, err := exists(ctx, r.events, reg.EventID)
		if err != nil {
			return fmt.Errorf("check event: %w", err)
		}
		if !ok {
			return domain.ErrEventNotFound
		}
		return domain.ErrEventFull
	}

	reg.ID = uuid.NewString()
	reg.PriceSnapshot = claimed.Price
	if _, err := r.registrations.InsertOne(ctx, newRegistrationDoc(reg)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			err = domain.ErrDuplicateRegistration
		} else {
			err = fmt.Errorf("insert registration: %w", err)
		}
		if relErr := r.release(context.WithoutCancel(ctx), reg.EventID, reg.CreatedAt); relErr != nil {
			return fmt.Errorf("%w (release slot: %v)", err, relErr)
		}
		return err
	}
	return nil
}

func (r *RegistrationRepository) release(ctx context.Context, eventID string, at time.Time) error {
	_, err := r.events.UpdateOne(ctx,
		bson.M{"_id": eventID, "attending": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"attending": -1}, "$set": bson.M{"updated_at": at.UTC()}})
	return err
}

func (r *RegistrationRepository) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *RegistrationRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Registration, error) {
	return r.findOne(ctx, bson.M{"event_id": eventID, "user_id": userID})
}

func (r *RegistrationRepository) findOne(ctx context.Context, filter bson.M) (*domain.Registration, error) {
	var doc registrationDoc
	if err := r.registrations.FindOne(ctx, filter).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, domain.ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("find registration: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *RegistrationRepository) CountActiveByEvent(ctx context.Context, eventID string) (int, error) {
	n, err := r.registrations.CountDocuments(ctx, bson.M{"event_id": eventID, "status": bson.M{"$in": activeStatuses}})
	if err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return int(n), nil
}

type facetCount struct {
	N int `bson:"n"`
}

func (r *RegistrationRepository) ListByEvent(ctx context.Context, eventID string, params domain.PaginationParams) ([]*domain.RegisteredUser, int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"event_id": eventID}}},
		// Registrations whose user is gone drop out before counting.
		{{Key: "$lookup", Value: bson.M{"from": usersCollection, "localField": "user_id", "foreignField": "_id", "as": "user"}}},
		{{Key: "$unwind", Value: "$user"}},
		{{Key: "$facet", Value: bson.M{
			"total": bson.A{bson.M{"$count": "n"}},
			"items": bson.A{
				bson.M{"$sort": bson.D{{Key: "registered_at", Value: -1}, {Key: "_id", Value: -1}}},
				bson.M{"$skip": params.Offset()},
				bson.M{"$limit": params.PageSize},
			},
		}}},
	}
	var result []struct {
		Total []facetCount `bson:"total"`
		Items []struct {
			Registration registrationDoc `bson:",inline"`
			User         userDoc         `bson:"user"`
		} `bson:"items"`
	}
	if err := r.aggregate(ctx, pipeline, &result); err != nil {
		return nil, 0, err
	}
	out := []*domain.RegisteredUser{}
	if len(result) == 0 {
		return out, 0, nil
	}
	for _, it := range result[0].Items {
		out = append(out, &domain.RegisteredUser{
			Registration: it.Registration.toDomain(),
			User:         domain.UserSummary{ID: it.User.ID, Name: it.User.Name, Email: it.User.Email},
		})
	}
	return out, total(result[0].Total), nil
}

func (r *RegistrationRepository) ListByUser(ctx context.Context, userID string, filter domain.RegisteredEventsFilter, params domain.PaginationParams) ([]*domain.RegisteredEvent, int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user_id": userID}}},
		{{Key: "$lookup", Value: bson.M{"from": eventsCollection, "localField": "event_id", "foreignField": "_id", "as": "event"}}},
		{{Key: "$unwind", Value: "$event"}},
	}
	eventMatch := bson.M{}
	if filter.Query != "" {
		eventMatch["event.title"] = bson.M{"$regex": regexp.QuoteMeta(filter.Query), "$options": "i"}
	}
	if filter.Category != "" {
		eventMatch["event.category"] = filter.Category
	}
	if len(eventMatch) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: eventMatch}})
	}
	dir := -1
	if filter.Order == domain.OrderOldest {
		dir = 1
	}
	pipeline = append(pipeline, bson.D{{Key: "$facet", Value: bson.M{
		"total": bson.A{bson.M{"$count": "n"}},
		"items": bson.A{
			bson.M{"$sort": bson.D{{Key: "registered_at", Value: dir}, {Key: "_id", Value: dir}}},
			bson.M{"$skip": params.Offset()},
			bson.M{"$limit": params.PageSize},
		},
	}}})

	var result []struct {
		Total []facetCount `bson:"total"`
		Items []struct {
			Registration registrationDoc `bson:",inline"`
			Event        eventDoc        `bson:"event"`
		} `bson:"items"`
	}
	if err := r.aggregate(ctx, pipeline, &result); err != nil {
		return nil, 0, err
	}
	out := []*domain.RegisteredEvent{}
	if len(result) == 0 {
		return out, 0, nil
	}
	for _, it := range result[0].Items {
		out = append(out, &domain.RegisteredEvent{
			Registration: it.Registration.toDomain(),
			Event:        it.Event.toDomain(),
		})
	}
	return out, total(result[0].Total), nil
}

func (r *RegistrationRepository) aggregate(ctx context.Context, pipeline mongo.Pipeline, dst any) error {
	cur, err := r.registrations.Aggregate(ctx, pipeline)
	if err != nil {
		return fmt.Errorf("aggregate registrations: %w", err)
	}
	if err := cur.All(ctx, dst); err != nil {
		return fmt.Errorf("decode registrations: %w", err)
	}
	return nil
}

func total(counts []facetCount) int {
	if len(counts) == 0 {
		return 0
	}
	return counts[0].N
}

func (r *RegistrationRepository) ListByEventIDs(ctx context.Context, eventIDs []string) ([]*domain.Registration, error) {
	out := []*domain.Registration{}
	if len(eventIDs) == 0 {
		return out, nil
	}
	cur, err := r.registrations.Find(ctx, bson.M{"event_id": bson.M{"$in": eventIDs}})
	if err != nil {
		return nil, fmt.Errorf("find registrations: %w", err)
	}
	var docs []registrationDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode registrations: %w", err)
	}
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *RegistrationRepository) Confirm(ctx context.Context, id string, at time.Time) (*domain.Registration, error) {
	return r.transition(ctx, bson.M{"_id": id, "status": string(domain.StatusPending)},
		bson.M{"status": string(domain.StatusConfirmed), "updated_at": at.UTC()})
}

func (r *RegistrationRepository) MarkPaid(ctx context.Context, id string, at time.Time) (*domain.Registration, error) {
	return r.transition(ctx,
		bson.M{"_id": id, "payment_status": string(domain.PaymentUnpaid), "status": bson.M{"$ne": string(domain.StatusCancelled)}},
		bson.M{"payment_status": string(domain.PaymentPaid), "updated_at": at.UTC()})
}

// Cancel flips an active registration to cancelled and then releases its slot.
// Only the caller that performed the flip releases, so the counter is
// decremented once per registration.
func (r *RegistrationRepository) Cancel(ctx context.Context, id string, at time.Time) (*domain.Registration, error) {
	reg, err := r.transition(ctx, bson.M{"_id": id, "status": bson.M{"$in": activeStatuses}},
		bson.M{"status": string(domain.StatusCancelled), "updated_at": at.UTC()})
	if err != nil {
		return nil, err
	}
	if err := r.release(context.WithoutCancel(ctx), reg.EventID, at); err != nil {
		return nil, fmt.Errorf("release slot: %w", err)
	}
	return reg, nil
}

func (r *RegistrationRepository) transition(ctx context.Context, filter, set bson.M) (*domain.Registration, error) {
	var doc registrationDoc
	err := r.registrations.FindOneAndUpdate(ctx, filter, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if err == nil {
		return doc.toDomain(), nil
	}
	if !isNoDocuments(err) {
		return nil, fmt.Errorf("update registration: %w", err)
	}
	ok, err := exists(ctx, r.registrations, filter["_id"].(string))
	if err != nil {
		return nil, fmt.Errorf("check registration: %w", err)
	}
	if !ok {
		return nil, domain.ErrRegistrationNotFound
	}
	return nil, domain.ErrInvalidTransition
}
