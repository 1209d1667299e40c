package mongodb

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"eventhub/internal/domain"
)

// newTestDB connects to TEST_MONGO_URI and returns a throwaway database.
func newTestDB(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	client, err := Connect(ctx, uri)
	require.NoError(t, err)
	db := client.Database("eventhub_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	require.NoError(t, EnsureIndexes(ctx, db))
	return db
}

func seedUser(t *testing.T, db *mongo.Database, email string) *domain.User {
	t.Helper()
	u := domain.NewUser(email, "hash", email, time.Now().UTC())
	require.NoError(t, NewUserRepository(db).Create(context.Background(), u))
	return u
}

func seedEvent(t *testing.T, db *mongo.Database, organizerID string, capacity int, price float64) *domain.Event {
	t.Helper()
	now := time.Now().UTC()
	e := domain.NewEvent(organizerID, "Gopher Meetup", "tech", now.Add(24*time.Hour), domain.VenueOnline, "", price, capacity, now)
	require.NoError(t, NewEventRepository(db).Create(context.Background(), e))
	return e
}

func TestEnsureIndexes_Idempotent(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, EnsureIndexes(context.Background(), db))
}

func TestAdmit_ConcurrentCapacity(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	org := seedUser(t, db, "org@example.com")
	ev := seedEvent(t, db, org.ID, 5, 0)
	repo := NewRegistrationRepository(db)

	users := make([]*domain.User, 10)
	for i := range users {
		users[i] = seedUser(t, db, uuid.NewString()+"@example.com")
	}

	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		ok, full   int
		unexpected []error
	)
	for _, u := range users {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			err := repo.Admit(ctx, domain.NewRegistration(userID, ev.ID, time.Now()))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrEventFull):
				full++
			default:
				unexpected = append(unexpected, err)
			}
		}(u.ID)
	}
	wg.Wait()

	require.Empty(t, unexpected)
	assert.Equal(t, 5, ok)
	assert.Equal(t, 5, full)
	n, err := repo.CountActiveByEvent(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	got, err := NewEventRepository(db).GetByID(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Attending)
}

func TestAdmit_DuplicateReleasesSlot(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	org := seedUser(t, db, "org@example.com")
	a := seedUser(t, db, "a@example.com")
	ev := seedEvent(t, db, org.ID, 3, 12)
	repo := NewRegistrationRepository(db)

	reg := domain.NewRegistration(a.ID, ev.ID, time.Now())
	require.NoError(t, repo.Admit(ctx, reg))
	assert.Equal(t, 12.0, reg.PriceSnapshot)

	err := repo.Admit(ctx, domain.NewRegistration(a.ID, ev.ID, time.Now()))
	assert.ErrorIs(t, err, domain.ErrDuplicateRegistration)

	got, err := NewEventRepository(db).GetByID(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Attending)
}

func TestAdmit_UnknownReferences(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	org := seedUser(t, db, "org@example.com")
	ev := seedEvent(t, db, org.ID, 3, 0)
	repo := NewRegistrationRepository(db)

	assert.ErrorIs(t, repo.Admit(ctx, domain.NewRegistration(org.ID, "missing", time.Now())), domain.ErrEventNotFound)
	assert.ErrorIs(t, repo.Admit(ctx, domain.NewRegistration("missing", ev.ID, time.Now())), domain.ErrUserNotFound)
}

func TestTransitions(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	org := seedUser(t, db, "org@example.com")
	a := seedUser(t, db, "a@example.com")
	ev := seedEvent(t, db, org.ID, 1, 0)
	repo := NewRegistrationRepository(db)
	reg := domain.NewRegistration(a.ID, ev.ID, time.Now())
	require.NoError(t, repo.Admit(ctx, reg))

	confirmed, err := repo.Confirm(ctx, reg.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, confirmed.Status)
	_, err = repo.Confirm(ctx, reg.ID, time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	paid, err := repo.MarkPaid(ctx, reg.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, paid.PaymentStatus)

	cancelled, err := repo.Cancel(ctx, reg.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)
	_, err = repo.Cancel(ctx, reg.ID, time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = repo.Cancel(ctx, "missing", time.Now())
	assert.ErrorIs(t, err, domain.ErrRegistrationNotFound)

	got, err := NewEventRepository(db).GetByID(ctx, ev.ID)
	require.NoError(t, err)
	assert.Zero(t, got.Attending)
}

func TestListings(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	org := seedUser(t, db, "org@example.com")
	a := seedUser(t, db, "a@example.com")
	b := seedUser(t, db, "b@example.com")
	ev := seedEvent(t, db, org.ID, 10, 5)
	other := seedEvent(t, db, org.ID, 10, 5)
	repo := NewRegistrationRepository(db)

	base := time.Now().Add(-time.Hour).UTC()
	require.NoError(t, repo.Admit(ctx, domain.NewRegistration(a.ID, ev.ID, base)))
	require.NoError(t, repo.Admit(ctx, domain.NewRegistration(b.ID, ev.ID, base.Add(time.Minute))))
	require.NoError(t, repo.Admit(ctx, domain.NewRegistration(a.ID, other.ID, base.Add(2*time.Minute))))

	users, total, err := repo.ListByEvent(ctx, ev.ID, domain.PaginationParams{Page: 1, PageSize: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, users, 1)
	assert.Equal(t, b.ID, users[0].User.ID)

	events, total, err := repo.ListByUser(ctx, a.ID, domain.RegisteredEventsFilter{Order: domain.OrderOldest}, domain.PaginationParams{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, events, 2)
	assert.Equal(t, ev.ID, events[0].Event.ID)

	events, total, err = repo.ListByUser(ctx, a.ID, domain.RegisteredEventsFilter{Query: "gopher.*"}, domain.PaginationParams{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, events)

	regs, err := repo.ListByEventIDs(ctx, []string{ev.ID, other.ID})
	require.NoError(t, err)
	assert.Len(t, regs, 3)
}

func TestListByEvent_SkipsRegistrationsWithoutUser(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	org := seedUser(t, db, "org@example.com")
	a := seedUser(t, db, "a@example.com")
	gone := seedUser(t, db, "gone@example.com")
	ev := seedEvent(t, db, org.ID, 10, 0)
	repo := NewRegistrationRepository(db)

	now := time.Now().UTC()
	require.NoError(t, repo.Admit(ctx, domain.NewRegistration(a.ID, ev.ID, now)))
	require.NoError(t, repo.Admit(ctx, domain.NewRegistration(gone.ID, ev.ID, now.Add(time.Second))))
	_, err := db.Collection(usersCollection).DeleteOne(ctx, bson.M{"_id": gone.ID})
	require.NoError(t, err)

	users, total, err := repo.ListByEvent(ctx, ev.ID, domain.PaginationParams{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, users, 1)
	assert.Equal(t, a.ID, users[0].User.ID)
}

func TestEventRepository_Policies(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	org := seedUser(t, db, "org@example.com")
	a := seedUser(t, db, "a@example.com")
	ev := seedEvent(t, db, org.ID, 2, 0)
	events := NewEventRepository(db)
	repo := NewRegistrationRepository(db)
	reg := domain.NewRegistration(a.ID, ev.ID, time.Now())
	require.NoError(t, repo.Admit(ctx, reg))

	shrunk := *ev
	shrunk.Capacity = 0
	assert.ErrorIs(t, events.Update(ctx, &shrunk), domain.ErrCapacityBelowAttendance)
	assert.ErrorIs(t, events.Delete(ctx, ev.ID), domain.ErrEventHasActiveRegistrations)

	_, err := repo.Cancel(ctx, reg.ID, time.Now())
	require.NoError(t, err)
	require.NoError(t, events.Delete(ctx, ev.ID))
	_, err = repo.GetByID(ctx, reg.ID)
	assert.ErrorIs(t, err, domain.ErrRegistrationNotFound)
	assert.ErrorIs(t, events.Delete(ctx, ev.ID), domain.ErrEventNotFound)
}

func TestUserRepository(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)
	u := seedUser(t, db, "Ada@Example.com")

	got, err := users.GetByEmail(ctx, "ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	err = users.Create(ctx, domain.NewUser("ada@example.com", "x", "Ada", time.Now()))
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)

	got.Bio = "gopher"
	got.UpdatedAt = time.Now()
	require.NoError(t, users.Update(ctx, got))
	again, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "gopher", again.Bio)

	_, err = users.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
