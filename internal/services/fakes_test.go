package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"eventhub/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeStore is an in-memory implementation of the event, user and registration
// repositories sharing one lock, so Admit is atomic like the SQL stores.
type fakeStore struct {
	mu     sync.Mutex
	events map[string]*domain.Event
	users  map[string]*domain.User
	regs   map[string]*domain.Registration
	nextID int

	err error // returned by every call when set
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		events: make(map[string]*domain.Event),
		users:  make(map[string]*domain.User),
		regs:   make(map[string]*domain.Registration),
	}
}

func (f *fakeStore) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *fakeStore) addUser(name string) *domain.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := domain.NewUser(strings.ToLower(name)+"@example.com", "hash", name, time.Now())
	u.ID = f.id("user")
	f.users[u.ID] = u
	return u
}

func (f *fakeStore) addEvent(organizerID string, capacity int, price float64, at time.Time) *domain.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	e := domain.NewEvent(organizerID, "Go Meetup", "tech", at, domain.VenueOnline, "", price, capacity, time.Now())
	e.ID = f.id("event")
	f.events[e.ID] = e
	return e
}

type fakeEventRepo struct{ *fakeStore }

func (f fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.users[e.OrganizerID]; !ok {
		return domain.ErrUserNotFound
	}
	e.ID = f.id("event")
	cp := *e
	f.events[e.ID] = &cp
	return nil
}

func (f fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	e, ok := f.events[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	cp := *e
	return &cp, nil
}

func (f fakeEventRepo) ListByOrganizer(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := []*domain.Event{}
	for _, e := range f.events {
		if e.OrganizerID == organizerID {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateTime.After(out[j].DateTime) })
	return out, nil
}

func (f fakeEventRepo) Update(ctx context.Context, e *domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	stored, ok := f.events[e.ID]
	if !ok {
		return domain.ErrEventNotFound
	}
	if e.Capacity < stored.Attending {
		return domain.ErrCapacityBelowAttendance
	}
	cp := *e
	cp.Attending = stored.Attending
	f.events[e.ID] = &cp
	return nil
}

func (f fakeEventRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	e, ok := f.events[id]
	if !ok {
		return domain.ErrEventNotFound
	}
	if e.Attending > 0 {
		return domain.ErrEventHasActiveRegistrations
	}
	delete(f.events, id)
	for rid, r := range f.regs {
		if r.EventID == id {
			delete(f.regs, rid)
		}
	}
	return nil
}

type fakeUserRepo struct{ *fakeStore }

func (f fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return domain.ErrDuplicateEmail
		}
	}
	u.ID = f.id("user")
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f fakeUserRepo) Update(ctx context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.users[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

type fakeRegistrationRepo struct {
	*fakeStore
	admitErr error
	// admitted counts Admit calls that reached the store.
	admitted int
}

func (f *fakeRegistrationRepo) Admit(ctx context.Context, reg *domain.Registration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.admitted++
	if f.admitErr != nil {
		return f.admitErr
	}
	e, ok := f.events[reg.EventID]
	if !ok {
		return domain.ErrEventNotFound
	}
	if e.Attending >= e.Capacity {
		return domain.ErrEventFull
	}
	for _, r := range f.regs {
		if r.EventID == reg.EventID && r.UserID == reg.UserID {
			return domain.ErrDuplicateRegistration
		}
	}
	e.Attending++
	reg.ID = f.id("reg")
	reg.PriceSnapshot = e.Price
	cp := *reg
	f.regs[reg.ID] = &cp
	return nil
}

func (f *fakeRegistrationRepo) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	r, ok := f.regs[id]
	if !ok {
		return nil, domain.ErrRegistrationNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRegistrationRepo) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, r := range f.regs {
		if r.EventID == eventID && r.UserID == userID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, domain.ErrRegistrationNotFound
}

func (f *fakeRegistrationRepo) CountActiveByEvent(ctx context.Context, eventID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	n := 0
	for _, r := range f.regs {
		if r.EventID == eventID && r.Status.OccupiesSlot() {
			n++
		}
	}
	return n, nil
}

func (f *fakeRegistrationRepo) ListByEvent(ctx context.Context, eventID string, params domain.PaginationParams) ([]*domain.RegisteredUser, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, 0, f.err
	}
	out := []*domain.RegisteredUser{}
	for _, r := range f.regs {
		if r.EventID != eventID {
			continue
		}
		u := f.users[r.UserID]
		reg := *r
		out = append(out, &domain.RegisteredUser{
			Registration: &reg,
			User:         domain.UserSummary{ID: u.ID, Name: u.Name, Email: u.Email},
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Registration.RegisteredAt.After(out[j].Registration.RegisteredAt) })
	return page(out, params), len(out), nil
}

func (f *fakeRegistrationRepo) ListByUser(ctx context.Context, userID string, filter domain.RegisteredEventsFilter, params domain.PaginationParams) ([]*domain.RegisteredEvent, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, 0, f.err
	}
	out := []*domain.RegisteredEvent{}
	for _, r := range f.regs {
		if r.UserID != userID {
			continue
		}
		e := f.events[r.EventID]
		if filter.Category != "" && e.Category != filter.Category {
			continue
		}
		if filter.Query != "" && !strings.Contains(strings.ToLower(e.Title), strings.ToLower(filter.Query)) {
			continue
		}
		reg, ev := *r, *e
		out = append(out, &domain.RegisteredEvent{Registration: &reg, Event: &ev})
	}
	sort.Slice(out, func(i, j int) bool {
		if filter.Order == domain.OrderOldest {
			return out[i].Registration.RegisteredAt.Before(out[j].Registration.RegisteredAt)
		}
		return out[i].Registration.RegisteredAt.After(out[j].Registration.RegisteredAt)
	})
	return page(out, params), len(out), nil
}

func (f *fakeRegistrationRepo) ListByEventIDs(ctx context.Context, eventIDs []string) ([]*domain.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	want := make(map[string]bool, len(eventIDs))
	for _, id := range eventIDs {
		want[id] = true
	}
	out := []*domain.Registration{}
	for _, r := range f.regs {
		if want[r.EventID] {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRegistrationRepo) Confirm(ctx context.Context, id string, at time.Time) (*domain.Registration, error) {
	return f.transition(id, at, func(r *domain.Registration) bool {
		if r.Status != domain.StatusPending {
			return false
		}
		r.Status = domain.StatusConfirmed
		return true
	})
}

func (f *fakeRegistrationRepo) Cancel(ctx context.Context, id string, at time.Time) (*domain.Registration, error) {
	return f.transition(id, at, func(r *domain.Registration) bool {
		if !r.Status.OccupiesSlot() {
			return false
		}
		r.Status = domain.StatusCancelled
		if e, ok := f.events[r.EventID]; ok && e.Attending > 0 {
			e.Attending--
		}
		return true
	})
}

func (f *fakeRegistrationRepo) MarkPaid(ctx context.Context, id string, at time.Time) (*domain.Registration, error) {
	return f.transition(id, at, func(r *domain.Registration) bool {
		if r.PaymentStatus != domain.PaymentUnpaid || r.Status == domain.StatusCancelled {
			return false
		}
		r.PaymentStatus = domain.PaymentPaid
		return true
	})
}

func (f *fakeRegistrationRepo) transition(id string, at time.Time, apply func(*domain.Registration) bool) (*domain.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.regs[id]
	if !ok {
		return nil, domain.ErrRegistrationNotFound
	}
	if !apply(r) {
		return nil, domain.ErrInvalidTransition
	}
	r.UpdatedAt = at
	cp := *r
	return &cp, nil
}

func page[T any](items []T, p domain.PaginationParams) []T {
	start := p.Offset()
	if start >= len(items) {
		return items[:0]
	}
	end := start + p.PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// fakeNotifier records notifications and optionally fails.
type fakeNotifier struct {
	mu   sync.Mutex
	sent []*domain.RegistrationReceivedEmailData
	err  error
}

func (n *fakeNotifier) NotifyRegistration(ctx context.Context, data *domain.RegistrationReceivedEmailData) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, data)
	return nil
}
