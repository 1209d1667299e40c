package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/domain"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

const (
	testUserID  = "6f1c2a8e-3b4d-4e5f-8a9b-0c1d2e3f4a5b"
	testEventID = "0b8e6f3a-1c2d-4e5f-9a8b-7c6d5e4f3a2b"
	testRegID   = "9a8b7c6d-5e4f-4a3b-8c2d-1e0f9a8b7c6d"
)

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) helpers.APIResponse {
	t.Helper()
	var envelope helpers.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope), "response must be valid JSON envelope")
	return envelope
}

// decodeData re-marshals envelope.Data into dest.
func decodeData(t *testing.T, envelope helpers.APIResponse, dest any) {
	t.Helper()
	require.Nil(t, envelope.Error, "success response must have error nil")
	raw, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, dest))
}

type fakeEventService struct {
	event     *domain.Event
	err       error
	lastOwner string
	lastID    string
	lastPatch domain.EventPatch
	created   *domain.Event
}

func (f *fakeEventService) CreateEvent(_ context.Context, organizerID string, event *domain.Event) (*domain.Event, error) {
	f.lastOwner = organizerID
	if f.err != nil {
		return nil, f.err
	}
	e := *event
	e.ID = testEventID
	e.OrganizerID = organizerID
	f.created = &e
	return &e, nil
}

func (f *fakeEventService) GetEvent(_ context.Context, id string) (*domain.Event, error) {
	f.lastID = id
	return f.event, f.err
}

func (f *fakeEventService) UpdateEvent(_ context.Context, organizerID, eventID string, patch domain.EventPatch) (*domain.Event, error) {
	f.lastOwner, f.lastID, f.lastPatch = organizerID, eventID, patch
	if f.err != nil {
		return nil, f.err
	}
	e := *f.event
	patch.Apply(&e)
	return &e, nil
}

func (f *fakeEventService) DeleteEvent(_ context.Context, organizerID, eventID string) error {
	f.lastOwner, f.lastID = organizerID, eventID
	return f.err
}

type fakeAvailabilityService struct {
	decision *domain.AdmissionDecision
	err      error
	calls    int
}

func (f *fakeAvailabilityService) CheckAvailability(context.Context, string, string) (*domain.AdmissionDecision, error) {
	f.calls++
	return f.decision, f.err
}

type fakeRegistrationService struct {
	reg        *domain.Registration
	registered bool
	err        error
	lastUser   string
	lastTarget string
}

func (f *fakeRegistrationService) Register(_ context.Context, userID, eventID string) (*domain.Registration, error) {
	f.lastUser, f.lastTarget = userID, eventID
	return f.reg, f.err
}

func (f *fakeRegistrationService) IsRegistered(_ context.Context, userID, eventID string) (bool, error) {
	f.lastUser, f.lastTarget = userID, eventID
	return f.registered, f.err
}

func (f *fakeRegistrationService) Confirm(_ context.Context, actorID, registrationID string) (*domain.Registration, error) {
	f.lastUser, f.lastTarget = actorID, registrationID
	return f.reg, f.err
}

func (f *fakeRegistrationService) Cancel(_ context.Context, actorID, registrationID string) (*domain.Registration, error) {
	f.lastUser, f.lastTarget = actorID, registrationID
	return f.reg, f.err
}

func (f *fakeRegistrationService) RecordPayment(_ context.Context, actorID, registrationID string) (*domain.Registration, error) {
	f.lastUser, f.lastTarget = actorID, registrationID
	return f.reg, f.err
}

type fakeReportingService struct {
	summary    *domain.EventSummary
	users      []*domain.RegisteredUser
	events     []*domain.RegisteredEvent
	total      int
	err        error
	lastFilter domain.RegisteredEventsFilter
	lastParams domain.PaginationParams
}

func (f *fakeReportingService) EventSummary(context.Context, string) (*domain.EventSummary, error) {
	return f.summary, f.err
}

func (f *fakeReportingService) RegisteredUsersForEvent(_ context.Context, _, _ string, params domain.PaginationParams) ([]*domain.RegisteredUser, int, error) {
	f.lastParams = params
	return f.users, f.total, f.err
}

func (f *fakeReportingService) RegisteredEventsForUser(_ context.Context, _ string, filter domain.RegisteredEventsFilter, params domain.PaginationParams) ([]*domain.RegisteredEvent, int, error) {
	f.lastFilter, f.lastParams = filter, params
	return f.events, f.total, f.err
}

type fakeUserService struct {
	user      *domain.User
	token     string
	err       error
	lastPatch domain.ProfilePatch
}

func (f *fakeUserService) SignUp(_ context.Context, email, _, name string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.User{ID: testUserID, Email: domain.NormalizeEmail(email), Name: name}, nil
}

func (f *fakeUserService) Login(context.Context, string, string) (string, *domain.User, error) {
	if f.err != nil {
		return "", nil, f.err
	}
	return f.token, f.user, nil
}

func (f *fakeUserService) GetByID(context.Context, string) (*domain.User, error) {
	return f.user, f.err
}

func (f *fakeUserService) UpdateProfile(_ context.Context, _ string, patch domain.ProfilePatch) (*domain.User, error) {
	f.lastPatch = patch
	if f.err != nil {
		return nil, f.err
	}
	u := *f.user
	patch.Apply(&u)
	return &u, nil
}
