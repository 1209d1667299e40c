package mongodb

import (
	"time"

	"eventhub/internal/domain"
)

type eventDoc struct {
	ID          string    `bson:"_id"`
	Title       string    `bson:"title"`
	Category    string    `bson:"category"`
	DateTime    time.Time `bson:"date_time"`
	VenueType   string    `bson:"venue_type"`
	Location    string    `bson:"location,omitempty"`
	Price       float64   `bson:"price"`
	Capacity    int       `bson:"capacity"`
	Attending   int       `bson:"attending"`
	BannerURL   string    `bson:"banner_url,omitempty"`
	Description string    `bson:"description,omitempty"`
	OrganizerID string    `bson:"organizer_id"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func newEventDoc(e *domain.Event) eventDoc {
	return eventDoc{
		ID:          e.ID,
		Title:       e.Title,
		Category:    e.Category,
		DateTime:    e.DateTime.UTC(),
		VenueType:   string(e.VenueType),
		Location:    e.Location,
		Price:       e.Price,
		Capacity:    e.Capacity,
		Attending:   e.Attending,
		BannerURL:   e.BannerURL,
		Description: e.Description,
		OrganizerID: e.OrganizerID,
		CreatedAt:   e.CreatedAt.UTC(),
		UpdatedAt:   e.UpdatedAt.UTC(),
	}
}

func (d eventDoc) toDomain() *domain.Event {
	return &domain.Event{
		ID:          d.ID,
		Title:       d.Title,
		Category:    d.Category,
		DateTime:    d.DateTime,
		VenueType:   domain.VenueType(d.VenueType),
		Location:    d.Location,
		Price:       d.Price,
		Capacity:    d.Capacity,
		Attending:   d.Attending,
		BannerURL:   d.BannerURL,
		Description: d.Description,
		OrganizerID: d.OrganizerID,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type userDoc struct {
	ID           string    `bson:"_id"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash"`
	Name         string    `bson:"name"`
	Bio          string    `bson:"bio,omitempty"`
	Organization string    `bson:"organization,omitempty"`
	Website      string    `bson:"website,omitempty"`
	Location     string    `bson:"location,omitempty"`
	Timezone     string    `bson:"timezone,omitempty"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

func newUserDoc(u *domain.User) userDoc {
	return userDoc{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Name:         u.Name,
		Bio:          u.Bio,
		Organization: u.Organization,
		Website:      u.Website,
		Location:     u.Location,
		Timezone:     u.Timezone,
		CreatedAt:    u.CreatedAt.UTC(),
		UpdatedAt:    u.UpdatedAt.UTC(),
	}
}

func (d userDoc) toDomain() *domain.User {
	return &domain.User{
		ID:           d.ID,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Name:         d.Name,
		Bio:          d.Bio,
		Organization: d.Organization,
		Website:      d.Website,
		Location:     d.Location,
		Timezone:     d.Timezone,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

type registrationDoc struct {
	ID            string    `bson:"_id"`
	UserID        string    `bson:"user_id"`
	EventID       string    `bson:"event_id"`
	Status        string    `bson:"status"`
	PaymentStatus string    `bson:"payment_status"`
	Price         float64   `bson:"price"`
	RegisteredAt  time.Time `bson:"registered_at"`
	Notes         string    `bson:"notes,omitempty"`
	CreatedAt     time.Time `bson:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at"`
}

func newRegistrationDoc(r *domain.Registration) registrationDoc {
	return registrationDoc{
		ID:            r.ID,
		UserID:        r.UserID,
		EventID:       r.EventID,
		Status:        string(r.Status),
		PaymentStatus: string(r.PaymentStatus),
		Price:         r.PriceSnapshot,
		RegisteredAt:  r.RegisteredAt.UTC(),
		Notes:         r.Notes,
		CreatedAt:     r.CreatedAt.UTC(),
		UpdatedAt:     r.UpdatedAt.UTC(),
	}
}

func (d registrationDoc) toDomain() *domain.Registration {
	return &domain.Registration{
		ID:            d.ID,
		UserID:        d.UserID,
		EventID:       d.EventID,
		Status:        domain.RegistrationStatus(d.Status),
		PaymentStatus: domain.PaymentStatus(d.PaymentStatus),
		PriceSnapshot: d.Price,
		RegisteredAt:  d.RegisteredAt,
		Notes:         d.Notes,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}
