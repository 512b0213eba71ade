package models

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ===== Roles & statuses =====

type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

func (r Role) Valid() bool { return r == RoleAdmin || r == RoleStaff }

type EventStatus string

const (
	EventDraft     EventStatus = "draft"
	EventPublished EventStatus = "published"
	EventCancelled EventStatus = "cancelled"
)

func (s EventStatus) Valid() bool {
	switch s {
	case EventDraft, EventPublished, EventCancelled:
		return true
	}
	return false
}

type RegistrationStatus string

const (
	RegistrationPending   RegistrationStatus = "pending"
	RegistrationConfirmed RegistrationStatus = "confirmed"
	RegistrationCancelled RegistrationStatus = "cancelled"
)

func (s RegistrationStatus) Valid() bool {
	switch s {
	case RegistrationPending, RegistrationConfirmed, RegistrationCancelled:
		return true
	}
	return false
}

// Active registrations count against an event's capacity.
func (s RegistrationStatus) Active() bool {
	return s == RegistrationPending || s == RegistrationConfirmed
}

// ===== Users =====

type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"` // bcrypt hash once persisted
	Role      Role      `json:"role"`
	FullName  string    `json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserPatch lists every column a user update may touch; nil means unchanged.
type UserPatch struct {
	Email    *string
	Password *string // plain text, hashed by the repository
	Role     *Role
	FullName *string
}

func (p UserPatch) Empty() bool {
	return p.Email == nil && p.Password == nil && p.Role == nil && p.FullName == nil
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	ValidateCredentials(ctx context.Context, email, plain string) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	List(ctx context.Context) ([]User, error)
	Update(ctx context.Context, id uuid.UUID, p UserPatch) (User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

// ===== Events =====

type Event struct {
	ID              uuid.UUID   `json:"id"`
	Title           string      `json:"title"`
	Description     *string     `json:"description"`
	Location        string      `json:"location"`
	EventDate       time.Time   `json:"event_date"`
	MaxParticipants int         `json:"max_participants"`
	Status          EventStatus `json:"status"`
	CreatedBy       *uuid.UUID  `json:"created_by"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// EventPatch has no Status field; status changes go through SetStatus.
type EventPatch struct {
	Title           *string
	Description     *string
	Location        *string
	EventDate       *time.Time
	MaxParticipants *int
}

func (p EventPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Location == nil &&
		p.EventDate == nil && p.MaxParticipants == nil
}

type EventFilter struct {
	Status *EventStatus
	Date   *time.Time // calendar day of event_date
}

type EventRepository interface {
	Create(ctx context.Context, e *Event) error
	List(ctx context.Context, f EventFilter) ([]Event, error)
	GetByID(ctx context.Context, id uuid.UUID) (Event, error)
	Update(ctx context.Context, id uuid.UUID, p EventPatch) (Event, error)
	SetStatus(ctx context.Context, id uuid.UUID, status EventStatus) (Event, error)
}

// ===== Participants =====

type Participant struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ParticipantPatch struct {
	FullName *string
	Email    *string
	Phone    *string
}

func (p ParticipantPatch) Empty() bool {
	return p.FullName == nil && p.Email == nil && p.Phone == nil
}

type ParticipantRepository interface {
	Create(ctx context.Context, p *Participant) error
	List(ctx context.Context, search string) ([]Participant, error)
	GetByID(ctx context.Context, id uuid.UUID) (Participant, error)
	Update(ctx context.Context, id uuid.UUID, p ParticipantPatch) (Participant, error)
}

// ===== Registrations =====

type Registration struct {
	ID            uuid.UUID          `json:"id"`
	EventID       uuid.UUID          `json:"event_id"`
	ParticipantID uuid.UUID          `json:"participant_id"`
	Status        RegistrationStatus `json:"status"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// RegistrationView is a registration joined with the names shown in listings.
type RegistrationView struct {
	Registration
	EventTitle       string `json:"event_title"`
	ParticipantName  string `json:"participant_name"`
	ParticipantEmail string `json:"participant_email"`
}

type RegistrationFilter struct {
	EventID *uuid.UUID
	Status  *RegistrationStatus
}

type RegistrationRepository interface {
	// Create runs the admission check and inserts the row atomically.
	Create(ctx context.Context, eventID, participantID uuid.UUID, status RegistrationStatus) (Registration, error)
	List(ctx context.Context, f RegistrationFilter) ([]RegistrationView, error)
	SetStatus(ctx context.Context, id uuid.UUID, status RegistrationStatus) (Registration, error)
}

// ===== Dashboard =====

type TopEvent struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	MaxParticipants int       `json:"max_participants"`
	CurrentCount    int64     `json:"current_count"`
	FillPercentage  *float64  `json:"fill_percentage"` // nil when capacity is zero
}

type Dashboard struct {
	TotalEvents        int64      `json:"totalEvents"`
	PublishedEvents    int64      `json:"publishedEvents"`
	TodayRegistrations int64      `json:"todayRegistrations"`
	TopEvents          []TopEvent `json:"topEvents"`
}

type DashboardRepository interface {
	Stats(ctx context.Context) (Dashboard, error)
}
