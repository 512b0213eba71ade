// Package mocks holds in-memory repositories for handler tests. They share
// one Store so the admission rules and the cancel cascade behave like the
// Postgres implementations.
package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"eventhub/models"
)

type Store struct {
	mu            sync.Mutex
	Users         map[uuid.UUID]models.User
	Events        map[uuid.UUID]models.Event
	Participants  map[uuid.UUID]models.Participant
	Registrations map[uuid.UUID]models.Registration
	Stats         models.Dashboard
}

func NewStore() *Store {
	return &Store{
		Users:         map[uuid.UUID]models.User{},
		Events:        map[uuid.UUID]models.Event{},
		Participants:  map[uuid.UUID]models.Participant{},
		Registrations: map[uuid.UUID]models.Registration{},
	}
}

func (s *Store) UserRepo() models.UserRepository                 { return &userRepo{s} }
func (s *Store) EventRepo() models.EventRepository               { return &eventRepo{s} }
func (s *Store) ParticipantRepo() models.ParticipantRepository   { return &participantRepo{s} }
func (s *Store) RegistrationRepo() models.RegistrationRepository { return &registrationRepo{s} }
func (s *Store) DashboardRepo() models.DashboardRepository       { return &dashboardRepo{s} }

// AddEvent inserts an event with the given capacity and status.
func (s *Store) AddEvent(title string, max int, status models.EventStatus) models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	e := models.Event{
		ID: uuid.New(), Title: title, Location: "Hall A", EventDate: now.Add(24 * time.Hour),
		MaxParticipants: max, Status: status, CreatedAt: now, UpdatedAt: now,
	}
	s.Events[e.ID] = e
	return e
}

func (s *Store) AddParticipant(name, email string) models.Participant {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	p := models.Participant{ID: uuid.New(), FullName: name, Email: email, CreatedAt: now, UpdatedAt: now}
	s.Participants[p.ID] = p
	return p
}

// AddUser stores the password as given; userRepo compares plain text.
func (s *Store) AddUser(email, password string, role models.Role) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	u := models.User{ID: uuid.New(), Email: email, Password: password, Role: role, FullName: email, CreatedAt: now, UpdatedAt: now}
	s.Users[u.ID] = u
	return u
}

func (s *Store) activeCount(eventID uuid.UUID) int64 {
	var n int64
	for _, r := range s.Registrations {
		if r.EventID == eventID && r.Status.Active() {
			n++
		}
	}
	return n
}

/* -------------------- users -------------------- */

type userRepo struct{ s *Store }

func (m *userRepo) emailTaken(email string, except uuid.UUID) bool {
	for _, u := range m.s.Users {
		if u.ID != except && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

func (m *userRepo) Create(_ context.Context, u *models.User) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.emailTaken(u.Email, uuid.Nil) {
		return models.EmailTaken
	}
	now := time.Now().UTC()
	u.ID, u.CreatedAt, u.UpdatedAt = uuid.New(), now, now
	m.s.Users[u.ID] = *u
	return nil
}

func (m *userRepo) ValidateCredentials(_ context.Context, email, plain string) (models.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, u := range m.s.Users {
		if u.Email == email && u.Password == plain {
			return u, nil
		}
	}
	return models.User{}, models.BadCredentials
}

func (m *userRepo) GetByID(_ context.Context, id uuid.UUID) (models.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	u, ok := m.s.Users[id]
	if !ok {
		return models.User{}, models.UserNotFound
	}
	return u, nil
}

func (m *userRepo) List(_ context.Context) ([]models.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := make([]models.User, 0, len(m.s.Users))
	for _, u := range m.s.Users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *userRepo) Update(_ context.Context, id uuid.UUID, p models.UserPatch) (models.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if p.Empty() {
		return models.User{}, models.NoFieldsToUpdate
	}
	u, ok := m.s.Users[id]
	if !ok {
		return models.User{}, models.UserNotFound
	}
	if p.Email != nil {
		if m.emailTaken(*p.Email, id) {
			return models.User{}, models.EmailTaken
		}
		u.Email = *p.Email
	}
	if p.Password != nil {
		u.Password = *p.Password
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.FullName != nil {
		u.FullName = *p.FullName
	}
	u.UpdatedAt = time.Now().UTC()
	m.s.Users[id] = u
	return u, nil
}

func (m *userRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.Users[id]; !ok {
		return models.UserNotFound
	}
	delete(m.s.Users, id)
	return nil
}

func (m *userRepo) Count(_ context.Context) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return int64(len(m.s.Users)), nil
}

/* -------------------- events -------------------- */

type eventRepo struct{ s *Store }

func (m *eventRepo) Create(_ context.Context, e *models.Event) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if e.Status == "" {
		e.Status = models.EventDraft
	}
	now := time.Now().UTC()
	e.ID, e.CreatedAt, e.UpdatedAt = uuid.New(), now, now
	m.s.Events[e.ID] = *e
	return nil
}

func (m *eventRepo) List(_ context.Context, f models.EventFilter) ([]models.Event, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := []models.Event{}
	for _, e := range m.s.Events {
		if f.Status != nil && e.Status != *f.Status {
			continue
		}
		if f.Date != nil && e.EventDate.Format("2006-01-02") != f.Date.Format("2006-01-02") {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EventDate.After(out[j].EventDate) })
	return out, nil
}

func (m *eventRepo) GetByID(_ context.Context, id uuid.UUID) (models.Event, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	e, ok := m.s.Events[id]
	if !ok {
		return models.Event{}, models.EventNotFound
	}
	return e, nil
}

func (m *eventRepo) Update(_ context.Context, id uuid.UUID, p models.EventPatch) (models.Event, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if p.Empty() {
		return models.Event{}, models.NoFieldsToUpdate
	}
	e, ok := m.s.Events[id]
	if !ok {
		return models.Event{}, models.EventNotFound
	}
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Description != nil {
		e.Description = p.Description
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.EventDate != nil {
		e.EventDate = *p.EventDate
	}
	if p.MaxParticipants != nil {
		e.MaxParticipants = *p.MaxParticipants
	}
	e.UpdatedAt = time.Now().UTC()
	m.s.Events[id] = e
	return e, nil
}

func (m *eventRepo) SetStatus(_ context.Context, id uuid.UUID, status models.EventStatus) (models.Event, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	e, ok := m.s.Events[id]
	if !ok {
		return models.Event{}, models.EventNotFound
	}
	now := time.Now().UTC()
	e.Status, e.UpdatedAt = status, now
	m.s.Events[id] = e

	if status == models.EventCancelled {
		for rid, r := range m.s.Registrations {
			if r.EventID == id && r.Status != models.RegistrationCancelled {
				r.Status, r.UpdatedAt = models.RegistrationCancelled, now
				m.s.Registrations[rid] = r
			}
		}
	}
	return e, nil
}

/* -------------------- participants -------------------- */

type participantRepo struct{ s *Store }

func (m *participantRepo) Create(_ context.Context, p *models.Participant) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	now := time.Now().UTC()
	p.ID, p.CreatedAt, p.UpdatedAt = uuid.New(), now, now
	m.s.Participants[p.ID] = *p
	return nil
}

func (m *participantRepo) List(_ context.Context, search string) ([]models.Participant, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	needle := strings.ToLower(search)
	out := []models.Participant{}
	for _, p := range m.s.Participants {
		if needle != "" &&
			!strings.Contains(strings.ToLower(p.FullName), needle) &&
			!strings.Contains(strings.ToLower(p.Email), needle) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *participantRepo) GetByID(_ context.Context, id uuid.UUID) (models.Participant, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	p, ok := m.s.Participants[id]
	if !ok {
		return models.Participant{}, models.ParticipantNotFound
	}
	return p, nil
}

func (m *participantRepo) Update(_ context.Context, id uuid.UUID, patch models.ParticipantPatch) (models.Participant, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if patch.Empty() {
		return models.Participant{}, models.NoFieldsToUpdate
	}
	p, ok := m.s.Participants[id]
	if !ok {
		return models.Participant{}, models.ParticipantNotFound
	}
	if patch.FullName != nil {
		p.FullName = *patch.FullName
	}
	if patch.Email != nil {
		p.Email = *patch.Email
	}
	if patch.Phone != nil {
		p.Phone = patch.Phone
	}
	p.UpdatedAt = time.Now().UTC()
	m.s.Participants[id] = p
	return p, nil
}

/* -------------------- registrations -------------------- */

type registrationRepo struct{ s *Store }

func (m *registrationRepo) Create(_ context.Context, eventID, participantID uuid.UUID, status models.RegistrationStatus) (models.Registration, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if status == "" {
		status = models.RegistrationPending
	}

	ev, ok := m.s.Events[eventID]
	if !ok {
		return models.Registration{}, models.EventNotFound
	}
	if err := models.CheckPublished(ev); err != nil {
		return models.Registration{}, err
	}
	if _, ok := m.s.Participants[participantID]; !ok {
		return models.Registration{}, models.ParticipantNotFound
	}
	for _, r := range m.s.Registrations {
		if r.EventID == eventID && r.ParticipantID == participantID {
			return models.Registration{}, models.AlreadyRegistered
		}
	}
	if err := models.CheckCapacity(ev, m.s.activeCount(eventID)); err != nil {
		return models.Registration{}, err
	}

	now := time.Now().UTC()
	r := models.Registration{
		ID: uuid.New(), EventID: eventID, ParticipantID: participantID,
		Status: status, CreatedAt: now, UpdatedAt: now,
	}
	m.s.Registrations[r.ID] = r
	return r, nil
}

func (m *registrationRepo) List(_ context.Context, f models.RegistrationFilter) ([]models.RegistrationView, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := []models.RegistrationView{}
	for _, r := range m.s.Registrations {
		if f.EventID != nil && r.EventID != *f.EventID {
			continue
		}
		if f.Status != nil && r.Status != *f.Status {
			continue
		}
		p := m.s.Participants[r.ParticipantID]
		out = append(out, models.RegistrationView{
			Registration:     r,
			EventTitle:       m.s.Events[r.EventID].Title,
			ParticipantName:  p.FullName,
			ParticipantEmail: p.Email,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *registrationRepo) SetStatus(_ context.Context, id uuid.UUID, status models.RegistrationStatus) (models.Registration, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	r, ok := m.s.Registrations[id]
	if !ok {
		return models.Registration{}, models.RegistrationNotFound
	}
	ev := m.s.Events[r.EventID]
	if err := models.CheckReactivation(ev, r.Status, status, m.s.activeCount(r.EventID)); err != nil {
		return models.Registration{}, err
	}
	r.Status, r.UpdatedAt = status, time.Now().UTC()
	m.s.Registrations[id] = r
	return r, nil
}

/* -------------------- dashboard -------------------- */

// dashboardRepo returns Store.Stats as configured by the test.
type dashboardRepo struct{ s *Store }

func (m *dashboardRepo) Stats(_ context.Context) (models.Dashboard, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	d := m.s.Stats
	if d.TopEvents == nil {
		d.TopEvents = []models.TopEvent{}
	}
	return d, nil
}
