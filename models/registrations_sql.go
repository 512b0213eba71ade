package models

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

type sqlRegistrationRepo struct{ db *sql.DB }

func NewSQLRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &sqlRegistrationRepo{db}
}

const registrationColumns = `id, event_id, participant_id, status, created_at, updated_at`

func scanRegistration(row rowScanner) (Registration, error) {
	var g Registration
	err := row.Scan(&g.ID, &g.EventID, &g.ParticipantID, &g.Status, &g.CreatedAt, &g.UpdatedAt)
	return g, err
}

// lockEvent reads the event row with FOR UPDATE. Every writer of an event's
// registrations takes this lock first, which serializes admissions, status
// changes and cancellation for that event.
func lockEvent(ctx context.Context, tx *sql.Tx, id uuid.UUID) (Event, error) {
	e, err := scanEvent(tx.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return Event{}, notFoundOr(err, EventNotFound)
	}
	return e, nil
}

func countActive(ctx context.Context, tx *sql.Tx, eventID uuid.UUID) (int64, error) {
	var n int64
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM registrations WHERE event_id = $1 AND status IN ('pending', 'confirmed')`,
		eventID).Scan(&n)
	return n, err
}

// Create admits a participant into an event. The whole check-then-insert
// sequence runs under the event row lock; UNIQUE(event_id, participant_id)
// backs the duplicate check.
func (r *sqlRegistrationRepo) Create(ctx context.Context, eventID, participantID uuid.UUID, status RegistrationStatus) (Registration, error) {
	if status == "" {
		status = RegistrationPending
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Registration{}, err
	}
	defer func() { _ = tx.Rollback() }()

	ev, err := lockEvent(ctx, tx, eventID)
	if err != nil {
		return Registration{}, err
	}
	if err := CheckPublished(ev); err != nil {
		return Registration{}, err
	}

	var exists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM participants WHERE id = $1)`, participantID).Scan(&exists); err != nil {
		return Registration{}, err
	}
	if !exists {
		return Registration{}, ParticipantNotFound
	}

	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM registrations WHERE event_id = $1 AND participant_id = $2)`,
		eventID, participantID).Scan(&exists); err != nil {
		return Registration{}, err
	}
	if exists {
		return Registration{}, AlreadyRegistered
	}

	active, err := countActive(ctx, tx, eventID)
	if err != nil {
		return Registration{}, err
	}
	if err := CheckCapacity(ev, active); err != nil {
		return Registration{}, err
	}

	reg, err := scanRegistration(tx.QueryRowContext(ctx,
		`INSERT INTO registrations (event_id, participant_id, status) VALUES ($1, $2, $3) RETURNING `+registrationColumns,
		eventID, participantID, status))
	if err != nil {
		return Registration{}, translate(err, AlreadyRegistered)
	}

	if err := tx.Commit(); err != nil {
		return Registration{}, translate(err, AlreadyRegistered)
	}
	return reg, nil
}

func (r *sqlRegistrationRepo) List(ctx context.Context, f RegistrationFilter) ([]RegistrationView, error) {
	q := `SELECT r.id, r.event_id, r.participant_id, r.status, r.created_at, r.updated_at,
	             e.title, p.full_name, p.email
	      FROM registrations r
	      JOIN events e ON r.event_id = e.id
	      JOIN participants p ON r.participant_id = p.id
	      WHERE 1=1`
	var args []any
	if f.EventID != nil {
		args = append(args, *f.EventID)
		q += fmt.Sprintf(" AND r.event_id = $%d", len(args))
	}
	if f.Status != nil {
		args = append(args, *f.Status)
		q += fmt.Sprintf(" AND r.status = $%d", len(args))
	}
	q += " ORDER BY r.created_at DESC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []RegistrationView{}
	for rows.Next() {
		var v RegistrationView
		if err := rows.Scan(&v.ID, &v.EventID, &v.ParticipantID, &v.Status, &v.CreatedAt, &v.UpdatedAt,
			&v.EventTitle, &v.ParticipantName, &v.ParticipantEmail); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// SetStatus updates one registration. Moving a cancelled registration back
// to pending or confirmed is admitted like a new registration.
func (r *sqlRegistrationRepo) SetStatus(ctx context.Context, id uuid.UUID, status RegistrationStatus) (Registration, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Registration{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var eventID uuid.UUID
	if err := tx.QueryRowContext(ctx,
		`SELECT event_id FROM registrations WHERE id = $1`, id).Scan(&eventID); err != nil {
		return Registration{}, notFoundOr(err, RegistrationNotFound)
	}

	// event lock before the registration row, same order as Create and the cascade
	ev, err := lockEvent(ctx, tx, eventID)
	if err != nil {
		return Registration{}, err
	}

	var current RegistrationStatus
	if err := tx.QueryRowContext(ctx,
		`SELECT status FROM registrations WHERE id = $1`, id).Scan(&current); err != nil {
		return Registration{}, notFoundOr(err, RegistrationNotFound)
	}

	if !current.Active() && status.Active() {
		active, err := countActive(ctx, tx, eventID)
		if err != nil {
			return Registration{}, err
		}
		if err := CheckReactivation(ev, current, status, active); err != nil {
			return Registration{}, err
		}
	}

	reg, err := scanRegistration(tx.QueryRowContext(ctx,
		`UPDATE registrations SET status = $1, updated_at = NOW() WHERE id = $2 RETURNING `+registrationColumns,
		status, id))
	if err != nil {
		return Registration{}, notFoundOr(err, RegistrationNotFound)
	}

	if err := tx.Commit(); err != nil {
		return Registration{}, err
	}
	return reg, nil
}
