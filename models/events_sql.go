package models

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type sqlEventRepo struct{ db *sql.DB }

func NewSQLEventRepository(db *sql.DB) EventRepository { return &sqlEventRepo{db} }

const eventColumns = `id, title, description, location, event_date, max_participants, status, created_by, created_at, updated_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (Event, error) {
	var e Event
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Location, &e.EventDate,
		&e.MaxParticipants, &e.Status, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

func (r *sqlEventRepo) Create(ctx context.Context, e *Event) error {
	if e.Status == "" {
		e.Status = EventDraft
	}
	created, err := scanEvent(r.db.QueryRowContext(ctx,
		`INSERT INTO events (title, description, location, event_date, max_participants, status, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+eventColumns,
		e.Title, e.Description, e.Location, e.EventDate, e.MaxParticipants, e.Status, e.CreatedBy))
	if err != nil {
		return translate(err, nil)
	}
	*e = created
	return nil
}

func (r *sqlEventRepo) List(ctx context.Context, f EventFilter) ([]Event, error) {
	q := `SELECT ` + eventColumns + ` FROM events WHERE 1=1`
	var args []any
	if f.Status != nil {
		args = append(args, *f.Status)
		q += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if f.Date != nil {
		args = append(args, f.Date.Format("2006-01-02"))
		q += fmt.Sprintf(" AND event_date::date = $%d", len(args))
	}
	q += " ORDER BY event_date DESC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *sqlEventRepo) GetByID(ctx context.Context, id uuid.UUID) (Event, error) {
	e, err := scanEvent(r.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
	if err != nil {
		return Event{}, notFoundOr(err, EventNotFound)
	}
	return e, nil
}

func (r *sqlEventRepo) Update(ctx context.Context, id uuid.UUID, p EventPatch) (Event, error) {
	if p.Empty() {
		return Event{}, NoFieldsToUpdate
	}
	var (
		sets []string
		args []any
	)
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if p.Title != nil {
		set("title", *p.Title)
	}
	if p.Description != nil {
		set("description", *p.Description)
	}
	if p.Location != nil {
		set("location", *p.Location)
	}
	if p.EventDate != nil {
		set("event_date", *p.EventDate)
	}
	if p.MaxParticipants != nil {
		set("max_participants", *p.MaxParticipants)
	}
	args = append(args, id)

	q := fmt.Sprintf(`UPDATE events SET %s, updated_at = NOW() WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), eventColumns)
	e, err := scanEvent(r.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		return Event{}, translate(notFoundOr(err, EventNotFound), nil)
	}
	return e, nil
}

// SetStatus changes the event status. Cancelling also cancels every
// registration of the event in the same transaction.
func (r *sqlEventRepo) SetStatus(ctx context.Context, id uuid.UUID, status EventStatus) (Event, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Event{}, err
	}
	defer func() { _ = tx.Rollback() }()

	e, err := scanEvent(tx.QueryRowContext(ctx,
		`UPDATE events SET status = $1, updated_at = NOW() WHERE id = $2 RETURNING `+eventColumns,
		status, id))
	if err != nil {
		return Event{}, notFoundOr(err, EventNotFound)
	}

	if status == EventCancelled {
		if _, err := tx.ExecContext(ctx,
			`UPDATE registrations SET status = $1, updated_at = NOW() WHERE event_id = $2 AND status <> $1`,
			RegistrationCancelled, id); err != nil {
			return Event{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Event{}, err
	}
	return e, nil
}
