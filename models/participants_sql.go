package models

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type sqlParticipantRepo struct{ db *sql.DB }

func NewSQLParticipantRepository(db *sql.DB) ParticipantRepository {
	return &sqlParticipantRepo{db}
}

const participantColumns = `id, full_name, email, phone, created_at, updated_at`

func scanParticipant(row rowScanner) (Participant, error) {
	var p Participant
	err := row.Scan(&p.ID, &p.FullName, &p.Email, &p.Phone, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *sqlParticipantRepo) Create(ctx context.Context, p *Participant) error {
	created, err := scanParticipant(r.db.QueryRowContext(ctx,
		`INSERT INTO participants (full_name, email, phone) VALUES ($1, $2, $3) RETURNING `+participantColumns,
		p.FullName, p.Email, p.Phone))
	if err != nil {
		return translate(err, nil)
	}
	*p = created
	return nil
}

// List returns participants whose name or email contains search, newest first.
func (r *sqlParticipantRepo) List(ctx context.Context, search string) ([]Participant, error) {
	q := `SELECT ` + participantColumns + ` FROM participants`
	var args []any
	if search != "" {
		args = append(args, "%"+search+"%")
		q += ` WHERE (full_name ILIKE $1 OR email ILIKE $1)`
	}
	q += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Participant{}
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *sqlParticipantRepo) GetByID(ctx context.Context, id uuid.UUID) (Participant, error) {
	p, err := scanParticipant(r.db.QueryRowContext(ctx,
		`SELECT `+participantColumns+` FROM participants WHERE id = $1`, id))
	if err != nil {
		return Participant{}, notFoundOr(err, ParticipantNotFound)
	}
	return p, nil
}

func (r *sqlParticipantRepo) Update(ctx context.Context, id uuid.UUID, p ParticipantPatch) (Participant, error) {
	if p.Empty() {
		return Participant{}, NoFieldsToUpdate
	}
	var (
		sets []string
		args []any
	)
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if p.FullName != nil {
		set("full_name", *p.FullName)
	}
	if p.Email != nil {
		set("email", *p.Email)
	}
	if p.Phone != nil {
		set("phone", *p.Phone)
	}
	args = append(args, id)

	q := fmt.Sprintf(`UPDATE participants SET %s, updated_at = NOW() WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), participantColumns)
	out, err := scanParticipant(r.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		return Participant{}, translate(notFoundOr(err, ParticipantNotFound), nil)
	}
	return out, nil
}
