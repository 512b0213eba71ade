package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"eventhub/utils"
)

type sqlUserRepo struct{ db *sql.DB }

func NewSQLUserRepository(db *sql.DB) UserRepository { return &sqlUserRepo{db} }

const userColumns = `id, email, role, full_name, created_at, updated_at`

func scanUser(row rowScanner) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Role, &u.FullName, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// Create hashes u.Password before it is stored.
func (r *sqlUserRepo) Create(ctx context.Context, u *User) error {
	hashed, err := utils.HashPassword(u.Password)
	if err != nil {
		return err
	}

	created, err := scanUser(r.db.QueryRowContext(ctx,
		`INSERT INTO users (email, password, role, full_name) VALUES ($1, $2, $3, $4) RETURNING `+userColumns,
		u.Email, hashed, u.Role, u.FullName))
	if err != nil {
		return translate(err, EmailTaken)
	}
	created.Password = hashed
	*u = created
	return nil
}

func (r *sqlUserRepo) ValidateCredentials(ctx context.Context, email, plain string) (User, error) {
	var u User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, password, role, full_name, created_at, updated_at FROM users WHERE email = $1`, email).
		Scan(&u.ID, &u.Email, &u.Password, &u.Role, &u.FullName, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, BadCredentials
	}
	if err != nil {
		return User{}, err
	}

	if !utils.CheckPasswordHash(plain, u.Password) {
		return User{}, BadCredentials
	}
	return u, nil
}

func (r *sqlUserRepo) GetByID(ctx context.Context, id uuid.UUID) (User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return User{}, notFoundOr(err, UserNotFound)
	}
	return u, nil
}

func (r *sqlUserRepo) List(ctx context.Context) ([]User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *sqlUserRepo) Update(ctx context.Context, id uuid.UUID, p UserPatch) (User, error) {
	if p.Empty() {
		return User{}, NoFieldsToUpdate
	}
	var (
		sets []string
		args []any
	)
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if p.Email != nil {
		set("email", *p.Email)
	}
	if p.Role != nil {
		set("role", *p.Role)
	}
	if p.FullName != nil {
		set("full_name", *p.FullName)
	}
	if p.Password != nil {
		hashed, err := utils.HashPassword(*p.Password)
		if err != nil {
			return User{}, err
		}
		set("password", hashed)
	}
	args = append(args, id)

	q := fmt.Sprintf(`UPDATE users SET %s, updated_at = NOW() WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), userColumns)
	u, err := scanUser(r.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		return User{}, translate(notFoundOr(err, UserNotFound), EmailTaken)
	}
	return u, nil
}

func (r *sqlUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return translate(err, nil)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return UserNotFound
	}
	return nil
}

func (r *sqlUserRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}
