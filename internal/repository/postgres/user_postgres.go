package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"respondapi/internal/model"
	"respondapi/internal/repository"
)

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type UserPostgres struct {
	db *sql.DB
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

// Create inserts a new user row and returns the stored record.
func (r *UserPostgres) Create(ctx context.Context, u *model.User) (*model.User, error) {
	const q = `
		INSERT INTO users (id, first_name, last_name, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, first_name, last_name, created_at
	`
	row := r.db.QueryRowContext(ctx, q,
		u.ID,
		u.FirstName,
		u.LastName,
		u.CreatedAt,
	)
	var out model.User
	if err := row.Scan(
		&out.ID,
		&out.FirstName,
		&out.LastName,
		&out.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &out, nil
}

// FindByID fetches a single user by its ID.
func (r *UserPostgres) FindByID(ctx context.Context, id string) (*model.User, error) {
	const q = `
		SELECT id, first_name, last_name, created_at
		FROM users
		WHERE id = $1
	`
	row := r.db.QueryRowContext(ctx, q, id)
	var u model.User
	if err := row.Scan(
		&u.ID,
		&u.FirstName,
		&u.LastName,
		&u.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

// List returns users using LIMIT/OFFSET pagination and a total count.
func (r *UserPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.User], error) {
	const qCount = `SELECT COUNT(*) FROM users`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	const qList = `
		SELECT id, first_name, last_name, created_at
		FROM users
		ORDER BY created_at ASC, id ASC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	items := make([]model.User, 0)
	for rows.Next() {
		var u model.User
		if err := rows.Scan(
			&u.ID,
			&u.FirstName,
			&u.LastName,
			&u.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		items = append(items, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.User]{
		Items: items,
		Total: total,
	}, nil
}

// Delete removes a user by ID.
func (r *UserPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM users WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
