// Package pgxstore implements repository.UserRepository on a native pgx
// connection pool, without going through database/sql.
package pgxstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"respondapi/internal/model"
	"respondapi/internal/repository"
)

// Querier is the subset of *pgxpool.Pool used by the store.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// UserStore keeps users in PostgreSQL through a pgx pool.
type UserStore struct {
	q Querier
}

// NewUserStore wraps a pool (or any Querier).
func NewUserStore(q Querier) *UserStore {
	return &UserStore{q: q}
}

var _ repository.UserRepository = (*UserStore)(nil)

func (s *UserStore) Create(ctx context.Context, u *model.User) (*model.User, error) {
	const q = `
		INSERT INTO users (id, first_name, last_name, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, first_name, last_name, created_at
	`
	var out model.User
	err := s.q.QueryRow(ctx, q, u.ID, u.FirstName, u.LastName, u.CreatedAt).Scan(
		&out.ID,
		&out.FirstName,
		&out.LastName,
		&out.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return &out, nil
}

func (s *UserStore) FindByID(ctx context.Context, id string) (*model.User, error) {
	const q = `
		SELECT id, first_name, last_name, created_at
		FROM users
		WHERE id = $1
	`
	var u model.User
	err := s.q.QueryRow(ctx, q, id).Scan(
		&u.ID,
		&u.FirstName,
		&u.LastName,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

func (s *UserStore) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.User], error) {
	var total int
	if err := s.q.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	const q = `
		SELECT id, first_name, last_name, created_at
		FROM users
		ORDER BY created_at ASC, id ASC
		LIMIT $1 OFFSET $2
	`
	rows, err := s.q.Query(ctx, q, pq.Limit, pq.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0, pq.Limit)
	for rows.Next() {
		var u model.User
		if err := rows.Scan(
			&u.ID,
			&u.FirstName,
			&u.LastName,
			&u.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return &repository.PageResult[model.User]{Items: users, Total: total}, nil
}

func (s *UserStore) Delete(ctx context.Context, id string) error {
	tag, err := s.q.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
