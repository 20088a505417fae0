package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/gym-access/internal/domain"
)

// UserRepository defines persistence access for platform accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.UserAccount) error
	GetByID(ctx context.Context, id int64) (*domain.UserAccount, error)
	GetByEmail(ctx context.Context, email string) (*domain.UserAccount, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) Create(ctx context.Context, user *domain.UserAccount) error {
	if r.pool == nil {
		return errNoPool
	}
	const query = `
        INSERT INTO user_accounts (name, email, password_hash, role)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		user.Name,
		strings.ToLower(user.Email),
		user.PasswordHash,
		user.Role,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	return storeErr(err)
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.UserAccount, error) {
	if r.pool == nil {
		return nil, errNoPool
	}
	const query = `
        SELECT id, name, email, password_hash, role, created_at, updated_at
        FROM user_accounts WHERE id=$1`

	var user domain.UserAccount
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, storeErr(err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.UserAccount, error) {
	if r.pool == nil {
		return nil, errNoPool
	}
	const query = `
        SELECT id, name, email, password_hash, role, created_at, updated_at
        FROM user_accounts WHERE email=$1`

	var user domain.UserAccount
	if err := r.pool.QueryRow(ctx, query, strings.ToLower(email)).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, storeErr(err)
	}
	return &user, nil
}
