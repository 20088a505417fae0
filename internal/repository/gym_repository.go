package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/gym-access/internal/domain"
)

// GymRepository defines persistence access for tenants.
type GymRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Gym, error)
	GetByAdminCode(ctx context.Context, adminCode string) (*domain.Gym, error)
	List(ctx context.Context) ([]domain.Gym, error)
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
}

type gymRepository struct {
	pool *pgxpool.Pool
}

// NewGymRepository returns a Postgres-backed implementation.
func NewGymRepository(pool *pgxpool.Pool) GymRepository {
	return &gymRepository{pool: pool}
}

const gymColumns = `id, name, slug, admin_code, location, phone, email, hours, image, password_hash, created_at, updated_at`

func scanGym(row pgx.Row) (*domain.Gym, error) {
	var gym domain.Gym
	if err := row.Scan(
		&gym.ID,
		&gym.Name,
		&gym.Slug,
		&gym.AdminCode,
		&gym.Location,
		&gym.Phone,
		&gym.Email,
		&gym.Hours,
		&gym.Image,
		&gym.PasswordHash,
		&gym.CreatedAt,
		&gym.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &gym, nil
}

func (r *gymRepository) GetByID(ctx context.Context, id int64) (*domain.Gym, error) {
	if r.pool == nil {
		return nil, errNoPool
	}
	query := `SELECT ` + gymColumns + ` FROM gyms WHERE id=$1`
	gym, err := scanGym(r.pool.QueryRow(ctx, query, id))
	return gym, storeErr(err)
}

func (r *gymRepository) GetByAdminCode(ctx context.Context, adminCode string) (*domain.Gym, error) {
	if r.pool == nil {
		return nil, errNoPool
	}
	query := `SELECT ` + gymColumns + ` FROM gyms WHERE admin_code=$1`
	gym, err := scanGym(r.pool.QueryRow(ctx, query, adminCode))
	return gym, storeErr(err)
}

func (r *gymRepository) List(ctx context.Context) ([]domain.Gym, error) {
	if r.pool == nil {
		return nil, errNoPool
	}
	query := `SELECT ` + gymColumns + ` FROM gyms ORDER BY id`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	var gyms []domain.Gym
	for rows.Next() {
		gym, err := scanGym(rows)
		if err != nil {
			return nil, storeErr(err)
		}
		gyms = append(gyms, *gym)
	}
	return gyms, storeErr(rows.Err())
}

func (r *gymRepository) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	if r.pool == nil {
		return errNoPool
	}
	const query = `
        UPDATE gyms SET password_hash=$1, updated_at=NOW()
        WHERE id=$2`

	cmd, err := r.pool.Exec(ctx, query, hash, id)
	if err != nil {
		return storeErr(err)
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
