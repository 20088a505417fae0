package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/gym-access/internal/domain"
)

// MemoryGymRepository is an in-memory GymRepository. Setting Err makes every
// call fail with it, which simulates a store outage.
type MemoryGymRepository struct {
	mu   sync.RWMutex
	gyms map[int64]domain.Gym
	Err  error
}

// NewMemoryGymRepository seeds the repository with the given gyms.
func NewMemoryGymRepository(gyms ...domain.Gym) *MemoryGymRepository {
	repo := &MemoryGymRepository{gyms: make(map[int64]domain.Gym, len(gyms))}
	for _, gym := range gyms {
		repo.gyms[gym.ID] = gym
	}
	return repo
}

// SetErr switches the simulated outage on (non-nil) or off.
func (r *MemoryGymRepository) SetErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Err = err
}

// Delete removes a gym, leaving any credential that referenced it stale.
func (r *MemoryGymRepository) Delete(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.gyms, id)
}

func (r *MemoryGymRepository) GetByID(_ context.Context, id int64) (*domain.Gym, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}
	gym, ok := r.gyms[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &gym, nil
}

func (r *MemoryGymRepository) GetByAdminCode(_ context.Context, adminCode string) (*domain.Gym, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}
	for _, gym := range r.gyms {
		if gym.AdminCode != nil && *gym.AdminCode == adminCode {
			found := gym
			return &found, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *MemoryGymRepository) List(_ context.Context) ([]domain.Gym, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}
	gyms := make([]domain.Gym, 0, len(r.gyms))
	for _, gym := range r.gyms {
		gyms = append(gyms, gym)
	}
	sort.Slice(gyms, func(i, j int) bool { return gyms[i].ID < gyms[j].ID })
	return gyms, nil
}

func (r *MemoryGymRepository) UpdatePasswordHash(_ context.Context, id int64, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	gym, ok := r.gyms[id]
	if !ok {
		return pgx.ErrNoRows
	}
	gym.PasswordHash = &hash
	gym.UpdatedAt = time.Now()
	r.gyms[id] = gym
	return nil
}

// MemoryUserRepository is an in-memory UserRepository.
type MemoryUserRepository struct {
	mu     sync.RWMutex
	users  map[int64]domain.UserAccount
	nextID int64
	Err    error
}

// NewMemoryUserRepository seeds the repository with the given accounts.
func NewMemoryUserRepository(users ...domain.UserAccount) *MemoryUserRepository {
	repo := &MemoryUserRepository{users: make(map[int64]domain.UserAccount, len(users))}
	for _, user := range users {
		user.Email = strings.ToLower(user.Email)
		repo.users[user.ID] = user
		if user.ID > repo.nextID {
			repo.nextID = user.ID
		}
	}
	return repo
}

// SetErr switches the simulated outage on (non-nil) or off.
func (r *MemoryUserRepository) SetErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Err = err
}

// Delete removes an account.
func (r *MemoryUserRepository) Delete(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
}

func (r *MemoryUserRepository) Create(_ context.Context, user *domain.UserAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	email := strings.ToLower(user.Email)
	for _, existing := range r.users {
		if existing.Email == email {
			return ErrDuplicate
		}
	}
	r.nextID++
	now := time.Now()
	user.ID = r.nextID
	user.Email = email
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id int64) (*domain.UserAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*domain.UserAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}
	email = strings.ToLower(email)
	for _, user := range r.users {
		if user.Email == email {
			found := user
			return &found, nil
		}
	}
	return nil, pgx.ErrNoRows
}
