package domain

import "time"

// UserRole represents the platform role of an account.
type UserRole string

const (
	UserRoleUser   UserRole = "USER"
	UserRoleMember UserRole = "MEMBER"
	UserRoleCoach  UserRole = "COACH"
)

// UserAccount is a platform account (member or coach).
type UserAccount struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash *string
	Role         UserRole
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
