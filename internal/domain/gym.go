package domain

import "time"

// Gym is a tenant of the platform. Most columns belong to the CRUD side of
// the application; the access layer only relies on ID, the owner credentials
// and the display fields returned after login.
type Gym struct {
	ID           int64
	Name         string
	Slug         *string
	AdminCode    *string
	Location     string
	Phone        string
	Email        string
	Hours        string
	Image        *string
	PasswordHash *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SlugOrEmpty returns the slug or "" when unset.
func (g *Gym) SlugOrEmpty() string {
	if g == nil || g.Slug == nil {
		return ""
	}
	return *g.Slug
}

// AdminCodeOrEmpty returns the admin code or "" when unset.
func (g *Gym) AdminCodeOrEmpty() string {
	if g == nil || g.AdminCode == nil {
		return ""
	}
	return *g.AdminCode
}

// HasPassword reports whether owner login is configured for the gym.
func (g *Gym) HasPassword() bool {
	return g != nil && g.PasswordHash != nil && *g.PasswordHash != ""
}
