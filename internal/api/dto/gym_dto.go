package dto

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/spec-kit/gym-access/internal/domain"
)

// GymLoginRequest is the owner login payload.
type GymLoginRequest struct {
	AdminCode string `json:"adminCode"`
	Password  string `json:"password"`
}

// Validate will run validation rules.
func (r GymLoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.AdminCode, validation.Required, validation.Length(1, 64)),
		validation.Field(&r.Password, validation.Required),
	)
}

// VerifyAccessRequest carries the shared access phrase.
type VerifyAccessRequest struct {
	AccessID string `json:"accessId"`
}

// Validate will run validation rules.
func (r VerifyAccessRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.AccessID, validation.Required, validation.Length(1, 256)),
	)
}

// Normalize trims surrounding whitespace from the phrase.
func (r *VerifyAccessRequest) Normalize() {
	r.AccessID = strings.TrimSpace(r.AccessID)
}

// ChangePasswordRequest replaces the owner password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// Validate will run validation rules.
func (r ChangePasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CurrentPassword, validation.Required),
		validation.Field(&r.NewPassword, validation.Required, validation.Length(6, 128)),
	)
}

// GymSummary is a tenant as listed on the unlock entry page.
type GymSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

// GymSummaryFromDomain maps a gym.
func GymSummaryFromDomain(g domain.Gym) GymSummary {
	return GymSummary{ID: g.ID, Name: g.Name, Slug: g.SlugOrEmpty()}
}

// GymAccessResponse is returned after a successful verification.
type GymAccessResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
