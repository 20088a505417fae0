package dto

import (
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/spec-kit/gym-access/internal/auth"
)

var (
	hasLetter = regexp.MustCompile(`[A-Za-z]`)
	hasDigit  = regexp.MustCompile(`[0-9]`)
)

// UserRegisterRequest payload for new users.
type UserRegisterRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// Validate will run validation rules.
func (r UserRegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Required, validation.Length(2, 60)),
		validation.Field(&r.LastName, validation.Required, validation.Length(2, 60)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password,
			validation.Required,
			validation.Length(8, 128),
			validation.Match(hasLetter).Error("must contain a letter"),
			validation.Match(hasDigit).Error("must contain a digit"),
		),
	)
}

// UserLoginRequest payload for login.
type UserLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules.
func (r UserLoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// Normalize lowercases and trims the email.
func (r *UserLoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

// UserResponse is the public view of a user session.
type UserResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// UserFromPrincipal builds a response from a resolved principal.
func UserFromPrincipal(p *auth.UserPrincipal) *UserResponse {
	if p == nil {
		return nil
	}
	return &UserResponse{ID: p.ID, Name: p.Name, Email: p.Email, Role: string(p.Role)}
}
