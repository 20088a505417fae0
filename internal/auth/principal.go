package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/gym-access/internal/domain"
)

const (
	userPrincipalKey = "auth_user_principal"
	gymPrincipalKey  = "auth_gym_principal"
)

// UserPrincipal is an authenticated platform account.
type UserPrincipal struct {
	ID    int64           `json:"id"`
	Name  string          `json:"name"`
	Email string          `json:"email"`
	Role  domain.UserRole `json:"role"`
}

// GymPrincipal is either an owner session or a visitor unlock. The set of
// implementations is closed.
type GymPrincipal interface {
	TenantID() int64
	Kind() domain.SubjectKind
	gymPrincipal()
}

// GymOwnerPrincipal is an authenticated tenant owner.
type GymOwnerPrincipal struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	AdminCode string `json:"adminCode"`
}

func (p *GymOwnerPrincipal) TenantID() int64          { return p.ID }
func (p *GymOwnerPrincipal) Kind() domain.SubjectKind { return domain.SubjectKindGym }
func (*GymOwnerPrincipal) gymPrincipal()              {}

// GymVisitorPrincipal is a tenant unlocked with the shared access phrase.
type GymVisitorPrincipal struct {
	ID int64 `json:"id"`
}

func (p *GymVisitorPrincipal) TenantID() int64          { return p.ID }
func (p *GymVisitorPrincipal) Kind() domain.SubjectKind { return domain.SubjectKindGymAccess }
func (*GymVisitorPrincipal) gymPrincipal()              {}

func ownerFromGym(gym *domain.Gym) *GymOwnerPrincipal {
	return &GymOwnerPrincipal{
		ID:        gym.ID,
		Name:      gym.Name,
		Slug:      gym.SlugOrEmpty(),
		AdminCode: gym.AdminCodeOrEmpty(),
	}
}

// WithGymPrincipal stores the resolved gym principal on the request.
func WithGymPrincipal(c *fiber.Ctx, p GymPrincipal) {
	c.Locals(gymPrincipalKey, p)
}

// GymPrincipalFromContext returns the principal stored by the tenant guards.
func GymPrincipalFromContext(c *fiber.Ctx) (GymPrincipal, bool) {
	p, ok := c.Locals(gymPrincipalKey).(GymPrincipal)
	return p, ok && p != nil
}

// WithUserPrincipal stores the resolved user principal on the request.
func WithUserPrincipal(c *fiber.Ctx, p *UserPrincipal) {
	c.Locals(userPrincipalKey, p)
}

// UserPrincipalFromContext returns the principal stored by RequireUser.
func UserPrincipalFromContext(c *fiber.Ctx) (*UserPrincipal, bool) {
	p, ok := c.Locals(userPrincipalKey).(*UserPrincipal)
	return p, ok && p != nil
}
