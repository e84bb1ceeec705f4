package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/transport"
	apperrors "github.com/spec-kit/ticket-bot/pkg/util/errorutil"
)

// API token scopes.
const (
	ScopeAdmin   = "admin"
	ScopeGateway = "gateway"
)

// ManagerPolicy decides who may open the ticket management console: members
// holding the manager role and the guild owner.
type ManagerPolicy struct {
	Role  string
	Owner domain.UserID
}

// CanManage reports whether member passes the role check.
func (p ManagerPolicy) CanManage(member transport.Member) bool {
	if member.Bot {
		return false
	}
	if p.Owner != 0 && member.ID == p.Owner {
		return true
	}
	return p.Role != "" && member.HasRole(p.Role)
}

// RequireScope ensures the API principal carries one of the scopes.
func RequireScope(allowed ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		for _, scope := range allowed {
			if principal.HasScope(scope) {
				return c.Next()
			}
		}
		return apperrors.NewForbidden("insufficient scope")
	}
}
