package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/vexcel-trust/recordsdb/internal/config"
	"github.com/vexcel-trust/recordsdb/internal/policy"
	"github.com/vexcel-trust/recordsdb/internal/services"
	"github.com/vexcel-trust/recordsdb/internal/types"
	"github.com/vexcel-trust/recordsdb/internal/utils"
)

// principalKey is the fiber Locals slot the resolved Principal lives in
// for the rest of the request.
const principalKey = "principal"

// Authenticate resolves the bearer credential into a Principal and
// stores it in the request context. Missing or bad credentials are
// unauthenticated, never forbidden.
func Authenticate(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return utils.ErrorResponse(c, types.Unauthenticated("missing bearer token"))
		}
		raw := strings.TrimSpace(authz[7:])

		p, err := services.ResolvePrincipal(cfg, raw)
		if err != nil {
			if appErr, ok := types.AsAppError(err); ok {
				return utils.ErrorResponse(c, appErr)
			}
			return utils.ErrorResponse(c, types.Unauthenticated("invalid credentials"))
		}

		c.Locals(principalKey, p)
		return c.Next()
	}
}

// Require gates a route on an operation that is not scoped to a single
// student. Student-scoped checks happen in the handler, where the owner
// id is known.
func Require(op policy.Operation) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := PrincipalFrom(c)
		if !ok {
			return utils.ErrorResponse(c, types.Unauthenticated("missing credentials"))
		}
		if !policy.Authorize(p, op, 0) {
			return utils.ErrorResponse(c, types.Forbidden("insufficient permissions"))
		}
		return c.Next()
	}
}

// PrincipalFrom returns the Principal the Authenticate middleware
// resolved for this request.
func PrincipalFrom(c *fiber.Ctx) (policy.Principal, bool) {
	p, ok := c.Locals(principalKey).(policy.Principal)
	return p, ok
}
