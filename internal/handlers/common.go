package handlers

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/vexcel-trust/recordsdb/internal/middleware"
	"github.com/vexcel-trust/recordsdb/internal/policy"
	"github.com/vexcel-trust/recordsdb/internal/types"
	"github.com/vexcel-trust/recordsdb/internal/utils"
)

// validate is shared across handlers; validator.Validate is safe for
// concurrent use.
var validate = validator.New()

// parseIDParam parses a numeric path parameter.
func parseIDParam(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, types.Invalid("invalid " + name)
	}
	return uint(id), nil
}

// respondError maps any service error onto the standard envelope.
// Storage connectivity failures surface as 503; anything else
// unclassified becomes an opaque 500. Internals never reach the client.
func respondError(c *fiber.Ctx, err error) error {
	if appErr, ok := types.AsAppError(err); ok {
		return utils.ErrorResponse(c, appErr)
	}
	if storageUnavailable(err) {
		return utils.ErrorResponse(c, types.Unavailable("storage unavailable"))
	}
	return utils.ErrorResponse(c, &types.AppError{
		Kind:    types.KindInternal,
		Message: "internal error",
	})
}

// storageUnavailable reports whether err is a database connectivity
// failure rather than a semantic error: a dropped or bad connection,
// or a network error from the driver's dialer.
func storageUnavailable(err error) bool {
	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// authorize runs the policy for a student-scoped operation. It returns
// a forbidden response when the principal is missing (the route should
// have been authenticated) or the policy denies.
func authorize(c *fiber.Ctx, op policy.Operation, ownerStudentID uint) (policy.Principal, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return policy.Principal{}, types.Unauthenticated("missing credentials")
	}
	if !policy.Authorize(p, op, ownerStudentID) {
		return policy.Principal{}, types.Forbidden("insufficient permissions")
	}
	return p, nil
}

// parseBody decodes and validates a JSON request body.
func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return types.Invalid("malformed request body")
	}
	if err := validate.Struct(out); err != nil {
		return types.Invalid("invalid request body: " + err.Error())
	}
	return nil
}
