package access

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireAuthenticated rejects requests that carry no authenticated actor,
// without consulting the policy table. Used for operations every role may
// perform, such as booking an appointment.
func RequireAuthenticated() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, ok := ActorFromContext(c.Request().Context())
			if !ok || !actor.Authenticated {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			return next(c)
		}
	}
}

// RequireAdmin rejects any actor without the administrator role. Account
// management is admin-only and has no entry in the resource policy table.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, ok := ActorFromContext(c.Request().Context())
			if !ok || !actor.Authenticated {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			if actor.Role != adminRole {
				return echo.NewHTTPError(http.StatusForbidden, "administrator role required")
			}
			return next(c)
		}
	}
}

// Require returns echo middleware that rejects requests whose actor is not
// permitted to perform op on resource. Handlers behind it can assume the
// policy check already passed; domain services still re-check where the
// decision depends on request payload rather than the route alone.
func Require(op Operation, resource Resource) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, ok := ActorFromContext(c.Request().Context())
			if !ok || !actor.Authenticated {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			if !Allow(actor.Role, op, resource) {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient role for operation")
			}
			return next(c)
		}
	}
}
