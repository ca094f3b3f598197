package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinicore/clinicore/internal/platform/access"
)

// Logger emits one structured access-log line per request. When the auth
// middleware resolved an actor, the line carries who acted; the audit
// middleware records the finer-grained resource trail separately.
func Logger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			rid, _ := c.Get("request_id").(string)

			err := next(c)

			evt := logger.Info()
			if err != nil {
				evt = logger.Error().Err(err)
			}

			evt.
				Str("request_id", rid).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", c.Response().Status).
				Int64("bytes_out", c.Response().Size).
				Dur("latency", time.Since(start)).
				Str("remote_ip", c.RealIP())

			if actor, ok := access.ActorFromContext(req.Context()); ok && actor.Authenticated {
				evt.Str("actor_id", actor.ID).Str("actor_role", actor.Role)
			}

			evt.Msg("request")
			return err
		}
	}
}
