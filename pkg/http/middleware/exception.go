package middleware

import (
	"runtime/debug"

	"github.com/gofiber/fiber/v2"
	"github.com/worklane/worklane/pkg/http"
	"github.com/worklane/worklane/pkg/log"
)

// ExceptionMiddleware recovers panics and returns a 500 envelope. The stack
// is logged, never sent to the client.
func ExceptionMiddleware(c *fiber.Ctx) error {
	defer func() {
		if err := recover(); err != nil {
			log.Errorf("panic: %v\n%s", err, debug.Stack())
			_ = http.WithRepErr(c, http.InternalError, c.Path())
		}
	}()

	return c.Next()
}
