package middleware

import (
	"log"
	"quitcoach/backend/utils"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RequestID tags every request with a short id for log correlation.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals("request_id", id)
		c.Set("X-Request-ID", id)
		return c.Next()
	}
}

func LoggingMiddleware(logger *log.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		logger.Printf(
			"[%v] %s %s %s %s%d\033[0m %v",
			c.Locals("request_id"),
			c.IP(),
			c.Method(),
			c.Path(),
			utils.StatusColor(status),
			status,
			time.Since(start),
		)

		return err
	}
}
