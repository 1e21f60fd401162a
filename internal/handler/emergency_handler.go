package handler

import "github.com/gofiber/fiber/v2"

// RegisterEmergencyRoute exposes the unauthenticated emergency check used by
// clients that have lost their session.
func RegisterEmergencyRoute(router fiber.Router) {
	router.Get("/emergency", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "ok",
			"message": "Emergency endpoint active.",
		})
	})
}
