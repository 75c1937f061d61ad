package handlers

import (
	"gym-management-system/middleware"
	"gym-management-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupSessionRoutes(secured fiber.Router, sessions *services.WorkoutSessionService) {
	secured.Post("/sessions", func(c *fiber.Ctx) error {
		var req services.CreateSessionInput
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body", err)
		}
		if err := validate.Struct(&req); err != nil {
			return badRequest(c, "invalid session", err)
		}
		req.UserID = middleware.UserID(c)

		res, err := sessions.Create(c.UserContext(), req)
		if err != nil {
			return respondError(c, "failed to log session", err)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	})

	secured.Get("/sessions", func(c *fiber.Ctx) error {
		page, err := sessions.ListByUser(c.UserContext(), middleware.UserID(c), c.Query("routineId"),
			c.QueryInt("page", 1), c.QueryInt("limit", 20))
		if err != nil {
			return respondError(c, "failed to list sessions", err)
		}
		return c.JSON(page)
	})
}
