package handlers

import (
	"strings"

	"gym-management-system/middleware"
	"gym-management-system/models"

	"github.com/gofiber/fiber/v2"
)

func SetupGamificationRoutes(secured fiber.Router, svc *Services) {
	secured.Get("/me/level", func(c *fiber.Ctx) error {
		st, err := svc.Progression.LevelStatus(c.UserContext(), middleware.UserID(c), c.Query("sedeId"))
		if err != nil {
			return respondError(c, "failed to compute level", err)
		}
		return c.JSON(st)
	})

	secured.Post("/me/level/ack", func(c *fiber.Ctx) error {
		level, err := svc.Progression.AcknowledgeLevel(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return respondError(c, "failed to acknowledge level", err)
		}
		return c.JSON(fiber.Map{"acknowledged_level": level})
	})

	secured.Get("/me/points/history", func(c *fiber.Ctx) error {
		page, err := svc.Points.History(c.UserContext(), middleware.UserID(c), c.Query("sedeId"),
			c.QueryInt("page", 1), c.QueryInt("limit", 20))
		if err != nil {
			return respondError(c, "failed to fetch points history", err)
		}
		return c.JSON(page)
	})

	secured.Get("/me/badges", func(c *fiber.Ctx) error {
		badges, err := svc.Badges.GetUserBadges(c.UserContext(), middleware.UserID(c), c.Query("sedeId"))
		if err != nil {
			return respondError(c, "failed to fetch badges", err)
		}
		return c.JSON(fiber.Map{"badges": badges})
	})

	secured.Post("/me/badges/evaluate", func(c *fiber.Ctx) error {
		granted, err := svc.Badges.EvaluateAndReturnNew(c.UserContext(), middleware.UserID(c), c.Query("sedeId"))
		if err != nil {
			return respondError(c, "badge evaluation failed", err)
		}
		return c.JSON(fiber.Map{"new_badges": granted})
	})

	secured.Get("/me/challenges", func(c *fiber.Ctx) error {
		freq := models.ChallengeFrequency(strings.ToUpper(c.Query("frequency", string(models.ChallengeDaily))))
		list, err := svc.Challenges.ListForUser(c.UserContext(), middleware.UserID(c), c.Query("sedeId"), freq)
		if err != nil {
			return respondError(c, "failed to fetch challenges", err)
		}
		return c.JSON(fiber.Map{"frequency": freq, "challenges": list})
	})

	secured.Post("/me/challenges/evaluate", func(c *fiber.Ctx) error {
		granted, err := svc.Challenges.EvaluateAndReturnNew(c.UserContext(), middleware.UserID(c), c.Query("sedeId"))
		if err != nil {
			return respondError(c, "challenge evaluation failed", err)
		}
		return c.JSON(fiber.Map{"new_challenges": granted})
	})
}
