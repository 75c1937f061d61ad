package handlers

import (
	"gym-management-system/services"

	"github.com/gofiber/fiber/v2"
)

func leaderboardQuery(c *fiber.Ctx) (services.LeaderboardQuery, error) {
	period, err := services.ParseLeaderboardPeriod(c.Query("period"))
	if err != nil {
		return services.LeaderboardQuery{}, err
	}
	return services.LeaderboardQuery{
		Period: period,
		SedeID: c.Query("sedeId"),
		Limit:  c.QueryInt("limit", 10),
	}, nil
}

func SetupLeaderboardRoutes(secured fiber.Router, points *services.PointsService) {
	secured.Get("/leaderboard/users", func(c *fiber.Ctx) error {
		q, err := leaderboardQuery(c)
		if err != nil {
			return respondError(c, "invalid leaderboard query", err)
		}
		rows, err := points.UserLeaderboard(c.UserContext(), q)
		if err != nil {
			return respondError(c, "failed to build leaderboard", err)
		}
		return c.JSON(fiber.Map{"period": q.Period, "rows": rows})
	})

	secured.Get("/leaderboard/sedes", func(c *fiber.Ctx) error {
		q, err := leaderboardQuery(c)
		if err != nil {
			return respondError(c, "invalid leaderboard query", err)
		}
		rows, err := points.SedeLeaderboard(c.UserContext(), q)
		if err != nil {
			return respondError(c, "failed to build leaderboard", err)
		}
		return c.JSON(fiber.Map{"period": q.Period, "rows": rows})
	})
}
