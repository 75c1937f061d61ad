package handlers

import (
	"context"
	"errors"
	"io"
	"log"

	"gym-management-system/middleware"
	"gym-management-system/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// IconUploader stores a badge icon and returns its public URL.
type IconUploader interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

type Services struct {
	Points       *services.PointsService
	Progression  *services.ProgressionService
	Badges       *services.BadgeService
	Challenges   *services.ChallengeService
	Sessions     *services.WorkoutSessionService
	Gamification *services.Gamification
	Reset        *services.ResetService
	Icons        IconUploader // nil when R2 is not configured
}

// SetupRoutes mounts everything under /s behind the user-context middleware.
func SetupRoutes(app *fiber.App, svc *Services) {
	secured := app.Group("/s", middleware.UserContextMiddleware())

	SetupGamificationRoutes(secured, svc)
	SetupSessionRoutes(secured, svc.Sessions)
	SetupLeaderboardRoutes(secured, svc.Points)

	admin := secured.Group("/admin", middleware.RequireRole("admin"))
	SetupAdminRoutes(admin, svc)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrUpstream):
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}

func respondError(c *fiber.Ctx, msg string, err error) error {
	status := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		log.Printf("❌ %s %s: %s: %v", c.Method(), c.Path(), msg, err)
	}
	return c.Status(status).JSON(fiber.Map{
		"error": msg,
		"cause": err.Error(),
	})
}

func badRequest(c *fiber.Ctx, msg string, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": msg,
		"cause": err.Error(),
	})
}
