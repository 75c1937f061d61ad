package handlers

import (
	"fmt"
	"path/filepath"
	"strings"

	"gym-management-system/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const maxIconBytes = 2 << 20

func SetupAdminRoutes(admin fiber.Router, svc *Services) {
	// Class and routine modules report activity here.
	admin.Post("/points/events", func(c *fiber.Ctx) error {
		var req services.RegisterEventInput
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body", err)
		}
		if err := validate.Struct(&req); err != nil {
			return badRequest(c, "invalid point event", err)
		}

		event, err := svc.Points.RegisterEvent(c.UserContext(), req)
		if err != nil {
			return respondError(c, "failed to register point event", err)
		}
		resp := fiber.Map{"event": event}
		if svc.Gamification != nil {
			resp["rewards"] = svc.Gamification.AfterActivity(c.UserContext(), req.UserID, req.SedeID)
		}
		return c.Status(fiber.StatusCreated).JSON(resp)
	})

	admin.Put("/badges/:code/icon", func(c *fiber.Ctx) error {
		if svc.Icons == nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "icon storage is not configured",
			})
		}
		code := c.Params("code")
		if _, err := svc.Badges.ByCode(c.UserContext(), code); err != nil {
			return respondError(c, "badge not found", err)
		}

		fh, err := c.FormFile("icon")
		if err != nil {
			return badRequest(c, "icon file is required", err)
		}
		contentType := fh.Header.Get("Content-Type")
		if !strings.HasPrefix(contentType, "image/") {
			return badRequest(c, "icon must be an image", fmt.Errorf("content type %q", contentType))
		}
		if fh.Size > maxIconBytes {
			return badRequest(c, "icon too large", fmt.Errorf("%d bytes", fh.Size))
		}

		file, err := fh.Open()
		if err != nil {
			return badRequest(c, "failed to open file", err)
		}
		defer file.Close()

		key := fmt.Sprintf("badges/%s-%s%s", strings.ToLower(code), uuid.NewString()[:8], strings.ToLower(filepath.Ext(fh.Filename)))
		url, err := svc.Icons.Upload(c.UserContext(), key, contentType, file)
		if err != nil {
			return respondError(c, "failed to upload icon", fmt.Errorf("%w: %v", services.ErrUpstream, err))
		}

		badge, err := svc.Badges.SetIcon(c.UserContext(), code, url)
		if err != nil {
			return respondError(c, "failed to update badge", err)
		}
		return c.JSON(badge)
	})

	admin.Post("/reset", func(c *fiber.Ctx) error {
		report, err := svc.Reset.Reset(c.UserContext())
		if err != nil {
			return respondError(c, "reset failed", err)
		}
		return c.JSON(report)
	})
}
