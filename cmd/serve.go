package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gym-management-system/handlers"
	"gym-management-system/middleware"

	"github.com/go-co-op/gocron/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func runServe(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	var scheduler gocron.Scheduler
	if a.cfg.SnapshotCron != "" {
		scheduler, err = a.services.Points.StartSnapshotScheduler(a.cfg.SnapshotCron, a.cfg.Location)
		if err != nil {
			return err
		}
	}

	server := fiber.New(fiber.Config{
		BodyLimit: 4 * 1024 * 1024,
	})

	// Only gateway requests are served
	server.Use(middleware.GatewayAuthMiddleware(a.cfg.ServiceToken))

	origins := a.cfg.Origins()
	server.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-Service-Token, X-User-ID, X-User-Roles",
		ExposeHeaders:    "Content-Length, Content-Type, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	handlers.SetupRoutes(server, a.services)

	go func() {
		if err := server.Listen(":" + a.cfg.Port); err != nil {
			log.Printf("Server error: %v", err)
			stop()
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", a.cfg.Port)
	log.Printf("✅ CORS configured for origins: %s", origins)
	if scheduler != nil {
		log.Printf("✅ Leaderboard snapshots scheduled (%s, %s)", a.cfg.SnapshotCron, a.cfg.Location)
	}

	<-ctx.Done()
	log.Println("Shutting down server...")

	if scheduler != nil {
		if err := scheduler.Shutdown(); err != nil {
			log.Printf("scheduler shutdown: %v", err)
		}
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.ShutdownWithContext(shutdownCtx)
}
