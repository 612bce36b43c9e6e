package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"enrollment-manager/core/loader"
	"enrollment-manager/core/logger"
	"enrollment-manager/core/middleware/auth"
	"enrollment-manager/core/middleware/rayid"
	"enrollment-manager/feature/schemacheck"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "enrollment-manager/docs/swagger"
)

// @title Enrollment Manager API
// @version 1.0
// @description API for checking and reconciling the enrollment database schema.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Reconcile the schema, then start the HTTP server",
	Long: `Reconciles every governed table and starts the schema API.
The server is not started when the database cannot be reached or inspected.`,
	RunE: runStart,
}

func init() {
	RootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()
	logg := rt.logger
	zap.ReplaceGlobals(logg)

	svc, err := rt.service("")
	if err != nil {
		return err
	}

	if rt.cfg.Schema.ReconcileOnStart {
		summary, err := svc.Reconcile(cmd.Context())
		if err != nil {
			return fmt.Errorf("startup reconciliation aborted: %w", err)
		}
		if err := writeSummary(os.Stdout, logg, outputText, summary); err != nil {
			return err
		}
		if summary.Failed > 0 {
			logg.Error("Some tables could not be reconciled", zap.Int("failed", summary.Failed))
		}
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	// RayID first so every later log line carries it.
	app.Use(rayid.New())
	app.Use(func(c *fiber.Ctx) error {
		l := logger.WithRayID(logg, c)
		l.Info("Request started",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
		)
		err := c.Next()
		if err != nil {
			l.Error("Request error", zap.Error(err))
		}
		return err
	})

	app.Get("/swagger/*", swagger.HandlerDefault)
	app.Use(auth.New(auth.Config{ApiKey: rt.cfg.Server.ApiKey}))

	mgr := loader.NewManager()
	mgr.Register(schemacheck.NewFeature(svc))
	loaded, err := mgr.LoadAll(app)
	if err != nil {
		return err
	}
	logg.Info("Features loaded", zap.Strings("features", loaded))

	serveErr := make(chan error, 1)
	go func() {
		logg.Info("Starting server", zap.String("port", rt.cfg.Server.Port))
		serveErr <- app.Listen(rt.cfg.Server.Address())
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serveErr:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logg.Info("Shutting down server...")
	return app.ShutdownWithTimeout(rt.cfg.Server.ShutdownTimeout())
}
