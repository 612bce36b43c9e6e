package schemacheck

import (
	"errors"
	"strings"

	"enrollment-manager/core/logger"
	"enrollment-manager/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for schema checks.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the schema routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/schema")
	group.Get("/", h.HandleCheckAll)
	group.Post("/reconcile", h.HandleReconcile)
	group.Get("/archives/:table", h.HandleListArchives)
	group.Get("/archives/:table/:name", h.HandleGetArchive)
	group.Get("/:table", h.HandleCheckTable)
}

// HandleCheckAll diagnoses every governed table.
// @Summary Check Governed Tables
// @Description Compares every governed table with its canonical schema without modifying anything.
// @Tags schema
// @Produce json
// @Success 200 {object} schemacheck.Summary "Check Summary"
// @Failure 503 {object} map[string]string "Store Unavailable"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /schema [get]
func (h *Handler) HandleCheckAll(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	summary, err := h.service.Check(c.Context())
	if err != nil {
		l.Error("Schema check failed", zap.Error(err))
		return fail(c, err)
	}
	return c.JSON(summary)
}

// HandleCheckTable diagnoses one governed table.
// @Summary Check Table
// @Description Compares one governed table with its canonical schema without modifying it.
// @Tags schema
// @Produce json
// @Param table path string true "Table name"
// @Success 200 {object} reconcile.Report "Table Report"
// @Failure 404 {object} map[string]string "Unknown Table"
// @Failure 503 {object} map[string]string "Store Unavailable"
// @Router /schema/{table} [get]
func (h *Handler) HandleCheckTable(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	summary, err := h.service.Check(c.Context(), c.Params("table"))
	if err != nil {
		l.Error("Schema check failed", zap.String("table", c.Params("table")), zap.Error(err))
		return fail(c, err)
	}
	return c.JSON(summary.Tables[0])
}

// HandleReconcile rebuilds drifted or missing tables.
// @Summary Reconcile Tables
// @Description Rebuilds governed tables that drifted from their canonical schema. Depending on the rebuild mode, existing rows may be discarded.
// @Tags schema
// @Produce json
// @Param tables query string false "Comma separated table names (default: all)"
// @Success 200 {object} schemacheck.Summary "Reconcile Summary"
// @Failure 404 {object} map[string]string "Unknown Table"
// @Failure 500 {object} schemacheck.Summary "Some Tables Failed"
// @Failure 503 {object} map[string]string "Store Unavailable"
// @Router /schema/reconcile [post]
func (h *Handler) HandleReconcile(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	tables := splitTables(c.Query("tables"))
	l.Info("Triggering schema reconciliation", zap.Strings("tables", tables))

	summary, err := h.service.Reconcile(c.Context(), tables...)
	if err != nil {
		l.Error("Schema reconciliation aborted", zap.Error(err))
		return fail(c, err)
	}
	if summary.Failed > 0 {
		l.Warn("Schema reconciliation finished with failures", zap.Int("failed", summary.Failed))
		return c.Status(fiber.StatusInternalServerError).JSON(summary)
	}
	return c.JSON(summary)
}

// HandleListArchives lists the archived rows of a table.
// @Summary List Archives
// @Description Lists the archives of rows discarded by destructive rebuilds of a table.
// @Tags schema
// @Produce json
// @Param table path string true "Table name"
// @Success 200 {array} reconcile.ArchiveObject "Archives"
// @Failure 404 {object} map[string]string "Unknown Table or Archives Disabled"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /schema/archives/{table} [get]
func (h *Handler) HandleListArchives(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	objects, err := h.service.ListArchives(c.Context(), c.Params("table"))
	if err != nil {
		l.Error("Failed to list archives", zap.String("table", c.Params("table")), zap.Error(err))
		return fail(c, err)
	}
	return c.JSON(objects)
}

// HandleGetArchive returns one archive.
// @Summary Get Archive
// @Description Returns the rows stored in one archive of a table.
// @Tags schema
// @Produce json
// @Param table path string true "Table name"
// @Param name path string true "Archive file name"
// @Success 200 {object} reconcile.ArchiveDocument "Archive"
// @Failure 400 {object} map[string]string "Invalid Archive Name"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /schema/archives/{table}/{name} [get]
func (h *Handler) HandleGetArchive(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	doc, err := h.service.GetArchive(c.Context(), c.Params("table"), c.Params("name"))
	if err != nil {
		l.Error("Failed to read archive", zap.String("name", c.Params("name")), zap.Error(err))
		return fail(c, err)
	}
	return c.JSON(doc)
}

func fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, ErrUnknownTable), errors.Is(err, ErrArchivesDisabled), reconcile.IsArchiveNotFound(err):
		status = fiber.StatusNotFound
	case errors.Is(err, ErrInvalidArchive):
		status = fiber.StatusBadRequest
	case errors.Is(err, reconcile.ErrStoreUnavailable):
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func splitTables(raw string) []string {
	var out []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
