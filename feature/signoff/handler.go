package signoff

import (
	"errors"
	"path/filepath"

	"tinyflow/core/logger"
	"tinyflow/core/middleware/auth"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for sign-off runs.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the sign-off routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/runs")
	group.Get("/", h.HandleList)
	group.Post("/drc", h.HandleRunDRC)
	group.Post("/lvs", h.HandleRunLVS)
	group.Get("/:id", h.HandleGet)
	group.Get("/:id/reports/:file", h.HandleReport)
}

// BatchView is a batch with its summary.
type BatchView struct {
	*Batch
	Summary Summary `json:"summary"`
	Clean   bool    `json:"clean"`
}

func view(b *Batch) BatchView {
	return BatchView{Batch: b, Summary: b.Summary(), Clean: b.Clean()}
}

// RunBody is the body of a run request. Runsets and output directories
// always come from the server configuration.
type RunBody struct {
	Input     string   `json:"input" example:"stdcells.gds"`
	Schematic string   `json:"schematic,omitempty" example:"stdcells.sp"`
	Cells     []string `json:"cells" example:"INV,NAND2"`
}

// HandleList lists recent batches.
// @Summary List Runs
// @Description Lists recorded sign-off batches, newest first.
// @Tags runs
// @Produce json
// @Security ApiKeyAuth
// @Param limit query int false "Maximum number of batches" default(20)
// @Success 200 {object} RunList
// @Failure 503 {object} map[string]string "History disabled"
// @Router /runs [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	batches, err := h.service.ListBatches(c.UserContext(), limit)
	if err != nil {
		return h.fail(c, err)
	}
	out := make([]BatchView, 0, len(batches))
	for i := range batches {
		out = append(out, view(&batches[i]))
	}
	return c.JSON(RunList{Runs: out})
}

// RunList is the response of HandleList.
type RunList struct {
	Runs []BatchView `json:"runs"`
}

// HandleGet returns one batch.
// @Summary Get Run
// @Description Returns one recorded sign-off batch with its per-cell results.
// @Tags runs
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Batch ID"
// @Success 200 {object} BatchView
// @Failure 404 {object} map[string]string "Not Found"
// @Failure 503 {object} map[string]string "History disabled"
// @Router /runs/{id} [get]
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	b, err := h.service.GetBatch(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(view(b))
}

// HandleRunDRC runs a DRC batch.
// @Summary Run DRC
// @Description Runs the configured DRC runset on every requested cell. This operation may take a long time.
// @Tags runs
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param X-Tinyflow-User header string true "Superuser identifier"
// @Param body body RunBody true "Layout and cells"
// @Success 201 {object} BatchView
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Router /runs/drc [post]
func (h *Handler) HandleRunDRC(c *fiber.Ctx) error {
	var body RunBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	req := DRCRequest{Input: body.Input, Cells: body.Cells, RequestedBy: auth.User(c)}

	logger.WithRayID(h.logger, c).Info("DRC batch requested",
		zap.String("input", req.Input), zap.String("by", req.RequestedBy))

	b, err := h.service.RunDRC(c.UserContext(), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(view(b))
}

// HandleRunLVS runs an LVS batch.
// @Summary Run LVS
// @Description Compares every requested cell against the schematic with the configured LVS runset. This operation may take a long time.
// @Tags runs
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param X-Tinyflow-User header string true "Superuser identifier"
// @Param body body RunBody true "Layout, schematic and cells"
// @Success 201 {object} BatchView
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Router /runs/lvs [post]
func (h *Handler) HandleRunLVS(c *fiber.Ctx) error {
	var body RunBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	req := LVSRequest{Input: body.Input, Schematic: body.Schematic, Cells: body.Cells, RequestedBy: auth.User(c)}

	logger.WithRayID(h.logger, c).Info("LVS batch requested",
		zap.String("input", req.Input), zap.String("by", req.RequestedBy))

	b, err := h.service.RunLVS(c.UserContext(), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(view(b))
}

// HandleReport downloads an archived report.
// @Summary Download Report
// @Description Returns an archived DRC or LVS report of a batch.
// @Tags runs
// @Produce octet-stream
// @Security ApiKeyAuth
// @Param id path string true "Batch ID"
// @Param file path string true "Report file name"
// @Success 200 {file} file
// @Failure 404 {object} map[string]string "Not Found"
// @Failure 503 {object} map[string]string "Archive disabled"
// @Router /runs/{id}/reports/{file} [get]
func (h *Handler) HandleReport(c *fiber.Ctx) error {
	file := c.Params("file")
	data, err := h.service.ReadReport(c.UserContext(), c.Params("id"), file)
	if err != nil {
		return h.fail(c, err)
	}
	c.Type(filepath.Ext(file))
	return c.Send(data)
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, ErrInvalidRequest):
		status = fiber.StatusBadRequest
	case errors.Is(err, ErrRunNotFound), errors.Is(err, ErrReportNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, ErrHistoryDisabled), errors.Is(err, ErrArchiveDisabled):
		status = fiber.StatusServiceUnavailable
	}
	if status == fiber.StatusInternalServerError {
		logger.WithRayID(h.logger, c).Error("Sign-off request failed", zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
