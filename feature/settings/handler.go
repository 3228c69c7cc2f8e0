package settings

import (
	"tinyflow/core/config"
	"tinyflow/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler serves the read-only configuration views.
type Handler struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(cfg *config.Config, logger *zap.Logger) *Handler {
	return &Handler{cfg: cfg, logger: logger}
}

// RegisterRoutes registers the settings routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/settings")
	group.Get("/", h.HandleSettings)
	group.Get("/superusers", h.HandleSuperusers)
	group.Get("/superusers/:id", h.HandleSuperuser)
}

// HandleSettings returns the public configuration.
// @Summary Get Settings
// @Description Returns the server endpoints, the superusers and which optional services are enabled. Secrets are never returned.
// @Tags settings
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} View
// @Router /settings [get]
func (h *Handler) HandleSettings(c *fiber.Ctx) error {
	r := h.cfg.Redacted()
	return c.JSON(View{
		Server: ServerView{
			Port:      r.Server.Port,
			Address:   r.Server.Address,
			UtilsPort: r.Server.UtilsPort,
		},
		Superusers: r.Access.Superusers,
		TokenSet:   h.cfg.Access.Token != "",
		Archive:    r.Storage.Enabled(),
		Database:   r.Database.Driver,
	})
}

// HandleSuperusers lists the superuser identifiers.
// @Summary List Superusers
// @Description Returns the superuser identifiers in configured order.
// @Tags settings
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} SuperuserList
// @Router /settings/superusers [get]
func (h *Handler) HandleSuperusers(c *fiber.Ctx) error {
	return c.JSON(SuperuserList{Superusers: h.cfg.Superusers()})
}

// HandleSuperuser reports whether a single identifier is a superuser.
// @Summary Check Superuser
// @Tags settings
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Identifier"
// @Success 200 {object} SuperuserCheck
// @Router /settings/superusers/{id} [get]
func (h *Handler) HandleSuperuser(c *fiber.Ctx) error {
	id := c.Params("id")
	ok := h.cfg.IsSuperuser(id)
	logger.WithRayID(h.logger, c).Debug("Superuser lookup", zap.String("id", id), zap.Bool("superuser", ok))
	return c.JSON(SuperuserCheck{ID: id, Superuser: ok})
}

// View is the public shape of the configuration. Secrets are never part of
// it, not even masked.
type View struct {
	Server     ServerView `json:"server"`
	Superusers []string   `json:"superusers"`
	TokenSet   bool       `json:"access_token_set"`
	Archive    bool       `json:"archive"`
	Database   string     `json:"database"`
}

// ServerView lists the network endpoints.
type ServerView struct {
	Port      int    `json:"port"`
	Address   string `json:"address"`
	UtilsPort int    `json:"utils_port"`
}

// SuperuserList is the response of HandleSuperusers.
type SuperuserList struct {
	Superusers []string `json:"superusers" example:"pi57,ka429"`
}

// SuperuserCheck is the response of HandleSuperuser.
type SuperuserCheck struct {
	ID        string `json:"id" example:"ka429"`
	Superuser bool   `json:"superuser"`
}
