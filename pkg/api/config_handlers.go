package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"

	bridgeerrors "github.com/open-teleop/gamepad-bridge/pkg/errors"
	customlog "github.com/open-teleop/gamepad-bridge/pkg/log"
	"github.com/open-teleop/gamepad-bridge/services"
)

// ConfigHandler holds dependencies for configuration API endpoints.
type ConfigHandler struct {
	configService services.BridgeConfigService
	logger        customlog.Logger
}

// NewConfigHandler creates a new handler for configuration endpoints.
func NewConfigHandler(configService services.BridgeConfigService, logger customlog.Logger) *ConfigHandler {
	if configService == nil {
		panic("ConfigService cannot be nil in NewConfigHandler")
	}
	if logger == nil {
		panic("Logger cannot be nil in NewConfigHandler")
	}
	return &ConfigHandler{
		configService: configService,
		logger:        logger,
	}
}

// RegisterConfigRoutes registers the configuration API endpoints with the Fiber app.
func RegisterConfigRoutes(app *fiber.App, configService services.BridgeConfigService, logger customlog.Logger) {
	h := NewConfigHandler(configService, logger)

	apiGroup := app.Group("/api/v1/config")

	// GET the effective configuration as YAML
	apiGroup.Get("/", h.handleGetConfig)

	// POST a candidate configuration to check it without applying it
	apiGroup.Post("/validate", h.handleValidateConfig)

	logger.Infof("Registered configuration API endpoints under /api/v1/config")
}

func (h *ConfigHandler) handleGetConfig(c *fiber.Ctx) error {
	yamlData, err := h.configService.GetCurrentConfigYAML()
	if err != nil {
		h.logger.Errorf("Failed to get current config YAML: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": fmt.Sprintf("Failed to retrieve configuration: %v", err),
		})
	}

	c.Set(fiber.HeaderContentType, "application/x-yaml")
	return c.Send(yamlData)
}

func (h *ConfigHandler) handleValidateConfig(c *fiber.Ctx) error {
	candidate := c.Body()
	if len(candidate) == 0 {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "Request body cannot be empty.",
		})
	}

	if err := h.configService.CheckConfig(candidate); err != nil {
		resp := fiber.Map{"valid": false, "error": err.Error()}
		var cfgErr *bridgeerrors.ConfigError
		if errors.As(err, &cfgErr) {
			resp["field"] = cfgErr.Field
		}
		return c.Status(http.StatusUnprocessableEntity).JSON(resp)
	}

	return c.JSON(fiber.Map{"valid": true})
}
