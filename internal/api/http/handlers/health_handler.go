package handlers

import (
	"os"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName string
	version     string
	dataDir     string
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(serviceName, version, dataDir string) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, dataDir: dataDir}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready reports readiness by checking the data directory is writable.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	if err := h.checkDataDir(); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    "DEPENDENCY_UNAVAILABLE",
				"message": "data directory not writable",
				"details": fiber.Map{"data_dir": err.Error()},
			},
		})
	}
	return c.JSON(fiber.Map{
		"status":       "ready",
		"dependencies": fiber.Map{"data_dir": "ok"},
	})
}

func (h *HealthHandler) checkDataDir() error {
	if err := os.MkdirAll(h.dataDir, 0o755); err != nil {
		return err
	}
	probe, err := os.CreateTemp(h.dataDir, ".ready-*")
	if err != nil {
		return err
	}
	name := probe.Name()
	_ = probe.Close()
	return os.Remove(name)
}
