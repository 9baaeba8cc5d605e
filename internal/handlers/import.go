package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jjenkins/servetrack/internal/service"
)

// BundleImporter imports a batch of raw records
type BundleImporter interface {
	Import(ctx context.Context, b *service.Bundle) (*service.BundleStats, error)
}

func ImportHandler(importer BundleImporter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var b service.Bundle
		if err := json.Unmarshal(c.Body(), &b); err != nil {
			return sendError(c, fmt.Errorf("%w: body must be a bundle of clients, cases and serves", errBadRequest))
		}

		stats, err := importer.Import(c.UserContext(), &b)
		if err != nil {
			return sendError(c, err)
		}

		status := fiber.StatusOK
		if stats.Failed() > 0 {
			status = fiber.StatusMultiStatus
		}
		return c.Status(status).JSON(stats)
	}
}
