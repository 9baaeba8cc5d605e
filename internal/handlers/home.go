package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/a-h/templ"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"go.uber.org/zap"

	"github.com/jjenkins/servetrack/internal/affidavit"
	"github.com/jjenkins/servetrack/internal/model"
	"github.com/jjenkins/servetrack/internal/service"
	"github.com/jjenkins/servetrack/internal/store"
	"github.com/jjenkins/servetrack/internal/templates"
)

// SummaryProvider supplies the dashboard counts
type SummaryProvider interface {
	Summary(ctx context.Context) (*service.Summary, error)
}

func render(c *fiber.Ctx, page templ.Component) error {
	handler := adaptor.HTTPHandler(templ.Handler(page))
	return handler(c)
}

func HomeHandler(stats SummaryProvider, cases CaseStore, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		metrics := templates.HomeMetrics{}
		summary, err := stats.Summary(ctx)
		if err != nil {
			logger.Error("failed to load summary", zap.Error(err))
		} else {
			metrics = templates.HomeMetrics{
				Clients:         summary.Clients,
				OpenCases:       summary.OpenCases,
				Attempts:        summary.Attempts,
				CompletedServes: summary.CompletedServes,
			}
		}

		list, err := cases.List(ctx)
		if err != nil {
			logger.Error("failed to load cases", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).SendString("Error loading cases")
		}

		return render(c, templates.Home(metrics, list))
	}
}

func CaseDetailHandler(cases CaseStore, clients ClientStore, serves ServeStore, zone *time.Location, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		kase, err := cases.GetByID(ctx, c.Params("id"))
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).SendString("Case not found")
		}
		if err != nil {
			logger.Error("failed to load case", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).SendString("Error loading case")
		}

		detail := templates.CaseDetail{Case: *kase}
		if kase.ClientID != "" {
			client, err := clients.GetByID(ctx, kase.ClientID)
			if err != nil {
				logger.Warn("failed to load client", zap.String("client_id", kase.ClientID), zap.Error(err))
			} else {
				detail.Client = client
			}
		}

		list, err := serves.ListByCase(ctx, kase.ID)
		if err != nil {
			logger.Error("failed to load serve attempts", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).SendString("Error loading serve attempts")
		}
		for i, s := range affidavit.SortAttempts(list) {
			detail.Attempts = append(detail.Attempts, templates.Attempt{
				Number: i + 1,
				When:   when(s, zone),
				Serve:  s,
			})
		}

		return render(c, templates.CasePage(detail))
	}
}

func when(s model.Serve, zone *time.Location) string {
	t := s.SortTime()
	if t.IsZero() {
		return ""
	}
	return t.In(zone).Format(affidavit.DateLayout + " " + affidavit.TimeLayout)
}
