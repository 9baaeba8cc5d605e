package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/jjenkins/servetrack/internal/affidavit"
)

// Deps is everything the routes are served from
type Deps struct {
	Clients    ClientStore
	Cases      CaseStore
	Serves     ServeStore
	Stats      SummaryProvider
	Affidavits AffidavitGenerator
	Importer   BundleImporter
	Inspector  FieldInspector
	// TemplateLocation is the file path or URL of the affidavit template
	TemplateLocation string
	FieldMap         affidavit.FieldMap
	Gatherer         prometheus.Gatherer
	Zone             *time.Location
	Logger           *zap.Logger
}

// Register mounts every route on app
func Register(app *fiber.App, d Deps) {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Zone == nil {
		d.Zone = time.Local
	}
	if d.FieldMap == nil {
		d.FieldMap = affidavit.DefaultFieldMap()
	}

	// Pages
	app.Get("/", HomeHandler(d.Stats, d.Cases, d.Logger))
	app.Get("/cases/:id", CaseDetailHandler(d.Cases, d.Clients, d.Serves, d.Zone, d.Logger))
	app.Get("/cases/:id/affidavit", AffidavitHandler(d.Affidavits, d.Logger))

	// JSON API
	api := app.Group("/api")
	api.Get("/clients", ListClientsHandler(d.Clients))
	api.Post("/clients", CreateClientHandler(d.Clients))
	api.Get("/clients/:id", GetClientHandler(d.Clients))
	api.Get("/clients/:id/cases", ListClientCasesHandler(d.Clients, d.Cases))
	api.Post("/cases", CreateCaseHandler(d.Clients, d.Cases))
	api.Get("/cases/:id", GetCaseHandler(d.Cases))
	api.Patch("/cases/:id/status", UpdateCaseStatusHandler(d.Cases))
	api.Get("/cases/:id/serves", ListCaseServesHandler(d.Cases, d.Serves))
	api.Post("/cases/:id/serves", CreateServeHandler(d.Cases, d.Serves))
	api.Patch("/serves/:id", UpdateServeHandler(d.Serves))
	if d.Importer != nil {
		api.Post("/import", ImportHandler(d.Importer))
	}
	api.Get("/template/fields", TemplateFieldsHandler(d.Inspector, d.TemplateLocation, d.FieldMap))

	if d.Gatherer != nil {
		app.Get("/metrics", MetricsHandler(d.Gatherer))
	}
}
