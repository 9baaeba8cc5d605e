package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jjenkins/servetrack/internal/handlers"
	"github.com/jjenkins/servetrack/internal/metrics"
	"github.com/jjenkins/servetrack/internal/normalize"
	"github.com/jjenkins/servetrack/internal/pdfform"
	"github.com/jjenkins/servetrack/internal/service"
	"github.com/jjenkins/servetrack/internal/store"
)

var port string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the servetrack web server",
	Long:  `Start the web server with the case dashboard, the JSON API and affidavit downloads.`,
	Run: func(cmd *cobra.Command, args []string) {
		// Flag wins over PORT and the config file
		if port != "" {
			cfg.Port = port
		}

		db, err := openDB()
		if err != nil {
			logger.Fatal("database unavailable", zap.Error(err))
		}
		defer db.Close()

		if err := store.Migrate(context.Background(), db); err != nil {
			logger.Fatal("migration failed", zap.Error(err))
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m := metrics.New(reg)

		settings, err := loadAffidavitSettings()
		if err != nil {
			logger.Fatal("invalid affidavit configuration", zap.Error(err))
		}
		loader := pdfform.NewLoader(cfg.Affidavit.TemplateTimeout, logger)
		affidavits := newAffidavitService(db, loader, settings, m)

		normalizer := normalize.New(logger)
		normalizer.OnDrop = m.Dropped
		importer := service.NewImporter(normalizer, store.NewClientStore(db), store.NewCaseStore(db), store.NewServeStore(db), logger)

		app := fiber.New(fiber.Config{
			AppName: "ServeTrack",
		})

		app.Use(fiberlogger.New())

		handlers.Register(app, handlers.Deps{
			Clients:          store.NewClientStore(db),
			Cases:            store.NewCaseStore(db),
			Serves:           store.NewServeStore(db),
			Stats:            service.NewStatsService(db),
			Affidavits:       affidavits,
			Importer:         importer,
			Inspector:        loader,
			TemplateLocation: cfg.Affidavit.Template,
			FieldMap:         settings.fields,
			Gatherer:         reg,
			Zone:             settings.zone,
			Logger:           logger,
		})

		go func() {
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
			<-sigChan
			logger.Info("shutting down")
			_ = app.Shutdown()
		}()

		logger.Info("starting server", zap.String("port", cfg.Port), zap.String("template", cfg.Affidavit.Template))
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&port, "port", "p", "", "Port to run the server on (default from PORT or config, 8080)")
}
