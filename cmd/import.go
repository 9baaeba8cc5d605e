package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jjenkins/servetrack/internal/normalize"
	"github.com/jjenkins/servetrack/internal/service"
	"github.com/jjenkins/servetrack/internal/store"
)

var importFile string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import clients, cases and serve attempts from a JSON bundle",
	Long: `Import reads a JSON bundle of the form

  {"clients": [...], "cases": [...], "serves": [...]}

and upserts every record. Records may use either naming convention (the
app's camelCase keys or the backend's $id / snake_case keys); records with
no identifier are skipped and logged.

Examples:
  # Import an export from the mobile app
  ./servetrack import --file export.json`,
	Run: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "Path to the JSON bundle")
	_ = importCmd.MarkFlagRequired("file")
}

func runImport(cmd *cobra.Command, args []string) {
	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("received interrupt signal, shutting down")
		cancel()
	}()

	bundle, err := service.ReadBundle(importFile)
	if err != nil {
		logger.Fatal("cannot read bundle", zap.Error(err))
	}

	db, err := openDB()
	if err != nil {
		logger.Fatal("database unavailable", zap.Error(err))
	}
	defer db.Close()

	if err := store.Migrate(ctx, db); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}

	importer := service.NewImporter(
		normalize.New(logger),
		store.NewClientStore(db),
		store.NewCaseStore(db),
		store.NewServeStore(db),
		logger,
	)

	logger.Info("starting import",
		zap.String("file", importFile),
		zap.Int("clients", len(bundle.Clients)),
		zap.Int("cases", len(bundle.Cases)),
		zap.Int("serves", len(bundle.Serves)))

	stats, err := importer.Import(ctx, bundle)
	if stats != nil {
		service.PrintSummary(cmd.OutOrStdout(), stats)
	}
	if err != nil {
		if ctx.Err() != nil {
			logger.Warn("import cancelled")
			os.Exit(1)
		}
		logger.Fatal("import failed", zap.Error(err))
	}

	// Exit with error code if there were failures
	if stats.Failed() > 0 {
		os.Exit(1)
	}
}
