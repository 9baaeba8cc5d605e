package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jjenkins/servetrack/internal/pdfform"
	"github.com/jjenkins/servetrack/internal/service"
)

var (
	affidavitCase    string
	affidavitOut     string
	affidavitAddress string
)

var affidavitCmd = &cobra.Command{
	Use:   "affidavit",
	Short: "Generate the affidavit of service for a case",
	Long: `Generate fills the affidavit template with the case, its client and its
serve attempts and writes the PDF.

Examples:
  # Write affidavit-<case number>-<date>.pdf in the current directory
  ./servetrack affidavit --case 5b0e...

  # Override the service address and choose the output file
  ./servetrack affidavit --case 5b0e... --address "456 Work Ave, Springfield, IL" --out served.pdf`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		db, err := openDB()
		if err != nil {
			logger.Fatal("database unavailable", zap.Error(err))
		}
		defer db.Close()

		settings, err := loadAffidavitSettings()
		if err != nil {
			logger.Fatal("invalid affidavit configuration", zap.Error(err))
		}
		svc := newAffidavitService(db, pdfform.NewLoader(cfg.Affidavit.TemplateTimeout, logger), settings, nil)

		res, err := svc.Generate(ctx, affidavitCase, service.GenerateOptions{ServiceAddress: affidavitAddress})
		if err != nil {
			logger.Fatal("affidavit generation failed", zap.String("case_id", affidavitCase), zap.Error(err))
		}

		out := affidavitOut
		if out == "" {
			out = res.Filename
		}
		if err := os.WriteFile(out, res.PDF, 0o644); err != nil {
			logger.Fatal("failed to write affidavit", zap.String("path", out), zap.Error(err))
		}

		logger.Info("affidavit written",
			zap.String("path", out),
			zap.Int("filled", len(res.Report.Filled)),
			zap.Strings("missing", res.Report.Missing))
	},
}

func init() {
	rootCmd.AddCommand(affidavitCmd)
	affidavitCmd.Flags().StringVar(&affidavitCase, "case", "", "ID of the case")
	affidavitCmd.Flags().StringVarP(&affidavitOut, "out", "o", "", "Output file (default affidavit-<case number>-<date>.pdf)")
	affidavitCmd.Flags().StringVar(&affidavitAddress, "address", "", "Service address to print instead of the recorded one")
	_ = affidavitCmd.MarkFlagRequired("case")
}
