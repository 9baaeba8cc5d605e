package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jjenkins/servetrack/internal/pdfform"
)

var fieldsTemplate string

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List the affidavit template's form fields",
	Long: `Fields prints every form field in the template and, for each logical
affidavit value, the field it will be written to. Values with no matching
field are listed as missing; add their field names to the field map.`,
	Run: func(cmd *cobra.Command, args []string) {
		location := cfg.Affidavit.Template
		if fieldsTemplate != "" {
			location = fieldsTemplate
		}

		fields, err := fieldMap()
		if err != nil {
			logger.Fatal("invalid field map", zap.Error(err))
		}

		infos, err := pdfform.NewLoader(cfg.Affidavit.TemplateTimeout, logger).Inspect(context.Background(), location)
		if err != nil {
			logger.Fatal("cannot inspect template", zap.Error(err))
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "FIELD\tKIND\tPAGES\n")
		names := make([]string, len(infos))
		for i, info := range infos {
			names[i] = info.Name
			pages := make([]string, len(info.Pages))
			for j, p := range info.Pages {
				pages[j] = fmt.Sprint(p)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", info.Name, info.Kind, strings.Join(pages, ","))
		}
		fmt.Fprintln(w)

		resolved := fields.Match(names)
		keys := make([]string, 0, len(fields))
		for key := range fields {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		fmt.Fprintf(w, "VALUE\tFIELD\n")
		for _, key := range keys {
			field, ok := resolved[key]
			if !ok {
				field = "(missing)"
			}
			fmt.Fprintf(w, "%s\t%s\n", key, field)
		}
		w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(fieldsCmd)
	fieldsCmd.Flags().StringVarP(&fieldsTemplate, "template", "t", "", "Template file path or URL (default from config)")
}
