package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AngelCh415/lead-reports/internal/metrics"
	"github.com/AngelCh415/lead-reports/internal/output"
)

func NewReportCommand() *cobra.Command {
	var (
		view    string
		format  string
		filters []string
	)

	cmd := &cobra.Command{
		Use:   "report <file>",
		Short: "Print the tables of a report view",
		Long: `Print the tables of a report view (` + strings.Join(metrics.Views(), ", ") + `).
Filters take the form Dimension=value and may be repeated; dimensions the
view does not accept are ignored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := parseFilters(filters)
			if err != nil {
				return err
			}
			if _, err := metrics.Dimensions(view); err != nil {
				return err
			}
			ds, err := loadFile(cmd, args[0])
			if err != nil {
				return err
			}
			rep, err := metrics.BuildReport(view, ds, sel)
			if err != nil {
				return err
			}
			switch format {
			case "json":
				return writeJSON(cmd.OutOrStdout(), rep)
			case "table":
				return output.WriteReport(cmd.OutOrStdout(), rep)
			}
			return fmt.Errorf("unknown format %q, use table or json", format)
		},
	}

	cmd.Flags().StringVarP(&view, "view", "v", "home", "Report view")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format (table, json)")
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "Filter as Dimension=value (repeatable)")

	return cmd
}
