package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AngelCh415/lead-reports/internal/query"
	"github.com/AngelCh415/lead-reports/internal/store"
)

func NewExportCommand() *cobra.Command {
	var (
		out     string
		filters []string
	)

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Write the normalized dataset as split JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := parseFilters(filters)
			if err != nil {
				return err
			}
			ds, err := loadFile(cmd, args[0])
			if err != nil {
				return err
			}
			b, err := store.Encode(query.Apply(ds, sel))
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
				return err
			}
			return os.WriteFile(out, b, 0o644)
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "Filter as Dimension=value (repeatable)")

	return cmd
}
