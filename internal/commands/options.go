package commands

import (
	"github.com/spf13/cobra"

	"github.com/AngelCh415/lead-reports/internal/models"
	"github.com/AngelCh415/lead-reports/internal/output"
	"github.com/AngelCh415/lead-reports/internal/query"
)

func NewOptionsCommand() *cobra.Command {
	var (
		dimension string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "options <file>",
		Short: "List the distinct values of a filter dimension",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := loadFile(cmd, args[0])
			if err != nil {
				return err
			}
			vals := query.Distinct(ds, dimension)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), vals)
			}
			return output.Values(cmd.OutOrStdout(), vals)
		},
	}

	cmd.Flags().StringVarP(&dimension, "dimension", "d", models.ColGroup, "Column to list values of")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print a JSON array")

	return cmd
}
