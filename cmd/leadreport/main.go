package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AngelCh415/lead-reports/internal/commands"
)

func main() {
	ctx := context.Background()

	rootCmd := &cobra.Command{
		Use:   "leadreport",
		Short: "Offline lead activity reports",
		Long:  `Normalize a CSV or XLSX lead activity export and print report tables, filter options or the normalized dataset.`,
	}
	rootCmd.PersistentFlags().String("groups", "", "YAML file overriding the owner to group table")
	rootCmd.PersistentFlags().StringSlice("timestamp-columns", []string{"CreatedOn"}, "Columns parsed as timestamps")

	rootCmd.AddCommand(
		commands.NewReportCommand(),
		commands.NewOptionsCommand(),
		commands.NewExportCommand(),
	)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
