package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AngelCh415/lead-reports/internal/config"
	"github.com/AngelCh415/lead-reports/internal/ingest"
	"github.com/AngelCh415/lead-reports/internal/models"
)

// loadFile decodes and normalizes path using the root command's group
// table and timestamp settings. Normalization issues go to stderr.
func loadFile(cmd *cobra.Command, path string) (models.Dataset, error) {
	groupsFile, _ := cmd.Flags().GetString("groups")
	tsCols, _ := cmd.Flags().GetStringSlice("timestamp-columns")

	table, err := config.LoadGroupTable(groupsFile)
	if err != nil {
		return models.Dataset{}, fmt.Errorf("load group table: %w", err)
	}
	f, err := os.Open(path)
	if err != nil {
		return models.Dataset{}, err
	}
	defer f.Close()

	raw, err := ingest.Decode(filepath.Base(path), f)
	if err != nil {
		return models.Dataset{}, fmt.Errorf("decode %s: %w", path, err)
	}
	res := ingest.NewNormalizer(ingest.NewGroupResolver(table), ingest.WithTimestampColumns(tsCols...)).Normalize(raw)
	printIssues(cmd.ErrOrStderr(), res)
	return res.Dataset, nil
}

func printIssues(w io.Writer, res ingest.Result) {
	if !res.Normalized {
		fmt.Fprintln(w, "warning: normalization aborted, showing raw rows")
	}
	for _, is := range res.Issues {
		if is.Row >= 0 {
			fmt.Fprintf(w, "warning: row %d: %s\n", is.Row, is.Message)
		} else {
			fmt.Fprintf(w, "warning: %s\n", is.Message)
		}
	}
	if extra := res.TotalIssues - len(res.Issues); extra > 0 {
		fmt.Fprintf(w, "warning: %d more issues not shown\n", extra)
	}
}

// parseFilters turns repeated "Dimension=value" flags into a selection.
// Only the first '=' splits, so values may contain '=' and commas.
func parseFilters(filters []string) (models.Selection, error) {
	sel := models.Selection{}
	for _, f := range filters {
		dim, val, ok := strings.Cut(f, "=")
		if !ok || strings.TrimSpace(dim) == "" {
			return nil, fmt.Errorf("invalid filter %q, want Dimension=value", f)
		}
		sel[strings.TrimSpace(dim)] = append(sel[strings.TrimSpace(dim)], val)
	}
	return sel, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	return enc.Encode(v)
}
