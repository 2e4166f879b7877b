package output

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/AngelCh415/lead-reports/internal/metrics"
	"github.com/AngelCh415/lead-reports/internal/models"
	"github.com/AngelCh415/lead-reports/internal/query"
)

// WriteReport renders every section of rep as a titled text table.
func WriteReport(w io.Writer, rep metrics.Report) error {
	fmt.Fprintf(w, "%s report, %s rows\n\n", rep.View, humanize.Comma(int64(rep.Rows)))
	if s := rep.Summary; s != nil {
		fmt.Fprintf(w, "Total Calls:          %s\n", humanize.Comma(int64(s.TotalCalls)))
		fmt.Fprintf(w, "Total Duration (min): %s\n", humanize.Comma(int64(s.TotalMinutes)))
		fmt.Fprintf(w, "Unique Owners:        %s\n\n", humanize.Comma(int64(s.UniqueOwners)))
	}
	for _, sec := range rep.Sections {
		var body string
		switch {
		case sec.Counts != nil:
			body = CountTable(*sec.Counts)
		case sec.Pivot != nil:
			body = PivotTable(*sec.Pivot)
		case sec.Callers != nil:
			body = Callers(sec.Callers)
		default:
			body = Buckets(sec.Buckets)
		}
		if _, err := fmt.Fprintf(w, "%s\n%s\n", sec.Name, body); err != nil {
			return err
		}
	}
	return nil
}

func CountTable(t query.CountTable) string {
	var buf bytes.Buffer
	table := newTable(&buf)
	table.Header(append(append([]string{}, t.Columns...), "Count"))
	for _, r := range t.Rows {
		cells := make([]string, 0, len(r.Keys)+1)
		for _, k := range r.Keys {
			cells = append(cells, cell(k))
		}
		table.Append(append(cells, humanize.Comma(int64(r.Count))))
	}
	footer := make([]string, len(t.Columns)+1)
	footer[0] = "Total"
	footer[len(footer)-1] = humanize.Comma(int64(t.Total()))
	table.Footer(footer)
	table.Render()
	return buf.String()
}

func PivotTable(p query.PivotTable) string {
	var buf bytes.Buffer
	table := newTable(&buf)
	header := []string{p.RowDim + " \\ " + p.ColDim}
	for _, c := range p.Cols {
		header = append(header, cell(c))
	}
	table.Header(header)
	for i, r := range p.Rows {
		row := []string{cell(r)}
		for _, n := range p.Cells[i] {
			row = append(row, humanize.Comma(int64(n)))
		}
		table.Append(row)
	}
	table.Render()
	return buf.String()
}

func Callers(stats []metrics.CallerStat) string {
	var buf bytes.Buffer
	table := newTable(&buf)
	table.Header([]string{"Owner", "Total Calls", "Total Duration (min)"})
	for _, s := range stats {
		table.Append([]string{cell(s.Owner), humanize.Comma(int64(s.Calls)), strconv.FormatFloat(s.Minutes, 'f', 2, 64)})
	}
	table.Render()
	return buf.String()
}

func Buckets(bs []query.Bucket) string {
	var buf bytes.Buffer
	table := newTable(&buf)
	table.Header([]string{"Hour", "Call Count"})
	for _, b := range bs {
		table.Append([]string{b.Start.Format(time.DateTime), humanize.Comma(int64(b.Count))})
	}
	table.Render()
	return buf.String()
}

// Values lists options one per line.
func Values(w io.Writer, vals []models.Value) error {
	for _, v := range vals {
		if _, err := fmt.Fprintln(w, cell(v)); err != nil {
			return err
		}
	}
	return nil
}

func newTable(buf *bytes.Buffer) *tablewriter.Table {
	return tablewriter.NewTable(buf,
		tablewriter.WithRenderer(renderer.NewBlueprint(tw.Rendition{
			Settings: tw.Settings{Separators: tw.Separators{BetweenRows: tw.Off}},
		})),
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)
}

func cell(v models.Value) string {
	if t, ok := v.Time(); ok {
		return t.Format(time.DateTime)
	}
	return v.Key()
}
