package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/AngelCh415/lead-reports/internal/models"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format, upload CSV or Excel (.xlsx)")
	ErrEmptyDataset      = errors.New("file contains no data rows")
	ErrTooLarge          = errors.New("file exceeds upload limit")
	ErrMalformed         = errors.New("file could not be parsed")
)

// Cell texts read as null, matching what spreadsheet exports use for blanks.
var nullTokens = map[string]struct{}{
	"": {}, "NA": {}, "N/A": {}, "n/a": {}, "#N/A": {}, "NULL": {}, "null": {},
	"NaN": {}, "nan": {}, "None": {}, "<NA>": {},
}

// Decode turns an uploaded file into a raw dataset, choosing the reader by
// extension. The first row is the header.
func Decode(filename string, r io.Reader) (models.Dataset, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		rows, err = readCSV(r)
	case ".xlsx":
		rows, err = readXLSX(r)
	default:
		return models.Dataset{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filename)
	}
	if err != nil {
		return models.Dataset{}, err
	}
	if len(rows) < 2 {
		return models.Dataset{}, ErrEmptyDataset
	}
	ds := buildDataset(rows[0], rows[1:])
	if ds.Len() == 0 {
		return models.Dataset{}, ErrEmptyDataset
	}
	return ds, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: csv: %v", ErrMalformed, err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return rows, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: xlsx: %v", ErrMalformed, err)
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyDataset
	}
	sheet := sheets[0]
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: xlsx sheet %q: %v", ErrMalformed, sheet, err)
	}
	// Dates are stored as serial numbers; the display text depends on the
	// workbook's locale format, so read the serial and rewrite it as RFC 3339.
	dateStyle := map[int]bool{}
	for ri, row := range rows {
		for ci, raw := range row {
			if raw == "" {
				continue
			}
			serial, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				continue
			}
			axis, err := excelize.CoordinatesToCellName(ci+1, ri+1)
			if err != nil {
				return nil, fmt.Errorf("%w: xlsx: %v", ErrMalformed, err)
			}
			id, err := f.GetCellStyle(sheet, axis)
			if err != nil || id == 0 {
				continue
			}
			isDate, seen := dateStyle[id]
			if !seen {
				st, err := f.GetStyle(id)
				isDate = err == nil && isDateFormat(st)
				dateStyle[id] = isDate
			}
			if !isDate {
				continue
			}
			t, err := excelize.ExcelDateToTime(serial, false)
			if err != nil {
				continue
			}
			row[ci] = t.Round(time.Second).UTC().Format(time.RFC3339)
		}
	}
	return rows, nil
}

// isDateFormat reports whether a cell style displays its number as a date
// or time: the built-in date formats, or a custom code with date tokens.
func isDateFormat(st *excelize.Style) bool {
	if st == nil {
		return false
	}
	if (st.NumFmt >= 14 && st.NumFmt <= 22) || (st.NumFmt >= 45 && st.NumFmt <= 47) {
		return true
	}
	if st.CustomNumFmt == nil {
		return false
	}
	code := quotedOrBracketed.ReplaceAllString(*st.CustomNumFmt, "")
	return strings.ContainsAny(strings.ToLower(code), "ymdhs")
}

var quotedOrBracketed = regexp.MustCompile(`"[^"]*"|\[[^\]]*\]|\\.`)

func buildDataset(header []string, body [][]string) models.Dataset {
	cols := headerNames(header, body)
	ds := models.Dataset{Columns: cols, Rows: make([]models.Record, 0, len(body))}
	for _, rec := range body {
		if blankRow(rec) {
			continue
		}
		ds.Rows = append(ds.Rows, make(models.Record, len(cols)))
	}
	for ci, col := range cols {
		cells := make([]string, 0, len(ds.Rows))
		for _, rec := range body {
			if blankRow(rec) {
				continue
			}
			if ci < len(rec) {
				cells = append(cells, rec[ci])
			} else {
				cells = append(cells, "")
			}
		}
		for i, v := range typeColumn(cells) {
			ds.Rows[i][col] = v
		}
	}
	return ds
}

// headerNames fills blank names and suffixes duplicates (".1", ".2", ...).
// Rows wider than the header get positional names.
func headerNames(header []string, body [][]string) []string {
	width := len(header)
	for _, r := range body {
		if len(r) > width {
			width = len(r)
		}
	}
	used := make(map[string]bool, width)
	suffix := make(map[string]int)
	out := make([]string, width)
	for i := 0; i < width; i++ {
		name := ""
		if i < len(header) {
			name = header[i]
		}
		if strings.TrimSpace(name) == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		if used[name] {
			base := name
			for n := suffix[base] + 1; ; n++ {
				name = base + "." + strconv.Itoa(n)
				if !used[name] {
					suffix[base] = n
					break
				}
			}
		}
		used[name] = true
		out[i] = name
	}
	return out
}

func blankRow(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// typeColumn infers one type per column: int if every non-null cell is an
// integer, float if every one is numeric, otherwise text kept verbatim.
func typeColumn(cells []string) []models.Value {
	allInt, allNum := true, true
	for _, c := range cells {
		if isNullToken(c) {
			continue
		}
		t := strings.TrimSpace(c)
		if _, err := strconv.ParseInt(t, 10, 64); err != nil {
			allInt = false
		}
		if f, err := strconv.ParseFloat(t, 64); err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			allNum = false
			break
		}
	}
	out := make([]models.Value, len(cells))
	for i, c := range cells {
		if isNullToken(c) {
			continue
		}
		t := strings.TrimSpace(c)
		switch {
		case allInt:
			n, _ := strconv.ParseInt(t, 10, 64)
			out[i] = models.Int(n)
		case allNum:
			f, _ := strconv.ParseFloat(t, 64)
			out[i] = models.Float(f)
		default:
			out[i] = models.Str(c)
		}
	}
	return out
}

func isNullToken(c string) bool {
	_, ok := nullTokens[strings.TrimSpace(c)]
	return ok
}
